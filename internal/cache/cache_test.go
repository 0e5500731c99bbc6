package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/swagman-mcp/pkg/collection"
)

const petsCollection = `{
	"info": {"name": "Pets"},
	"item": [{
		"name": "Get pet",
		"request": {"method": "GET", "url": "{{baseUrl}}/pets/1"},
		"response": [{"code": 200, "_postman_previewlanguage": "json", "body": "{\"id\": 1}"}]
	}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGet_LoadsOnceAndCaches(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)
	path := writeFile(t, "pets.json", petsCollection)

	first, err := c.Get(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "Pets", first.Collection.Info.Name)
	assert.Equal(t, 1, first.Index.DocCount())
	assert.Nil(t, first.Environment)

	second, err := c.Get(context.Background(), path, "")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestGet_AppliesEnvironment(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)
	path := writeFile(t, "pets.json", petsCollection)
	envPath := writeFile(t, "env.json", `{"values": [{"key": "baseUrl", "value": "https://api.example.com"}]}`)

	l, err := c.Get(context.Background(), path, envPath)
	require.NoError(t, err)
	require.NotNil(t, l.Environment)
	assert.Equal(t, "https://api.example.com/pets/1", l.Index.GetMeta(0).Key)

	// Keyed separately from the bare collection
	bare, err := c.Get(context.Background(), path, "")
	require.NoError(t, err)
	assert.NotSame(t, l, bare)
	assert.Equal(t, 2, c.Len())
}

func TestGet_ConcurrentCallersShareLoad(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)
	path := writeFile(t, "pets.json", petsCollection)

	var wg sync.WaitGroup
	results := make([]*Loaded, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := c.Get(context.Background(), path, "")
			assert.NoError(t, err)
			results[i] = l
		}()
	}
	wg.Wait()

	for _, l := range results[1:] {
		assert.Same(t, results[0], l)
	}
}

func TestGet_Errors(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"item": `)
	_, err = c.Get(context.Background(), bad, "")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len(), "failed loads are not cached")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, writeFile(t, "pets.json", petsCollection), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCollectionCache(1, 0)
	require.NoError(t, err)

	a := writeFile(t, "a.json", petsCollection)
	b := writeFile(t, "b.json", petsCollection)

	first, err := c.Get(context.Background(), a, "")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), b, "")
	require.NoError(t, err)
	again, err := c.Get(context.Background(), a, "")
	require.NoError(t, err)

	assert.NotSame(t, first, again)
	assert.Equal(t, 1, c.Len())
}

func TestLoadAll(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)
	a := writeFile(t, "a.json", petsCollection)
	b := writeFile(t, "b.json", `{"info": {"name": "Empty"}, "item": []}`)

	all, err := c.LoadAll(context.Background(), []string{a, b}, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Pets", all[0].Collection.Info.Name)
	assert.Equal(t, "Empty", all[1].Collection.Info.Name)

	_, err = c.LoadAll(context.Background(), []string{a, "/does/not/exist.json"}, "")
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	c, err := NewCollectionCache(4, 0)
	require.NoError(t, err)

	col, err := collection.Parse([]byte(petsCollection))
	require.NoError(t, err)

	l, err := c.Store("inline", col, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Index.DocCount())

	got, err := c.Get(context.Background(), "inline", "")
	require.NoError(t, err)
	assert.Same(t, l, got)
}

func TestNewCollectionCache_InvalidSize(t *testing.T) {
	_, err := NewCollectionCache(0, 0)
	assert.Error(t, err)
}
