package indexer

import (
	"net/http"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/parser"
)

// Indexer maintains in-memory indexes over the leaf items of one collection
// using Roaring bitmaps. Document IDs are leaf positions in walk order.
type Indexer struct {
	mu sync.RWMutex

	docToMeta []*ItemMeta

	// Inverted indexes (all use Roaring bitmaps)
	idxMethod     map[string]*roaring.Bitmap
	idxStatus     map[int]*roaring.Bitmap
	idxFolder     map[string]*roaring.Bitmap
	idxHeaderName map[string]*roaring.Bitmap
	idxSchema     map[string]*roaring.Bitmap // lowercased schema name
	idxToken      map[string]*roaring.Bitmap // URL tokens
	idxNameToken  map[string]*roaring.Bitmap // item and folder name tokens
	jsonBodies    *roaring.Bitmap
}

// New creates an empty Indexer.
func New() *Indexer {
	return &Indexer{
		docToMeta:     make([]*ItemMeta, 0, 64),
		idxMethod:     make(map[string]*roaring.Bitmap),
		idxStatus:     make(map[int]*roaring.Bitmap),
		idxFolder:     make(map[string]*roaring.Bitmap),
		idxHeaderName: make(map[string]*roaring.Bitmap),
		idxSchema:     make(map[string]*roaring.Bitmap),
		idxToken:      make(map[string]*roaring.Bitmap),
		idxNameToken:  make(map[string]*roaring.Bitmap),
		jsonBodies:    roaring.New(),
	}
}

// Build indexes every leaf item the parser walks.
func Build(p *parser.Parser) (*Indexer, error) {
	leaves, err := p.Leaves()
	if err != nil {
		return nil, err
	}
	folders := folderPaths(p.Collection().Item, "", nil)

	idx := New()
	for i, item := range leaves {
		folder := ""
		if i < len(folders) {
			folder = folders[i]
		}
		idx.Index(MetaFor(p, item, folder))
	}
	return idx, nil
}

// MetaFor extracts the searchable fields of one leaf item.
func MetaFor(p *parser.Parser, item *collection.Item, folder string) *ItemMeta {
	meta := &ItemMeta{
		Name:   item.Name,
		Folder: folder,
		Method: http.MethodGet,
	}
	if req := item.Request; req != nil {
		meta.Key = req.URI()
		if req.Method != "" {
			meta.Method = strings.ToUpper(req.Method)
		}
		if req.URL != nil {
			meta.Path = "/" + req.NormalizedPath(p.NormalizeIDs())
		}
		for _, h := range req.Header {
			if h.Disabled || h.Key == "" {
				continue
			}
			meta.HeaderNamesLower = append(meta.HeaderNamesLower, strings.ToLower(h.Key))
		}
	}

	for i := range item.Response {
		resp := &item.Response[i]
		meta.StatusCodes = append(meta.StatusCodes, resp.Code)
		if item.Request != nil && item.Request.URL != nil {
			meta.SchemaNames = append(meta.SchemaNames, p.SchemaName(item, resp.Code))
		}
		if resp.IsJSON() && strings.TrimSpace(resp.Body) != "" {
			meta.HasJSONBody = true
		}
	}
	return meta
}

// folderPaths lists the enclosing folder path of every leaf, in the same
// depth-first order the walker visits them.
func folderPaths(items []collection.Item, prefix string, out []string) []string {
	for i := range items {
		if !items[i].IsFolder() {
			out = append(out, prefix)
			continue
		}
		next := items[i].Name
		if prefix != "" {
			next = prefix + "/" + items[i].Name
		}
		out = folderPaths(items[i].Item, next, out)
	}
	return out
}

// Index adds an item to the index.
// Returns the assigned document ID.
func (idx *Indexer) Index(meta *ItemMeta) uint32 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	docID := uint32(len(idx.docToMeta))
	meta.DocID = docID
	idx.docToMeta = append(idx.docToMeta, meta)

	if meta.Method != "" {
		addToBitmap(idx.idxMethod, meta.Method, docID)
	}
	for _, code := range meta.StatusCodes {
		addToBitmap(idx.idxStatus, code, docID)
	}
	if meta.Folder != "" {
		addToBitmap(idx.idxFolder, meta.Folder, docID)
	}
	for _, header := range meta.HeaderNamesLower {
		addToBitmap(idx.idxHeaderName, header, docID)
	}
	for _, name := range meta.SchemaNames {
		addToBitmap(idx.idxSchema, strings.ToLower(name), docID)
	}

	for _, token := range TokenizeURL(meta.Key) {
		addToBitmap(idx.idxToken, token, docID)
	}
	for _, token := range TokenizeURL(meta.Path) {
		addToBitmap(idx.idxToken, token, docID)
	}

	for _, token := range TokenizeName(meta.Name) {
		addToBitmap(idx.idxNameToken, token, docID)
	}
	for _, token := range TokenizeName(meta.Folder) {
		addToBitmap(idx.idxNameToken, token, docID)
	}

	if meta.HasJSONBody {
		idx.jsonBodies.Add(docID)
	}

	return docID
}

// GetMeta retrieves metadata by docID.
func (idx *Indexer) GetMeta(docID uint32) *ItemMeta {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if int(docID) >= len(idx.docToMeta) {
		return nil
	}
	return idx.docToMeta[docID]
}

// GetMetaByKey retrieves the metadata of the first item with the given key.
func (idx *Indexer) GetMetaByKey(key string) *ItemMeta {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, meta := range idx.docToMeta {
		if meta.Key == key {
			return meta
		}
	}
	return nil
}

// AllDocIDs returns a bitmap of all indexed document IDs.
func (idx *Indexer) AllDocIDs() *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	bm := roaring.New()
	bm.AddRange(0, uint64(len(idx.docToMeta)))
	return bm
}

// DocCount returns the number of indexed documents.
func (idx *Indexer) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docToMeta)
}

// GetBitmapForMethod returns the bitmap for a specific HTTP method.
func (idx *Indexer) GetBitmapForMethod(method string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxMethod[strings.ToUpper(method)]
}

// GetBitmapForStatus returns the bitmap for a specific example status code.
func (idx *Indexer) GetBitmapForStatus(status int) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxStatus[status]
}

// GetBitmapForFolder returns the bitmap for items inside a folder path,
// including items of its subfolders.
func (idx *Indexer) GetBitmapForFolder(folder string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	folder = strings.Trim(folder, "/")
	prefix := folder + "/"
	result := roaring.New()
	for key, bm := range idx.idxFolder {
		if key == folder || strings.HasPrefix(key, prefix) {
			result.Or(bm)
		}
	}
	if result.IsEmpty() {
		return nil
	}
	return result
}

// GetBitmapForHeaderName returns the bitmap for a request header name.
func (idx *Indexer) GetBitmapForHeaderName(name string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxHeaderName[strings.ToLower(name)]
}

// GetBitmapForSchema returns the bitmap for a schema name, case-insensitively.
func (idx *Indexer) GetBitmapForSchema(name string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxSchema[strings.ToLower(name)]
}

// GetBitmapForToken returns the bitmap for a specific URL token.
func (idx *Indexer) GetBitmapForToken(token string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxToken[token]
}

// GetBitmapForNameToken returns the bitmap for a specific name token.
func (idx *Indexer) GetBitmapForNameToken(token string) *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.idxNameToken[token]
}

// JSONBodies returns the bitmap of items with at least one JSON example.
func (idx *Indexer) JSONBodies() *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.jsonBodies.Clone()
}

// addToBitmap adds a docID to the bitmap for the given key.
func addToBitmap[K comparable](m map[K]*roaring.Bitmap, key K, docID uint32) {
	bm, exists := m[key]
	if !exists {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(docID)
}
