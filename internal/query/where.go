package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/usestring/swagman-mcp/internal/indexer"
)

// ItemEnv is the environment a where expression sees for one item, e.g.
//
//	method == "GET" && 404 in codes
//	folder startsWith "Admin" || any(schemas, # endsWith "500")
type ItemEnv struct {
	Index   int      `expr:"index"`
	Key     string   `expr:"key"`
	Name    string   `expr:"name"`
	Folder  string   `expr:"folder"`
	Method  string   `expr:"method"`
	Path    string   `expr:"path"`
	Codes   []int    `expr:"codes"`
	Schemas []string `expr:"schemas"`
	Headers []string `expr:"headers"`
	JSON    bool     `expr:"json"` // has a JSON example response
}

// EnvFor builds the where environment of an indexed item.
func EnvFor(meta *indexer.ItemMeta) ItemEnv {
	return ItemEnv{
		Index:   int(meta.DocID),
		Key:     meta.Key,
		Name:    meta.Name,
		Folder:  meta.Folder,
		Method:  meta.Method,
		Path:    meta.Path,
		Codes:   meta.StatusCodes,
		Schemas: meta.SchemaNames,
		Headers: meta.HeaderNamesLower,
		JSON:    meta.HasJSONBody,
	}
}

// Predicate is a compiled boolean where expression.
type Predicate struct {
	source  string
	program *vm.Program
}

// CompileWhere compiles a where expression. It must evaluate to a boolean
// and may only reference ItemEnv fields.
func CompileWhere(source string) (*Predicate, error) {
	program, err := expr.Compile(source, expr.Env(ItemEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid where expression: %w", err)
	}
	return &Predicate{source: source, program: program}, nil
}

// Match reports whether the item satisfies the predicate. A nil predicate
// matches everything.
func (p *Predicate) Match(env ItemEnv) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", p.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.source
}
