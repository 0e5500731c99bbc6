// Command swagman infers response schemas from a Postman collection and
// writes them out as an OpenAPI document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/usestring/swagman-mcp/internal/cache"
	"github.com/usestring/swagman-mcp/internal/config"
	"github.com/usestring/swagman-mcp/internal/logging"
	"github.com/usestring/swagman-mcp/internal/openapi"
	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
)

const usage = `usage: swagman <command> [flags]

commands:
  generate   write an OpenAPI document for a collection
  schemas    print inferred response schemas
  items      list request items
  validate   check collections against the Postman collection schema

run "swagman <command> -h" for the flags of a command
`

var errUsage = errors.New("usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var cmd func(context.Context, *app, []string) error
	switch args[0] {
	case "generate":
		cmd = runGenerate
	case "schemas":
		cmd = runSchemas
	case "items":
		cmd = runItems
	case "validate":
		cmd = runValidate
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	a := &app{cfg: config.Load(), stdout: stdout, stderr: stderr}
	logCfg := logging.FromConfig(a.cfg)
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = "warn"
	}
	logCfg.Fallback = stderr
	cleanup, err := logging.Setup(logCfg)
	if err != nil {
		a.fail(err)
		return 1
	}
	defer cleanup()

	if err := cmd(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		a.fail(err)
		return 1
	}
	return 0
}

// app carries what every subcommand shares.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func (a *app) fail(err error) {
	color.New(color.FgRed, color.Bold).Fprint(a.stderr, "error: ")
	fmt.Fprintln(a.stderr, err)
}

func (a *app) ok(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.stderr, format+"\n", args...)
}

// flags registers the flags shared by every subcommand on a new set.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("swagman "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&a.cfg.CollectionPath, "collection", a.cfg.CollectionPath, "Postman collection file (default $SWAGMAN_COLLECTION)")
	fs.StringVar(&a.cfg.EnvironmentPath, "env", a.cfg.EnvironmentPath, "Postman environment file applied to request URLs")
	fs.BoolVar(&a.cfg.MergeFolders, "merge-folders", a.cfg.MergeFolders, "merge folder contents into the parent instead of replacing it")
	fs.BoolVar(&a.cfg.NormalizeIDs, "normalize-ids", a.cfg.NormalizeIDs, "replace numeric, uuid and hex path segments with placeholders")
	return fs
}

func (a *app) load(ctx context.Context) (*cache.Loaded, error) {
	if a.cfg.CollectionPath == "" {
		fmt.Fprintln(a.stderr, "-collection is required")
		return nil, errUsage
	}
	c, err := cache.NewCollectionCache(1, a.cfg.LoadTimeout, a.cfg.ParserOptions()...)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, a.cfg.CollectionPath, a.cfg.EnvironmentPath)
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runGenerate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("generate")
	format := fs.String("format", a.cfg.OpenAPIFormat, "output format: json or yaml")
	output := fs.String("output", "", "output file (default stdout)")
	var overlays stringList
	fs.Var(&overlays, "overlay", "JSON merge patch or JSON patch file applied to the document (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := openapi.ParseFormat(*format)
	if err != nil {
		return err
	}
	patches := make([][]byte, 0, len(overlays))
	for _, path := range overlays {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading overlay: %w", err)
		}
		patches = append(patches, data)
	}

	l, err := a.load(ctx)
	if err != nil {
		return err
	}
	doc, err := openapi.Build(l.Parser)
	if err != nil {
		return err
	}

	if *output == "" {
		return openapi.Write(a.stdout, doc, f, patches...)
	}
	if err := openapi.WriteFile(*output, doc, f, patches...); err != nil {
		return err
	}
	a.ok("wrote %s (%d paths, %d schemas)", *output, doc.Paths.Len(), doc.Components.Schemas.Len())
	return nil
}

func runSchemas(ctx context.Context, a *app, args []string) error {
	fs := a.flags("schemas")
	path := fs.String("path", "", "item key (request URI) or schema name; omit for every item")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := a.load(ctx)
	if err != nil {
		return err
	}
	res, err := l.Parser.GetSchemas(*path)
	if err != nil {
		return err
	}

	var out any = res.Items
	if *path != "" {
		if res.Match == nil {
			return fmt.Errorf("no item or schema matches %q", *path)
		}
		out = res.Match
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s\n", data)
	return err
}

func runItems(ctx context.Context, a *app, args []string) error {
	fs := a.flags("items")
	where := fs.String("where", "", `filter expression, e.g. method == "GET" && json`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var pred *query.Predicate
	if *where != "" {
		var err error
		if pred, err = query.CompileWhere(*where); err != nil {
			return err
		}
	}
	l, err := a.load(ctx)
	if err != nil {
		return err
	}
	sel, err := query.Select(l.Parser, l.Index, pred)
	if err != nil {
		return err
	}

	method := color.New(color.FgCyan, color.Bold).SprintfFunc()
	dim := color.New(color.Faint).SprintFunc()
	for _, m := range sel.Metas {
		codes := make([]string, len(m.StatusCodes))
		for i, c := range m.StatusCodes {
			codes[i] = fmt.Sprint(c)
		}
		fmt.Fprintf(a.stdout, "%4d  %s %s  %s  %s\n",
			m.DocID, method("%-7s", m.Method), m.Path,
			strings.Join(codes, ","), dim(strings.Join(m.SchemaNames, " ")))
	}
	a.ok("%d items", len(sel.Metas))
	return nil
}

func runValidate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// extra collections may follow the flags
	paths := fs.Args()
	if a.cfg.CollectionPath != "" {
		paths = append([]string{a.cfg.CollectionPath}, paths...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(a.stderr, "-collection is required")
		return errUsage
	}

	c, err := cache.NewCollectionCache(len(paths), a.cfg.LoadTimeout, a.cfg.ParserOptions()...)
	if err != nil {
		return err
	}
	loaded, err := c.LoadAll(ctx, paths, a.cfg.EnvironmentPath)
	if err != nil {
		return err
	}

	v := validate.NewCollectionValidator(a.cfg.ValidatorOptions()...)
	invalid := 0
	for _, l := range loaded {
		version := v.VersionOf(l.Collection)
		if err := v.Validate(l.Collection); err != nil {
			invalid++
			a.fail(fmt.Errorf("%s is not a valid v%s collection", l.Path, version))
			for _, msg := range validate.ErrorMessages(err) {
				fmt.Fprintf(a.stdout, "%s: %s\n", l.Path, msg)
			}
			continue
		}
		a.ok("%s: valid v%s collection", l.Path, version)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d collections invalid", invalid, len(loaded))
	}
	return nil
}
