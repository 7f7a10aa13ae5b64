package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/p-n-ai/pai-notes/internal/content"
	"github.com/p-n-ai/pai-notes/internal/document"
	"github.com/p-n-ai/pai-notes/internal/export"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
	"github.com/p-n-ai/pai-notes/internal/platform/database"
	"github.com/p-n-ai/pai-notes/internal/termview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp(os.Stdout).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "notesctl: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:            "notesctl",
		Usage:           "browse, check and export study notes",
		HideHelpCommand: true,
		Writer:          out,
		Before:          setupLogging,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "load note bundles from `DIR` instead of the built-in set"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level to stderr"},
			&cli.IntFlag{Name: "max-expr-len", Value: 4096, Usage: "longest math expression to typeset, in runes"},
		},
		Commands: []*cli.Command{
			{
				Name:      "resolve",
				Usage:     "Resolves a topic and prints its notes",
				ArgsUsage: "TOPIC",
				Action:    runResolve,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "grade", Aliases: []string{"g"}, Usage: "grade `LEVEL` (default O-Level)"},
					&cli.StringFlag{Name: "form", Aliases: []string{"f"}, Usage: "form `LEVEL`, e.g. \"Form 4\""},
					&cli.BoolFlag{Name: "expand-all", Aliases: []string{"a"}, Usage: "show every section expanded"},
					&cli.IntSliceFlag{Name: "toggle", Aliases: []string{"t"}, Usage: "toggle section `N` (1-based); repeatable"},
					&cli.IntFlag{Name: "width", Aliases: []string{"w"}, Usage: "wrap output at `COLUMNS`; 0 leaves lines unwrapped"},
					&cli.BoolFlag{Name: "plain", Usage: "no colours or borders"},
				},
			},
			{
				Name:      "parse",
				Usage:     "Splits note text into text and math segments",
				ArgsUsage: "[FILE|-]",
				Action:    runParse,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "render", Aliases: []string{"r"}, Usage: "also typeset the math and print the result"},
				},
			},
			{
				Name:   "check",
				Usage:  "Validates note bundles and reports every problem found",
				Action: runCheck,
			},
			{
				Name:   "export",
				Usage:  "Writes the topic index and note statistics as a spreadsheet",
				Action: runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "notes.xlsx", Usage: "output `FILE`"},
				},
			},
			{
				Name:   "publish",
				Usage:  "Validates note bundles and stores them in PostgreSQL for the postgres notes source",
				Action: runPublish,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "PostgreSQL connection `URL`",
						Sources: cli.EnvVars("LEARN_DATABASE_URL"),
					},
					&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "validate only, do not connect"},
				},
			},
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return ctx, nil
}

func loadCatalog(cmd *cli.Command) (*notes.Catalog, error) {
	if dir := cmd.String("dir"); dir != "" {
		return notes.LoadDir(dir)
	}
	return notes.LoadEmbedded()
}

func newRenderer(cmd *cli.Command) *mathrender.Renderer {
	return mathrender.NewRenderer(mathrender.RendererConfig{MaxExprLen: cmd.Int("max-expr-len")})
}

func runResolve(_ context.Context, cmd *cli.Command) error {
	topic := strings.Join(cmd.Args().Slice(), " ")
	if topic == "" {
		return errors.New("no topic has been specified")
	}

	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	res := notes.NewResolver(c, notes.ResolverConfig{})

	grade := cmd.String("grade")
	if grade == "" {
		grade = res.DefaultGrade()
	}
	n := res.ResolveNotes(topic, grade, cmd.String("form"))
	if n == nil {
		return fmt.Errorf("notes not available for %q", topic)
	}

	doc := document.Build(n, newRenderer(cmd))
	exp := document.NewExpansion()
	if cmd.Bool("expand-all") {
		exp.ExpandAll(len(doc.Sections))
	}
	for _, s := range cmd.IntSlice("toggle") {
		exp.Toggle(s - 1)
	}

	theme := termview.DefaultTheme()
	if cmd.Bool("plain") {
		theme = termview.PlainTheme()
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, termview.Render(doc, exp, theme, cmd.Int("width")))
	return err
}

func runParse(_ context.Context, cmd *cli.Command) error {
	src := cmd.Args().Get(0)

	var in io.Reader = os.Stdin
	if src != "" && src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("opening %s: %w", src, err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	w := cmd.Root().Writer
	r := newRenderer(cmd)
	for seg := range content.Parse(string(data)) {
		fmt.Fprintln(w, seg)
		if cmd.Bool("render") && seg.IsMath() {
			blk := document.RenderSegment(seg, r)
			if blk.Math.Rendered {
				fmt.Fprintf(w, "  => %s\n", blk.Math.Text)
			} else {
				fmt.Fprintf(w, "  !! %s\n", blk.Math.Err)
			}
		}
	}
	return nil
}

// reportProblems prints every problem of a validation error.
func reportProblems(w io.Writer, err error) error {
	var verr *notes.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems() {
			fmt.Fprintf(w, "problem: %v\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(verr.Problems()))
	}
	return err
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	c, err := loadCatalog(cmd)
	if err != nil {
		return reportProblems(w, err)
	}

	r := newRenderer(cmd)
	unrendered := 0
	for _, n := range c.Notes() {
		if s := export.NoteStats(n, r); s.Unrendered > 0 {
			fmt.Fprintf(w, "warning: %s: %d math expression(s) fall back to source\n", n.ID, s.Unrendered)
			unrendered += s.Unrendered
		}
	}
	fmt.Fprintf(w, "ok: %d notes, %d index entries, %d unrendered math, version %s\n",
		c.Len(), len(c.Index()), unrendered, c.Version())
	return nil
}

func runExport(_ context.Context, cmd *cli.Command) error {
	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	name := cmd.String("out")
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := export.WriteXLSX(f, c, newRenderer(cmd)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	slog.Info("exported notes", "file", name, "notes", c.Len())
	return nil
}

func runPublish(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	fsys := notes.EmbeddedFS()
	if dir := cmd.String("dir"); dir != "" {
		fsys = os.DirFS(dir)
	}
	bundles, err := notes.ReadBundles(fsys)
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		return errors.New("no note bundles found")
	}
	c, err := notes.LoadBytes(bundles...)
	if err != nil {
		return reportProblems(w, err)
	}

	if cmd.Bool("dry-run") {
		fmt.Fprintf(w, "would publish: %d bundles, %d notes, version %s\n", len(bundles), c.Len(), c.Version())
		return nil
	}

	url := cmd.String("database-url")
	if url == "" {
		return errors.New("no database has been specified, use --database-url or LEARN_DATABASE_URL")
	}
	db, err := database.New(ctx, url, 2, 1)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	rows := make([]database.Bundle, 0, len(bundles))
	for _, b := range bundles {
		rows = append(rows, database.Bundle{Name: b.Name, Body: b.Data})
	}
	if err := db.PutBundles(ctx, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "published: %d bundles, %d notes, version %s\n", len(bundles), c.Len(), c.Version())
	return nil
}
