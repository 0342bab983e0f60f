package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/wrapgen/config"
	"github.com/rubiojr/wrapgen/headergen"
	"github.com/rubiojr/wrapgen/report"
	"github.com/rubiojr/wrapgen/typedb"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Execute runs the wrapgen CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "wrapgen",
		Usage:                  "Generate CPython binding headers for a C++ class library",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: wrapgen.yaml in the working directory)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the class and module headers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Usage:   "List the headers without writing them",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Class headers rendered in parallel (overrides the config)",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Disable the progress bar",
					},
				},
				Action: generateAction,
			},
			{
				Name:   "types",
				Usage:  "List the type entries loaded from the rule files",
				Action: typesAction,
			},
			{
				Name:   "indices",
				Usage:  "Print the type index of every generated type",
				Action: indicesAction,
			},
			{
				Name:      "match-warning",
				Usage:     "Check whether a warning message matches a suppression pattern",
				ArgsUsage: "<pattern> <message>",
				Action:    matchWarningAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the pipeline every command
// runs on.
func setup(cmd *cli.Command) (*Pipeline, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	log, err := report.NewLogger(cfg.Diagnostics.JSON, cfg.Diagnostics.Level)
	if err != nil {
		return nil, err
	}
	return NewPipeline(cfg, log, nil), nil
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	p, err := setup(cmd)
	if err != nil {
		return err
	}
	defer p.Reporter.Sync()
	cfg, rep := p.Config, p.Reporter
	if jobs := cmd.Int("jobs"); jobs > 0 {
		cfg.Generator.Jobs = jobs
	}

	res, err := p.Generate(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		for _, a := range res.Artifacts() {
			fmt.Println(a.Name)
		}
		return nil
	}

	showProgress := !cmd.Bool("no-progress") && !cfg.Diagnostics.JSON && term.IsTerminal(int(os.Stderr.Fd()))
	if err := p.Write(res, newProgress(len(res.Artifacts()), showProgress)); err != nil {
		return err
	}
	rep.Info("generation finished",
		"module", cfg.Module.Name,
		"headers", len(res.Artifacts()),
		"output", cfg.Path(cfg.Module.OutputDir),
		"warnings", rep.Summary())
	return nil
}

func typesAction(ctx context.Context, cmd *cli.Command) error {
	p, err := setup(cmd)
	if err != nil {
		return err
	}
	defer p.Reporter.Sync()

	if err := p.LoadRules(); err != nil {
		return err
	}
	fmt.Print(formatTypes(p.DB))
	return nil
}

func indicesAction(ctx context.Context, cmd *cli.Command) error {
	p, err := setup(cmd)
	if err != nil {
		return err
	}
	defer p.Reporter.Sync()

	res, err := p.Generate(ctx)
	if err != nil {
		return err
	}
	naming := headergen.Naming{Module: p.Config.Module.Name, Prefix: p.Config.Generator.Prefix}
	for _, ti := range res.Indices {
		fmt.Printf("%4d  %s\n", ti.Index, naming.TypeIndexName(ti.Entry))
	}
	return nil
}

func matchWarningAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("usage: wrapgen match-warning <pattern> <message>")
	}
	pattern, msg := cmd.Args().Get(0), cmd.Args().Get(1)
	if typedb.MatchWarning(pattern, msg) {
		fmt.Println("suppressed")
		return nil
	}
	fmt.Println("not suppressed")
	return cli.Exit("", 1)
}

// formatTypes renders one line per type entry: name, kind and generation.
func formatTypes(db *typedb.Database) string {
	entries := db.AllEntries()
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name()))
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%-*s  %-10s  %s\n", width, e.Name(), e.Kind(), e.CodeGeneration())
	}
	return sb.String()
}
