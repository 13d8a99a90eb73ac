package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/contestgen/internal/config"
	"github.com/vango-dev/contestgen/internal/contest"
	"github.com/vango-dev/contestgen/internal/scaffold"
)

type newOptions struct {
	langs    []string
	problems string
	dir      string
	force    bool
	dryRun   bool
	yes      bool
}

func newCmd(g *globals) *cobra.Command {
	var opts newOptions

	cmd := &cobra.Command{
		Use:   "new <contest>",
		Short: "Create solution skeletons for a contest",
		Long: `Create a contest workspace with a solution and test file per problem.

Languages are taken from --lang, then default_lang.txt, then the
languages in contestgen.json. When none of these select anything and the
terminal is interactive, you are asked to pick them.

The workspace is created next to contestgen.json, or in the current
directory when there is none. Problem metadata (title, URL, sample
cases) is read from cache/<PROBLEM>.json inside the workspace when
present; each cached sample is also written to examples/<P>_<i>.in and
examples/<P>_<i>.out.

Examples:
  contestgen new abc421
  contestgen new abc421 --lang java --problems A,B,C
  contestgen new abc421 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runNew(ctx, g, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.langs, "lang", "l", nil, "Languages to generate (comma separated)")
	cmd.Flags().StringVarP(&opts.problems, "problems", "p", "", "Problem IDs (comma separated, default from config)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Workspace directory (default: upper-cased contest id)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip prompts and use defaults")

	return cmd
}

func runNew(ctx context.Context, g *globals, contestArg string, opts newOptions) error {
	id, err := contest.NormalizeID(contestArg)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, hasConfig, err := loadProjectConfig(cwd)
	if err != nil {
		return err
	}
	if g.metricsFile == "" && cfg.MetricsFile != "" {
		g.metricsFile = filepath.Join(cfg.Dir(), cfg.MetricsFile)
	}

	fromFile, err := config.LoadLanguagesFile(filepath.Join(cfg.Dir(), config.LanguagesFileName))
	if err != nil {
		return err
	}
	var fromConfig []string
	if hasConfig {
		fromConfig = cfg.Languages
	}
	supported := scaffold.SupportedLanguages(cfg)
	langs := config.ResolveLanguages(opts.langs, fromFile, fromConfig, supported)

	if len(opts.langs) == 0 && len(fromFile) == 0 && !hasConfig && !opts.yes && isInteractive() {
		langs, err = newPrompter().MultiSelect(ctx, "Languages:", supported, config.DefaultLanguages)
		if err != nil {
			return err
		}
	}
	if len(opts.langs) > 0 && len(langs) < len(opts.langs) {
		warn("Ignoring unsupported languages (supported: %s)", strings.Join(supported, ", "))
	}
	g.logger.Debug("languages resolved", "languages", langs, "fromFile", fromFile, "hasConfig", hasConfig)

	// Workspaces live next to contestgen.json.
	dir := opts.dir
	if dir == "" {
		dir = filepath.Join(cfg.Dir(), contest.DirName(id))
	}

	printBanner()
	if opts.dryRun {
		info("Planning %s (dry run)...", contest.DirName(id))
	} else {
		info("Creating %s...", contest.DirName(id))
	}
	fmt.Fprintln(stdout)

	gen := scaffold.New(cfg, scaffold.Options{
		Logger:     g.logger,
		Telemetry:  g.telemetry,
		OnProgress: func(step string) { info("%s", step) },
	})
	res, err := gen.Generate(ctx, scaffold.Request{
		Contest:   id,
		Dir:       dir,
		Problems:  contest.ParseProblems(opts.problems),
		Languages: langs,
		Force:     opts.force || cfg.Force,
		DryRun:    opts.dryRun,
	})
	if err != nil {
		return err
	}

	printResult(res, dir)
	return nil
}

// loadProjectConfig finds contestgen.json in cwd or a parent directory. When
// there is none, defaults rooted at cwd are returned.
func loadProjectConfig(cwd string) (*config.Config, bool, error) {
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		cfg := config.New()
		cfg.SetPath(filepath.Join(cwd, config.ConfigFileName))
		return cfg, false, nil
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func printResult(res *scaffold.Result, dir string) {
	fmt.Fprintln(stdout)
	for _, p := range res.Written {
		fmt.Fprintf(stdout, "    %s %s\n", paint("\033[32m", "+"), p)
	}
	for _, p := range res.Updated {
		fmt.Fprintf(stdout, "    %s %s\n", paint("\033[33m", "~"), p)
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(stdout, "    %s %s %s\n", paint("\033[90m", "="), p, paint("\033[90m", "(exists)"))
	}
	for _, m := range res.Blocks {
		fmt.Fprintf(stdout, "    %s .gitignore [%s]\n", paint("\033[32m", "+"), m)
	}
	fmt.Fprintln(stdout)

	rel := dir
	if cwd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(cwd, dir); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	switch {
	case res.DryRun:
		success("Dry run: %d to write, %d to update, %d unchanged in %s/", len(res.Written), len(res.Updated), len(res.Skipped), rel)
	case len(res.Written)+len(res.Updated) == 0 && len(res.Blocks) == 0:
		success("%s/ is up to date (%s)", rel, strings.Join(res.Languages, ", "))
	default:
		success("Created %s/ (%s): %d written, %d updated, %d skipped",
			rel, strings.Join(res.Languages, ", "), len(res.Written), len(res.Updated), len(res.Skipped))
	}
}
