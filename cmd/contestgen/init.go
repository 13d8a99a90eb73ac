package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/contestgen/internal/config"
	"github.com/vango-dev/contestgen/internal/contest"
	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/output"
	"github.com/vango-dev/contestgen/internal/scaffold"
)

func initCmd(g *globals) *cobra.Command {
	var (
		dir      string
		langs    []string
		problems string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create contestgen.json and default_lang.txt",
		Long: `Create a contestgen.json with default settings in the current
directory, plus a default_lang.txt listing the languages to generate.

Examples:
  contestgen init
  contestgen init --lang java --problems A,B,C,D,E,F,G`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(g, dir, langs, problems, force)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to initialize")
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Default languages")
	cmd.Flags().StringVarP(&problems, "problems", "p", "", "Default problem IDs (comma separated)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing contestgen.json")

	return cmd
}

func runInit(g *globals, dir string, langs []string, problems string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("E140").
			WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists").
			WithSuggestion("Use --force to overwrite it")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E146").WithDetail(dir).Wrap(err)
	}

	cfg := config.New()
	cfg.SetPath(filepath.Join(dir, config.ConfigFileName))
	supported := scaffold.SupportedLanguages(cfg)
	if len(langs) > 0 {
		cfg.Languages = config.ResolveLanguages(langs, nil, nil, supported)
		if len(cfg.Languages) == 0 {
			return errors.New("E142").
				WithDetail("None of " + strings.Join(langs, ", ") + " is supported").
				WithSuggestion("Supported languages: " + strings.Join(supported, ", "))
		}
	}
	if ids := contest.ParseProblems(problems); len(ids) > 0 {
		cfg.Problems = ids
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	success("Created %s", cfg.Path())

	langFile := filepath.Join(dir, config.LanguagesFileName)
	action, err := output.WriteIfAbsent(langFile, []byte(languagesFile(cfg.Languages, supported)), false)
	if err != nil {
		return err
	}
	if action == output.ActionSkipped {
		info("Kept existing %s", langFile)
	} else {
		success("Created %s", langFile)
	}
	g.logger.Debug("initialized", "dir", dir, "languages", cfg.Languages, "problems", cfg.Problems)
	return nil
}

func languagesFile(selected, supported []string) string {
	var b strings.Builder
	b.WriteString("# Languages generated by 'contestgen new', one per line.\n")
	b.WriteString("# Supported: " + strings.Join(supported, ", ") + "\n")
	for _, l := range selected {
		b.WriteString(l + "\n")
	}
	return b.String()
}
