package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/contestgen/internal/config"
	"github.com/vango-dev/contestgen/internal/scaffold"
	"github.com/vango-dev/contestgen/internal/templates"
)

func templatesCmd(g *globals) *cobra.Command {
	var paths bool

	cmd := &cobra.Command{
		Use:   "templates [set]",
		Short: "List template sets",
		Long: `List the available template sets, including overrides from the
templates directory configured in contestgen.json.

With a set name and --paths, print every placeholder path the set uses.

Examples:
  contestgen templates
  contestgen templates java --paths`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, _, err := loadProjectConfig(cwd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return showTemplateSet(cfg, args[0], paths)
			}
			return listTemplateSets(g, cfg)
		},
	}

	cmd.Flags().BoolVar(&paths, "paths", false, "Print the placeholder paths used by the set")

	return cmd
}

func listTemplateSets(g *globals, cfg *config.Config) error {
	for _, name := range scaffold.SupportedLanguages(cfg) {
		set, err := templates.Resolve(name, cfg.TemplatesPath())
		if err != nil {
			return err
		}
		shared, perProblem := set.FileCount()
		fmt.Fprintf(stdout, "  %-8s %s\n", set.Name, set.Description)
		fmt.Fprintf(stdout, "  %-8s %s\n", "", paint("\033[90m", fmt.Sprintf("%d shared, %d per problem, %s", shared, perProblem, set.Source)))
		g.logger.Debug("template set", "name", set.Name, "source", set.Source)
	}
	return nil
}

func showTemplateSet(cfg *config.Config, name string, paths bool) error {
	set, err := templates.Resolve(name, cfg.TemplatesPath())
	if err != nil {
		return err
	}
	if paths {
		fmt.Fprintln(stdout, strings.Join(set.Paths(), "\n"))
		return nil
	}
	shared, perProblem := set.FileCount()
	fmt.Fprintf(stdout, "%s: %s\n", set.Name, set.Description)
	fmt.Fprintf(stdout, "  source:      %s\n", set.Source)
	fmt.Fprintf(stdout, "  shared:      %d\n", shared)
	fmt.Fprintf(stdout, "  per problem: %d\n", perProblem)
	return nil
}
