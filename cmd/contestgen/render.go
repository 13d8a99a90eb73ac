package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/output"
	"github.com/vango-dev/contestgen/internal/placeholder"
	"gopkg.in/yaml.v3"
)

func renderCmd(g *globals) *cobra.Command {
	var (
		sets        []string
		contextFile string
		outPath     string
		missing     bool
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a single template",
		Long: `Render a template file, substituting {{scope.field}} placeholders.

Values come from a JSON or YAML context file, whose nested keys become
dotted paths, and from --set assignments, which take precedence. Use "-"
to read the template from stdin. Without -o the result goes to stdout.

Examples:
  contestgen render Main.java.tmpl --set content.contest=abc421 --set content.Name=A
  contestgen render README.md.tmpl --context contest.yaml -o README.md
  contestgen render Main.java.tmpl --missing --context contest.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), g, args[0], contextFile, sets, outPath, missing)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a value (scope.field=value), repeatable")
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "JSON or YAML context file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to this file")
	cmd.Flags().BoolVar(&missing, "missing", false, "List unresolved placeholder paths instead of rendering")

	return cmd
}

func runRender(ctx context.Context, g *globals, templatePath, contextFile string, sets []string, outPath string, missing bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	name, src, err := readTemplate(templatePath)
	if err != nil {
		return err
	}

	values, err := loadContext(contextFile)
	if err != nil {
		return err
	}
	assigned, err := placeholder.ParseAssignments(sets)
	if err != nil {
		return err
	}
	values = values.Merge(assigned)
	g.logger.Debug("context loaded", "paths", len(values), "file", contextFile)

	var rendered string
	err = g.telemetry.Observe(ctx, filepath.Base(name), func(context.Context) error {
		tmpl, err := placeholder.Parse(name, src)
		if err != nil {
			return err
		}
		if missing {
			for _, p := range tmpl.Missing(values) {
				fmt.Fprintln(stdout, p)
			}
			return nil
		}
		rendered, err = tmpl.Render(values)
		return err
	})
	if err != nil || missing {
		return err
	}

	if outPath == "" {
		_, err := io.WriteString(stdout, rendered)
		return err
	}
	if err := output.WriteFileAtomic(outPath, []byte(rendered)); err != nil {
		return err
	}
	g.telemetry.RecordFile(string(output.ActionWritten))
	g.logger.Debug("rendered", "template", name, "output", outPath)
	return nil
}

func readTemplate(path string) (name, src string, err error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", errors.New("E145").WithDetail("stdin").Wrap(err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", errors.New("E145").
			WithDetail(path).
			WithSuggestion("Check the template path").
			Wrap(err)
	}
	return path, string(data), nil
}

// loadContext reads a JSON or YAML document and flattens it into dotted
// paths. Files without a .json extension are read as YAML.
func loadContext(path string) (placeholder.Context, error) {
	if path == "" {
		return placeholder.Context{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E121").WithDetail(path).Wrap(err)
	}

	doc := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}
	return placeholder.Flatten(doc), nil
}
