package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/vango-dev/contestgen/internal/config"
	"github.com/vango-dev/contestgen/internal/contest"
	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/output"
	"github.com/vango-dev/contestgen/internal/placeholder"
	"github.com/vango-dev/contestgen/internal/telemetry"
	"github.com/vango-dev/contestgen/internal/templates"
	"go.opentelemetry.io/otel/attribute"
)

// GitignoreFile is the ignore file receiving each set's block.
const GitignoreFile = ".gitignore"

// ExamplesDir holds one .in and one .out file per cached sample.
const ExamplesDir = "examples"

// Options configures the generator.
type Options struct {
	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Telemetry records render metrics. If nil, a private instance is used.
	Telemetry *telemetry.Telemetry

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Request describes one scaffolding run.
type Request struct {
	// Contest is the contest id as typed by the user.
	Contest string

	// Dir is the contest workspace. Defaults to the upper-cased contest id
	// inside the current directory.
	Dir string

	// Problems overrides the configured problem IDs.
	Problems []string

	// Languages are the template sets to generate, already resolved.
	Languages []string

	// Force replaces existing files.
	Force bool

	// DryRun plans every file without writing anything.
	DryRun bool
}

// Result lists what a run did, as paths relative to Dir.
type Result struct {
	Contest   contest.Contest
	Languages []string

	Written []string
	Updated []string
	Skipped []string

	// Blocks are the .gitignore markers added by this run.
	Blocks []string

	DryRun bool
}

// Total returns the number of files the run touched or skipped.
func (r *Result) Total() int {
	return len(r.Written) + len(r.Updated) + len(r.Skipped)
}

// Generator renders template sets into a contest workspace.
type Generator struct {
	config    *config.Config
	options   Options
	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

// New creates a generator.
func New(cfg *config.Config, options Options) *Generator {
	if cfg == nil {
		cfg = config.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tel := options.Telemetry
	if tel == nil {
		tel = telemetry.New()
	}
	return &Generator{
		config:    cfg,
		options:   options,
		logger:    logger,
		telemetry: tel,
	}
}

type plannedFile struct {
	rel     string
	set     string
	content []byte
}

type plannedBlock struct {
	marker string
	body   string
}

// Generate renders every file for the request and writes the ones that do
// not exist yet. Rendering finishes for all files before the first write,
// so a template error leaves the workspace untouched.
func (g *Generator) Generate(ctx context.Context, req Request) (result *Result, err error) {
	id, err := contest.NormalizeID(req.Contest)
	if err != nil {
		return nil, err
	}
	dir := req.Dir
	if dir == "" {
		dir = contest.DirName(id)
	}
	c := contest.Contest{ID: id, Dir: dir}

	ctx, span := g.telemetry.StartSpan(ctx, telemetry.SpanGenerate,
		attribute.String("contestgen.contest", id),
		attribute.StringSlice("contestgen.languages", req.Languages),
		attribute.Bool("contestgen.dry_run", req.DryRun),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if len(req.Languages) == 0 {
		return nil, errors.New("E142").
			WithDetail("No languages selected").
			WithSuggestion("Pass --lang or list languages in " + config.LanguagesFileName)
	}

	problemIDs := req.Problems
	if len(problemIDs) == 0 {
		problemIDs = g.config.Problems
	}

	g.progress("Loading templates...")
	common, err := templates.Resolve(templates.CommonSet, g.config.TemplatesPath())
	if err != nil {
		return nil, err
	}
	sets := make([]*templates.Set, 0, len(req.Languages))
	for _, lang := range req.Languages {
		set, err := templates.Resolve(lang, g.config.TemplatesPath())
		if err != nil {
			return nil, err
		}
		g.logger.Debug("template set resolved", "set", set.Name, "source", set.Source)
		sets = append(sets, set)
	}

	g.progress("Reading problem metadata...")
	urls, err := contest.NewURLs(g.config.ContestURL, g.config.TaskURL)
	if err != nil {
		return nil, err
	}
	meta, err := contest.LoadMeta(c, g.config.CacheDir, urls)
	if err != nil {
		return nil, err
	}
	problems := make([]contest.Problem, 0, len(problemIDs))
	for _, pid := range problemIDs {
		p, err := contest.LoadProblem(c, g.config.CacheDir, pid, urls)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("problem loaded", "problem", p.ID, "cached", p.Cached, "examples", len(p.Examples))
		problems = append(problems, p)
	}

	g.progress("Rendering templates...")
	files, blocks, err := g.plan(ctx, c, meta, problems, common, sets)
	if err != nil {
		return nil, err
	}

	result = &Result{Contest: c, Languages: req.Languages, DryRun: req.DryRun}
	if req.DryRun {
		g.preview(c, files, blocks, req.Force, result)
		return result, nil
	}

	g.progress("Writing files...")
	if err := g.write(ctx, c, files, blocks, req.Force, result); err != nil {
		return result, err
	}
	g.logger.Debug("scaffold finished",
		"contest", id,
		"written", len(result.Written),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped))
	return result, nil
}

func (g *Generator) plan(ctx context.Context, c contest.Contest, meta contest.Meta, problems []contest.Problem, common *templates.Set, sets []*templates.Set) ([]plannedFile, []plannedBlock, error) {
	var (
		files  []plannedFile
		blocks []plannedBlock
		owners = make(map[string]string)
	)
	add := func(set string, rendered []templates.File) error {
		for _, f := range rendered {
			if prev, ok := owners[f.Path]; ok {
				return errors.New("E148").
					WithDetail(fmt.Sprintf("%s is generated by both %s and %s", f.Path, prev, set))
			}
			owners[f.Path] = set
			files = append(files, plannedFile{rel: f.Path, set: set, content: f.Content})
		}
		return nil
	}
	addBlock := func(set *templates.Set) {
		if set.Gitignore != "" {
			blocks = append(blocks, plannedBlock{marker: "gitignore:" + set.Name, body: set.Gitignore})
		}
	}

	for _, p := range problems {
		if err := add(ExamplesDir, exampleFiles(p)); err != nil {
			return nil, nil, err
		}
	}

	readmeCtx := contest.ReadmeContext(c, meta, problems)
	err := g.telemetry.Observe(ctx, common.Name, func(context.Context) error {
		rendered, err := common.PlanShared(readmeCtx)
		if err != nil {
			return err
		}
		return add(common.Name, rendered)
	})
	if err != nil {
		return nil, nil, err
	}
	addBlock(common)

	sharedCtx := placeholder.Context{
		"content.contest": c.ID,
		"content.dir":     contest.DirName(c.ID),
		"content.title":   meta.Title,
		"content.date":    meta.Date,
		"content.url":     meta.URL,
	}
	for _, set := range sets {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		err := g.telemetry.Observe(ctx, set.Name, func(context.Context) error {
			rendered, err := set.PlanShared(sharedCtx)
			if err != nil {
				return err
			}
			return add(set.Name, rendered)
		})
		if err != nil {
			return nil, nil, err
		}

		for _, p := range problems {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			label := set.Name + "/" + p.ID
			err := g.telemetry.Observe(ctx, set.Name, func(context.Context) error {
				rendered, err := set.PlanProblem(contest.Context(c, p).Merge(placeholder.Context{
					"content.dir": contest.DirName(c.ID),
				}), cases(p))
				if err != nil {
					return err
				}
				return add(label, rendered)
			})
			if err != nil {
				return nil, nil, err
			}
		}
		addBlock(set)
	}
	return files, blocks, nil
}

// exampleFiles returns examples/<P>_<i>.in and .out for each sample, with
// the sample text kept verbatim.
func exampleFiles(p contest.Problem) []templates.File {
	out := make([]templates.File, 0, 2*len(p.Examples))
	for i, ex := range p.Examples {
		base := fmt.Sprintf("%s/%s_%d", ExamplesDir, p.ID, i+1)
		out = append(out,
			templates.File{Path: base + ".in", Content: []byte(ex.Input)},
			templates.File{Path: base + ".out", Content: []byte(ex.Output)},
		)
	}
	return out
}

func cases(p contest.Problem) []templates.Case {
	out := make([]templates.Case, len(p.Examples))
	for i, ex := range p.Examples {
		out[i] = templates.Case{
			Index:  i + 1,
			Input:  contest.StripLastNewline(ex.Input),
			Output: contest.StripLastNewline(ex.Output),
		}
	}
	return out
}

func (g *Generator) write(ctx context.Context, c contest.Contest, files []plannedFile, blocks []plannedBlock, force bool, result *Result) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		action, err := output.WriteIfAbsent(filepath.Join(c.Dir, filepath.FromSlash(f.rel)), f.content, force)
		if err != nil {
			return err
		}
		g.record(result, f.rel, action)
		g.logger.Debug("file", "path", f.rel, "set", f.set, "action", string(action))
	}

	gitignore := filepath.Join(c.Dir, GitignoreFile)
	for _, b := range blocks {
		action, err := output.EnsureBlock(gitignore, b.marker, b.body)
		if err != nil {
			return err
		}
		g.telemetry.RecordFile(string(action))
		if action != output.ActionSkipped {
			result.Blocks = append(result.Blocks, b.marker)
		}
		g.logger.Debug("gitignore block", "marker", b.marker, "action", string(action))
	}
	return nil
}

// preview fills result with what write would do, without touching disk.
func (g *Generator) preview(c contest.Contest, files []plannedFile, blocks []plannedBlock, force bool, result *Result) {
	for _, f := range files {
		_, err := os.Stat(filepath.Join(c.Dir, filepath.FromSlash(f.rel)))
		switch {
		case err != nil:
			result.Written = append(result.Written, f.rel)
		case force:
			result.Updated = append(result.Updated, f.rel)
		default:
			result.Skipped = append(result.Skipped, f.rel)
		}
	}

	existing, _ := os.ReadFile(filepath.Join(c.Dir, GitignoreFile))
	for _, b := range blocks {
		if !output.HasBlock(string(existing), b.marker) {
			result.Blocks = append(result.Blocks, b.marker)
		}
	}
}

func (g *Generator) record(result *Result, rel string, action output.Action) {
	switch action {
	case output.ActionWritten:
		result.Written = append(result.Written, rel)
	case output.ActionUpdated:
		result.Updated = append(result.Updated, rel)
	case output.ActionSkipped:
		result.Skipped = append(result.Skipped, rel)
	}
	g.telemetry.RecordFile(string(action))
}

func (g *Generator) progress(step string) {
	if g.options.OnProgress != nil {
		g.options.OnProgress(step)
	}
}

// SupportedLanguages returns the built-in sets plus any language
// directories under the configured templates directory, sorted.
func SupportedLanguages(cfg *config.Config) []string {
	seen := make(map[string]bool)
	for _, name := range templates.List() {
		seen[name] = true
	}
	if dir := cfg.TemplatesPath(); dir != "" {
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if !e.IsDir() || e.Name() == templates.CommonSet {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, e.Name(), templates.ManifestName)); err == nil {
				seen[e.Name()] = true
			}
		}
	}
	langs := make([]string, 0, len(seen))
	for name := range seen {
		langs = append(langs, name)
	}
	sort.Strings(langs)
	return langs
}
