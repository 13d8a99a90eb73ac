package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/placeholder"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file describing a template set.
const ManifestName = "set.yaml"

// CommonSet is generated once per contest regardless of language.
const CommonSet = "common"

// CasesPath is the context path holding the joined per-sample snippets.
const CasesPath = "content.cases"

//go:embed files
var builtinFS embed.FS

// FileSpec is one entry of a set manifest.
type FileSpec struct {
	// Path is a placeholder template for the output path, relative to
	// the contest directory.
	Path string `yaml:"path"`

	// Body names the template file holding the content.
	Body string `yaml:"body"`

	// Case optionally names a snippet rendered once per sample case and
	// exposed to Body as {{content.cases}}.
	Case string `yaml:"case,omitempty"`
}

type manifest struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Gitignore   string     `yaml:"gitignore"`
	Shared      []FileSpec `yaml:"shared"`
	Problem     []FileSpec `yaml:"problem"`
}

type compiledFile struct {
	path  *placeholder.Template
	body  *placeholder.Template
	cases *placeholder.Template
}

// Set is a parsed group of templates for one language.
type Set struct {
	// Name is the set name, e.g. "java".
	Name string

	// Description describes the set.
	Description string

	// Gitignore is the set's block for the contest .gitignore.
	Gitignore string

	// Source is "builtin" or the directory the set was loaded from.
	Source string

	shared  []compiledFile
	problem []compiledFile
}

// File is a rendered output file.
type File struct {
	Path    string
	Content []byte
}

// Case is one sample input/output pair fed to case snippets.
type Case struct {
	Index  int
	Input  string
	Output string
}

var (
	builtinOnce sync.Once
	builtinSets map[string]*Set
	builtinErr  error
)

func loadBuiltins() {
	builtinSets = make(map[string]*Set)
	entries, err := fs.ReadDir(builtinFS, "files")
	if err != nil {
		builtinErr = err
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		set, err := LoadFS(builtinFS, path.Join("files", e.Name()))
		if err != nil {
			builtinErr = err
			return
		}
		set.Source = "builtin"
		builtinSets[set.Name] = set
	}
}

// Get returns a built-in set by name.
func Get(name string) (*Set, error) {
	builtinOnce.Do(loadBuiltins)
	if builtinErr != nil {
		return nil, builtinErr
	}
	set, ok := builtinSets[name]
	if !ok {
		return nil, errors.New("E142").
			WithDetail("Template set '" + name + "' not found").
			WithSuggestion("Available sets: " + strings.Join(List(), ", "))
	}
	return set, nil
}

// List returns the built-in language set names in sorted order. The
// common set is not a language and is not listed.
func List() []string {
	builtinOnce.Do(loadBuiltins)
	names := make([]string, 0, len(builtinSets))
	for name := range builtinSets {
		if name == CommonSet {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the set called name, preferring <overrideDir>/<name>
// when overrideDir is set and holds a manifest for it.
func Resolve(name, overrideDir string) (*Set, error) {
	if overrideDir != "" {
		manifestPath := filepath.Join(overrideDir, name, ManifestName)
		if _, err := os.Stat(manifestPath); err == nil {
			set, err := LoadFS(os.DirFS(overrideDir), name)
			if err != nil {
				return nil, err
			}
			set.Source = filepath.Join(overrideDir, name)
			return set, nil
		}
	}
	return Get(name)
}

// LoadFS loads the set described by dir/set.yaml in fsys. Every template
// is parsed up front, so a malformed template fails here rather than
// mid-generation.
func LoadFS(fsys fs.FS, dir string) (*Set, error) {
	manifestPath := path.Join(dir, ManifestName)
	data, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, errors.New("E145").WithDetail(manifestPath).Wrap(err)
	}

	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.New("E148").
			WithDetail("Failed to parse " + manifestPath + ": " + err.Error())
	}
	if m.Name == "" {
		m.Name = path.Base(dir)
	}

	set := &Set{Name: m.Name, Description: m.Description}
	if m.Gitignore != "" {
		raw, err := fs.ReadFile(fsys, path.Join(dir, m.Gitignore))
		if err != nil {
			return nil, errors.New("E145").WithDetail(path.Join(dir, m.Gitignore)).Wrap(err)
		}
		set.Gitignore = string(raw)
	}

	if set.shared, err = compileFiles(fsys, dir, m.Shared); err != nil {
		return nil, err
	}
	if set.problem, err = compileFiles(fsys, dir, m.Problem); err != nil {
		return nil, err
	}
	return set, nil
}

func compileFiles(fsys fs.FS, dir string, entries []FileSpec) ([]compiledFile, error) {
	out := make([]compiledFile, 0, len(entries))
	for _, entry := range entries {
		if entry.Path == "" || entry.Body == "" {
			return nil, errors.New("E148").
				WithDetail(fmt.Sprintf("%s: every file needs a path and a body", path.Join(dir, ManifestName)))
		}
		var (
			cf  compiledFile
			err error
		)
		if cf.path, err = placeholder.Parse(path.Join(dir, ManifestName), entry.Path); err != nil {
			return nil, err
		}
		if cf.body, err = parseFile(fsys, path.Join(dir, entry.Body)); err != nil {
			return nil, err
		}
		if entry.Case != "" {
			if cf.cases, err = parseFile(fsys, path.Join(dir, entry.Case)); err != nil {
				return nil, err
			}
		}
		out = append(out, cf)
	}
	return out, nil
}

func parseFile(fsys fs.FS, name string) (*placeholder.Template, error) {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.New("E145").WithDetail(name).Wrap(err)
	}
	return placeholder.Parse(name, string(src))
}

// PlanShared renders the files generated once per contest.
func (s *Set) PlanShared(ctx placeholder.Context) ([]File, error) {
	return plan(s.shared, ctx, nil)
}

// PlanProblem renders the files generated for one problem. cases feed any
// case snippets.
func (s *Set) PlanProblem(ctx placeholder.Context, cases []Case) ([]File, error) {
	return plan(s.problem, ctx, cases)
}

// FileCount returns the number of shared and per-problem files.
func (s *Set) FileCount() (shared, perProblem int) {
	return len(s.shared), len(s.problem)
}

// Paths returns every placeholder path the set's templates reference,
// sorted.
func (s *Set) Paths() []string {
	seen := make(map[string]bool)
	for _, files := range [][]compiledFile{s.shared, s.problem} {
		for _, f := range files {
			for _, t := range []*placeholder.Template{f.path, f.body, f.cases} {
				if t == nil {
					continue
				}
				for _, p := range t.Paths() {
					seen[p] = true
				}
			}
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func plan(files []compiledFile, ctx placeholder.Context, cases []Case) ([]File, error) {
	out := make([]File, 0, len(files))
	for _, f := range files {
		fileCtx := ctx
		if f.cases != nil {
			joined, err := renderCases(f.cases, ctx, cases)
			if err != nil {
				return nil, err
			}
			fileCtx = ctx.Merge(placeholder.Context{CasesPath: joined})
		}

		rel, err := f.path.Render(fileCtx)
		if err != nil {
			return nil, err
		}
		rel, err = cleanRelPath(rel)
		if err != nil {
			return nil, err
		}

		body, err := f.body.Render(fileCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Path: rel, Content: []byte(body)})
	}
	return out, nil
}

func renderCases(tmpl *placeholder.Template, ctx placeholder.Context, cases []Case) (string, error) {
	var b strings.Builder
	for _, c := range cases {
		s, err := tmpl.Render(ctx.Merge(placeholder.Context{
			"case.index":  strconv.Itoa(c.Index),
			"case.input":  c.Input,
			"case.output": c.Output,
		}))
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// cleanRelPath rejects rendered paths that are absolute or climb out of
// the contest directory.
func cleanRelPath(p string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(p))
	if p == "" || path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") || cleaned == "." {
		return "", errors.New("E147").
			WithDetail(fmt.Sprintf("%q is not a path inside the contest directory", p))
	}
	return cleaned, nil
}
