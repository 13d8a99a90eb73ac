// Package contest turns contest and problem metadata into placeholder
// contexts for the solution templates.
package contest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/placeholder"
)

// Example is one sample input/output pair from a problem statement.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Problem is the metadata of a single task.
type Problem struct {
	ID       string    `json:"-"`
	Title    string    `json:"title,omitempty"`
	URL      string    `json:"url,omitempty"`
	Examples []Example `json:"examples,omitempty"`

	// Cached reports whether the metadata came from a cache file.
	Cached bool `json:"-"`
}

// Contest identifies a contest and where its files live.
type Contest struct {
	// ID is the normalized, lowercase contest id (e.g. "abc421"). It is
	// also the Java package name.
	ID string

	// Dir is the contest workspace directory.
	Dir string
}

// NormalizeID lowercases and validates a contest id. IDs may contain
// letters, digits, '_' and '-', and must start with a letter.
func NormalizeID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	valid := id != ""
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case (r >= '0' && r <= '9') || r == '_' || r == '-':
			if i == 0 {
				valid = false
			}
		default:
			valid = false
		}
	}
	if !valid {
		return "", errors.New("E143").
			WithDetail(fmt.Sprintf("%q is not a contest id", raw)).
			WithSuggestion("Use the id from the contest URL, e.g. abc421")
	}
	return id, nil
}

// DirName returns the workspace directory name for a contest id.
func DirName(id string) string {
	return strings.ToUpper(id)
}

// ParseProblems splits a comma separated list ("a,b,C") into uppercase
// problem IDs, dropping blanks and duplicates.
func ParseProblems(list string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(list, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// URLs renders contest and task page URLs from placeholder patterns over
// contest.id and problem.id.
type URLs struct {
	contest *placeholder.Template
	task    *placeholder.Template
}

// NewURLs parses the contest and task URL patterns.
func NewURLs(contestPattern, taskPattern string) (*URLs, error) {
	c, err := placeholder.Parse("contestURL", contestPattern)
	if err != nil {
		return nil, err
	}
	t, err := placeholder.Parse("taskURL", taskPattern)
	if err != nil {
		return nil, err
	}
	return &URLs{contest: c, task: t}, nil
}

// Contest returns the contest page URL.
func (u *URLs) Contest(contestID string) (string, error) {
	return u.contest.Render(placeholder.Context{"contest.id": contestID})
}

// Task returns the problem page URL.
func (u *URLs) Task(contestID, problemID string) (string, error) {
	return u.task.Render(placeholder.Context{
		"contest.id": contestID,
		"problem.id": problemID,
	})
}

// CachePath returns the metadata file for a problem.
func CachePath(dir, cacheDir, problemID string) string {
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(dir, cacheDir)
	}
	return filepath.Join(cacheDir, problemID+".json")
}

// LoadProblem reads cached metadata for problemID. When no cache file
// exists the problem gets a default title and its task URL.
func LoadProblem(c Contest, cacheDir, problemID string, urls *URLs) (Problem, error) {
	p := Problem{ID: problemID}

	path := CachePath(c.Dir, cacheDir, problemID)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &p); err != nil {
			return Problem{}, errors.New("E121").
				WithDetail("Failed to parse " + path + ": " + err.Error())
		}
		p.ID = problemID
		p.Cached = true
	case !os.IsNotExist(err):
		return Problem{}, errors.New("E121").WithDetail(path).Wrap(err)
	}

	if p.Title == "" {
		p.Title = "Problem " + problemID
	}
	if p.URL == "" {
		u, err := urls.Task(c.ID, problemID)
		if err != nil {
			return Problem{}, err
		}
		p.URL = u
	}
	return p, nil
}

// Meta is contest-level metadata cached in contest.json.
type Meta struct {
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
	URL   string `json:"url,omitempty"`
}

// LoadMeta reads contest.json from the cache directory. Missing fields
// fall back to the upper-cased id and the contest URL.
func LoadMeta(c Contest, cacheDir string, urls *URLs) (Meta, error) {
	var m Meta
	path := CachePath(c.Dir, cacheDir, "contest")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &m); err != nil {
			return Meta{}, errors.New("E121").
				WithDetail("Failed to parse " + path + ": " + err.Error())
		}
	case !os.IsNotExist(err):
		return Meta{}, errors.New("E121").WithDetail(path).Wrap(err)
	}

	if m.Title == "" {
		m.Title = DirName(c.ID)
	}
	if m.URL == "" {
		u, err := urls.Contest(c.ID)
		if err != nil {
			return Meta{}, err
		}
		m.URL = u
	}
	return m, nil
}

// Context builds the placeholder context for one problem's solution files.
//
//	content.contest   contest id, lowercase (Java package)
//	content.Name      problem id, e.g. "A" (class name)
//	content.problem   same as content.Name
//	content.title     problem title
//	content.url       problem page URL
//	content.examples  number of sample cases
//	content.sampleN.input / content.sampleN.output for each sample, 1-based
func Context(c Contest, p Problem) placeholder.Context {
	ctx := placeholder.Context{
		"content.contest":  c.ID,
		"content.Name":     p.ID,
		"content.problem":  p.ID,
		"content.title":    p.Title,
		"content.url":      p.URL,
		"content.examples": strconv.Itoa(len(p.Examples)),
	}
	for i, ex := range p.Examples {
		key := "content.sample" + strconv.Itoa(i+1)
		ctx[key+".input"] = StripLastNewline(ex.Input)
		ctx[key+".output"] = StripLastNewline(ex.Output)
	}
	return ctx
}

// ReadmeContext builds the context for the contest README. The problem
// table is rendered here and passed as a single opaque value.
func ReadmeContext(c Contest, m Meta, problems []Problem) placeholder.Context {
	title := m.Title
	if title == "" {
		title = DirName(c.ID)
	}
	var table strings.Builder
	table.WriteString("| # | Problem |\n|---|---|\n")
	for _, p := range problems {
		fmt.Fprintf(&table, "| %s | [%s](%s) |\n", p.ID, p.Title, p.URL)
	}
	return placeholder.Context{
		"content.contest":  title,
		"content.id":       c.ID,
		"content.date":     m.Date,
		"content.url":      m.URL,
		"content.problems": table.String(),
	}
}

// StripLastNewline drops a single trailing "\n" from s.
func StripLastNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
