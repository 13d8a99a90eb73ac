package placeholder

import (
	"fmt"
	"strings"

	"github.com/vango-dev/contestgen/internal/errors"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
	filterSep  = "|"
)

var (
	// ErrUnresolvedPlaceholder is wrapped by render errors for paths
	// missing from the context.
	ErrUnresolvedPlaceholder = errors.Sentinel("unresolved placeholder")

	// ErrMalformedTemplate is wrapped by parse errors.
	ErrMalformedTemplate = errors.Sentinel("malformed template")
)

// SegmentKind tags a Segment as literal text or a placeholder.
type SegmentKind int

const (
	Literal SegmentKind = iota
	Placeholder
)

func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Placeholder:
		return "placeholder"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one piece of a parsed template.
type Segment struct {
	Kind SegmentKind

	// Text is the literal text, or the raw placeholder including its
	// delimiters.
	Text string

	// Path and Filters are set for placeholders only.
	Path    string
	Filters []string

	// Line and Column locate the segment's first byte, 1-based.
	Line   int
	Column int

	funcs []Filter
}

// Template is an immutable parsed template. It is safe for concurrent use.
type Template struct {
	name     string
	src      string
	segments []Segment
}

// Option configures Parse.
type Option func(*parseConfig)

type parseConfig struct {
	filters map[string]Filter
}

// WithFilters makes extra filters available to the template, overriding
// built-ins of the same name.
func WithFilters(filters map[string]Filter) Option {
	return func(cfg *parseConfig) {
		for name, fn := range filters {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			cfg.filters[name] = fn
		}
	}
}

// Parse splits src into literal and placeholder segments. name is used in
// error locations only.
func Parse(name, src string, opts ...Option) (*Template, error) {
	cfg := parseConfig{filters: builtinFilters()}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Template{name: name, src: src}
	pos := newPositioner(src)

	i := 0
	for i < len(src) {
		j := strings.Index(src[i:], openDelim)
		if j < 0 {
			t.appendLiteral(src[i:], pos, i)
			break
		}
		if j > 0 {
			t.appendLiteral(src[i:i+j], pos, i)
		}

		start := i + j
		bodyStart := start + len(openDelim)
		k := strings.Index(src[bodyStart:], closeDelim)
		if k < 0 {
			return nil, t.malformed(pos, start, "placeholder opened but never closed")
		}
		end := bodyStart + k + len(closeDelim)

		seg, err := t.parsePlaceholder(src[start:end], src[bodyStart:bodyStart+k], cfg.filters, pos, start)
		if err != nil {
			return nil, err
		}
		t.segments = append(t.segments, seg)
		i = end
	}

	return t, nil
}

// MustParse is like Parse but panics on error. It is meant for templates
// compiled into the binary.
func MustParse(name, src string, opts ...Option) *Template {
	t, err := Parse(name, src, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) appendLiteral(text string, pos *positioner, offset int) {
	line, col := pos.at(offset)
	t.segments = append(t.segments, Segment{Kind: Literal, Text: text, Line: line, Column: col})
}

func (t *Template) parsePlaceholder(raw, body string, filters map[string]Filter, pos *positioner, offset int) (Segment, error) {
	parts := strings.Split(body, filterSep)
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return Segment{}, t.malformed(pos, offset, "placeholder has an empty path")
	}
	if !validPath(path) {
		return Segment{}, t.malformed(pos, offset, fmt.Sprintf("%q is not a dotted path", path))
	}

	line, col := pos.at(offset)
	seg := Segment{Kind: Placeholder, Text: raw, Path: path, Line: line, Column: col}
	for _, p := range parts[1:] {
		name := strings.TrimSpace(p)
		fn, ok := filters[name]
		if !ok {
			return Segment{}, t.malformed(pos, offset, fmt.Sprintf("unknown filter %q", name)).
				WithSuggestion("Available filters: " + strings.Join(filterNames(filters), ", "))
		}
		seg.Filters = append(seg.Filters, name)
		seg.funcs = append(seg.funcs, fn)
	}
	return seg, nil
}

func (t *Template) malformed(pos *positioner, offset int, detail string) *errors.ContestgenError {
	line, col := pos.at(offset)
	return errors.New("E101").
		WithSource(t.name, t.src, line, col).
		WithDetail(detail).
		WithSuggestion("Placeholders look like {{scope.field}} and must be closed with }}").
		Wrap(ErrMalformedTemplate)
}

// Name returns the name given to Parse.
func (t *Template) Name() string { return t.name }

// Source returns the unparsed template text.
func (t *Template) Source() string { return t.src }

// Segments returns a copy of the parsed segments.
func (t *Template) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Paths returns each placeholder path once, in order of first appearance.
func (t *Template) Paths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, seg := range t.segments {
		if seg.Kind != Placeholder || seen[seg.Path] {
			continue
		}
		seen[seg.Path] = true
		paths = append(paths, seg.Path)
	}
	return paths
}

// Missing returns the paths that ctx does not resolve, in order of first
// appearance.
func (t *Template) Missing(ctx Context) []string {
	var missing []string
	for _, p := range t.Paths() {
		if _, ok := ctx[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// Render substitutes every placeholder with its value from ctx. It fails on
// the first placeholder whose path ctx does not resolve; nothing is
// returned in that case.
func (t *Template) Render(ctx Context) (string, error) {
	var b strings.Builder
	b.Grow(len(t.src))
	for _, seg := range t.segments {
		if seg.Kind == Literal {
			b.WriteString(seg.Text)
			continue
		}
		v, ok := ctx[seg.Path]
		if !ok {
			return "", errors.New("E100").
				WithSource(t.name, t.src, seg.Line, seg.Column).
				WithDetail(fmt.Sprintf("no value for %q", seg.Path)).
				WithSuggestion(fmt.Sprintf("Provide it with --set %s=...", seg.Path)).
				Wrap(ErrUnresolvedPlaceholder)
		}
		for _, fn := range seg.funcs {
			v = fn(v)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// Render parses src and renders it against ctx in one step.
func Render(src string, ctx Context) (string, error) {
	t, err := Parse("", src)
	if err != nil {
		return "", err
	}
	return t.Render(ctx)
}

// validPath reports whether p is one or more dot-separated segments of
// letters, digits, '_' or '-'.
func validPath(p string) bool {
	if p == "" {
		return false
	}
	for _, seg := range strings.Split(p, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// positioner maps byte offsets to 1-based line and column numbers.
type positioner struct {
	lineStarts []int
}

func newPositioner(src string) *positioner {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &positioner{lineStarts: starts}
}

func (p *positioner) at(offset int) (line, col int) {
	lo, hi := 0, len(p.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - p.lineStarts[lo] + 1
}
