package placeholder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/contestgen/internal/errors"
)

// Context maps dotted paths (e.g. "content.title") to values.
type Context map[string]string

// Lookup returns the value at path.
func (c Context) Lookup(path string) (string, bool) {
	v, ok := c[path]
	return v, ok
}

// Set stores value at path, allocating the map if needed, and returns the
// context for chaining.
func (c Context) Set(path, value string) Context {
	if c == nil {
		c = Context{}
	}
	c[path] = value
	return c
}

// Merge returns a new context holding c overlaid with others, later
// entries winning.
func (c Context) Merge(others ...Context) Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Paths returns the context's paths in sorted order.
func (c Context) Paths() []string {
	paths := make([]string, 0, len(c))
	for k := range c {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// Flatten converts a nested document, as decoded from JSON or YAML, into a
// Context. Nested maps become dotted paths, sequences use their index as a
// path segment and scalars are stringified. Nil values are skipped.
func Flatten(doc map[string]any) Context {
	out := Context{}
	for k, v := range doc {
		flattenInto(out, k, v)
	}
	return out
}

func flattenInto(out Context, prefix string, v any) {
	switch val := v.(type) {
	case nil:
	case map[string]any:
		for k, child := range val {
			flattenInto(out, prefix+"."+k, child)
		}
	case map[any]any:
		for k, child := range val {
			flattenInto(out, prefix+"."+fmt.Sprint(k), child)
		}
	case []any:
		for i, child := range val {
			flattenInto(out, prefix+"."+strconv.Itoa(i), child)
		}
	case string:
		out[prefix] = val
	case float64:
		out[prefix] = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		out[prefix] = fmt.Sprint(val)
	}
}

// ParseAssignments builds a Context from "path=value" pairs as given on the
// command line. The value may be empty; the path must be a valid dotted
// path.
func ParseAssignments(pairs []string) (Context, error) {
	out := make(Context, len(pairs))
	for _, pair := range pairs {
		path, value, ok := strings.Cut(pair, "=")
		path = strings.TrimSpace(path)
		if !ok || !validPath(path) {
			return nil, errors.New("E144").
				WithDetail(fmt.Sprintf("%q is not of the form scope.field=value", pair)).
				WithSuggestion("Use --set content.title=Hello")
		}
		out[path] = value
	}
	return out, nil
}
