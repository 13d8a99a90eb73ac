package placeholder

import (
	"encoding/json"
	"sort"
	"strings"
)

// Filter transforms a resolved placeholder value.
type Filter func(string) string

func builtinFilters() map[string]Filter {
	return map[string]Filter{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"trim":  strings.TrimSpace,
		"java":  EscapeJavaString,
		"json":  jsonString,
	}
}

// FilterNames lists the built-in filter names in sorted order.
func FilterNames() []string {
	return filterNames(builtinFilters())
}

func filterNames(filters map[string]Filter) []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var javaEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\r", `\r`,
	"\n", `\n`,
)

// EscapeJavaString escapes s for use inside a Java "..." literal.
func EscapeJavaString(s string) string {
	return javaEscaper.Replace(s)
}

func jsonString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}
