package errors

// ErrorTemplate defines a registered error code.
type ErrorTemplate struct {
	Category Category
	Message  string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/contestgen/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Render errors (E100-E119)

	"E100": {
		Category: CategoryRender,
		Message:  "Unresolved placeholder",
		DocURL:   docBase + "e100",
	},
	"E101": {
		Category: CategoryRender,
		Message:  "Malformed template",
		DocURL:   docBase + "e101",
	},

	// Configuration errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid context file",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   docBase + "e122",
	},

	// CLI errors (E140-E159)

	"E140": {
		Category: CategoryOutput,
		Message:  "Output file already exists",
		DocURL:   docBase + "e140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration not found",
		DocURL:   docBase + "e141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Unknown template set",
		DocURL:   docBase + "e142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Invalid contest id",
		DocURL:   docBase + "e143",
	},
	"E144": {
		Category: CategoryCLI,
		Message:  "Invalid context assignment",
		DocURL:   docBase + "e144",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Template file not found",
		DocURL:   docBase + "e145",
	},
	"E146": {
		Category: CategoryOutput,
		Message:  "Failed to write output",
		DocURL:   docBase + "e146",
	},
	"E147": {
		Category: CategoryOutput,
		Message:  "Unsafe output path",
		DocURL:   docBase + "e147",
	},
	"E148": {
		Category: CategoryConfig,
		Message:  "Invalid template set",
		DocURL:   docBase + "e148",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
