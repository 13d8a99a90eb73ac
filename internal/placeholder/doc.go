// Package placeholder parses and renders text templates containing
// {{scope.field}} placeholders.
//
// A template is parsed once into a sequence of literal and placeholder
// segments, then rendered any number of times against a Context that maps
// dotted paths to string values:
//
//	tmpl, err := placeholder.Parse("Main.java", src)
//	if err != nil {
//	    return err // MalformedTemplate
//	}
//	out, err := tmpl.Render(placeholder.Context{
//	    "content.contest": "abc421",
//	    "content.Name":    "A",
//	})
//
// Literal text is copied byte for byte. Each placeholder is replaced
// exactly once by the value at its path; values are never re-scanned, so a
// value containing "{{" is emitted as-is.
//
// # Filters
//
// A placeholder may pipe its value through filters, applied left to right:
//
//	{{content.Name | lower}}
//	{{content.title | java}}
//
// Built-in filters: lower, upper, trim, java (escape for a Java string
// literal), json (encode as a JSON string literal).
//
// # Errors
//
// Parse fails with ErrMalformedTemplate when a "{{" is never closed, the
// path is empty or not a dotted identifier, or a filter is unknown. Render
// fails with ErrUnresolvedPlaceholder when a path has no value. Both are
// reported as coded errors carrying the template name, line and column.
package placeholder
