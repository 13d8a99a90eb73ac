// Package errors provides coded, actionable error messages for contestgen.
//
// Every user-facing failure carries a code (e.g. "E100") registered with a
// category and a short message. Render errors also carry the template
// location and the surrounding source lines so the CLI can point at the
// offending placeholder.
//
// # Categories
//
//   - render: placeholder resolution and template syntax
//   - config: contestgen.json and context files
//   - cli: arguments, unknown template sets, missing files
//   - output: file writes
//
// # Usage
//
//	err := errors.New("E100").
//	    WithSource("Main.java", src, 3, 4).
//	    WithDetail(`no value for "content.title"`).
//	    WithSuggestion("Pass --set content.title=...")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E100: Unresolved placeholder
//	//
//	//   Main.java:3:4
//	//
//	//        1 │ package {{content.contest}};
//	//        2 │
//	//   →    3 │ /* {{content.title}}
//	//          │    ^
//	//  ...
package errors
