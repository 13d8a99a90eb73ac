package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// Category groups error codes by the stage that produced them.
type Category string

const (
	CategoryRender Category = "render"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
	CategoryOutput Category = "output"
)

// Location points at a position inside a template or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line:column.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	name := l.File
	if name == "" {
		name = "<template>"
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", name, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", name, l.Line)
}

// ContestgenError is a coded error with an optional source location and a
// hint for the user.
type ContestgenError struct {
	// Code is the registered identifier (e.g. "E100").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer, case-specific explanation.
	Detail string

	Location *Location

	// Context holds the source lines surrounding Location, centered on it.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ContestgenError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ContestgenError) Unwrap() error {
	return e.Wrapped
}

// WithLocation records a file position and reads the surrounding lines
// from disk when the file exists.
func (e *ContestgenError) WithLocation(file string, line, column int) *ContestgenError {
	e.Location = &Location{File: file, Line: line, Column: column}
	if lines := readContextLines(file, line, 5); lines != nil {
		e.Context = lines
	}
	return e
}

// WithSource records a position inside an in-memory source and takes the
// surrounding lines from src.
func (e *ContestgenError) WithSource(name, src string, line, column int) *ContestgenError {
	e.Location = &Location{File: name, Line: line, Column: column}
	e.Context = sliceContextLines(strings.Split(src, "\n"), line, 5)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *ContestgenError) WithSuggestion(s string) *ContestgenError {
	e.Suggestion = s
	return e
}

// WithDetail adds a case-specific explanation.
func (e *ContestgenError) WithDetail(d string) *ContestgenError {
	e.Detail = d
	return e
}

// Wrap records the underlying cause.
func (e *ContestgenError) Wrap(err error) *ContestgenError {
	e.Wrapped = err
	return e
}

// readContextLines reads up to size lines centered on target from a file.
func readContextLines(filename string, target, size int) []string {
	if filename == "" {
		return nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > target+size/2 {
			break
		}
	}
	return sliceContextLines(lines, target, size)
}

func sliceContextLines(lines []string, target, size int) []string {
	if target < 1 || target > len(lines) {
		return nil
	}
	start := target - size/2
	if start < 1 {
		start = 1
	}
	end := target + size/2
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, 0, end-start+1)
	out = append(out, lines[start-1:end]...)
	return out
}

// contextStart returns the line number of the first Context entry.
func (e *ContestgenError) contextStart() int {
	if e.Location == nil {
		return 0
	}
	start := e.Location.Line - 5/2
	if start < 1 {
		start = 1
	}
	return start
}

// New creates an error from a registered code.
func New(code string) *ContestgenError {
	tmpl, ok := registry[code]
	if !ok {
		return &ContestgenError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ContestgenError{
		Code:     code,
		Category: tmpl.Category,
		Message:  tmpl.Message,
		DocURL:   tmpl.DocURL,
	}
}

// Newf creates an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *ContestgenError {
	return &ContestgenError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err unchanged if it already is a ContestgenError
// anywhere in its chain, and otherwise wraps it under code.
func FromError(err error, code string) *ContestgenError {
	if err == nil {
		return nil
	}
	var ce *ContestgenError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Sentinel returns a plain error value for use with Is.
func Sentinel(text string) error { return stderrors.New(text) }
