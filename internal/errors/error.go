package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/vango-dev/rstate/pkg/reactive"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryDocument Category = "document"
	CategoryConfig   Category = "config"
	CategorySelector Category = "selector"
	CategoryScript   Category = "script"
	CategoryCLI      Category = "cli"
)

// Location represents a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// RStateError is a structured error with a code, location and hints.
type RStateError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (document, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in the input the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// contextStart is the line number of Context[0], when known.
	contextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct form.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RStateError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RStateError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and reads the lines around it.
func (e *RStateError) WithLocation(file string, line, column int) *RStateError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.contextStart = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RStateError) WithSuggestion(s string) *RStateError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *RStateError) WithExample(ex string) *RStateError {
	e.Example = ex
	return e
}

// WithDetail replaces the detailed explanation.
func (e *RStateError) WithDetail(d string) *RStateError {
	e.Detail = d
	return e
}

// WithContext sets the context lines directly.
func (e *RStateError) WithContext(lines []string) *RStateError {
	e.Context = lines
	e.contextStart = 0
	return e
}

// Wrap wraps another error.
func (e *RStateError) Wrap(err error) *RStateError {
	e.Wrapped = err
	return e
}

// readContextLines returns the lines around targetLine and the number of
// the first one.
func readContextLines(filename string, targetLine, contextSize int) ([]string, int) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := max(1, targetLine-contextSize/2)
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines, startLine
}

// New creates an RStateError from a registered error code.
func New(code string) *RStateError {
	template, ok := registry[code]
	if !ok {
		return &RStateError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RStateError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new RStateError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RStateError {
	return &RStateError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an RStateError. Errors that already
// are one are returned as-is, and state tree errors get their own code
// instead of the fallback.
func FromError(err error, code string) *RStateError {
	if err == nil {
		return nil
	}
	var re *RStateError
	if stderrors.As(err, &re) {
		return re
	}
	if c := codeOf(err); c != "" {
		code = c
	}
	return New(code).Wrap(err)
}

// codeOf maps state tree sentinel errors to their codes.
func codeOf(err error) string {
	switch {
	case stderrors.Is(err, reactive.ErrPathNotFound):
		return "E001"
	case stderrors.Is(err, reactive.ErrNotContainer):
		return "E002"
	case stderrors.Is(err, reactive.ErrInvalidPath):
		return "E003"
	case stderrors.Is(err, reactive.ErrIndexOutOfRange):
		return "E004"
	case stderrors.Is(err, reactive.ErrSchedulerStopped),
		stderrors.Is(err, reactive.ErrSchedulerRunning):
		return "E005"
	}
	return ""
}
