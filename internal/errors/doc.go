// Package errors provides structured, coded errors for the rstate command
// line and its loaders.
//
// Each error has a code (e.g. "E101") registered with a category, a short
// message and a longer explanation. Errors can carry the location in the
// offending file, a hint and an example, and wrap the underlying cause so
// errors.Is and errors.As keep working.
//
// # Error Codes
//
//   - E001-E019: state tree runtime errors (paths, scheduler)
//   - E100-E119: state documents
//   - E120-E129: configuration
//   - E130-E139: selector expressions
//   - E140-E149: mutation scripts
//   - E150-E169: command line and inspector
//
// # Usage
//
//	err := errors.New("E101").
//	    WithLocation("state.yaml", 4, 3).
//	    WithSuggestion("Indent nested keys with spaces, not tabs").
//	    Wrap(cause)
//
//	fmt.Print(err.Format())
package errors
