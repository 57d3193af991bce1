// Package errors provides structured, coded errors for vstore.
//
// Every error carries a code (e.g. "E010") that maps to a short message and a
// longer explanation in the registry. Errors may wrap an underlying cause so
// errors.Is and errors.As keep working through them.
//
// # Error Categories
//
//   - runtime: failures raised while a store is delivering notifications
//   - value: malformed or immutable value trees
//   - config: configuration loading and validation
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("E020").
//	    WithDetail("listener 3 panicked: boom").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
package errors
