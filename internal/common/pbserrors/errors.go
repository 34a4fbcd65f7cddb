// Package pbserrors contains the error types returned by the qtools core.
//
// The core never retries and never returns partial results: on malformed input it returns one of
// the errors below, usually wrapped with github.com/pkg/errors to record a stack trace. Callers
// should use errors.As to look through the chain. ExitCode maps an error chain onto the process
// exit status used by the command-line tool.
//
// If multiple errors occur in some function (e.g., several invalid queue classes in a
// configuration file), that function should return a multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates the individual errors.
package pbserrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Process exit codes, following sysexits.h.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 64
	ExitDataErr = 65
	ExitConfig  = 78
)

// ErrFormat is returned when a size, walltime or similar scalar text does not match its encoding.
type ErrFormat struct {
	// The encoding that was expected, e.g., "byte size" or "walltime"
	Kind string
	// The offending text
	Value string
	// Optional message included with the error message
	Message string
}

func (err *ErrFormat) Error() (s string) {
	s = fmt.Sprintf("%q is not a valid %s", err.Value, err.Kind)
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrConfig is returned when a lookup into static configuration fails, e.g., an unknown queue class,
// or when the configuration itself is inconsistent.
type ErrConfig struct {
	Name    string // Name of the configuration item, e.g., "queue"
	Value   string // The value that could not be resolved, e.g., "normalx"
	Message string
}

func (err *ErrConfig) Error() string {
	if err.Value == "" {
		// Inconsistent configuration rather than a failed lookup.
		return fmt.Sprintf("invalid %s; %s", err.Name, err.Message)
	}
	if err.Message == "" {
		return fmt.Sprintf("unknown %s %q", err.Name, err.Value)
	} else {
		return fmt.Sprintf("unknown %s %q; %s", err.Name, err.Value, err.Message)
	}
}

// ErrParse is returned when an input document does not conform to its grammar, either the JSON
// grammar after status repair or the node-dump line grammar.
//
// Line and Column are 1-based; zero means unknown.
type ErrParse struct {
	Source  string // What was being parsed, e.g., "qstat json" or "pbsnodes"
	Line    int
	Column  int
	Message string
	Err     error // Optional underlying error
}

func (err *ErrParse) Error() (s string) {
	s = fmt.Sprintf("failed to parse %s", err.Source)
	if err.Line > 0 {
		if err.Column > 0 {
			s = s + fmt.Sprintf(" at line %d, column %d", err.Line, err.Column)
		} else {
			s = s + fmt.Sprintf(" at line %d", err.Line)
		}
	}
	if err.Message != "" {
		s = s + fmt.Sprintf(": %s", err.Message)
	}
	if err.Err != nil {
		s = s + fmt.Sprintf(": %s", err.Err)
	}
	return
}

func (err *ErrParse) Unwrap() error {
	return err.Err
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the argument referred to, e.g., "ncpus"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for argument %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for argument %q; %s", err.Value, err.Name, err.Message)
	}
}

// ExitCode maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
// For a multierror the code of the first wrapped error is used.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	{
		var e *multierror.Error
		if errors.As(err, &e) && len(e.Errors) > 0 {
			return ExitCode(e.Errors[0])
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return ExitUsage
		}
	}
	{
		var e *ErrConfig
		if errors.As(err, &e) {
			return ExitConfig
		}
	}
	{
		var e *ErrFormat
		if errors.As(err, &e) {
			return ExitDataErr
		}
	}
	{
		var e *ErrParse
		if errors.As(err, &e) {
			return ExitDataErr
		}
	}

	return ExitFailure
}
