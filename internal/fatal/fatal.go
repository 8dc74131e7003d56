// Package fatal defines the error classes that abort a goowl run.
//
// goowl never recovers from an error in its own pipeline. Every failure is
// wrapped in one of two classes so that the abort site can tell a broken build
// environment apart from a defect in goowl itself:
//
//   - [EnvironmentError]: a source file could not be resolved or read.
//   - [InternalToolingError]: encoding, scheduling or an analysis unit failed.
//
// Errors reported by the host (load and type errors) are not wrapped here;
// they reach the user through the host's own diagnostics.
package fatal

import (
	"errors"
	"fmt"
)

// Class names an error class.
type Class string

// Error classes.
const (
	Environment Class = "environment"
	Internal    Class = "internal"
	Unknown     Class = "unknown"
)

// Exit codes used when aborting.
const (
	ExitInternal    = 1
	ExitEnvironment = 2
)

// EnvironmentError reports an unresolved or unreadable source file.
type EnvironmentError struct {
	Op   string // operation, e.g. "read source"
	Path string // file involved, if any
	Err  error
}

func (e *EnvironmentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("environment: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("environment: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// InternalToolingError reports a defect in goowl rather than in analyzed code.
type InternalToolingError struct {
	Op      string // operation, e.g. "encode fragment"
	Subject string // task id, function id or file name
	Err     error
}

func (e *InternalToolingError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("internal: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("internal: %s (%s): %v", e.Op, e.Subject, e.Err)
}

func (e *InternalToolingError) Unwrap() error { return e.Err }

// Env wraps err as an EnvironmentError.
func Env(op, path string, err error) error {
	return &EnvironmentError{Op: op, Path: path, Err: err}
}

// Internalf builds an InternalToolingError with a formatted cause.
func Internalf(op, subject, format string, args ...any) error {
	return &InternalToolingError{Op: op, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Wrap wraps err as an InternalToolingError. Errors that already carry a class
// are returned unchanged.
func Wrap(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	if ClassOf(err) != Unknown {
		return err
	}

	return &InternalToolingError{Op: op, Subject: subject, Err: err}
}

// ClassOf reports the class of err.
func ClassOf(err error) Class {
	var envErr *EnvironmentError
	if errors.As(err, &envErr) {
		return Environment
	}

	var intErr *InternalToolingError
	if errors.As(err, &intErr) {
		return Internal
	}

	return Unknown
}

// ExitCode maps err to the process exit code used on abort.
func ExitCode(err error) int {
	if ClassOf(err) == Environment {
		return ExitEnvironment
	}

	return ExitInternal
}
