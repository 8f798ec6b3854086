// Package errorsx provides the small error-construction helpers shared
// across netio's internal packages, adapted from the teacher's
// internal/errors package.
package errorsx

import "fmt"

// New formats a new error, mirroring fmt.Errorf without requiring callers to
// import fmt directly.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// AsError converts a recovered panic value into an error.
func AsError(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("%v", recovered)
}
