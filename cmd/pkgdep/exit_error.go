// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// Exit codes.
const (
	ExitFailure = 1
	// ExitPartial reports a run that finished but could not handle every item.
	ExitPartial = 2
)

// ExitError signals a non-zero exit code without calling os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
