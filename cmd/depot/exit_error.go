// SPDX-License-Identifier: MPL-2.0

package cmd

import "strconv"

// ExitError carries the process exit status out of a RunE handler. Execute
// turns it into os.Exit so handlers stay testable.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the failure behind the exit status.
func (e *ExitError) Unwrap() error { return e.Err }
