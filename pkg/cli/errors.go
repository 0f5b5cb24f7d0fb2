package cli

import (
	"errors"
	"fmt"
)

// Exit codes of the discovery commands. check-discovery exits with the
// monitoring state of its result instead.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

var (
	errLoadConfig       = errors.New("failed to load configuration")
	errDiscoveryFailed  = errors.New("discovery failed")
	errNegativeInterval = errors.New("interval must not be negative")
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}
