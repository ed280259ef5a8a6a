package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/webglsl/shader"
)

// Process exit codes.
const (
	exitFailure      = 1
	exitConfig       = 2
	exitMissingInput = 3
)

// ExitError carries a process exit code out of a RunE handler.
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

// exitError classifies err for the process exit status.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	code := exitFailure
	if shader.IsMissingInput(err) || shader.IsMissingShaderSource(err) {
		code = exitMissingInput
	}
	return &ExitError{Code: code, Err: err}
}
