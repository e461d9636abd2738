package audiostream

import (
	"errors"
	"fmt"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
)

// Lifecycle steps reported in InitError and TeardownError.
const (
	OpOpen  = "open"
	OpStart = "start"
	OpStop  = "stop"
	OpClose = "close"
)

// The backend could not be opened or started. Fatal under MustInit.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("audio stream %s failed (code %d): %v", e.Op, e.Code(), e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// The backend error code, or audiodevice.NoBackendErrorCode if the cause carries none.
func (e *InitError) Code() int {
	return backendCode(e.Err)
}

// One or more steps of stopping and closing the stream failed.
// Shutdown still completed.
type TeardownError struct {
	Errs []error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("audio stream teardown: %v", errors.Join(e.Errs...))
}

func (e *TeardownError) Unwrap() []error {
	return e.Errs
}

func backendCode(err error) int {
	var backendErr *audiodevice.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Code
	}
	return audiodevice.NoBackendErrorCode
}
