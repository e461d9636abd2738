package audiodevice

import "fmt"

// NoBackendErrorCode is reported when an error did not originate from an audio backend.
const NoBackendErrorCode = -1

// BackendError carries the numeric error code of the underlying audio backend
// (e.g. a PortAudio PaError) alongside the error itself.
type BackendError struct {
	Backend string
	Code    int
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s error %d: %v", e.Backend, e.Code, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
