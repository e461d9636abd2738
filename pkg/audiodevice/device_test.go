package audiodevice

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		props   DeviceProperties
		wantErr bool
	}{
		{"default", DefaultDeviceProperties(), false},
		{"48kHz stereo", DeviceProperties{SampleRate: 48000, NumChannels: 2}, false},
		{"mono", DeviceProperties{SampleRate: 44100, NumChannels: 1}, true},
		{"quad", DeviceProperties{SampleRate: 44100, NumChannels: 4}, true},
		{"zero rate", DeviceProperties{SampleRate: 0, NumChannels: 2}, true},
		{"negative rate", DeviceProperties{SampleRate: -44100, NumChannels: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.props.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedProperties) {
				t.Errorf("Validate() = %v, want wrapped ErrUnsupportedProperties", err)
			}
		})
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	inner := errors.New("device unavailable")
	err := fmt.Errorf("open: %w", &BackendError{Backend: "portaudio", Code: -9996, Err: inner})

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("errors.As failed on %v", err)
	}
	if backendErr.Code != -9996 {
		t.Errorf("Code = %d, want -9996", backendErr.Code)
	}
	if !errors.Is(err, inner) {
		t.Errorf("errors.Is(err, inner) = false")
	}
}
