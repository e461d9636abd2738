package audiodevice

import (
	"errors"
	"fmt"
)

const (
	DefaultSampleRate  = 44100
	DefaultNumChannels = 2
)

var ErrUnsupportedProperties = errors.New("unsupported device properties")

// The audio format shared by every producer, the mixer, and the output stream.
//
// Chew only ever plays interleaved stereo at a single fixed rate. Sound assets
// are converted to these properties once, at load time.
type DeviceProperties struct {
	SampleRate  int
	NumChannels int
}

func DefaultDeviceProperties() DeviceProperties {
	return DeviceProperties{
		SampleRate:  DefaultSampleRate,
		NumChannels: DefaultNumChannels,
	}
}

// Validate the properties once at startup.
// Only stereo output with a positive sample rate is supported.
func (p DeviceProperties) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedProperties, p.SampleRate)
	}
	if p.NumChannels != DefaultNumChannels {
		return fmt.Errorf("%w: %d channels, only stereo is supported", ErrUnsupportedProperties, p.NumChannels)
	}
	return nil
}

// A MixCallback fills out with interleaved float32 frames.
//
// It is invoked on the realtime thread of the audio backend and must neither block
// nor allocate. len(out) is NumChannels times the number of frames the
// backend is asking for, at most framesPerBuffer frames.
type MixCallback func(out []float32)

// Interface for audio output streams, e.g. speakers
//
// An output stream pulls audio by calling its MixCallback from the backend's
// realtime thread for as long as the stream is started.
type AudioOutputStream interface {
	// Start pulling audio through the callback.
	Start() error

	// Stop pulling audio. A stopped stream may be started again.
	Stop() error

	// Release the backend resources of this stream.
	// It is assumed that once closed, this stream will call the callback no more.
	Close() error

	GetDeviceProperties() DeviceProperties
}
