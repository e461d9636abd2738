package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
)

// PortAudioOutputDevice plays audio to speakers using PortAudio.
// It implements the AudioOutputStream interface.
//
// PortAudio must be initialized (portaudio.Initialize) before a device is created,
// and terminated only after every device has been closed.
type PortAudioOutputDevice struct {
	logger *slog.Logger
	uuid   uuid.UUID

	stream          *portaudio.Stream
	properties      audiodevice.DeviceProperties
	framesPerBuffer int

	shutdownOnce sync.Once
	closeErr     error
}

// NewPortAudioOutputDevice opens (but does not start) an output-only stream on the given
// device, or on the default output device if deviceInfo is nil.
//
// The callback is invoked by PortAudio's realtime thread with framesPerBuffer
// interleaved stereo frames at a time.
func NewPortAudioOutputDevice(
	deviceInfo *portaudio.DeviceInfo,
	properties audiodevice.DeviceProperties,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (*PortAudioOutputDevice, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"portaudio output device uuid", uuid,
	)

	if err := properties.Validate(); err != nil {
		return nil, err
	}

	paCallback := func(out []float32) {
		callback(out)
	}

	var stream *portaudio.Stream
	var err error
	if deviceInfo == nil {
		stream, err = portaudio.OpenDefaultStream(
			0,
			properties.NumChannels,
			float64(properties.SampleRate),
			framesPerBuffer,
			paCallback,
		)
	} else {
		params := portaudio.StreamParameters{
			Output: portaudio.StreamDeviceParameters{
				Device:   deviceInfo,
				Channels: properties.NumChannels,
				Latency:  deviceInfo.DefaultLowOutputLatency,
			},
			SampleRate:      float64(properties.SampleRate),
			FramesPerBuffer: framesPerBuffer,
		}
		stream, err = portaudio.OpenStream(params, paCallback)
	}
	if err != nil {
		logger.Error("failed to open portaudio stream", "err", err)
		return nil, fmt.Errorf("failed to open portaudio stream: %w", WrapPortAudioError(err))
	}

	logger.Debug(
		"initialized portaudio output device",
		"sampleRate", properties.SampleRate,
		"channels", properties.NumChannels,
		"framesPerBuffer", framesPerBuffer,
	)

	return &PortAudioOutputDevice{
		logger:          logger,
		uuid:            uuid,
		stream:          stream,
		properties:      properties,
		framesPerBuffer: framesPerBuffer,
	}, nil
}

func (d *PortAudioOutputDevice) Start() error {
	if err := d.stream.Start(); err != nil {
		d.logger.Error("failed to start portaudio stream", "err", err)
		return fmt.Errorf("failed to start portaudio stream: %w", WrapPortAudioError(err))
	}
	d.logger.Info("portaudio output device started")
	return nil
}

func (d *PortAudioOutputDevice) Stop() error {
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", WrapPortAudioError(err))
	}
	d.logger.Debug("portaudio output device stopped")
	return nil
}

func (d *PortAudioOutputDevice) Close() error {
	d.logger.Debug("shutdown called")
	d.shutdownOnce.Do(func() {
		if err := d.stream.Close(); err != nil {
			d.closeErr = fmt.Errorf("failed to close portaudio stream: %w", WrapPortAudioError(err))
			return
		}
		d.logger.Info("portaudio output device closed")
	})
	return d.closeErr
}

func (d *PortAudioOutputDevice) GetDeviceProperties() audiodevice.DeviceProperties {
	return d.properties
}

// Wrap a PortAudio error in an audiodevice.BackendError carrying its error code.
// Other errors are returned unchanged.
func WrapPortAudioError(err error) error {
	var paErr portaudio.Error
	if errors.As(err, &paErr) {
		return &audiodevice.BackendError{
			Backend: "portaudio",
			Code:    int(paErr),
			Err:     err,
		}
	}
	return err
}
