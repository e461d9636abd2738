package audiostream

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/audioapi"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/mixer"
	"github.com/google/uuid"
)

const DefaultFramesPerBuffer = 256

// Replaced in tests.
var exit = os.Exit

type Options struct {
	// Frames the backend requests per callback. Defaults to DefaultFramesPerBuffer.
	FramesPerBuffer int

	// Device to open. nil opens the API's default output device.
	Device *audioapi.AudioIODevice
}

// A started output stream bound to a Mixer.
type Stream struct {
	logger *slog.Logger
	uuid   uuid.UUID

	stream audiodevice.AudioOutputStream

	deinitOnce sync.Once
	deinitErr  error
}

// Open an output stream on api bound to m.Mix and start it.
//
// The stream is opened with the mixer's device properties. If the stream opens
// but fails to start, it is closed before returning.
func Init(api audioapi.AudioIODeviceAPI, m *mixer.Mixer, opts Options) (*Stream, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"audio stream uuid", uuid,
	)

	if opts.FramesPerBuffer <= 0 {
		opts.FramesPerBuffer = DefaultFramesPerBuffer
	}

	var (
		stream audiodevice.AudioOutputStream
		err    error
	)
	if opts.Device != nil {
		stream, err = api.InitOutputStreamFromID(*opts.Device, opts.FramesPerBuffer, m.Mix)
	} else {
		stream, err = api.InitDefaultOutputStream(opts.FramesPerBuffer, m.Mix)
	}
	if err != nil {
		return nil, &InitError{Op: OpOpen, Err: err}
	}

	if stream.GetDeviceProperties() != m.GetDeviceProperties() {
		stream.Close()
		return nil, &InitError{
			Op:  OpOpen,
			Err: audiodevice.ErrUnsupportedProperties,
		}
	}

	if err := stream.Start(); err != nil {
		if closeErr := stream.Close(); closeErr != nil {
			logger.Warn("failed to close stream after failed start", "err", closeErr)
		}
		return nil, &InitError{Op: OpStart, Err: err}
	}

	logger.Info(
		"audio stream started",
		"sampleRate", m.GetDeviceProperties().SampleRate,
		"channels", m.GetDeviceProperties().NumChannels,
		"framesPerBuffer", opts.FramesPerBuffer,
	)

	return &Stream{
		logger: logger,
		uuid:   uuid,
		stream: stream,
	}, nil
}

// Init, but on failure log it, terminate api and exit the process with status 1.
// Audio is essential, so there is nothing to fall back to.
func MustInit(api audioapi.AudioIODeviceAPI, m *mixer.Mixer, opts Options) *Stream {
	s, err := Init(api, m, opts)
	if err != nil {
		var initErr *InitError
		if errors.As(err, &initErr) {
			slog.Error(
				"failed to initialize audio stream",
				"op", initErr.Op,
				"code", initErr.Code(),
				"err", initErr.Err,
			)
		} else {
			slog.Error("failed to initialize audio stream", "err", err)
		}
		if err := api.Terminate(); err != nil {
			slog.Warn("failed to terminate audio api", "err", err)
		}
		exit(1)
	}
	return s
}

// Stop then close the stream. Both steps always run; failures are logged and
// returned together as a *TeardownError. Safe to call more than once.
func (s *Stream) Deinit() error {
	s.deinitOnce.Do(func() {
		var errs []error
		if err := s.stream.Stop(); err != nil {
			s.logger.Error("failed to stop audio stream", "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", OpStop, err))
		}
		if err := s.stream.Close(); err != nil {
			s.logger.Error("failed to close audio stream", "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", OpClose, err))
		}
		if len(errs) > 0 {
			s.deinitErr = &TeardownError{Errs: errs}
			return
		}
		s.logger.Info("audio stream closed")
	})
	return s.deinitErr
}
