package device

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
)

const bytesPerSample = 4 // float32

// OtoOutputDevice plays audio to speakers using oto.
// It implements the AudioOutputStream interface.
//
// oto pulls audio through an io.Reader rather than a callback,
// so the device adapts Read into calls of the MixCallback in blocks of at most
// framesPerBuffer frames, encoding the result as little-endian float32.
type OtoOutputDevice struct {
	logger *slog.Logger
	uuid   uuid.UUID

	player          *oto.Player
	properties      audiodevice.DeviceProperties
	framesPerBuffer int
	callback        audiodevice.MixCallback

	// Pre-allocated so Read never allocates on oto's audio goroutine.
	block []float32

	shutdownOnce sync.Once
	closeErr     error
}

// NewOtoOutputDevice creates a player on ctx that pulls audio from callback.
// ctx must have been created with properties and oto.FormatFloat32LE.
func NewOtoOutputDevice(
	ctx *oto.Context,
	properties audiodevice.DeviceProperties,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (*OtoOutputDevice, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"oto output device uuid", uuid,
	)

	if err := properties.Validate(); err != nil {
		return nil, err
	}
	if framesPerBuffer <= 0 {
		return nil, errors.New("frames per buffer must be positive")
	}

	device := &OtoOutputDevice{
		logger:          logger,
		uuid:            uuid,
		properties:      properties,
		framesPerBuffer: framesPerBuffer,
		callback:        callback,
		block:           make([]float32, framesPerBuffer*properties.NumChannels),
	}
	device.player = ctx.NewPlayer(device)

	logger.Debug(
		"initialized oto output device",
		"sampleRate", properties.SampleRate,
		"channels", properties.NumChannels,
		"framesPerBuffer", framesPerBuffer,
	)
	return device, nil
}

// Read implements io.Reader for the oto player.
// It is called from oto's audio goroutine and never returns an error.
func (d *OtoOutputDevice) Read(p []byte) (int, error) {
	bytesPerFrame := bytesPerSample * d.properties.NumChannels
	frames := len(p) / bytesPerFrame

	written := 0
	for frames > 0 {
		n := min(frames, d.framesPerBuffer)
		block := d.block[:n*d.properties.NumChannels]
		d.callback(block)
		for _, sample := range block {
			binary.LittleEndian.PutUint32(p[written:], math.Float32bits(sample))
			written += bytesPerSample
		}
		frames -= n
	}

	// A trailing partial frame is padded with silence.
	clear(p[written:])
	return len(p), nil
}

func (d *OtoOutputDevice) Start() error {
	d.player.Play()
	d.logger.Info("oto output device started")
	return nil
}

func (d *OtoOutputDevice) Stop() error {
	d.player.Pause()
	d.logger.Debug("oto output device stopped")
	return d.player.Err()
}

func (d *OtoOutputDevice) Close() error {
	d.logger.Debug("shutdown called")
	d.shutdownOnce.Do(func() {
		d.closeErr = d.player.Close()
		if d.closeErr == nil {
			d.logger.Info("oto output device closed")
		}
	})
	return d.closeErr
}

func (d *OtoOutputDevice) GetDeviceProperties() audiodevice.DeviceProperties {
	return d.properties
}
