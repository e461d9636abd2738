package audioapi

import (
	"log/slog"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice/device"
	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
)

const otoDeviceID = 0

// An AudioIODeviceAPI over oto, which only exposes the system default output.
//
// oto allows a single context per process, so only one OtoApi may be created.
type OtoApi struct {
	logger     *slog.Logger
	ctx        *oto.Context
	properties audiodevice.DeviceProperties
}

// Create the oto context, buffering about framesPerBuffer frames, and wait until it is ready.
func NewOtoApi(properties audiodevice.DeviceProperties, framesPerBuffer int) (*OtoApi, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"oto api uuid", uuid,
	)

	if err := properties.Validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   properties.SampleRate,
		ChannelCount: properties.NumChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(framesPerBuffer) * time.Second / time.Duration(properties.SampleRate),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		logger.Error("failed to create oto context", "err", err)
		return nil, &audiodevice.BackendError{Backend: "oto", Code: audiodevice.NoBackendErrorCode, Err: err}
	}
	<-ready

	logger.Debug("oto context ready", "bufferSize", op.BufferSize)
	return &OtoApi{
		logger:     logger,
		ctx:        ctx,
		properties: properties,
	}, nil
}

func (api *OtoApi) OutputDevices() []AudioIODevice {
	return []AudioIODevice{
		{
			ID:               otoDeviceID,
			Name:             "oto default output",
			DeviceProperties: api.properties,
		},
	}
}

func (api *OtoApi) InitOutputStreamFromID(
	ioDevice AudioIODevice,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	if _, err := findDevice(api.OutputDevices(), ioDevice); err != nil {
		return nil, err
	}
	return api.InitDefaultOutputStream(framesPerBuffer, callback)
}

func (api *OtoApi) InitDefaultOutputStream(
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	return device.NewOtoOutputDevice(api.ctx, api.properties, framesPerBuffer, callback)
}

// Suspend the oto context. oto contexts cannot be destroyed.
func (api *OtoApi) Terminate() error {
	if err := api.ctx.Suspend(); err != nil {
		api.logger.Error("failed to suspend oto context", "err", err)
		return &audiodevice.BackendError{Backend: "oto", Code: audiodevice.NoBackendErrorCode, Err: err}
	}
	return nil
}
