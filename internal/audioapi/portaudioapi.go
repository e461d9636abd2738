package audioapi

import (
	"fmt"
	"log/slog"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice/device"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
)

// An AudioIODeviceAPI over the PortAudio library.
// PortAudio is initialized once when the API is created and terminated by Terminate.
type PortAudioApi struct {
	logger     *slog.Logger
	properties audiodevice.DeviceProperties
}

func NewPortAudioApi(properties audiodevice.DeviceProperties) (*PortAudioApi, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"portaudio api uuid", uuid,
	)

	if err := properties.Validate(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Error("failed to initialize portaudio", "err", err)
		return nil, device.WrapPortAudioError(err)
	}
	logger.Debug("initialized portaudio", "version", portaudio.VersionText())

	return &PortAudioApi{
		logger:     logger,
		properties: properties,
	}, nil
}

// Lists every PortAudio device with at least one output channel.
// The device ID is the PortAudio device index.
func (api *PortAudioApi) OutputDevices() []AudioIODevice {
	devices, err := portaudio.Devices()
	if err != nil {
		api.logger.Error("failed to list devices", "err", err)
		return nil
	}

	outputDevices := make([]AudioIODevice, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels <= 0 {
			continue
		}
		outputDevices = append(outputDevices, AudioIODevice{
			ID:   d.Index,
			Name: d.Name,
			DeviceProperties: audiodevice.DeviceProperties{
				SampleRate:  int(d.DefaultSampleRate),
				NumChannels: d.MaxOutputChannels,
			},
		})
	}
	return outputDevices
}

func (api *PortAudioApi) InitOutputStreamFromID(
	ioDevice AudioIODevice,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		api.logger.Error("failed to list devices", "err", err)
		return nil, device.WrapPortAudioError(err)
	}

	var deviceInfo *portaudio.DeviceInfo
	for _, d := range devices {
		if d.Index == ioDevice.ID && d.MaxOutputChannels > 0 {
			deviceInfo = d
			break
		}
	}
	if deviceInfo == nil {
		api.logger.Error("no output device with id", "id", ioDevice.ID)
		return nil, fmt.Errorf("%w: %d", errNoDeviceWithID, ioDevice.ID)
	}

	return device.NewPortAudioOutputDevice(deviceInfo, api.properties, framesPerBuffer, callback)
}

func (api *PortAudioApi) InitDefaultOutputStream(
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	if _, err := portaudio.DefaultOutputDevice(); err != nil {
		api.logger.Error("no default output device", "err", err)
		return nil, errNoDefaultDevice
	}
	return device.NewPortAudioOutputDevice(nil, api.properties, framesPerBuffer, callback)
}

func (api *PortAudioApi) Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		api.logger.Error("failed to terminate portaudio", "err", err)
		return device.WrapPortAudioError(err)
	}
	api.logger.Debug("terminated portaudio")
	return nil
}
