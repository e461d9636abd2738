package audioapi

import (
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice/device"
)

// An API that lists a single output device: a .WAV file at a fixed path.
// Useful for rendering the mix on machines without a sound card.
type FileAudioIODeviceAPI struct {
	audioFilePath string
	properties    audiodevice.DeviceProperties
}

func NewFileAudioIODeviceAPI(audioFilePath string, properties audiodevice.DeviceProperties) FileAudioIODeviceAPI {
	return FileAudioIODeviceAPI{
		audioFilePath: audioFilePath,
		properties:    properties,
	}
}

func (api FileAudioIODeviceAPI) OutputDevices() []AudioIODevice {
	return []AudioIODevice{
		{
			ID:               0,
			Name:             api.audioFilePath,
			DeviceProperties: api.properties,
		},
	}
}

func (api FileAudioIODeviceAPI) InitOutputStreamFromID(
	ioDevice AudioIODevice,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	if _, err := findDevice(api.OutputDevices(), ioDevice); err != nil {
		return nil, err
	}
	return api.InitDefaultOutputStream(framesPerBuffer, callback)
}

func (api FileAudioIODeviceAPI) InitDefaultOutputStream(
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	return device.NewFileAudioOutputDevice(api.audioFilePath, api.properties, framesPerBuffer, callback)
}

func (api FileAudioIODeviceAPI) Terminate() error {
	return nil
}
