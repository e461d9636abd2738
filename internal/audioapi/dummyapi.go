package audioapi

import (
	"sync"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice/device"
)

// A dummy API that lists only one output device, which pulls from its callback
// on a ticker and discards the audio.
//
// Errors may be injected into opening the stream and into every lifecycle step
// of the streams it creates.
//
// This API is intended to be used in testing and headless runs only!
type DummyAudioIODeviceAPI struct {
	properties audiodevice.DeviceProperties

	OpenErr      error
	StartErr     error
	StopErr      error
	CloseErr     error
	TerminateErr error

	mutex      sync.Mutex
	streams    []*device.DummyAudioOutputDevice
	terminated int
}

func NewDummyAudioIODeviceAPI(properties audiodevice.DeviceProperties) *DummyAudioIODeviceAPI {
	return &DummyAudioIODeviceAPI{
		properties: properties,
	}
}

func (api *DummyAudioIODeviceAPI) OutputDevices() []AudioIODevice {
	return []AudioIODevice{
		{
			ID:               0,
			Name:             "DummyOutput",
			DeviceProperties: api.properties,
		},
	}
}

func (api *DummyAudioIODeviceAPI) InitOutputStreamFromID(
	ioDevice AudioIODevice,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	if _, err := findDevice(api.OutputDevices(), ioDevice); err != nil {
		return nil, err
	}
	return api.InitDefaultOutputStream(framesPerBuffer, callback)
}

func (api *DummyAudioIODeviceAPI) InitDefaultOutputStream(
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (audiodevice.AudioOutputStream, error) {
	if api.OpenErr != nil {
		return nil, api.OpenErr
	}

	stream := device.NewDummyAudioOutputDevice(api.properties, framesPerBuffer, callback)
	stream.StartErr = api.StartErr
	stream.StopErr = api.StopErr
	stream.CloseErr = api.CloseErr

	api.mutex.Lock()
	api.streams = append(api.streams, stream)
	api.mutex.Unlock()
	return stream, nil
}

func (api *DummyAudioIODeviceAPI) Terminate() error {
	api.mutex.Lock()
	api.terminated++
	api.mutex.Unlock()
	return api.TerminateErr
}

// Number of times Terminate has been called.
func (api *DummyAudioIODeviceAPI) Terminated() int {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	return api.terminated
}

// Every stream opened so far, in order.
func (api *DummyAudioIODeviceAPI) Streams() []*device.DummyAudioOutputDevice {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	return append([]*device.DummyAudioOutputDevice(nil), api.streams...)
}
