package audioapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
)

var (
	errNoDefaultDevice = errors.New("no default device available")
	errNoDeviceWithID  = errors.New("no device with specified ID")
)

type AudioIODevice struct {
	// The ID of the device
	//
	// Should come from the underlying API (e.g. the PortAudio device index),
	// but could be defined in some programmatic way by the AudioIODeviceAPI.
	//
	// Intended to be the canonical way to reference the AudioIODevice,
	// such that when telling the API to open a device it is this value
	// that is used to identify the device.
	ID int

	// A human-readable name for the device, if one exists.
	// Not necessary, and not canonical.
	Name string

	// The preferred sample rate and maximum channel count of this device.
	// Streams are always opened with the properties the API was created with.
	DeviceProperties audiodevice.DeviceProperties
}

func (device AudioIODevice) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ID:          %d\n", device.ID)
	fmt.Fprintf(&sb, "Name:        %s\n", device.Name)
	fmt.Fprintf(&sb, "SampleRate:  %d\n", device.DeviceProperties.SampleRate)
	fmt.Fprintf(&sb, "NumChannels: %d\n", device.DeviceProperties.NumChannels)
	return sb.String()
}

// Define an API to interface with output hardware.
// Intended to be an abstract way to:
// - Query existing output devices
// - Open an output device as an AudioOutputStream that pulls from a MixCallback
//
// Streams are opened but not started; starting is left to the caller.
// Terminate releases the API itself and must be called after every stream is closed.
type AudioIODeviceAPI interface {
	OutputDevices() []AudioIODevice
	InitOutputStreamFromID(device AudioIODevice, framesPerBuffer int, callback audiodevice.MixCallback) (audiodevice.AudioOutputStream, error)
	InitDefaultOutputStream(framesPerBuffer int, callback audiodevice.MixCallback) (audiodevice.AudioOutputStream, error)
	Terminate() error
}

// Find the device in devices with the same ID as target.
func findDevice(devices []AudioIODevice, target AudioIODevice) (AudioIODevice, error) {
	for _, d := range devices {
		if d.ID == target.ID {
			return d, nil
		}
	}
	return AudioIODevice{}, fmt.Errorf("%w: %d", errNoDeviceWithID, target.ID)
}
