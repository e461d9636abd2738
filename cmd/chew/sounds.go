package main

import (
	"log/slog"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice/device"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
	"github.com/spf13/viper"
)

// A tone played in place of a sound file that is not configured or cannot be loaded.
type fallbackTone struct {
	frequency float64
	duration  time.Duration
}

// The decoded sounds of the game. The buffers live for the whole process,
// so they outlive every queue item that references them.
type sounds struct {
	ambient samplequeue.SampleBuffer
	beat    samplequeue.SampleBuffer
	chomp   samplequeue.SampleBuffer
}

func loadSounds(properties audiodevice.DeviceProperties) (sounds, error) {
	var s sounds
	var err error

	s.ambient, err = loadSound(properties, "ambient", fallbackTone{frequency: 110, duration: 2 * time.Second})
	if err != nil {
		return sounds{}, err
	}
	s.beat, err = loadSound(properties, "beat", fallbackTone{frequency: 880, duration: 60 * time.Millisecond})
	if err != nil {
		return sounds{}, err
	}
	s.chomp, err = loadSound(properties, "chomp", fallbackTone{frequency: 330, duration: 150 * time.Millisecond})
	if err != nil {
		return sounds{}, err
	}
	return s, nil
}

// Load the file under sounds.<name>, scaled by gain.<name>.
func loadSound(properties audiodevice.DeviceProperties, name string, fallback fallbackTone) (samplequeue.SampleBuffer, error) {
	gain := float32(viper.GetFloat64("gain." + name))

	if path := viper.GetString("sounds." + name); path != "" {
		buf, err := device.LoadSampleBuffer(path, properties, gain)
		if err == nil {
			slog.Debug("loaded sound", "sound", name, "path", path, "frames", buf.Frames())
			return buf, nil
		}
		slog.Warn("could not load sound, using generated tone", "sound", name, "path", path, "err", err)
	}

	return device.GenerateTone(properties, fallback.frequency, fallback.duration, gain)
}
