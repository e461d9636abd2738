package device

import (
	"errors"
	"math"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
)

// GenerateTone synthesizes a sine tone with a linear fade out, as a stand-in for
// sound files that are not available.
//
// amplitude is in [0, 1]. Frequencies are kept below the Nyquist frequency.
func GenerateTone(
	properties audiodevice.DeviceProperties,
	frequency float64,
	duration time.Duration,
	amplitude float32,
) (samplequeue.SampleBuffer, error) {
	if err := properties.Validate(); err != nil {
		return samplequeue.SampleBuffer{}, err
	}
	if frequency <= 0 || frequency >= float64(properties.SampleRate)/2 {
		return samplequeue.SampleBuffer{}, errors.New("tone frequency out of range")
	}

	frames := int(duration * time.Duration(properties.SampleRate) / time.Second)
	samples := make([]float32, 2*frames)
	phaseStep := 2 * math.Pi * frequency / float64(properties.SampleRate)
	for i := range frames {
		fade := 1 - float64(i)/float64(frames)
		v := float32(math.Sin(phaseStep*float64(i)) * fade)
		samples[2*i] = v
		samples[2*i+1] = v
	}
	applyGain(samples, amplitude)

	return samplequeue.NewSampleBuffer(quantize(samples), frames)
}
