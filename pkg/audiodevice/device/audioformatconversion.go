package device

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/oov/audio/resampler"
)

const resampleQuality = 10

// Decoded audio as interleaved float32 samples in [-1, 1], in whatever format
// the file was stored.
type decodedAudio struct {
	samples    []float32
	properties audiodevice.DeviceProperties
}

// Convert decoded audio to the sink properties, once, at load time.
//
// e.g. if the source format is mono 22050Hz, but the sink format specifies stereo 44100Hz,
// the samples are duplicated into both channels and then resampled.
func convertFormat(source decodedAudio, sinkProperties audiodevice.DeviceProperties) (decodedAudio, error) {
	converted := source

	switch {
	case source.properties.NumChannels == 1 && sinkProperties.NumChannels == 2:
		slog.Debug("converting mono to stereo")
		converted = monoToStereo(converted)
	case source.properties.NumChannels == 2 && sinkProperties.NumChannels == 2:
	default:
		return decodedAudio{}, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, source.properties.NumChannels)
	}

	if source.properties.SampleRate != sinkProperties.SampleRate {
		slog.Debug(
			"resampling",
			"sourceSampleRate", source.properties.SampleRate,
			"sinkSampleRate", sinkProperties.SampleRate,
		)
		converted = resampleStereo(converted, sinkProperties.SampleRate)
	}

	return converted, nil
}

func monoToStereo(source decodedAudio) decodedAudio {
	buf := make([]float32, 2*len(source.samples))
	for i, v := range source.samples {
		buf[2*i] = v
		buf[2*i+1] = v
	}
	return decodedAudio{
		samples: buf,
		properties: audiodevice.DeviceProperties{
			SampleRate:  source.properties.SampleRate,
			NumChannels: 2,
		},
	}
}

func resampleStereo(source decodedAudio, sinkSampleRate int) decodedAudio {
	r := resampler.New(2, source.properties.SampleRate, sinkSampleRate, resampleQuality)

	sourceFrames := len(source.samples) / 2
	sinkFrames := int(math.Ceil(float64(sourceFrames) * float64(sinkSampleRate) / float64(source.properties.SampleRate)))

	// Decode to planar, source is interleaved
	left := make([]float32, sourceFrames)
	right := make([]float32, sourceFrames)
	for i := range sourceFrames {
		left[i] = source.samples[2*i]
		right[i] = source.samples[2*i+1]
	}

	leftOut := resampleChannel(r, 0, left, sinkFrames)
	rightOut := resampleChannel(r, 1, right, sinkFrames)

	// Interleave again
	frames := min(len(leftOut), len(rightOut))
	buf := make([]float32, 2*frames)
	for i := range frames {
		buf[2*i] = leftOut[i]
		buf[2*i+1] = rightOut[i]
	}

	return decodedAudio{
		samples: buf,
		properties: audiodevice.DeviceProperties{
			SampleRate:  sinkSampleRate,
			NumChannels: 2,
		},
	}
}

// The resampler may not consume its whole input in one call, so feed it until it stops making progress.
func resampleChannel(r *resampler.Resampler, channel int, in []float32, expectedFrames int) []float32 {
	out := make([]float32, 0, expectedFrames)
	chunk := make([]float32, expectedFrames+1)
	for len(in) > 0 {
		read, written := r.ProcessFloat32(channel, in, chunk)
		out = append(out, chunk[:written]...)
		in = in[read:]
		if read == 0 && written == 0 {
			break
		}
	}
	return out
}

// Quantize [-1, 1] float samples to int16, clamping anything outside the range.
func quantize(samples []float32) []int16 {
	const maxInt16 = float32(math.MaxInt16)
	buf := make([]int16, len(samples))
	for i, v := range samples {
		v = max(-1, min(1, v))
		buf[i] = int16(v * maxInt16)
	}
	return buf
}
