package samplequeue

import "fmt"

// A SampleBuffer references interleaved stereo int16 samples owned by the caller.
//
// The queue never copies or frees the referenced memory, so the samples must not
// be modified while any QueueItem refers to them.
type SampleBuffer struct {
	samples []int16
}

// Create a SampleBuffer over the first frameCount stereo frames of samples.
//
// Returns ErrInvalidBuffer if frameCount is not positive or samples holds fewer
// than 2*frameCount values.
func NewSampleBuffer(samples []int16, frameCount int) (SampleBuffer, error) {
	if frameCount <= 0 {
		return SampleBuffer{}, fmt.Errorf("%w: frame count %d", ErrInvalidBuffer, frameCount)
	}
	if len(samples) < 2*frameCount {
		return SampleBuffer{}, fmt.Errorf("%w: %d samples cannot hold %d stereo frames", ErrInvalidBuffer, len(samples), frameCount)
	}
	return SampleBuffer{samples: samples[:2*frameCount]}, nil
}

// Number of stereo frames in the buffer.
func (b SampleBuffer) Frames() int {
	return len(b.samples) / 2
}

// The interleaved samples, left first. Callers must treat them as read-only.
func (b SampleBuffer) Samples() []int16 {
	return b.samples
}
