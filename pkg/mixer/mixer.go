package mixer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
)

// Number of independent queues mixed together.
const NumQueues = 4

// Conventional queue assignments. Any id in [0, NumQueues) may be used.
const (
	QueuePrimary = iota
	QueueAmbient
	QueueBeat
	QueueEffects
)

var ErrNoSuchQueue = errors.New("no such queue")

// A Mixer owns the set of sample queues for one output stream and produces
// the stream's audio from them.
//
// Producers call Push or PushSample from any goroutine. The audio backend
// calls Mix from its realtime thread. Mix is the only consumer of the queues.
type Mixer struct {
	properties audiodevice.DeviceProperties
	queues     [NumQueues]samplequeue.Queue

	// Incremented each time Mix recovers from a panic and emits silence.
	faults atomic.Uint64
}

// Create a new Mixer for the given (validated) device properties.
func NewMixer(properties audiodevice.DeviceProperties) (*Mixer, error) {
	if err := properties.Validate(); err != nil {
		return nil, err
	}
	return &Mixer{properties: properties}, nil
}

func (m *Mixer) GetDeviceProperties() audiodevice.DeviceProperties {
	return m.properties
}

// --------------------------------------------------------------------------------
// Producer interface

// Push enqueues buf on the queue queueID.
// loopCount >= 0 enqueues that many one-shot plays,
// loopCount == samplequeue.LoopForever enqueues one item that repeats forever.
func (m *Mixer) Push(queueID int, buf samplequeue.SampleBuffer, loopCount int) error {
	q, err := m.queue(queueID)
	if err != nil {
		return err
	}
	if err := q.Push(buf, loopCount); err != nil {
		return fmt.Errorf("queue %d: %w", queueID, err)
	}
	return nil
}

// PushSample enqueues the first frameCount stereo frames of samples on queueID.
//
// A zero frameCount is rejected with samplequeue.ErrInvalidBuffer and the
// queue is left unmodified.
func (m *Mixer) PushSample(queueID int, samples []int16, frameCount int, loopCount int) error {
	buf, err := samplequeue.NewSampleBuffer(samples, frameCount)
	if err != nil {
		return fmt.Errorf("queue %d: %w", queueID, err)
	}
	return m.Push(queueID, buf, loopCount)
}

// Number of items waiting on or playing from queueID.
func (m *Mixer) QueueLen(queueID int) (int, error) {
	q, err := m.queue(queueID)
	if err != nil {
		return 0, err
	}
	return q.Len(), nil
}

// Reports whether queueID is currently playing an item that repeats forever.
func (m *Mixer) QueueLooping(queueID int) (bool, error) {
	q, err := m.queue(queueID)
	if err != nil {
		return false, err
	}
	return q.Looping(), nil
}

// Number of Mix calls that recovered from a panic and emitted silence.
func (m *Mixer) Faults() uint64 {
	return m.faults.Load()
}

func (m *Mixer) queue(queueID int) (*samplequeue.Queue, error) {
	if queueID < 0 || queueID >= NumQueues {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchQueue, queueID)
	}
	return &m.queues[queueID], nil
}

// --------------------------------------------------------------------------------
// Realtime interface

// Mix fills out with interleaved stereo frames, summing the contribution of every
// non-empty queue. The sum is not clamped; producers attenuate their buffers
// if several loud sounds may overlap.
//
// Mix satisfies audiodevice.MixCallback and does not allocate or block.
// A panic while mixing replaces the whole block with silence and is counted in Faults.
func (m *Mixer) Mix(out []float32) {
	defer func() {
		if r := recover(); r != nil {
			clear(out)
			m.faults.Add(1)
		}
	}()

	clear(out)
	for i := range m.queues {
		m.queues[i].MixInto(out)
	}
}
