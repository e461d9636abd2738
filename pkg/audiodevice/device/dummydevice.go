package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
)

// An AudioOutputStream that calls its callback on a ticker, at the rate real
// hardware would, and discards the audio.
//
// A minimal example of the architecture of an AudioOutputStream, useful in testing
// and on machines without a sound card. Errors may be injected for each
// lifecycle step.
type DummyAudioOutputDevice struct {
	properties      audiodevice.DeviceProperties
	framesPerBuffer int
	callback        audiodevice.MixCallback
	period          time.Duration

	StartErr error
	StopErr  error
	CloseErr error

	mutex   sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	closed  bool
	blocks  atomic.Uint64
	silence atomic.Bool
}

func NewDummyAudioOutputDevice(
	properties audiodevice.DeviceProperties,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) *DummyAudioOutputDevice {
	period := time.Millisecond
	if properties.SampleRate > 0 && framesPerBuffer > 0 {
		period = time.Duration(framesPerBuffer) * time.Second / time.Duration(properties.SampleRate)
	}
	return &DummyAudioOutputDevice{
		properties:      properties,
		framesPerBuffer: framesPerBuffer,
		callback:        callback,
		period:          period,
	}
}

func (d *DummyAudioOutputDevice) Start() error {
	if d.StartErr != nil {
		return d.StartErr
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stop != nil || d.closed {
		return nil
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.stop, d.done)
	return nil
}

func (d *DummyAudioOutputDevice) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	out := make([]float32, d.framesPerBuffer*d.properties.NumChannels)
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.callback(out)
			d.blocks.Add(1)
			silent := true
			for _, v := range out {
				if v != 0 {
					silent = false
					break
				}
			}
			d.silence.Store(silent)
		case <-stop:
			return
		}
	}
}

func (d *DummyAudioOutputDevice) Stop() error {
	d.mutex.Lock()
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
	}
	d.mutex.Unlock()
	return d.StopErr
}

func (d *DummyAudioOutputDevice) Close() error {
	d.Stop()
	d.mutex.Lock()
	d.closed = true
	d.mutex.Unlock()
	return d.CloseErr
}

func (d *DummyAudioOutputDevice) GetDeviceProperties() audiodevice.DeviceProperties {
	return d.properties
}

// Number of blocks requested from the callback so far.
func (d *DummyAudioOutputDevice) Blocks() uint64 {
	return d.blocks.Load()
}

// Reports whether the most recent block was entirely silent.
func (d *DummyAudioOutputDevice) LastBlockSilent() bool {
	return d.silence.Load()
}
