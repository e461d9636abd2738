package audiostream

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/audioapi"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/mixer"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
)

func newTestMixer(t *testing.T) *mixer.Mixer {
	t.Helper()
	m, err := mixer.NewMixer(audiodevice.DefaultDeviceProperties())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInitBindsMixer(t *testing.T) {
	m := newTestMixer(t)
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())

	s, err := Init(api, m, Options{FramesPerBuffer: 64})
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]int16, 2*64)
	for i := range samples {
		samples[i] = 4096
	}
	if err := m.PushSample(mixer.QueueAmbient, samples, 64, samplequeue.LoopForever); err != nil {
		t.Fatal(err)
	}

	stream := api.Streams()[0]
	deadline := time.Now().Add(time.Second)
	for (stream.Blocks() < 2 || stream.LastBlockSilent()) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if stream.LastBlockSilent() {
		t.Error("stream never played the looping sample")
	}

	if err := s.Deinit(); err != nil {
		t.Fatal(err)
	}
	blocks := stream.Blocks()
	time.Sleep(10 * time.Millisecond)
	if stream.Blocks() != blocks {
		t.Error("callback still called after Deinit")
	}
}

func TestInitFromDeviceID(t *testing.T) {
	m := newTestMixer(t)
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())

	if _, err := Init(api, m, Options{Device: &audioapi.AudioIODevice{ID: 9}}); err == nil {
		t.Fatal("Init with unknown device succeeded")
	}

	device := api.OutputDevices()[0]
	s, err := Init(api, m, Options{Device: &device})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Deinit(); err != nil {
		t.Fatal(err)
	}
}

func TestInitOpenError(t *testing.T) {
	errOpen := &audiodevice.BackendError{Backend: "dummy", Code: -9996, Err: errors.New("device unavailable")}
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())
	api.OpenErr = errOpen

	_, err := Init(api, newTestMixer(t), Options{})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("err = %v, want *InitError", err)
	}
	if initErr.Op != OpOpen {
		t.Errorf("Op = %q, want %q", initErr.Op, OpOpen)
	}
	if initErr.Code() != -9996 {
		t.Errorf("Code() = %d, want -9996", initErr.Code())
	}
}

func TestInitStartErrorClosesStream(t *testing.T) {
	errStart := errors.New("start")
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())
	api.StartErr = errStart

	_, err := Init(api, newTestMixer(t), Options{})
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Op != OpStart {
		t.Fatalf("err = %v, want start *InitError", err)
	}
	if !errors.Is(err, errStart) {
		t.Errorf("err does not wrap the start error")
	}
	if initErr.Code() != audiodevice.NoBackendErrorCode {
		t.Errorf("Code() = %d, want %d", initErr.Code(), audiodevice.NoBackendErrorCode)
	}
	if len(api.Streams()) != 1 {
		t.Fatalf("Streams() = %d, want 1", len(api.Streams()))
	}
	if api.Streams()[0].Blocks() != 0 {
		t.Error("failed stream was run")
	}
}

func TestInitRejectsMismatchedProperties(t *testing.T) {
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DeviceProperties{SampleRate: 48000, NumChannels: 2})

	_, err := Init(api, newTestMixer(t), Options{})
	if !errors.Is(err, audiodevice.ErrUnsupportedProperties) {
		t.Fatalf("err = %v, want ErrUnsupportedProperties", err)
	}
}

func TestMustInitExits(t *testing.T) {
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = os.Exit })

	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())
	api.OpenErr = errors.New("no device")

	if s := MustInit(api, newTestMixer(t), Options{}); s != nil {
		t.Error("MustInit returned a stream after failing")
	}
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if api.Terminated() != 1 {
		t.Errorf("api terminated %d times before exit, want 1", api.Terminated())
	}
}

func TestMustInitLeavesApiRunningOnSuccess(t *testing.T) {
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())

	s := MustInit(api, newTestMixer(t), Options{})
	if err := s.Deinit(); err != nil {
		t.Fatal(err)
	}
	if api.Terminated() != 0 {
		t.Errorf("api terminated %d times, want 0", api.Terminated())
	}
}

func TestDeinitIsBestEffort(t *testing.T) {
	errStop := errors.New("stop")
	errClose := errors.New("close")
	api := audioapi.NewDummyAudioIODeviceAPI(audiodevice.DefaultDeviceProperties())
	api.StopErr = errStop
	api.CloseErr = errClose

	s, err := Init(api, newTestMixer(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Deinit()
	var teardownErr *TeardownError
	if !errors.As(err, &teardownErr) {
		t.Fatalf("err = %v, want *TeardownError", err)
	}
	if len(teardownErr.Errs) != 2 {
		t.Errorf("collected %d errors, want 2", len(teardownErr.Errs))
	}
	if !errors.Is(err, errStop) || !errors.Is(err, errClose) {
		t.Errorf("err = %v, want both stop and close errors", err)
	}

	// The ticker stopped even though Stop reported an error.
	stream := api.Streams()[0]
	blocks := stream.Blocks()
	time.Sleep(10 * time.Millisecond)
	if stream.Blocks() != blocks {
		t.Error("callback still called after Deinit")
	}

	if again := s.Deinit(); again != err {
		t.Errorf("second Deinit = %v, want the first result", again)
	}
}
