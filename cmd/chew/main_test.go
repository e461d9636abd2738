package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/utils"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/mixer"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
	"github.com/spf13/viper"
)

func setupViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	utils.SetViperDefaults()
}

func TestLoadSoundsFallsBackToTones(t *testing.T) {
	setupViper(t)
	viper.Set("sounds.beat", filepath.Join(t.TempDir(), "missing.wav"))

	s, err := loadSounds(audiodevice.DefaultDeviceProperties())
	if err != nil {
		t.Fatal(err)
	}
	if s.ambient.Frames() != 2*44100 {
		t.Errorf("ambient frames = %d, want %d", s.ambient.Frames(), 2*44100)
	}
	if s.beat.Frames() == 0 || s.chomp.Frames() == 0 {
		t.Error("fallback tones are empty")
	}
}

func TestLoadSoundsRejectsUnknownFormat(t *testing.T) {
	setupViper(t)
	path := filepath.Join(t.TempDir(), "chomp.flac")
	if err := os.WriteFile(path, []byte("fLaC"), 0644); err != nil {
		t.Fatal(err)
	}
	viper.Set("sounds.chomp", path)

	// Unloadable files fall back too; only tone generation can fail.
	if _, err := loadSounds(audiodevice.DefaultDeviceProperties()); err != nil {
		t.Fatal(err)
	}
}

func TestRunBeatPushesUntilDone(t *testing.T) {
	setupViper(t)
	properties := audiodevice.DefaultDeviceProperties()
	m, err := mixer.NewMixer(properties)
	if err != nil {
		t.Fatal(err)
	}
	s, err := loadSounds(properties)
	if err != nil {
		t.Fatal(err)
	}

	// 6000 bpm is a beat every 10ms; nothing consumes the queue.
	ctx, cancel := context.WithTimeout(t.Context(), 75*time.Millisecond)
	defer cancel()
	beats := runBeat(ctx, m, s, 6000, 0)
	if beats < 3 {
		t.Fatalf("runBeat pushed %d beats, want at least 3", beats)
	}

	n, err := m.QueueLen(mixer.QueueBeat)
	if err != nil {
		t.Fatal(err)
	}
	if n != min(beats, samplequeue.Capacity) {
		t.Errorf("QueueLen(QueueBeat) = %d, want %d", n, min(beats, samplequeue.Capacity))
	}
}

func TestPushDropsOnFullQueue(t *testing.T) {
	m, err := mixer.NewMixer(audiodevice.DefaultDeviceProperties())
	if err != nil {
		t.Fatal(err)
	}
	buf, err := samplequeue.NewSampleBuffer(make([]int16, 2), 1)
	if err != nil {
		t.Fatal(err)
	}

	push(m, mixer.QueueEffects, buf, samplequeue.Capacity)
	push(m, mixer.QueueEffects, buf, 1)

	n, err := m.QueueLen(mixer.QueueEffects)
	if err != nil {
		t.Fatal(err)
	}
	if n != samplequeue.Capacity {
		t.Errorf("QueueLen = %d, want %d", n, samplequeue.Capacity)
	}
}
