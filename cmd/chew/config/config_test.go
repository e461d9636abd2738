package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if got := viper.GetString("backend"); got != "portaudio" {
		t.Errorf("backend = %q, want portaudio", got)
	}
	if got := viper.GetInt("bpm"); got != 120 {
		t.Errorf("bpm = %d, want 120", got)
	}
}

func TestLoadConfigReadsYAML(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "backend: file\nrenderseconds: 3\nsounds:\n  beat: beat.wav\ngain:\n  beat: 0.25\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	LoadConfig(path)
	if got := viper.GetString("backend"); got != "file" {
		t.Errorf("backend = %q, want file", got)
	}
	if got := viper.GetInt("renderseconds"); got != 3 {
		t.Errorf("renderseconds = %d, want 3", got)
	}
	if got := viper.GetString("sounds.beat"); got != "beat.wav" {
		t.Errorf("sounds.beat = %q, want beat.wav", got)
	}
	if got := viper.GetFloat64("gain.beat"); got != 0.25 {
		t.Errorf("gain.beat = %v, want 0.25", got)
	}
	// Untouched nested keys keep their defaults.
	if got := viper.GetFloat64("gain.chomp"); got != 0.8 {
		t.Errorf("gain.chomp = %v, want 0.8", got)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: alsa\n"), 0644); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("LoadConfig accepted an unknown backend")
		}
	}()
	LoadConfig(path)
}
