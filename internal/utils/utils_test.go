package utils

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestConfigureDefaultLoggerLevels(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		level   string
		enabled slog.Level
		wantErr bool
	}{
		{level: "error", enabled: slog.LevelError},
		{level: "warn", enabled: slog.LevelWarn},
		{level: "info", enabled: slog.LevelInfo},
		{level: "debug", enabled: slog.LevelDebug},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			f, err := ConfigureDefaultLogger(tt.level, "", slog.HandlerOptions{})
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLogLevel) {
					t.Fatalf("err = %v, want ErrUnknownLogLevel", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f != nil {
				t.Error("stdout logger returned a file")
			}
			if !slog.Default().Enabled(t.Context(), tt.enabled) {
				t.Errorf("level %v not enabled", tt.enabled)
			}
			if tt.enabled > slog.LevelDebug && slog.Default().Enabled(t.Context(), tt.enabled-1) {
				t.Errorf("level below %v enabled", tt.enabled)
			}
		})
	}
}

func TestConfigureDefaultLoggerFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "chew.log")
	f, err := ConfigureDefaultLogger("info", path, slog.HandlerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if f == nil {
		t.Fatal("file logger returned no file")
	}

	slog.Info("queue full", "queue", 2)
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(contents), `"msg":"queue full"`) || !strings.Contains(string(contents), `"queue":2`) {
		t.Errorf("log file = %s, want a JSON record", contents)
	}
}

func TestConfigureDefaultLoggerNone(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	f, err := ConfigureDefaultLogger("none", "ignored.log", slog.HandlerOptions{})
	if err != nil || f != nil {
		t.Fatalf("ConfigureDefaultLogger(none) = %v, %v", f, err)
	}
}

func TestConfigureDefaultLoggerUnopenableFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "missing", "chew.log")
	f, err := ConfigureDefaultLogger("info", path, slog.HandlerOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
	if f != nil {
		t.Error("returned a file on error")
	}
	if slog.Default() != previous {
		t.Error("default logger replaced on error")
	}
}

func TestSetViperDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetViperDefaults()
	if got := viper.GetInt("samplerate"); got != 44100 {
		t.Errorf("samplerate = %d, want 44100", got)
	}
	if got := viper.GetInt("framesperbuffer"); got != 256 {
		t.Errorf("framesperbuffer = %d, want 256", got)
	}
	if got := viper.GetString("backend"); got != "portaudio" {
		t.Errorf("backend = %q, want portaudio", got)
	}
	if got := viper.GetFloat64("gain.beat"); got != 0.5 {
		t.Errorf("gain.beat = %v, want 0.5", got)
	}
}
