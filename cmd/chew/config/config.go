package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/utils"
	"github.com/spf13/viper"
)

// Names accepted by the backend key.
var Backends = []string{"portaudio", "oto", "file", "dummy"}

// Load configuration into viper from configFilePath on top of the defaults.
// A missing file is not an error; an unreadable or invalid one panics.
func LoadConfig(configFilePath string) {
	utils.SetViperDefaults()

	viper.SetConfigFile(configFilePath)
	if err := viper.ReadInConfig(); err != nil {
		// An explicit config path that does not exist surfaces as an fs error, not ConfigFileNotFoundError.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("no config file found", "configFilePath", configFilePath)
		} else {
			slog.Error("error during config read", "err", err)
			panic(err)
		}
	}

	if err := validate(); err != nil {
		slog.Error("invalid configuration. See config.yaml.example for every key.", "err", err)
		panic(err)
	}
}

func validate() error {
	if backend := viper.GetString("backend"); !slices.Contains(Backends, backend) {
		return fmt.Errorf("unknown backend %q, expected one of %v", backend, Backends)
	}
	if viper.GetInt("framesperbuffer") <= 0 {
		return fmt.Errorf("framesperbuffer must be positive")
	}
	if viper.GetInt("bpm") <= 0 {
		return fmt.Errorf("bpm must be positive")
	}
	if viper.GetInt("renderseconds") < 0 {
		return fmt.Errorf("renderseconds must not be negative")
	}
	return nil
}
