package utils

import "github.com/spf13/viper"

// Set the viper defaults for chew.
// For use in cmd/chew/config, and in tests that read configuration.
func SetViperDefaults() {
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("logfile", "")

	viper.SetDefault("backend", "portaudio")
	viper.SetDefault("device", -1)
	viper.SetDefault("samplerate", 44100)
	viper.SetDefault("channels", 2)
	viper.SetDefault("framesperbuffer", 256)
	viper.SetDefault("renderfile", "chew.wav")
	viper.SetDefault("renderseconds", 0)

	viper.SetDefault("sounds.ambient", "")
	viper.SetDefault("sounds.beat", "")
	viper.SetDefault("sounds.chomp", "")
	viper.SetDefault("gain.ambient", 0.3)
	viper.SetDefault("gain.beat", 0.5)
	viper.SetDefault("gain.chomp", 0.8)

	viper.SetDefault("bpm", 120)
	viper.SetDefault("beatoffsetms", 0)
}
