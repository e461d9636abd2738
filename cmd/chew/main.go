package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/cmd/chew/config"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/audioapi"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/audiostream"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/internal/utils"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/mixer"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
	"github.com/spf13/viper"
)

func initializeAudioIODeviceAPI(properties audiodevice.DeviceProperties) (audioapi.AudioIODeviceAPI, error) {
	switch backend := viper.GetString("backend"); backend {
	case "portaudio":
		return audioapi.NewPortAudioApi(properties)
	case "oto":
		return audioapi.NewOtoApi(properties, viper.GetInt("framesperbuffer"))
	case "file":
		return audioapi.NewFileAudioIODeviceAPI(viper.GetString("renderfile"), properties), nil
	case "dummy":
		return audioapi.NewDummyAudioIODeviceAPI(properties), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func main() {
	configFilePath := flag.String("configFilePath", "config.yaml", "Set the file path to the config file.")
	listDevices := flag.Bool("listDevices", false, "List the output devices of the configured backend and exit.")
	flag.Parse()

	config.LoadConfig(*configFilePath)
	logFilePointer, err := utils.ConfigureDefaultLogger(
		viper.GetString("loglevel"),
		viper.GetString("logfile"),
		slog.HandlerOptions{},
	)
	if err != nil {
		slog.Error("error while configuring default logger", "err", err)
		panic(err)
	}
	if logFilePointer != nil {
		defer logFilePointer.Close()
	}

	// --------------------------------------------------------------------------------

	properties := audiodevice.DeviceProperties{
		SampleRate:  viper.GetInt("samplerate"),
		NumChannels: viper.GetInt("channels"),
	}
	if err := properties.Validate(); err != nil {
		slog.Error("invalid device properties", "properties", properties, "err", err)
		panic(err)
	}

	api, err := initializeAudioIODeviceAPI(properties)
	if err != nil {
		slog.Error("error while initializing audio api", "backend", viper.GetString("backend"), "err", err)
		panic(err)
	}
	defer api.Terminate()

	if *listDevices {
		for _, d := range api.OutputDevices() {
			fmt.Println(d)
		}
		return
	}

	m, err := mixer.NewMixer(properties)
	if err != nil {
		slog.Error("error while creating mixer", "err", err)
		panic(err)
	}

	s, err := loadSounds(properties)
	if err != nil {
		slog.Error("error while loading sounds", "err", err)
		panic(err)
	}

	// --------------------------------------------------------------------------------

	opts := audiostream.Options{FramesPerBuffer: viper.GetInt("framesperbuffer")}
	if id := viper.GetInt("device"); id >= 0 {
		opts.Device = &audioapi.AudioIODevice{ID: id}
	}
	stream := audiostream.MustInit(api, m, opts)

	push(m, mixer.QueueAmbient, s.ambient, samplequeue.LoopForever)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if seconds := viper.GetInt("renderseconds"); seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
		defer cancel()
	}

	beats := runBeat(ctx, m, s, viper.GetInt("bpm"), time.Duration(viper.GetInt("beatoffsetms"))*time.Millisecond)
	slog.Info("shutting down", "beats", beats, "faults", m.Faults())

	if err := stream.Deinit(); err != nil {
		slog.Warn("audio stream did not shut down cleanly", "err", err)
	}
}
