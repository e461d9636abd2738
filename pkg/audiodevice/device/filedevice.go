package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/audiodevice"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/hajimehoshi/go-mp3"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// --------------------------------------------------------------------------------
// Loading sound files

// Load a .wav or .mp3 file into a SampleBuffer ready to be pushed onto a sample queue.
//
// The decoded audio is converted to the given properties (mono is duplicated to
// stereo, other sample rates are resampled) and scaled by gain, so the mixer
// never has to. The returned buffer owns its memory; keep it alive for as long
// as it may be queued.
func LoadSampleBuffer(
	audioFilePath string,
	properties audiodevice.DeviceProperties,
	gain float32,
) (samplequeue.SampleBuffer, error) {
	logger := slog.Default().With(
		"audioFile", audioFilePath,
	)

	f, err := os.Open(audioFilePath)
	if err != nil {
		logger.Error("could not open audio file", "err", err)
		return samplequeue.SampleBuffer{}, err
	}
	defer f.Close()

	var decoded decodedAudio
	switch ext := strings.ToLower(filepath.Ext(audioFilePath)); ext {
	case ".wav":
		decoded, err = decodeWAV(f)
	case ".mp3":
		decoded, err = decodeMP3(f)
	default:
		err = fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		logger.Error("could not decode audio file", "err", err)
		return samplequeue.SampleBuffer{}, err
	}

	logger.Debug(
		"decoded audio file",
		"sampleRate", decoded.properties.SampleRate,
		"channels", decoded.properties.NumChannels,
		"samples", len(decoded.samples),
	)

	converted, err := convertFormat(decoded, properties)
	if err != nil {
		logger.Error("could not convert audio file", "err", err)
		return samplequeue.SampleBuffer{}, err
	}
	applyGain(converted.samples, gain)

	samples := quantize(converted.samples)
	buf, err := samplequeue.NewSampleBuffer(samples, len(samples)/2)
	if err != nil {
		return samplequeue.SampleBuffer{}, fmt.Errorf("%s: %w", audioFilePath, err)
	}
	return buf, nil
}

func decodeWAV(r io.ReadSeeker) (decodedAudio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return decodedAudio{}, fmt.Errorf("%w: invalid wav file", ErrUnsupportedFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return decodedAudio{}, fmt.Errorf("wav: %w", err)
	}
	switch decoder.BitDepth {
	case 16, 24, 32:
	default:
		return decodedAudio{}, fmt.Errorf("%w: %d-bit wav", ErrUnsupportedFormat, decoder.BitDepth)
	}

	scale := float32(int64(1) << (decoder.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return decodedAudio{
		samples: samples,
		properties: audiodevice.DeviceProperties{
			SampleRate:  int(decoder.SampleRate),
			NumChannels: int(decoder.NumChans),
		},
	}, nil
}

// go-mp3 always produces 16-bit little-endian stereo, even for mono sources.
func decodeMP3(r io.Reader) (decodedAudio, error) {
	const maxInt16 = float32(math.MaxInt16)

	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return decodedAudio{}, fmt.Errorf("mp3: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return decodedAudio{}, fmt.Errorf("mp3: %w", err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / maxInt16
	}

	return decodedAudio{
		samples: samples,
		properties: audiodevice.DeviceProperties{
			SampleRate:  decoder.SampleRate(),
			NumChannels: 2,
		},
	}, nil
}

// --------------------------------------------------------------------------------
// FileAudioOutputDevice

// Define an AudioOutputStream that pulls audio from its callback and writes the result
// to a 16-bit .WAV file. Note the resulting file is only valid once the device is closed.
//
// While started, blocks are pulled on a ticker at the rate real hardware would,
// so timer driven producers line up with the rendered audio. RenderFrames pulls
// blocks immediately instead, for offline rendering.
type FileAudioOutputDevice struct {
	logger *slog.Logger
	uuid   uuid.UUID

	properties      audiodevice.DeviceProperties
	framesPerBuffer int
	callback        audiodevice.MixCallback
	period          time.Duration

	// Guards everything below, shared between the render goroutine and callers.
	mutex         sync.Mutex
	encoder       *wav.Encoder
	fileHandle    *os.File
	block         []float32
	intBuf        *goaudio.IntBuffer
	framesWritten int
	stop          chan struct{}
	done          chan struct{}
	closed        bool

	shutdownOnce sync.Once
	closeErr     error
}

// Create a new FileAudioOutputDevice that writes rendered audio to a .WAV file at the specified path.
func NewFileAudioOutputDevice(
	audioFilePath string,
	properties audiodevice.DeviceProperties,
	framesPerBuffer int,
	callback audiodevice.MixCallback,
) (*FileAudioOutputDevice, error) {
	uuid := uuid.New()
	logger := slog.Default().With(
		"file output device uuid", uuid,
	)

	if err := properties.Validate(); err != nil {
		return nil, err
	}
	if framesPerBuffer <= 0 {
		return nil, errors.New("frames per buffer must be positive")
	}

	f, err := os.Create(audioFilePath)
	if err != nil {
		logger.Error(
			"could not create audio file",
			"audioFile", audioFilePath,
			"err", err,
		)
		return nil, err
	}

	encoder := wav.NewEncoder(f, properties.SampleRate, 16, properties.NumChannels, 1)

	logger.Debug(
		"created audio file",
		"audioFile", audioFilePath,
		"sampleRate", encoder.SampleRate,
		"channels", encoder.NumChans,
	)

	samplesPerBlock := framesPerBuffer * properties.NumChannels
	return &FileAudioOutputDevice{
		logger:          logger,
		uuid:            uuid,
		properties:      properties,
		framesPerBuffer: framesPerBuffer,
		callback:        callback,
		period:          time.Duration(framesPerBuffer) * time.Second / time.Duration(properties.SampleRate),
		encoder:         encoder,
		fileHandle:      f,
		block:           make([]float32, samplesPerBlock),
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				SampleRate:  properties.SampleRate,
				NumChannels: properties.NumChannels,
			},
			Data:           make([]int, samplesPerBlock),
			SourceBitDepth: 16,
		},
	}, nil
}

func (d *FileAudioOutputDevice) Start() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return errors.New("file output device closed")
	}
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.stop, d.done)
	d.logger.Info("file output device started")
	return nil
}

func (d *FileAudioOutputDevice) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.mutex.Lock()
			err := d.renderBlock(d.framesPerBuffer)
			d.mutex.Unlock()
			if err != nil {
				d.logger.Error("error while writing block to file", "err", err)
			}
		case <-stop:
			return
		}
	}
}

// RenderFrames pulls frames frames from the callback immediately and writes them.
func (d *FileAudioOutputDevice) RenderFrames(frames int) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return errors.New("file output device closed")
	}

	for frames > 0 {
		n := min(frames, d.framesPerBuffer)
		if err := d.renderBlock(n); err != nil {
			return err
		}
		frames -= n
	}
	return nil
}

// Must be called with the mutex held.
func (d *FileAudioOutputDevice) renderBlock(frames int) error {
	const maxInt16 = float32(math.MaxInt16)

	block := d.block[:frames*d.properties.NumChannels]
	d.callback(block)

	d.intBuf.Data = d.intBuf.Data[:len(block)]
	for i, sample := range block {
		// The mixer does not clamp; a 16-bit file must.
		sample = max(-1, min(1, sample))
		d.intBuf.Data[i] = int(sample * maxInt16)
	}

	if err := d.encoder.Write(d.intBuf); err != nil {
		return err
	}
	d.framesWritten += frames
	return nil
}

func (d *FileAudioOutputDevice) Stop() error {
	d.mutex.Lock()
	stop, done := d.stop, d.done
	d.stop = nil
	d.mutex.Unlock()

	if stop != nil {
		close(stop)
		<-done
		d.logger.Debug("file output device stopped")
	}
	return nil
}

// Close stops rendering and finalizes the .WAV header.
func (d *FileAudioOutputDevice) Close() error {
	d.logger.Debug("shutdown called")
	d.Stop()
	d.shutdownOnce.Do(func() {
		d.mutex.Lock()
		defer d.mutex.Unlock()
		d.closed = true

		errEncoder := d.encoder.Close()
		errSync := d.fileHandle.Sync()
		errClose := d.fileHandle.Close()
		d.closeErr = errors.Join(errEncoder, errSync, errClose)
		d.logger.Info("file output device closed", "framesWritten", d.framesWritten)
	})
	return d.closeErr
}

// Number of frames written to the file so far.
func (d *FileAudioOutputDevice) FramesWritten() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.framesWritten
}

func (d *FileAudioOutputDevice) GetDeviceProperties() audiodevice.DeviceProperties {
	return d.properties
}
