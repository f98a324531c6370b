package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player decodes sound files once and plays them through the speaker.
type Player struct {
	mu          sync.Mutex
	logger      *slog.Logger
	volume      float64 // 0.0 to 1.0
	initialized bool
	sampleRate  beep.SampleRate
	buffers     map[string]*beep.Buffer
}

// NewPlayer creates a player at full volume. The speaker is initialised on
// first load.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		buffers:    make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume, clamped to 0.0-1.0.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = math.Max(0, math.Min(1, volume))
}

// Volume returns the playback volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Load decodes path into the cache. WAV, OGG and MP3 are supported.
func (p *Player) Load(path string) error {
	path = expandPath(path)

	p.mu.Lock()
	_, ok := p.buffers[path]
	p.mu.Unlock()
	if ok {
		return nil
	}

	buffer, err := p.decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.buffers[path] = buffer
	p.mu.Unlock()
	p.logger.Debug("loaded sound", "path", path)
	return nil
}

// Play plays path, loading it first if needed. It returns once playback has
// been queued.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	if err := p.Load(path); err != nil {
		return err
	}

	p.mu.Lock()
	buffer := p.buffers[expandPath(path)]
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())
	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}
	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeToDecibels(volume),
			Silent:   volume == 0,
		}
	}

	speaker.Play(streamer)
	return nil
}

func (p *Player) decode(path string) (*beep.Buffer, error) {
	decoder, err := decoderFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := decoder(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.initSpeaker(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(path string) (decodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }, nil
	case ".ogg":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }, nil
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %q", ext)
	}
}

func (p *Player) initSpeaker(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// Invalidate drops the cached decode of path so the next Play reads it
// again.
func (p *Player) Invalidate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buffers, expandPath(path))
}

// Close stops playback and drops cached sounds.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.buffers = make(map[string]*beep.Buffer)
}

// volumeToDecibels maps a linear volume to the base-2 exponent used by
// effects.Volume: 0.5 is one halving.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100
	}
	return math.Log2(volume)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
