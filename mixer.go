package keyvibes

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	intaudio "github.com/yosxke/Keyvibes/internal/audio"
)

// Driver names an audio output backend.
type Driver string

const (
	// DriverEbiten renders through the shared ebiten audio context.
	DriverEbiten Driver = "ebiten"
	// DriverPortAudio renders through a portaudio callback stream.
	DriverPortAudio Driver = "portaudio"
)

// ParseDriver resolves a driver name; the empty string selects the
// default ebiten backend.
func ParseDriver(name string) (Driver, error) {
	d, err := intaudio.ParseDriver(name)
	if err != nil {
		return "", err
	}
	return Driver(d), nil
}

const (
	defaultQueueSize = 256
	defaultVolume    = 0.5
)

// playRequest is what producers enqueue; each becomes one voice at the
// next render pass.
type playRequest struct {
	sample *Sample
	gain   float32
}

// voice is one in-flight playback instance. Voices are owned exclusively
// by the render goroutine once drained from the queue.
type voice struct {
	sample *Sample
	pos    int // frame cursor into the sample
	gain   float32
}

type MixerOption func(*mixerConfig)

type mixerConfig struct {
	volume    float64
	queueSize int
	driver    Driver
	log       zerolog.Logger
}

func defaultMixerConfig() mixerConfig {
	return mixerConfig{
		volume:    defaultVolume,
		queueSize: defaultQueueSize,
		driver:    DriverEbiten,
		log:       zerolog.Nop(),
	}
}

// WithVolume sets the initial master volume. Values outside [0, 1] clamp.
func WithVolume(v float64) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.volume = v
	}
}

// WithQueueSize sets the play-request queue capacity. Requests beyond a
// full queue are dropped, never blocked on.
func WithQueueSize(n int) MixerOption {
	return func(cfg *mixerConfig) {
		if n > 0 {
			cfg.queueSize = n
		}
	}
}

// WithDriver selects the output backend Start opens.
func WithDriver(d Driver) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.driver = d
	}
}

// WithMixerLogger sets the logger used on control paths. The render path
// never logs.
func WithMixerLogger(log zerolog.Logger) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.log = log
	}
}

// Mixer owns the play-request queue, the active voice set and the master
// volume, and renders all current voices additively into fixed-size blocks
// pulled by the output device. Producers enqueue through Play without ever
// blocking; the render goroutine is the only mutator of the voice set.
type Mixer struct {
	mu      sync.Mutex
	out     intaudio.Output
	open    func(sampleRate, channels int, source intaudio.SampleSource) (intaudio.Output, error)
	driver  Driver
	log     zerolog.Logger
	queue   chan playRequest
	voices  []voice
	volume  uint64 // float64 bits, read atomically by the render pass
	active  atomic.Int64
	dropped atomic.Uint64
}

func NewMixer(opts ...MixerOption) *Mixer {
	cfg := defaultMixerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Mixer{
		driver: cfg.driver,
		log:    cfg.log,
		queue:  make(chan playRequest, cfg.queueSize),
		voices: make([]voice, 0, 64),
	}
	m.open = func(sampleRate, channels int, source intaudio.SampleSource) (intaudio.Output, error) {
		return intaudio.NewOutput(intaudio.Driver(m.driver), sampleRate, channels, source)
	}
	m.SetVolume(cfg.volume)
	return m
}

// Play enqueues one sample for playback at the given gain. It never
// blocks: when the queue is full the request is dropped and counted.
// Never call Play from the render goroutine.
func (m *Mixer) Play(sample *Sample, gain float32) {
	if sample == nil || len(sample.Data) == 0 {
		return
	}
	select {
	case m.queue <- playRequest{sample: sample, gain: gain}:
	default:
		m.dropped.Add(1)
	}
}

// SetVolume stores the master volume for the next render block to observe.
// Values outside [0, 1] clamp.
func (m *Mixer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	atomic.StoreUint64(&m.volume, math.Float64bits(v))
}

// Volume returns the current master volume.
func (m *Mixer) Volume() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.volume))
}

// Voices returns the active voice count as of the most recent render pass.
func (m *Mixer) Voices() int {
	return int(m.active.Load())
}

// Dropped returns how many play requests were discarded on queue overflow.
func (m *Mixer) Dropped() uint64 {
	return m.dropped.Load()
}

// Process renders one block of interleaved stereo frames into dst. The
// output device calls it on its own goroutine at a cadence and block size
// the device determines; nothing else may call it while the device runs.
// The pass drains the queue into new voices, mixes every active voice
// scaled by its gain and the master volume, drops voices whose cursor
// reached the sample end and hard-clips the result to [-1, 1]. It takes no
// locks and does no I/O.
func (m *Mixer) Process(dst []float32) {
	m.drain()
	for i := range dst {
		dst[i] = 0
	}
	frames := len(dst) / Channels
	vol := float32(m.Volume())
	j := 0
	for i := range m.voices {
		v := &m.voices[i]
		n := v.sample.Frames() - v.pos
		if n > frames {
			n = frames
		}
		if n > 0 {
			scale := v.gain * vol
			base := v.pos * Channels
			for k := 0; k < n*Channels; k++ {
				dst[k] += v.sample.Data[base+k] * scale
			}
			v.pos += n
		}
		if v.pos < v.sample.Frames() {
			m.voices[j] = m.voices[i]
			j++
		}
	}
	m.voices = m.voices[:j]
	m.active.Store(int64(j))
	for i := range dst {
		if dst[i] > 1 {
			dst[i] = 1
		} else if dst[i] < -1 {
			dst[i] = -1
		}
	}
}

// drain moves every queued request into the active voice set.
func (m *Mixer) drain() {
	for {
		select {
		case req := <-m.queue:
			m.voices = append(m.voices, voice{sample: req.sample, gain: req.gain})
		default:
			return
		}
	}
}

// Start opens the output device and begins pulling render blocks.
func (m *Mixer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out != nil {
		return errors.New("mixer already started")
	}
	out, err := m.open(SampleRate, Channels, m)
	if err != nil {
		return err
	}
	if err := out.Play(); err != nil {
		_ = out.Stop()
		return err
	}
	m.out = out
	m.log.Debug().Str("driver", string(m.driver)).Int("sample_rate", SampleRate).Msg("audio output started")
	return nil
}

// Stop halts rendering and releases the output stream. It is idempotent;
// calls after the first return nil.
func (m *Mixer) Stop() error {
	m.mu.Lock()
	out := m.out
	m.out = nil
	m.mu.Unlock()
	if out == nil {
		return nil
	}
	err := out.Stop()
	m.log.Debug().Msg("audio output stopped")
	return err
}
