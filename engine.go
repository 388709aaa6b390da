package keyvibes

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultGainLow  = 0.85
	defaultGainHigh = 1.05
)

type EngineOption func(*engineConfig)

type engineConfig struct {
	rng      *rand.Rand
	gainLow  float32
	gainHigh float32
	log      zerolog.Logger
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		gainLow:  defaultGainLow,
		gainHigh: defaultGainHigh,
		log:      zerolog.Nop(),
	}
}

// WithRandom sets the randomness source used for sample and gain
// selection. Tests pass a seeded source to make selection deterministic.
func WithRandom(rng *rand.Rand) EngineOption {
	return func(cfg *engineConfig) {
		if rng != nil {
			cfg.rng = rng
		}
	}
}

// WithGainRange overrides the uniform per-trigger gain range.
func WithGainRange(low, high float32) EngineOption {
	return func(cfg *engineConfig) {
		cfg.gainLow = low
		cfg.gainHigh = high
	}
}

// WithLogger sets the logger used on control paths.
func WithLogger(log zerolog.Logger) EngineOption {
	return func(cfg *engineConfig) {
		cfg.log = log
	}
}

// Engine turns classified key presses into mixer play requests. It holds
// the active pack, picks a random sample and gain per trigger and hands
// the pair to the mixer. All methods are safe for concurrent use from
// control goroutines; none of them ever block on the render path.
type Engine struct {
	store    SampleStore
	mixer    *Mixer
	pack     atomic.Pointer[Pack]
	enabled  atomic.Bool
	loadMu   sync.Mutex
	rngMu    sync.Mutex
	rng      *rand.Rand
	gainLow  float32
	gainHigh float32
	log      zerolog.Logger
}

func NewEngine(store SampleStore, mixer *Mixer, opts ...EngineOption) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{
		store:    store,
		mixer:    mixer,
		rng:      cfg.rng,
		gainLow:  cfg.gainLow,
		gainHigh: cfg.gainHigh,
		log:      cfg.log,
	}
	e.enabled.Store(true)
	return e
}

// LoadPack decodes the named pack through the store and makes it active.
// One bad file rejects the whole pack: on error the previous pack keeps
// playing and the error is returned to the caller. Concurrent triggers
// observe either the old pack or the new one, never a partial mapping.
func (e *Engine) LoadPack(name string) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	pack, err := e.store.Load(name)
	if err != nil {
		e.log.Warn().Err(err).Str("pack", name).Msg("pack load rejected")
		return err
	}
	e.pack.Store(pack)
	e.log.Info().Str("pack", name).Int("samples", pack.SampleCount()).Msg("pack loaded")
	return nil
}

// Pack returns the active pack name, or "" when none is loaded.
func (e *Engine) Pack() string {
	if p := e.pack.Load(); p != nil {
		return p.Name
	}
	return ""
}

// SetEnabled toggles triggering. A disabled engine drops triggers without
// touching the mixer.
func (e *Engine) SetEnabled(enabled bool) {
	e.enabled.Store(enabled)
}

func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// Trigger plays one sound for the category. It returns immediately in all
// cases: a disabled engine, a missing pack and an empty pool with an empty
// normal fallback are silent no-ops, and the mixer enqueue never blocks.
func (e *Engine) Trigger(category Category) {
	if !e.enabled.Load() {
		return
	}
	pack := e.pack.Load()
	if pack == nil {
		return
	}
	pool := pack.Pool(category)
	if len(pool) == 0 {
		pool = pack.Pool(CategoryNormal)
	}
	if len(pool) == 0 {
		e.log.Debug().Stringer("category", category).Msg("no samples for category")
		return
	}
	sample, gain := e.pick(pool)
	e.mixer.Play(sample, gain)
}

// TriggerKey classifies the key and triggers its category.
func (e *Engine) TriggerKey(k Key) {
	e.Trigger(ClassifyKey(k))
}

// pick selects a pool sample uniformly and draws an independent gain from
// the configured range. The rng mutex is control-plane only; the render
// goroutine never takes it.
func (e *Engine) pick(pool []*Sample) (*Sample, float32) {
	e.rngMu.Lock()
	idx := e.rng.Intn(len(pool))
	gain := e.gainLow + e.rng.Float32()*(e.gainHigh-e.gainLow)
	e.rngMu.Unlock()
	return pool[idx], gain
}
