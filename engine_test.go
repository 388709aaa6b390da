package keyvibes

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

type stubStore struct {
	packs map[string]*Pack
	errs  map[string]error
}

func (s *stubStore) Load(name string) (*Pack, error) {
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	p, ok := s.packs[name]
	if !ok {
		return nil, &PackLoadError{Pack: name, Err: errors.New("unknown pack")}
	}
	return p, nil
}

func seededEngine(t *testing.T, store SampleStore, m *Mixer) *Engine {
	t.Helper()
	return NewEngine(store, m, WithRandom(rand.New(rand.NewSource(1))))
}

func drainIntoVoices(m *Mixer) []voice {
	dst := make([]float32, 64*Channels)
	m.Process(dst)
	return m.voices
}

func TestEngineTriggerWithoutPackIsNoOp(t *testing.T) {
	m := NewMixer()
	e := seededEngine(t, &stubStore{}, m)
	e.Trigger(CategoryNormal)
	if got := len(drainIntoVoices(m)); got != 0 {
		t.Fatalf("voices = %d, want 0", got)
	}
}

func TestEngineDisabledDropsTriggers(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"default": NewPack("default", map[Category][]*Sample{
			CategoryNormal: {testSample("n1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("default"); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.SetEnabled(false)
	if e.Enabled() {
		t.Fatalf("engine still enabled after SetEnabled(false)")
	}
	e.Trigger(CategoryNormal)
	if got := len(drainIntoVoices(m)); got != 0 {
		t.Fatalf("voices = %d, want 0", got)
	}
	e.SetEnabled(true)
	e.Trigger(CategoryNormal)
	if got := len(drainIntoVoices(m)); got != 1 {
		t.Fatalf("voices after re-enable = %d, want 1", got)
	}
}

func TestEngineEmptyCategoryFallsBackToNormal(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"sparse": NewPack("sparse", map[Category][]*Sample{
			CategoryNormal: {testSample("n1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("sparse"); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.Trigger(CategorySpace)
	voices := drainIntoVoices(m)
	if len(voices) != 1 {
		t.Fatalf("voices = %d, want 1", len(voices))
	}
	if voices[0].sample.Name != "n1" {
		t.Fatalf("fallback picked %q, want n1", voices[0].sample.Name)
	}
}

func TestEngineEmptyPoolAndEmptyFallbackIsSilent(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"arrows-only": NewPack("arrows-only", map[Category][]*Sample{
			CategoryArrow: {testSample("a1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("arrows-only"); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.Trigger(CategorySpace)
	if got := len(drainIntoVoices(m)); got != 0 {
		t.Fatalf("voices = %d, want 0", got)
	}
}

func TestEngineTriggerPrefersOwnCategoryPool(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"full": NewPack("full", map[Category][]*Sample{
			CategoryNormal: {testSample("n1", 100, 0.1)},
			CategorySpace:  {testSample("sp1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("full"); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.Trigger(CategorySpace)
	voices := drainIntoVoices(m)
	if len(voices) != 1 || voices[0].sample.Name != "sp1" {
		t.Fatalf("voices = %+v, want one voice playing sp1", voices)
	}
}

func TestEngineTriggerKeyClassifies(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"full": NewPack("full", map[Category][]*Sample{
			CategoryNormal: {testSample("n1", 100, 0.1)},
			CategoryEnter:  {testSample("en1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("full"); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.TriggerKey(KeyEnter)
	voices := drainIntoVoices(m)
	if len(voices) != 1 || voices[0].sample.Name != "en1" {
		t.Fatalf("voices = %+v, want one voice playing en1", voices)
	}
}

func TestEngineSelectionIsUniformAcrossPool(t *testing.T) {
	const trials = 10000
	m := NewMixer(WithQueueSize(trials))
	store := &stubStore{packs: map[string]*Pack{
		"pair": NewPack("pair", map[Category][]*Sample{
			CategoryNormal: {
				testSample("first", 200, 0.1),
				testSample("second", 200, 0.1),
			},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("pair"); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < trials; i++ {
		e.Trigger(CategoryNormal)
	}
	voices := drainIntoVoices(m)
	if len(voices) != trials {
		t.Fatalf("voices = %d, want %d", len(voices), trials)
	}
	firstCount := 0
	for _, v := range voices {
		if v.sample.Name == "first" {
			firstCount++
		}
	}
	// 6 sigma around an even split; deterministic for the fixed seed.
	if firstCount < 4700 || firstCount > 5300 {
		t.Fatalf("first sample chosen %d/%d times, outside even-split tolerance", firstCount, trials)
	}
}

func TestEngineGainStaysInConfiguredRange(t *testing.T) {
	const trials = 10000
	m := NewMixer(WithQueueSize(trials))
	store := &stubStore{packs: map[string]*Pack{
		"one": NewPack("one", map[Category][]*Sample{
			CategoryNormal: {testSample("n1", 200, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("one"); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < trials; i++ {
		e.Trigger(CategoryNormal)
	}
	for _, v := range drainIntoVoices(m) {
		if v.gain < 0.85 || v.gain > 1.05 {
			t.Fatalf("gain %v outside [0.85, 1.05]", v.gain)
		}
	}
}

func TestEngineFailedLoadKeepsPreviousPack(t *testing.T) {
	m := NewMixer()
	store := &stubStore{
		packs: map[string]*Pack{
			"good": NewPack("good", map[Category][]*Sample{
				CategoryNormal: {testSample("g1", 100, 0.1)},
			}),
		},
		errs: map[string]error{
			"corrupt": &PackLoadError{Pack: "corrupt", Path: "corrupt/normal_1.wav", Err: errors.New("bad header")},
		},
	}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("good"); err != nil {
		t.Fatalf("load good: %v", err)
	}

	err := e.LoadPack("corrupt")
	if err == nil {
		t.Fatalf("loading corrupt pack should fail")
	}
	var ple *PackLoadError
	if !errors.As(err, &ple) || ple.Pack != "corrupt" {
		t.Fatalf("error = %v, want *PackLoadError for corrupt", err)
	}
	if got := e.Pack(); got != "good" {
		t.Fatalf("active pack = %q, want good", got)
	}

	e.Trigger(CategoryNormal)
	voices := drainIntoVoices(m)
	if len(voices) != 1 || voices[0].sample.Name != "g1" {
		t.Fatalf("voices = %+v, want one voice from the retained pack", voices)
	}
}

func TestEngineLoadPackSwapsWholePack(t *testing.T) {
	m := NewMixer()
	store := &stubStore{packs: map[string]*Pack{
		"a": NewPack("a", map[Category][]*Sample{
			CategoryNormal: {testSample("a1", 100, 0.1)},
		}),
		"b": NewPack("b", map[Category][]*Sample{
			CategoryNormal: {testSample("b1", 100, 0.1)},
		}),
	}}
	e := seededEngine(t, store, m)
	if e.Pack() != "" {
		t.Fatalf("pack before load = %q, want empty", e.Pack())
	}
	if err := e.LoadPack("a"); err != nil {
		t.Fatalf("load a: %v", err)
	}
	if err := e.LoadPack("b"); err != nil {
		t.Fatalf("load b: %v", err)
	}
	if got := e.Pack(); got != "b" {
		t.Fatalf("active pack = %q, want b", got)
	}
	e.Trigger(CategoryNormal)
	voices := drainIntoVoices(m)
	if len(voices) != 1 || voices[0].sample.Name != "b1" {
		t.Fatalf("voices = %+v, want one voice from pack b", voices)
	}
}

func TestEngineTriggersDuringLoadSeeOldOrNewPack(t *testing.T) {
	m := NewMixer(WithQueueSize(4096))
	store := &stubStore{packs: map[string]*Pack{
		"a": NewPack("a", map[Category][]*Sample{
			CategoryNormal: {testSample("a1", 5000, 0.01)},
		}),
		"b": NewPack("b", map[Category][]*Sample{
			CategoryNormal: {testSample("b1", 5000, 0.01)},
		}),
	}}
	e := seededEngine(t, store, m)
	if err := e.LoadPack("a"); err != nil {
		t.Fatalf("load a: %v", err)
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				e.TriggerKey("a")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		name := "a"
		if i%2 == 1 {
			name = "b"
		}
		if err := e.LoadPack(name); err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
	}
	wg.Wait()

	for _, v := range drainIntoVoices(m) {
		if v.sample.Name != "a1" && v.sample.Name != "b1" {
			t.Fatalf("voice from unexpected sample %q", v.sample.Name)
		}
	}
}
