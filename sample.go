package keyvibes

import "fmt"

// Fixed output format. Packs must decode to this rate and channel count;
// the mixer performs no resampling.
const (
	SampleRate = 44100
	Channels   = 2
)

// Sample is one decoded sound: interleaved stereo float32 frames in [-1, 1].
// Samples are shared by reference between the engine and active voices and
// never mutated after decoding.
type Sample struct {
	Name string
	Data []float32
}

// Frames returns the sample length in stereo frames.
func (s *Sample) Frames() int { return len(s.Data) / Channels }

// Pack is a named set of sample pools, one per category. A pack is
// immutable once built; the engine swaps whole packs, never single pools.
type Pack struct {
	Name  string
	pools [numCategories][]*Sample
}

// NewPack builds a pack from per-category pools. Categories without samples
// are valid; trigger falls back to the normal pool at play time.
func NewPack(name string, pools map[Category][]*Sample) *Pack {
	p := &Pack{Name: name}
	for c, samples := range pools {
		if c >= 0 && c < numCategories {
			p.pools[c] = samples
		}
	}
	return p
}

// Pool returns the ordered sample pool for a category.
func (p *Pack) Pool(c Category) []*Sample {
	if c < 0 || c >= numCategories {
		return nil
	}
	return p.pools[c]
}

// SampleCount returns the total number of samples across all pools.
func (p *Pack) SampleCount() int {
	n := 0
	for _, pool := range p.pools {
		n += len(pool)
	}
	return n
}

// SampleStore resolves pack names to decoded packs. Implementations do
// blocking I/O; the engine only calls Load from control paths.
type SampleStore interface {
	Load(name string) (*Pack, error)
}

// PackLoadError reports why a pack could not be loaded. Loading is
// all-or-nothing: a single bad file rejects the whole pack and the
// previously active pack stays in effect.
type PackLoadError struct {
	Pack string
	Path string
	Err  error
}

func (e *PackLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load pack %q: %v", e.Pack, e.Err)
	}
	return fmt.Sprintf("load pack %q: %s: %v", e.Pack, e.Path, e.Err)
}

func (e *PackLoadError) Unwrap() error { return e.Err }
