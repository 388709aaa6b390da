// Package pack loads keyboard sound packs from a directory tree. Each pack
// is a subdirectory of the sounds root holding WAV files named
// <category>_<n>.wav, e.g. normal_3.wav or space_1.wav.
package pack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/wav"

	keyvibes "github.com/yosxke/Keyvibes"
)

// wavFormatPCM is the fmt-chunk audio format tag for integer PCM.
const wavFormatPCM = 1

// DirStore reads packs from subdirectories of a sounds root.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Packs lists the available pack names, sorted.
func (s *DirStore) Packs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read sounds root: %w", err)
	}
	var names []string
	for _, ent := range entries {
		if !ent.IsDir() || strings.HasPrefix(ent.Name(), ".") {
			continue
		}
		names = append(names, ent.Name())
	}
	return names, nil
}

// Load decodes every sample of the named pack. The load is all or nothing:
// any unreadable or malformed file fails the whole pack with a
// *keyvibes.PackLoadError and no partial pack is returned.
func (s *DirStore) Load(name string) (*keyvibes.Pack, error) {
	dir := filepath.Join(s.root, name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &keyvibes.PackLoadError{Pack: name, Err: err}
	}
	if !info.IsDir() {
		return nil, &keyvibes.PackLoadError{Pack: name, Err: errors.New("not a directory")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &keyvibes.PackLoadError{Pack: name, Err: err}
	}

	files := make(map[keyvibes.Category][]string)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		base := strings.ToLower(ent.Name())
		if !strings.HasSuffix(base, ".wav") {
			continue
		}
		for _, cat := range keyvibes.Categories() {
			if strings.HasPrefix(base, cat.String()+"_") {
				files[cat] = append(files[cat], ent.Name())
				break
			}
		}
	}

	pools := make(map[keyvibes.Category][]*keyvibes.Sample)
	for _, cat := range keyvibes.Categories() {
		names := files[cat]
		sort.Strings(names)
		for _, fname := range names {
			path := filepath.Join(dir, fname)
			data, err := decodeFile(path)
			if err != nil {
				return nil, &keyvibes.PackLoadError{Pack: name, Path: path, Err: err}
			}
			pools[cat] = append(pools[cat], &keyvibes.Sample{Name: fname, Data: data})
		}
	}
	return keyvibes.NewPack(name, pools), nil
}

// decodeFile reads one WAV file into interleaved stereo float32 frames.
// Only integer PCM at the engine sample rate is accepted; mono files are
// upmixed by duplicating each frame.
func decodeFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("wav audio format %d, want integer PCM", dec.WavAudioFormat)
	}
	if int(dec.SampleRate) != keyvibes.SampleRate {
		return nil, fmt.Errorf("sample rate %d Hz, want %d Hz", dec.SampleRate, keyvibes.SampleRate)
	}
	if dec.NumChans != 1 && dec.NumChans != 2 {
		return nil, fmt.Errorf("%d channels, want mono or stereo", dec.NumChans)
	}
	scale, offset := pcmScale(int(dec.BitDepth))
	if scale == 0 {
		return nil, fmt.Errorf("unsupported bit depth %d", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("no audio frames")
	}

	data := buf.Data
	if dec.NumChans == 1 {
		out := make([]float32, len(data)*keyvibes.Channels)
		for i, v := range data {
			s := float32(v-offset) / scale
			out[2*i] = s
			out[2*i+1] = s
		}
		return out, nil
	}
	if len(data)%keyvibes.Channels != 0 {
		return nil, errors.New("truncated stereo frame")
	}
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v-offset) / scale
	}
	return out, nil
}

// pcmScale returns the full-scale divisor and sample offset for an integer
// PCM bit depth. 8-bit WAV data is unsigned, hence the 128 offset.
func pcmScale(bitDepth int) (scale float32, offset int) {
	switch bitDepth {
	case 8:
		return 1 << 7, 128
	case 16:
		return 1 << 15, 0
	case 24:
		return 1 << 23, 0
	case 32:
		return 1 << 31, 0
	default:
		return 0, 0
	}
}
