package keyvibes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRenderBlocksPlaysQueuedVoicesToSilence(t *testing.T) {
	m := NewMixer()
	m.SetVolume(1)
	m.Play(testSample("click", 100, 0.5), 1.0)

	out := RenderBlocks(m, 32, 16)
	// 100 frames at 32 per block take 4 blocks to drain.
	if want := 4 * 32 * Channels; len(out) != want {
		t.Fatalf("rendered %d floats, want %d", len(out), want)
	}
	if out[0] != 0.5 || out[99*Channels] != 0.5 {
		t.Fatalf("sample frames = %v, %v, want 0.5", out[0], out[99*Channels])
	}
	for i := 100 * Channels; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("tail[%d] = %v, want silence", i, out[i])
		}
	}
	if got := m.Voices(); got != 0 {
		t.Fatalf("voices after render = %d, want 0", got)
	}
}

func TestRenderBlocksStopsAtMaxBlocks(t *testing.T) {
	m := NewMixer()
	m.Play(testSample("long", 10000, 0.1), 1.0)

	out := RenderBlocks(m, 32, 3)
	if want := 3 * 32 * Channels; len(out) != want {
		t.Fatalf("rendered %d floats, want %d", len(out), want)
	}
	if got := m.Voices(); got != 1 {
		t.Fatalf("voices = %d, want 1 still active", got)
	}
}

func TestRenderBlocksRejectsBadArgs(t *testing.T) {
	if out := RenderBlocks(nil, 32, 4); out != nil {
		t.Fatalf("nil mixer rendered %d floats", len(out))
	}
	m := NewMixer()
	if out := RenderBlocks(m, 0, 4); out != nil {
		t.Fatalf("zero frame count rendered %d floats", len(out))
	}
	if out := RenderBlocks(m, 32, 0); out != nil {
		t.Fatalf("zero block count rendered %d floats", len(out))
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	samples := []float32{0.5, -0.5, 1.0, -1.0}
	if err := WriteWAV(f, samples); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rf.Close()
	dec := wav.NewDecoder(rf)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if int(dec.SampleRate) != SampleRate || int(dec.NumChans) != Channels {
		t.Fatalf("format = %d Hz %d ch, want %d Hz %d ch", dec.SampleRate, dec.NumChans, SampleRate, Channels)
	}
	want := []int{16383, -16383, 32767, -32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d ints, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("data[%d] = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWriteWAVClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := WriteWAV(f, []float32{2, -3}); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rf.Close()
	buf, err := wav.NewDecoder(rf).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Data[0] != 32767 || buf.Data[1] != -32767 {
		t.Fatalf("decoded = %v, want clamped full scale", buf.Data[:2])
	}
}
