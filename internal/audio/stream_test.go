package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type rampSource struct{ next float32 }

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	p := make([]byte, 4*8) // 4 stereo frames
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("read %d bytes, want %d", n, len(p))
	}
	for i := 0; i < 8; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		want := float32(i) * 0.25
		if got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestStreamReaderSubFrameBufferReadsNothing(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 7))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 0 {
		t.Fatalf("read %d bytes from sub-frame buffer, want 0", n)
	}
}

func TestParseDriver(t *testing.T) {
	cases := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverEbiten, false},
		{"ebiten", DriverEbiten, false},
		{"portaudio", DriverPortAudio, false},
		{"alsa", "", true},
	}
	for _, tc := range cases {
		got, err := ParseDriver(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDriver(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDriver(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDriver(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
