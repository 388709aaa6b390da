package keyvibes

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RenderBlocks drives the mixer's render callback directly, without an audio
// device, until every queued voice has played out. At most maxBlocks blocks
// of frameCount frames are rendered.
func RenderBlocks(m *Mixer, frameCount, maxBlocks int) []float32 {
	if m == nil || frameCount <= 0 || maxBlocks <= 0 {
		return nil
	}
	out := make([]float32, 0, frameCount*Channels)
	block := make([]float32, frameCount*Channels)
	for i := 0; i < maxBlocks; i++ {
		m.Process(block)
		out = append(out, block...)
		if m.Voices() == 0 {
			break
		}
	}
	return out
}

// WriteWAV encodes interleaved stereo float32 frames as 16-bit PCM at the
// engine sample rate. The writer must seek so the encoder can patch chunk
// sizes on Close; an *os.File works.
func WriteWAV(w io.WriteSeeker, samples []float32) error {
	enc := wav.NewEncoder(w, SampleRate, 16, Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
