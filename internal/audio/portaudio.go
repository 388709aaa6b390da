package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

const defaultCallbackFrames = 1024

var (
	paMu   sync.Mutex
	paRefs int
)

func acquirePortAudio() error {
	paMu.Lock()
	defer paMu.Unlock()
	if paRefs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return err
		}
	}
	paRefs++
	return nil
}

func releasePortAudio() {
	paMu.Lock()
	defer paMu.Unlock()
	if paRefs == 0 {
		return
	}
	paRefs--
	if paRefs == 0 {
		_ = portaudio.Terminate()
	}
}

// PortAudioPlayer drives a SampleSource from the portaudio stream callback.
// The device calls back on its own thread; source.Process is the only work
// done there.
type PortAudioPlayer struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	started bool
}

// NewPortAudioPlayer opens the default output device. bufferFrames <= 0
// selects a 1024-frame callback buffer.
func NewPortAudioPlayer(sampleRate, channels, bufferFrames int, source SampleSource) (*PortAudioPlayer, error) {
	if bufferFrames <= 0 {
		bufferFrames = defaultCallbackFrames
	}
	if err := acquirePortAudio(); err != nil {
		return nil, err
	}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), bufferFrames, func(out []float32) {
		source.Process(out)
	})
	if err != nil {
		releasePortAudio()
		return nil, err
	}
	return &PortAudioPlayer{stream: stream}, nil
}

func (p *PortAudioPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || p.started {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return err
	}
	p.started = true
	return nil
}

// Stop halts and closes the stream. Repeated calls are no-ops.
func (p *PortAudioPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	var firstErr error
	if p.started {
		if err := p.stream.Stop(); err != nil {
			firstErr = err
		}
		p.started = false
	}
	if err := p.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	p.stream = nil
	releasePortAudio()
	return firstErr
}
