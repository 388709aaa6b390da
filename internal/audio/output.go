package audio

import "fmt"

// Output is an opened audio device pulling blocks from a SampleSource.
// Play begins pulling; Stop halts the device and releases the stream.
type Output interface {
	Play() error
	Stop() error
}

// Driver selects the backend NewOutput opens.
type Driver string

const (
	DriverEbiten    Driver = "ebiten"
	DriverPortAudio Driver = "portaudio"
)

// ParseDriver resolves a driver name; the empty string means the default
// ebiten backend.
func ParseDriver(name string) (Driver, error) {
	switch name {
	case "", string(DriverEbiten):
		return DriverEbiten, nil
	case string(DriverPortAudio):
		return DriverPortAudio, nil
	default:
		return "", fmt.Errorf("unknown audio driver %q (expected ebiten|portaudio)", name)
	}
}

// NewOutput opens an output device on the given driver. The device is
// created stopped; call Play to begin pulling from the source.
func NewOutput(driver Driver, sampleRate, channels int, source SampleSource) (Output, error) {
	switch driver {
	case DriverEbiten, "":
		return NewPlayer(sampleRate, source)
	case DriverPortAudio:
		return NewPortAudioPlayer(sampleRate, channels, 0, source)
	default:
		return nil, fmt.Errorf("unknown audio driver %q", driver)
	}
}
