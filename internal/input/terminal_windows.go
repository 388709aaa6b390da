//go:build windows

package input

import (
	"errors"

	keyvibes "github.com/yosxke/Keyvibes"
)

// Reader is a stub on Windows; raw console decoding is not wired up.
type Reader struct {
	keys chan keyvibes.Key
}

func NewReader() *Reader {
	return &Reader{keys: make(chan keyvibes.Key)}
}

func (r *Reader) Keys() <-chan keyvibes.Key {
	return r.keys
}

func (r *Reader) Start() error {
	return errors.New("raw terminal input is not supported on windows")
}

func (r *Reader) Stop() {}
