//go:build !windows

package input

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/term"

	keyvibes "github.com/yosxke/Keyvibes"
)

const (
	pollInterval = 5 * time.Millisecond
	// escFlushDelay is how long a lone ESC byte may wait for a
	// continuation before it is reported as the escape key itself.
	escFlushDelay = 50 * time.Millisecond
)

// Reader owns stdin in raw non-blocking mode and decodes key presses onto
// a channel. Ctrl-C and Ctrl-D end the stream; the channel is closed when
// the reader shuts down.
type Reader struct {
	keys        chan keyvibes.Key
	stopCh      chan struct{}
	done        chan struct{}
	stopped     sync.Once
	started     atomic.Bool
	fd          int
	nonblockSet bool
	oldState    *term.State
}

func NewReader() *Reader {
	return &Reader{
		keys:   make(chan keyvibes.Key, 64),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Keys is the stream of decoded presses. It is closed when the reader
// stops or the user interrupts with Ctrl-C or Ctrl-D.
func (r *Reader) Keys() <-chan keyvibes.Key {
	return r.keys
}

// Start puts stdin into raw mode and begins decoding in a goroutine.
// Call Stop to restore the terminal.
func (r *Reader) Start() error {
	r.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(r.fd) {
		return errors.New("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		return err
	}
	r.oldState = oldState

	if err := syscall.SetNonblock(r.fd, true); err != nil {
		_ = term.Restore(r.fd, r.oldState)
		r.oldState = nil
		return err
	}
	r.nonblockSet = true
	r.started.Store(true)

	go r.readLoop()
	return nil
}

func (r *Reader) readLoop() {
	defer close(r.done)
	defer close(r.keys)

	buf := make([]byte, 64)
	var pending []byte
	lastRead := time.Now()

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		n, err := syscall.Read(r.fd, buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			lastRead = time.Now()
		}

		for len(pending) > 0 {
			if pending[0] == 0x03 || pending[0] == 0x04 {
				return
			}
			key, used := DecodeSequence(pending)
			if used == 0 {
				if time.Since(lastRead) < escFlushDelay {
					break
				}
				// No continuation is coming; flush a lone escape,
				// drop anything else that cannot complete.
				if pending[0] == 0x1b {
					key, used = keyvibes.KeyEscape, 1
				} else {
					key, used = "", 1
				}
			}
			pending = pending[used:]
			if key == "" {
				continue
			}
			select {
			case r.keys <- key:
			case <-r.stopCh:
				return
			}
		}

		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(pollInterval)
		}
	}
}

// Stop ends the read goroutine and restores the terminal state. Safe to
// call more than once, and after the reader has already shut down on its
// own.
func (r *Reader) Stop() {
	r.stopped.Do(func() {
		close(r.stopCh)
	})
	if !r.started.Load() {
		return
	}
	<-r.done
	if r.nonblockSet {
		_ = syscall.SetNonblock(r.fd, false)
		r.nonblockSet = false
	}
	if r.oldState != nil {
		_ = term.Restore(r.fd, r.oldState)
		r.oldState = nil
	}
}
