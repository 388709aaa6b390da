// Package input turns raw terminal bytes into key names for the sound
// engine. A Reader owns stdin in raw mode and emits one Key per decoded
// press; DecodeSequence is the pure decoding step.
package input

import (
	"strings"
	"unicode/utf8"

	keyvibes "github.com/yosxke/Keyvibes"
)

// tildeKeys maps the numeric parameter of CSI <n> ~ sequences.
var tildeKeys = map[string]keyvibes.Key{
	"1":  keyvibes.KeyHome,
	"2":  keyvibes.KeyInsert,
	"3":  keyvibes.KeyDelete,
	"4":  keyvibes.KeyEnd,
	"5":  keyvibes.KeyPageUp,
	"6":  keyvibes.KeyPageDown,
	"7":  keyvibes.KeyHome,
	"8":  keyvibes.KeyEnd,
	"11": "f1",
	"12": "f2",
	"13": "f3",
	"14": "f4",
	"15": "f5",
	"17": "f6",
	"18": "f7",
	"19": "f8",
	"20": "f9",
	"21": "f10",
	"23": "f11",
	"24": "f12",
}

// ss3Keys maps the final byte of ESC O <x> sequences.
var ss3Keys = map[byte]keyvibes.Key{
	'P': "f1",
	'Q': "f2",
	'R': "f3",
	'S': "f4",
	'H': keyvibes.KeyHome,
	'F': keyvibes.KeyEnd,
}

// DecodeSequence decodes the leading key press in buf. It returns the key
// name and the number of bytes consumed. n == 0 means buf holds an
// incomplete sequence and more bytes are needed; n > 0 with an empty key
// means the bytes were consumed but carry no key press.
func DecodeSequence(buf []byte) (key keyvibes.Key, n int) {
	if len(buf) == 0 {
		return "", 0
	}
	b := buf[0]
	switch {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r' || b == '\n':
		return keyvibes.KeyEnter, 1
	case b == '\t':
		return keyvibes.KeyTab, 1
	case b == 0x7f || b == 0x08:
		return keyvibes.KeyBackspace, 1
	case b == ' ':
		return keyvibes.KeySpace, 1
	case b < 0x20:
		// Remaining control bytes (Ctrl combinations) carry no key name.
		return "", 1
	case b < 0x7f:
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		return keyvibes.Key(rune(b)), 1
	default:
		if !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
			return "", 0
		}
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			return "", 1
		}
		return keyvibes.Key(strings.ToLower(string(r))), size
	}
}

func decodeEscape(buf []byte) (keyvibes.Key, int) {
	if len(buf) < 2 {
		return "", 0
	}
	switch buf[1] {
	case '[':
		i := 2
		for i < len(buf) && (buf[i] == ';' || (buf[i] >= '0' && buf[i] <= '9')) {
			i++
		}
		if i >= len(buf) {
			return "", 0
		}
		final := buf[i]
		n := i + 1
		switch final {
		case 'A':
			return keyvibes.KeyUp, n
		case 'B':
			return keyvibes.KeyDown, n
		case 'C':
			return keyvibes.KeyRight, n
		case 'D':
			return keyvibes.KeyLeft, n
		case 'H':
			return keyvibes.KeyHome, n
		case 'F':
			return keyvibes.KeyEnd, n
		case '~':
			params := string(buf[2 : n-1])
			if j := strings.IndexByte(params, ';'); j >= 0 {
				params = params[:j]
			}
			if k, ok := tildeKeys[params]; ok {
				return k, n
			}
			return "", n
		default:
			return "", n
		}
	case 'O':
		if len(buf) < 3 {
			return "", 0
		}
		if k, ok := ss3Keys[buf[2]]; ok {
			return k, 3
		}
		return "", 3
	default:
		// Alt chords arrive as ESC plus the key byte; report the escape
		// and let the next byte decode on its own.
		return keyvibes.KeyEscape, 1
	}
}
