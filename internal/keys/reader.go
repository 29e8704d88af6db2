package keys

import (
	"iter"
	"time"
	"unicode/utf8"
)

// EscapeWait is how long a lone ESC waits for the rest of a sequence.
const EscapeWait = 30 * time.Millisecond

// ByteSource delivers one byte at a time. ok is false when the timeout
// elapsed with nothing to read. A negative timeout waits forever.
type ByteSource interface {
	ReadByte(timeout time.Duration) (b byte, ok bool, err error)
}

// RawMode switches a terminal into raw mode and returns the function that
// restores the previous state.
type RawMode interface {
	MakeRaw() (restore func() error, err error)
}

// Reader decodes keystrokes from a ByteSource. Raw mode is held only for
// the duration of each call.
type Reader struct {
	src     ByteSource
	raw     RawMode
	escWait time.Duration
	err     error
}

// NewReaderFrom builds a Reader over an arbitrary source. raw may be nil.
func NewReaderFrom(src ByteSource, raw RawMode) *Reader {
	return &Reader{src: src, raw: raw, escWait: EscapeWait}
}

// Err returns the error that ended the last ReadLine, if any.
func (r *Reader) Err() error {
	return r.err
}

// PollKey waits up to timeout for one keystroke. ok is false when nothing
// usable arrived.
func (r *Reader) PollKey(timeout time.Duration) (ev Event, ok bool, err error) {
	restore, err := r.enterRaw()
	if err != nil {
		return Event{}, false, err
	}
	defer restore()

	return r.next(timeout)
}

// ReadLine yields line edits until enter or esc. Backspace is only yielded
// when there is something to erase. The terminal stays in raw mode while
// the sequence is being consumed and is restored when it ends, including
// when the consumer stops early.
func (r *Reader) ReadLine() iter.Seq[Edit] {
	return func(yield func(Edit) bool) {
		r.err = nil
		restore, err := r.enterRaw()
		if err != nil {
			r.err = err
			yield(Edit{Kind: EditCancel})
			return
		}
		defer restore()

		length := 0
		for {
			ev, ok, err := r.next(-1)
			if err != nil {
				r.err = err
				yield(Edit{Kind: EditCancel})
				return
			}
			if !ok {
				continue
			}

			switch ev.Key {
			case KeyEnter:
				yield(Edit{Kind: EditSubmit})
				return
			case KeyEsc:
				yield(Edit{Kind: EditCancel})
				return
			case KeyBackspace:
				if length == 0 {
					continue
				}
				length--
				if !yield(Edit{Kind: EditBackspace}) {
					return
				}
			case KeyChar:
				length++
				if !yield(Edit{Kind: EditInsert, Rune: ev.Rune}) {
					return
				}
			}
		}
	}
}

// ReadString collects a line from edits, calling onChange with the current
// text after every insert or backspace. ok is false when the line was
// cancelled.
func ReadString(edits iter.Seq[Edit], onChange func(string)) (line string, ok bool) {
	var buf []rune
	for e := range edits {
		switch e.Kind {
		case EditInsert:
			buf = append(buf, e.Rune)
		case EditBackspace:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		case EditSubmit:
			return string(buf), true
		case EditCancel:
			return string(buf), false
		}
		if onChange != nil {
			onChange(string(buf))
		}
	}
	return string(buf), false
}

func (r *Reader) enterRaw() (func(), error) {
	if r.raw == nil {
		return func() {}, nil
	}
	restore, err := r.raw.MakeRaw()
	if err != nil {
		return nil, err
	}
	return func() { restore() }, nil
}

// next reads and decodes one keystroke.
func (r *Reader) next(timeout time.Duration) (Event, bool, error) {
	b, ok, err := r.src.ReadByte(timeout)
	if err != nil || !ok {
		return Event{}, false, err
	}
	return r.decode(b)
}

func (r *Reader) decode(b byte) (Event, bool, error) {
	switch {
	case b == 0x1b:
		return r.decodeEscape()
	case b == '\r' || b == '\n':
		return Event{Key: KeyEnter}, true, nil
	case b == 0x7f || b == 0x08:
		return Event{Key: KeyBackspace}, true, nil
	case b == 0x03:
		return Event{Key: KeyEsc}, true, nil
	case b < 0x20:
		return Event{}, false, nil
	case b < utf8.RuneSelf:
		return Char(rune(b)), true, nil
	default:
		return r.decodeUTF8(b)
	}
}

// decodeEscape handles the bytes following ESC. Arrow keys arrive as
// ESC [ A-D or ESC O A-D; any other CSI sequence is read to its final
// byte and dropped.
func (r *Reader) decodeEscape() (Event, bool, error) {
	b, ok, err := r.src.ReadByte(r.escWait)
	if err != nil {
		return Event{}, false, err
	}
	if !ok {
		return Event{Key: KeyEsc}, true, nil
	}
	if b != '[' && b != 'O' {
		// alt+key: report the escape, drop the key
		return Event{Key: KeyEsc}, true, nil
	}

	intro := b
	b, ok, err = r.src.ReadByte(r.escWait)
	if err != nil || !ok {
		return Event{}, false, err
	}
	if key, isArrow := arrowKeys[b]; isArrow {
		return Event{Key: key}, true, nil
	}
	if intro == 'O' {
		return Event{}, false, nil
	}

	// parameter and intermediate bytes are 0x20-0x3f, the final byte 0x40-0x7e
	for b >= 0x20 && b <= 0x3f {
		b, ok, err = r.src.ReadByte(r.escWait)
		if err != nil || !ok {
			return Event{}, false, err
		}
	}
	return Event{}, false, nil
}

var arrowKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
}

func (r *Reader) decodeUTF8(lead byte) (Event, bool, error) {
	var need int
	switch {
	case lead&0xe0 == 0xc0:
		need = 2
	case lead&0xf0 == 0xe0:
		need = 3
	case lead&0xf8 == 0xf0:
		need = 4
	default:
		return Event{}, false, nil
	}

	buf := make([]byte, 1, need)
	buf[0] = lead
	for len(buf) < need {
		b, ok, err := r.src.ReadByte(r.escWait)
		if err != nil || !ok {
			return Event{}, false, err
		}
		buf = append(buf, b)
	}

	ru, size := utf8.DecodeRune(buf)
	if ru == utf8.RuneError && size <= 1 {
		return Event{}, false, nil
	}
	return Char(ru), true, nil
}
