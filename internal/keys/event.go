// Package keys reads single keystrokes and line edits from a terminal in
// raw mode.
package keys

import "fmt"

// Key identifies a decoded keystroke.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEsc
	KeyBackspace
	// KeyChar carries a printable rune in Event.Rune.
	KeyChar
)

// Event is one decoded keystroke.
type Event struct {
	Key  Key
	Rune rune
}

// Char builds a KeyChar event.
func Char(r rune) Event {
	return Event{Key: KeyChar, Rune: r}
}

// String returns the binding name of the event: "up", "enter", "space",
// or the character itself.
func (e Event) String() string {
	switch e.Key {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyEnter:
		return "enter"
	case KeyEsc:
		return "esc"
	case KeyBackspace:
		return "backspace"
	case KeyChar:
		if e.Rune == ' ' {
			return "space"
		}
		return string(e.Rune)
	default:
		return fmt.Sprintf("Key(%d)", int(e.Key))
	}
}

// EditKind is the kind of a line edit.
type EditKind int

const (
	EditInsert EditKind = iota
	EditBackspace
	// EditSubmit ends the line: the user pressed enter.
	EditSubmit
	// EditCancel ends the line: the user pressed esc or ctrl-c, or input failed.
	EditCancel
)

// Edit is one step of line input.
type Edit struct {
	Kind EditKind
	Rune rune
}
