package keys

import (
	"os"

	"golang.org/x/term"
)

// termRaw puts a file descriptor into raw mode with golang.org/x/term.
type termRaw struct {
	fd int
}

func (t termRaw) MakeRaw() (func() error, error) {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(t.fd, state) }, nil
}

// NewReader reads keys from f, normally os.Stdin. Raw mode is only used
// when f is a terminal.
func NewReader(f *os.File) *Reader {
	fd := int(f.Fd())
	var raw RawMode
	if term.IsTerminal(fd) {
		raw = termRaw{fd: fd}
	}
	return NewReaderFrom(newFileSource(f), raw)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
