//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package keys

import (
	"os"
	"time"
)

type readResult struct {
	b   byte
	err error
}

// chanSource reads on a background goroutine where poll(2) is unavailable.
// A byte read after a timeout is kept for the next call.
type chanSource struct {
	ch chan readResult
}

func newFileSource(f *os.File) ByteSource {
	s := &chanSource{ch: make(chan readResult)}
	go func() {
		var buf [1]byte
		for {
			_, err := f.Read(buf[:])
			s.ch <- readResult{buf[0], err}
			if err != nil {
				return
			}
		}
	}()
	return s
}

func (s *chanSource) ReadByte(timeout time.Duration) (byte, bool, error) {
	if timeout < 0 {
		r := <-s.ch
		return r.b, r.err == nil, r.err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-s.ch:
		return r.b, r.err == nil, r.err
	case <-timer.C:
		return 0, false, nil
	}
}
