//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package keys

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// fdSource waits with poll(2) and reads a single byte per read(2), so no
// input is buffered between calls.
type fdSource struct {
	fd int
}

func newFileSource(f *os.File) ByteSource {
	return &fdSource{fd: int(f.Fd())}
}

func (s *fdSource) ReadByte(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	deadline := time.Now().Add(timeout)

	for {
		ms := -1
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int(remaining / time.Millisecond)
		}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			return 0, false, nil
		}
		break
	}

	var buf [1]byte
	for {
		n, err := unix.Read(s.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			return 0, false, io.EOF
		}
		return buf[0], true, nil
	}
}
