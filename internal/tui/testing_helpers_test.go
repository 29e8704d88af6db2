package tui

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/keys"
	"github.com/mozhi-it/LAN-Transfer/internal/server"
	"github.com/mozhi-it/LAN-Transfer/internal/session"
)

// Key sequences as a terminal sends them
const (
	keyUp    = "\x1b[A"
	keyDown  = "\x1b[B"
	keyEnter = "\r"
	// ctrl-c decodes to esc without the escape wait
	keyEsc = "\x03"
)

// keyScript feeds the runtime scripted input. A wait step holds further
// input back until its condition holds. Conditions run inside PollKey, on
// the runtime goroutine, so they may inspect the runtime freely.
type keyScript struct {
	mu       sync.Mutex
	steps    []scriptStep
	deadline time.Time
}

type scriptStep struct {
	data  []byte
	until func() bool
}

func newKeyScript() *keyScript {
	return &keyScript{deadline: time.Now().Add(5 * time.Second)}
}

// press queues keystrokes
func (k *keyScript) press(s ...string) *keyScript {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, part := range s {
		k.steps = append(k.steps, scriptStep{data: []byte(part)})
	}
	return k
}

// wait queues a condition
func (k *keyScript) wait(cond func() bool) *keyScript {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.steps = append(k.steps, scriptStep{until: cond})
	return k
}

// do queues a side effect that runs once input reaches it
func (k *keyScript) do(fn func()) *keyScript {
	return k.wait(func() bool { fn(); return true })
}

func (k *keyScript) ReadByte(timeout time.Duration) (byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for len(k.steps) > 0 {
		step := &k.steps[0]
		if step.until != nil {
			if !step.until() {
				if time.Now().After(k.deadline) {
					return 0, false, errors.New("key script stalled on a wait step")
				}
				k.mu.Unlock()
				time.Sleep(2 * time.Millisecond)
				k.mu.Lock()
				return 0, false, nil
			}
			k.steps = k.steps[1:]
			continue
		}
		if len(step.data) == 0 {
			k.steps = k.steps[1:]
			continue
		}
		b := step.data[0]
		step.data = step.data[1:]
		return b, true, nil
	}
	return 0, false, errors.New("key script exhausted")
}

// testEnv is a runtime wired to an in-process server
type testEnv struct {
	rt      *Runtime
	srv     *server.Server
	sess    *session.Session
	script  *keyScript
	out     *bytes.Buffer
	copied  []string
	baseURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := server.New(server.Options{UploadDir: t.TempDir()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return newTestEnvAt(t, srv, ts.URL)
}

func newTestEnvAt(t *testing.T, srv *server.Server, baseURL string) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Poll.IntervalMs = 10
	cfg.TUI.KeyTimeoutMs = 5
	cfg.Client.ControlTimeout = 2 * time.Second
	cfg.Download.Dir = t.TempDir()

	sess := session.New(session.Options{
		Address: strings.TrimPrefix(baseURL, "http://"),
		Config:  cfg,
	})
	t.Cleanup(sess.Close)

	env := &testEnv{
		srv:     srv,
		sess:    sess,
		script:  newKeyScript(),
		out:     &bytes.Buffer{},
		baseURL: baseURL,
	}
	env.rt = New(Options{
		Session: sess,
		Keys:    keys.NewReaderFrom(env.script, nil),
		Out:     env.out,
		Width:   120,
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	})
	return env
}

// run drives the runtime until the script quits it
func (e *testEnv) run(t *testing.T) {
	t.Helper()
	if err := e.rt.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v\nlast frame:\n%s", err, e.lastFrame())
	}
}

// frames splits the output into repaints, escape codes removed
func (e *testEnv) frames() []string {
	parts := strings.Split(e.out.String(), ansi.EraseEntireScreen)
	out := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		out = append(out, ansi.Strip(p))
	}
	return out
}

func (e *testEnv) lastFrame() string {
	frames := e.frames()
	if len(frames) == 0 {
		return ""
	}
	return frames[len(frames)-1]
}

// anyFrame reports whether some repaint contains all of the given texts
func (e *testEnv) anyFrame(texts ...string) bool {
	for _, f := range e.frames() {
		all := true
		for _, s := range texts {
			if !strings.Contains(f, s) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// down returns n down-arrow presses
func down(n int) string {
	return strings.Repeat(keyDown, n)
}

// AssertModelField is a generic helper for checking runtime field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
