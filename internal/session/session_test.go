package session

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mozhi-it/LAN-Transfer/internal/chat"
	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/server"
	"github.com/mozhi-it/LAN-Transfer/internal/testutil"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

type memRecorder struct {
	mu  sync.Mutex
	got []types.Transfer
}

func (r *memRecorder) Record(t types.Transfer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
}

func newTestSession(t *testing.T) (*Session, *server.Server, *memRecorder) {
	t.Helper()
	srv := server.New(server.Options{UploadDir: t.TempDir()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.Poll.IntervalMs = 10
	cfg.Download.Dir = t.TempDir()
	rec := &memRecorder{}

	s := New(Options{Address: strings.TrimPrefix(ts.URL, "http://"), Config: cfg, Recorder: rec})
	t.Cleanup(s.Close)
	return s, srv, rec
}

func TestUserName(t *testing.T) {
	s, _, _ := newTestSession(t)
	testutil.AssertField(t, "default", s.UserName(), "CLI User")

	testutil.AssertNoError(t, s.SetUserName("  dana "))
	testutil.AssertField(t, "set", s.UserName(), "dana")
	testutil.AssertError(t, s.SetUserName(strings.Repeat("x", 21)))
	testutil.AssertField(t, "unchanged", s.UserName(), "dana")

	testutil.AssertField(t, "mine", s.IsMine(types.Message{Sender: "dana"}), true)
	testutil.AssertField(t, "not mine", s.IsMine(types.Message{Sender: "eve"}), false)
}

func TestTransfersAreRecorded(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "song.mp3")
	testutil.AssertNoError(t, os.WriteFile(local, []byte("la la la"), 0644))

	up, err := s.Upload(ctx, local, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "category", up.Category, types.CategoryAudios)

	path, err := s.Download(ctx, types.CategoryAudios, "song.mp3", nil)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "dir", filepath.Dir(path), s.Config().Download.Dir)

	n, err := s.Delete(ctx, types.CategoryAudios, "song.mp3", "missing.mp3")
	testutil.AssertField(t, "deleted", n, 1)
	testutil.AssertKind(t, err, errors.KindNotFound)

	testutil.AssertField(t, "recorded", len(rec.got), 4)
	testutil.AssertField(t, "upload bytes", rec.got[0].Bytes, int64(8))
	testutil.AssertField(t, "upload dir", rec.got[0].Direction, types.DirectionUpload)
	testutil.AssertField(t, "download bytes", rec.got[1].Bytes, int64(8))
	testutil.AssertField(t, "delete ok", rec.got[2].Succeeded(), true)
	testutil.AssertField(t, "delete failed", rec.got[3].Succeeded(), false)
	testutil.AssertField(t, "server", rec.got[0].Server, s.Address())
}

func TestPollingDeliversMessages(t *testing.T) {
	s, srv, _ := newTestSession(t)
	srv.Messages().Post("old", "before start")

	testutil.AssertNoError(t, s.StartPolling(context.Background()))
	waitFor(t, func() bool { return len(s.Store.Full()) == 1 })
	testutil.AssertField(t, "baseline silent", s.Notify.IsSet(), false)

	_, err := s.Send(context.Background(), "after start")
	testutil.AssertNoError(t, err)
	waitFor(t, s.Notify.IsSet)

	pending := s.Store.DrainPending()
	testutil.AssertField(t, "pending", len(pending), 1)
	testutil.AssertField(t, "sender", pending[0].Sender, "CLI User")

	s.Close()
	s.Close()
	testutil.AssertField(t, "stopped", s.PollerState(), chat.Stopped)
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "session.yaml")

	st, err := LoadState(path)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "empty", st, State{})

	want := State{LastAddress: "10.0.0.5:5000", UserName: "dana"}
	testutil.AssertNoError(t, SaveState(path, want))
	got, err := LoadState(path)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "state", got, want)

	testutil.AssertNoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	_, err = LoadState(path)
	testutil.AssertError(t, err)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
