package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mozhi-it/LAN-Transfer/internal/testutil"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "nested", "history.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func save(t *testing.T, m *Manager, entries ...types.Transfer) {
	t.Helper()
	for _, e := range entries {
		id, err := m.Save(e)
		testutil.AssertNoError(t, err)
		if id == 0 {
			t.Fatal("expected a row id")
		}
	}
}

func TestSaveAndList(t *testing.T) {
	m := newManager(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)

	save(t, m,
		types.Transfer{Timestamp: base, Direction: types.DirectionUpload, Server: "10.0.0.1:5000", Category: types.CategoryDocuments, Name: "a.pdf", LocalPath: "/tmp/a.pdf", Bytes: 1200, DurationMs: 40},
		types.Transfer{Timestamp: base.Add(time.Minute), Direction: types.DirectionDownload, Server: "10.0.0.2:5000", Category: types.CategoryImages, Name: "b.png", Bytes: 10},
		types.Transfer{Timestamp: base.Add(2 * time.Minute), Direction: types.DirectionDelete, Server: "10.0.0.1:5000", Category: types.CategoryImages, Name: "c.png", Error: "not found"},
	)

	all, err := m.List(Query{})
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "count", len(all), 3)
	testutil.AssertField(t, "newest first", all[0].Name, "c.png")
	testutil.AssertField(t, "error kept", all[0].Error, "not found")
	testutil.AssertField(t, "succeeded", all[0].Succeeded(), false)

	oldest := all[2]
	testutil.AssertField(t, "direction", oldest.Direction, types.DirectionUpload)
	testutil.AssertField(t, "category", oldest.Category, types.CategoryDocuments)
	testutil.AssertField(t, "local path", oldest.LocalPath, "/tmp/a.pdf")
	testutil.AssertField(t, "bytes", oldest.Bytes, int64(1200))
	testutil.AssertField(t, "timestamp", oldest.Timestamp.Equal(base), true)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"limit", Query{Limit: 1}, []string{"c.png"}},
		{"server", Query{Server: "10.0.0.1:5000"}, []string{"c.png", "a.pdf"}},
		{"server and limit", Query{Server: "10.0.0.1:5000", Limit: 1}, []string{"c.png"}},
		{"unknown server", Query{Server: "10.9.9.9:5000"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.List(tt.query)
			testutil.AssertNoError(t, err)
			var names []string
			for _, e := range got {
				names = append(names, e.Name)
			}
			testutil.AssertSliceEqual(t, "names", names, tt.want)
		})
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	m := newManager(t)
	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		save(t, m, types.Transfer{Timestamp: base.Add(time.Duration(i) * time.Second), Direction: types.DirectionUpload, Server: "s", Category: types.CategoryOthers, Name: fmt.Sprintf("f%d", i)})
	}

	dropped, err := m.Prune(2)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "dropped", dropped, int64(3))

	left, err := m.List(Query{})
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "left", len(left), 2)
	testutil.AssertField(t, "newest kept", left[0].Name, "f4")

	cleared, err := m.Clear()
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "cleared", cleared, int64(2))
	n, err := m.Count()
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "empty", n, 0)
}

type memRecorder struct{ got []types.Transfer }

func (r *memRecorder) Record(t types.Transfer) { r.got = append(r.got, t) }

func TestTrack(t *testing.T) {
	rec := &memRecorder{}
	done := Track(rec, types.Transfer{Direction: types.DirectionDownload, Name: "f.txt"})
	done(42, errors.New("connection reset"))

	testutil.AssertField(t, "recorded", len(rec.got), 1)
	got := rec.got[0]
	testutil.AssertField(t, "bytes", got.Bytes, int64(42))
	testutil.AssertField(t, "error", got.Error, "connection reset")
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLogRecorderCapsEntries(t *testing.T) {
	m := newManager(t)
	rec := LogRecorder{Manager: m, Logger: zerolog.Nop(), MaxEntries: 2}
	for i := range 4 {
		rec.Record(types.Transfer{Direction: types.DirectionUpload, Server: "s", Category: types.CategoryVideos, Name: fmt.Sprintf("v%d.mp4", i)})
	}

	n, err := m.Count()
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "count", n, 2)
}
