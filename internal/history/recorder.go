package history

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Recorder receives finished transfers
type Recorder interface {
	Record(t types.Transfer)
}

// Nop discards everything; used when history is disabled
type Nop struct{}

func (Nop) Record(types.Transfer) {}

// LogRecorder saves into a Manager and trims it to MaxEntries when that
// is positive. Failures are logged and never reach the transfer.
type LogRecorder struct {
	Manager    *Manager
	Logger     zerolog.Logger
	MaxEntries int
}

func (r LogRecorder) Record(t types.Transfer) {
	if _, err := r.Manager.Save(t); err != nil {
		r.Logger.Warn().Err(err).Str("name", t.Name).Msg("history save failed")
		return
	}
	if r.MaxEntries <= 0 {
		return
	}
	if n, err := r.Manager.Prune(r.MaxEntries); err != nil {
		r.Logger.Warn().Err(err).Msg("history prune failed")
	} else if n > 0 {
		r.Logger.Debug().Int64("dropped", n).Msg("history pruned")
	}
}

// Track starts timing a transfer. The returned func fills in duration,
// size and error, and hands the entry to rec.
func Track(rec Recorder, t types.Transfer) func(bytes int64, err error) {
	start := time.Now()
	if t.Timestamp.IsZero() {
		t.Timestamp = start
	}
	return func(bytes int64, err error) {
		t.Bytes = bytes
		t.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			t.Error = err.Error()
		}
		rec.Record(t)
	}
}
