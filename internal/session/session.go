// Package session holds everything one connection to a server needs: the
// service, the shared message store, the notification flag, the poller,
// and the local user name. The terminal runtime and the CLI commands both
// work through a Session.
package session

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mozhi-it/LAN-Transfer/internal/chat"
	"github.com/mozhi-it/LAN-Transfer/internal/client"
	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/history"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Options configures a Session
type Options struct {
	// Address is "host[:port]" of the server
	Address string
	Config  *config.Config
	Logger  zerolog.Logger
	// Recorder receives finished transfers; nil disables history
	Recorder history.Recorder
	// HTTP overrides the HTTP client, mostly for tests
	HTTP *http.Client
}

// Session is the explicit context object passed to every screen
type Session struct {
	cfg      *config.Config
	address  string
	log      zerolog.Logger
	recorder history.Recorder

	Service *client.Service
	Store   *chat.Store
	Notify  *chat.Signal
	poller  *chat.Poller

	mu       sync.RWMutex
	userName string
}

// New creates a session. The poller is not started.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = history.Nop{}
	}

	wc := client.New(opts.Address, client.Options{
		ControlTimeout:  cfg.Client.ControlTimeout,
		TransferTimeout: cfg.Client.TransferTimeout,
		BlockSize:       cfg.Client.BlockSize,
		HTTP:            opts.HTTP,
		Logger:          opts.Logger,
	})

	s := &Session{
		cfg:      cfg,
		address:  opts.Address,
		log:      opts.Logger,
		recorder: rec,
		Service:  client.NewService(wc),
		Store:    chat.NewStore(),
		Notify:   &chat.Signal{},
		userName: cfg.User.Name,
	}
	s.poller = chat.NewPoller(s.Service, s.Store, s.Notify, chat.PollerOptions{
		Interval: cfg.Poll.PollInterval(),
		Logger:   opts.Logger,
	})
	return s
}

// Config returns the configuration the session was built with
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Address returns the server address
func (s *Session) Address() string {
	return s.address
}

// Logger returns the session logger
func (s *Session) Logger() zerolog.Logger {
	return s.log
}

// StartPolling launches the background message poller
func (s *Session) StartPolling(ctx context.Context) error {
	return s.poller.Start(ctx)
}

// PollerState reports the poller lifecycle state
func (s *Session) PollerState() chat.State {
	return s.poller.State()
}

// Close stops the poller and waits for it. Safe to call more than once.
func (s *Session) Close() {
	s.poller.Close()
}

// UserName returns the sender name attached to outgoing messages
func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// SetUserName changes the sender name
func (s *Session) SetUserName(name string) error {
	name = strings.TrimSpace(name)
	if err := config.ValidateUserName(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.userName = name
	s.mu.Unlock()
	return nil
}

// IsMine reports whether m was sent under the current user name
func (s *Session) IsMine(m types.Message) bool {
	return m.Sender == s.UserName()
}

// Send posts a chat message under the current user name
func (s *Session) Send(ctx context.Context, content string) (*types.Message, error) {
	return s.Service.SendMessage(ctx, s.UserName(), content)
}

// Files lists one category
func (s *Session) Files(ctx context.Context, category types.Category) ([]types.FileRecord, error) {
	return s.Service.Files(ctx, category)
}

// Upload sends a local file and records the transfer
func (s *Session) Upload(ctx context.Context, localPath string, onProgress client.ProgressFunc) (*types.FileRecord, error) {
	finish := history.Track(s.recorder, types.Transfer{
		Direction: types.DirectionUpload,
		Server:    s.address,
		Category:  types.CategoryFor(localPath),
		Name:      baseName(localPath),
		LocalPath: localPath,
	})

	var sent int64
	rec, err := s.Service.UploadFile(ctx, localPath, func(done, total int64) {
		sent = done
		if onProgress != nil {
			onProgress(done, total)
		}
	})
	finish(sent, err)
	if err != nil {
		s.log.Warn().Err(err).Str("path", localPath).Msg("upload failed")
		return nil, err
	}
	s.log.Info().Str("name", rec.Name).Str("category", string(rec.Category)).Msg("uploaded")
	return rec, nil
}

// Download fetches a remote file into the configured download directory
func (s *Session) Download(ctx context.Context, category types.Category, name string, onProgress client.ProgressFunc) (string, error) {
	finish := history.Track(s.recorder, types.Transfer{
		Direction: types.DirectionDownload,
		Server:    s.address,
		Category:  category,
		Name:      name,
	})

	path, n, err := s.Service.DownloadFile(ctx, category, name, s.cfg.Download.Dir, onProgress)
	finish(n, err)
	if err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("download failed")
		return "", err
	}
	s.log.Info().Str("name", name).Str("path", path).Int64("bytes", n).Msg("downloaded")
	return path, nil
}

// Delete removes remote files one by one. It stops at the first failure and
// returns how many were deleted before it.
func (s *Session) Delete(ctx context.Context, category types.Category, names ...string) (int, error) {
	for i, name := range names {
		finish := history.Track(s.recorder, types.Transfer{
			Direction: types.DirectionDelete,
			Server:    s.address,
			Category:  category,
			Name:      name,
		})
		err := s.Service.DeleteFile(ctx, category, name)
		finish(0, err)
		if err != nil {
			s.log.Warn().Err(err).Str("name", name).Msg("delete failed")
			return i, err
		}
	}
	return len(names), nil
}

// Link returns the direct download URL of a remote file
func (s *Session) Link(category types.Category, name string) string {
	return s.Service.Link(category, name)
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
