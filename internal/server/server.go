// Package server implements the LAN Transfer HTTP server: file storage by
// category, a small chat ring, and stats.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxUpload is the request body limit for uploads, 500 MB
	DefaultMaxUpload = 500 * 1024 * 1024

	shutdownTimeout = 5 * time.Second
)

// Options configures a Server
type Options struct {
	// Listen is the address to bind, e.g. ":5000"
	Listen string
	// UploadDir is where files are stored
	UploadDir string
	// MaxUploadBytes caps the size of one upload request
	MaxUploadBytes int64
	Logger         zerolog.Logger
	// Now is the clock used for timestamps and collision suffixes
	Now func() time.Time
}

// Server represents the file sharing server
type Server struct {
	opts     Options
	log      zerolog.Logger
	storage  *Storage
	messages *MessageLog
	router   *chi.Mux
}

// New creates a server; nothing listens until Run or Serve.
func New(opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = ":5000"
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUpload
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:     opts,
		log:      opts.Logger,
		storage:  NewStorage(opts.UploadDir, opts.Now),
		messages: NewMessageLog(opts.Now),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Storage exposes the file store
func (s *Server) Storage() *Storage {
	return s.storage
}

// Messages exposes the chat ring
func (s *Server) Messages() *MessageLog {
	return s.messages
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(s.log))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handlePostMessage)
		r.Get("/files/{category}", s.handleListFiles)
		r.Post("/upload", s.handleUpload)
		r.Get("/download/{category}/{filename}", s.handleDownload)
		r.Delete("/delete/{category}/{filename}", s.handleDelete)
		r.Get("/stats", s.handleStats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().
			Str("addr", ln.Addr().String()).
			Str("upload_dir", s.opts.UploadDir).
			Msg("server started")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// LocalAddresses lists the non-loopback IPv4 addresses of this host, used
// to tell users what to type on other machines.
func LocalAddresses() []string {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []string
	for _, a := range ifaces {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			out = append(out, ip4.String())
		}
	}
	return out
}
