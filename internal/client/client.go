package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
)

const (
	DefaultControlTimeout  = 10 * time.Second
	DefaultTransferTimeout = 5 * time.Minute
	DefaultBlockSize       = 64 * 1024

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 * 1024
)

// ProgressFunc receives the bytes transferred so far and the expected total.
// It is only called when total is known and non-zero.
type ProgressFunc func(done, total int64)

// FilePart is the file section of a multipart upload.
type FilePart struct {
	// Name is the filename sent in the part header.
	Name   string
	Reader io.Reader
	// Size is the number of bytes Reader will yield; 0 disables progress.
	Size int64
}

// Result is a successful (2xx) response.
type Result struct {
	Status int
	// Data holds the body when it is a JSON object.
	Data json.RawMessage
	// Raw holds the body when it is anything else.
	Raw string
}

// IsObject reports whether the body was a JSON object.
func (r *Result) IsObject() bool {
	return r != nil && len(r.Data) > 0
}

// WireClient is the transport used by Service, the poller and the CLI.
type WireClient interface {
	Request(ctx context.Context, method, path string, body any) (*Result, error)
	Upload(ctx context.Context, path string, fields map[string]string, file FilePart, onProgress ProgressFunc) (*Result, error)
	DownloadStreaming(ctx context.Context, path string, sink io.Writer, onProgress ProgressFunc) (int64, error)
}

// Options configures an HTTPClient. Zero values select the defaults.
type Options struct {
	ControlTimeout  time.Duration
	TransferTimeout time.Duration
	BlockSize       int
	// HTTP overrides the underlying client, mostly for tests.
	HTTP   *http.Client
	Logger zerolog.Logger
}

// HTTPClient implements WireClient on net/http.
type HTTPClient struct {
	baseURL         string
	http            *http.Client
	controlTimeout  time.Duration
	transferTimeout time.Duration
	blockSize       int
	log             zerolog.Logger
}

var _ WireClient = (*HTTPClient)(nil)

// New creates a client for a server address such as "192.168.1.20:5000"
// or "http://192.168.1.20:5000".
func New(address string, opts Options) *HTTPClient {
	c := &HTTPClient{
		baseURL:         NormalizeAddress(address),
		http:            opts.HTTP,
		controlTimeout:  opts.ControlTimeout,
		transferTimeout: opts.TransferTimeout,
		blockSize:       opts.BlockSize,
		log:             opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	if c.controlTimeout <= 0 {
		c.controlTimeout = DefaultControlTimeout
	}
	if c.transferTimeout <= 0 {
		c.transferTimeout = DefaultTransferTimeout
	}
	if c.blockSize <= 0 {
		c.blockSize = DefaultBlockSize
	}
	return c
}

// NormalizeAddress adds the http scheme when missing and drops trailing slashes.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	return strings.TrimRight(address, "/")
}

// URL returns the absolute URL for an already escaped path.
func (c *HTTPClient) URL(path string) string {
	return c.baseURL + path
}

// Request sends a JSON request and returns the decoded envelope.
func (c *HTTPClient) Request(ctx context.Context, method, path string, body any) (*Result, error) {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Validation(op, "failed to encode request body: %v", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.controlTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), bodyReader)
	if err != nil {
		return nil, errors.Validation(op, "failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(op, req)
}

// do executes req and reads the full response. The request context must
// stay alive until do returns.
func (c *HTTPClient) do(op string, req *http.Request) (*Result, error) {
	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Msg("request failed")
		return nil, errors.Network(op, err)
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(op, fmt.Errorf("failed to read response body: %w", err))
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(bodyBytes)).
		Dur("elapsed", time.Since(startTime)).
		Msg("request complete")

	return newResult(resp.StatusCode, bodyBytes), nil
}

func newResult(status int, body []byte) *Result {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return &Result{Status: status, Data: json.RawMessage(trimmed)}
	}
	return &Result{Status: status, Raw: string(body)}
}

// statusError builds the error for a non-2xx response, preferring the
// server's {"error": "..."} message.
func statusError(op string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error string `json:"error"`
	}
	message := ""
	if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Error != "" {
		message = envelope.Error
	} else if text := strings.TrimSpace(string(bodyBytes)); text != "" && !strings.HasPrefix(text, "<") {
		message = truncate(text, 200)
	}
	if message == "" {
		message = resp.Status
	}
	return errors.FromStatus(op, resp.StatusCode, message)
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
