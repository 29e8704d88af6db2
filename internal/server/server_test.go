package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mozhi-it/LAN-Transfer/internal/client"
	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/testutil"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

var fixedNow = time.Date(2025, 6, 1, 12, 30, 45, 0, time.Local)

func newTestServer(t *testing.T, opts Options) (*Server, *client.Service) {
	t.Helper()
	if opts.UploadDir == "" {
		opts.UploadDir = t.TempDir()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, client.NewService(client.New(ts.URL, client.Options{}))
}

func writeLocal(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMessageLogRing(t *testing.T) {
	log := NewMessageLog(func() time.Time { return fixedNow })

	for i := 0; i < MaxMessages+5; i++ {
		_, err := log.Post("s", "hello")
		testutil.AssertNoError(t, err)
	}
	testutil.AssertField(t, "kept", log.Len(), MaxMessages)

	recent := log.Recent(RecentMessages)
	testutil.AssertField(t, "recent", len(recent), RecentMessages)
	testutil.AssertField(t, "last id", recent[len(recent)-1].ID, int64(MaxMessages+5))
	testutil.AssertField(t, "first id", recent[0].ID, int64(MaxMessages+5-RecentMessages+1))
}

func TestMessageLogTruncatesAndRejects(t *testing.T) {
	log := NewMessageLog(nil)

	msg, err := log.Post(strings.Repeat("名", 30), "  "+strings.Repeat("x", 600)+"  ")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "sender runes", len([]rune(msg.Sender)), MaxSenderLength)
	testutil.AssertField(t, "content runes", len([]rune(msg.Content)), MaxContentLength)

	msg, err = log.Post("", "hi")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "default sender", msg.Sender, DefaultSender)

	_, err = log.Post("s", "   ")
	testutil.AssertKind(t, err, errors.KindValidation)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"photo.png", "photo.png", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\me\doc.pdf`, "doc.pdf", false},
		{"..", "", true},
		{"", "", true},
		{"bad\x00name", "", true},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if tt.wantErr {
			testutil.AssertError(t, err)
			continue
		}
		testutil.AssertNoError(t, err)
		testutil.AssertField(t, tt.in, got, tt.want)
	}
	testutil.AssertError(t, CheckName("a/b.txt"))
	testutil.AssertError(t, CheckName(`a\b.txt`))
}

func TestUploadListDownloadDelete(t *testing.T) {
	srv, svc := newTestServer(t, Options{})
	ctx := context.Background()

	rec, err := svc.UploadFile(ctx, writeLocal(t, "holiday.JPG", "jpeg-bytes"), nil)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "category", rec.Category, types.CategoryImages)
	testutil.AssertField(t, "size", rec.Size, "10.0 B")

	_, err = os.Stat(filepath.Join(srv.Storage().Root(), "images", "holiday.JPG"))
	testutil.AssertNoError(t, err)

	files, err := svc.Files(ctx, types.CategoryImages)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "listed", len(files), 1)
	testutil.AssertField(t, "name", files[0].Name, "holiday.JPG")

	dest := t.TempDir()
	var progressed int64
	path, n, err := svc.DownloadFile(ctx, types.CategoryImages, "holiday.JPG", dest, func(done, total int64) {
		progressed = done
	})
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "bytes", n, int64(10))
	testutil.AssertField(t, "progress", progressed, int64(10))
	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "content", string(data), "jpeg-bytes")

	testutil.AssertNoError(t, svc.DeleteFile(ctx, types.CategoryImages, "holiday.JPG"))
	err = svc.DeleteFile(ctx, types.CategoryImages, "holiday.JPG")
	testutil.AssertField(t, "second delete", errors.KindOf(err), errors.KindNotFound)
}

func TestUploadCollisionGetsTimestamp(t *testing.T) {
	_, svc := newTestServer(t, Options{})
	ctx := context.Background()
	local := writeLocal(t, "notes.txt", "one")

	first, err := svc.UploadFile(ctx, local, nil)
	testutil.AssertNoError(t, err)
	second, err := svc.UploadFile(ctx, local, nil)
	testutil.AssertNoError(t, err)
	third, err := svc.UploadFile(ctx, local, nil)
	testutil.AssertNoError(t, err)

	testutil.AssertField(t, "first", first.Name, "notes.txt")
	testutil.AssertField(t, "second", second.Name, "notes_20250601_123045.txt")
	testutil.AssertField(t, "third", third.Name, "notes_20250601_123045_2.txt")
}

func TestUnknownExtensionGoesToOthers(t *testing.T) {
	_, svc := newTestServer(t, Options{})
	rec, err := svc.UploadFile(context.Background(), writeLocal(t, "build.xyz", "?"), nil)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "category", rec.Category, types.CategoryOthers)
}

func TestUploadTooLarge(t *testing.T) {
	srv, svc := newTestServer(t, Options{MaxUploadBytes: 1024})
	_, err := svc.UploadFile(context.Background(), writeLocal(t, "big.bin", strings.Repeat("x", 4096)), nil)
	testutil.AssertKind(t, err, errors.KindValidation)

	entries, _ := os.ReadDir(filepath.Join(srv.Storage().Root(), "others"))
	testutil.AssertField(t, "leftovers", len(entries), 0)
}

func TestUploadRejectsMissingFilePart(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	testutil.AssertField(t, "status", rr.Code, http.StatusBadRequest)
	testutil.AssertField(t, "error", decodeError(t, rr.Body), "No file part")
}

func TestRequestValidation(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"bad category", http.MethodGet, "/api/files/secrets", "", 400, "Invalid category"},
		{"download bad category", http.MethodGet, "/api/download/x/a.txt", "", 400, "Invalid category"},
		{"download traversal", http.MethodGet, "/api/download/images/..%2F..%2Fpasswd", "", 400, "Invalid filename"},
		{"download missing", http.MethodGet, "/api/download/images/none.png", "", 404, "File not found"},
		{"delete missing", http.MethodDelete, "/api/delete/images/none.png", "", 404, "File not found"},
		{"message without content", http.MethodPost, "/api/messages", `{"sender":"a"}`, 400, "No content"},
		{"empty message", http.MethodPost, "/api/messages", `{"content":"   "}`, 400, "Empty message"},
		{"unknown route", http.MethodGet, "/api/nothing", "", 404, "Not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)
			testutil.AssertField(t, "status", rr.Code, tt.status)
			testutil.AssertField(t, "error", decodeError(t, rr.Body), tt.errMsg)
		})
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	_, svc := newTestServer(t, Options{})
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, "ann", "hello there")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "id", sent.ID, int64(1))
	testutil.AssertField(t, "clock", sent.Clock(), "12:30:45")

	msgs, err := svc.Messages(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "count", len(msgs), 1)
	testutil.AssertField(t, "content", msgs[0].Content, "hello there")
}

func TestStats(t *testing.T) {
	_, svc := newTestServer(t, Options{})
	ctx := context.Background()
	for _, name := range []string{"a.png", "b.pdf", "c.pdf"} {
		_, err := svc.UploadFile(ctx, writeLocal(t, name, "1234"), nil)
		testutil.AssertNoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "total files", stats.TotalFiles, 3)
	testutil.AssertField(t, "documents", stats.Stats[types.CategoryDocuments], 2)
	testutil.AssertField(t, "videos", stats.Stats[types.CategoryVideos], 0)
	testutil.AssertField(t, "total size", stats.TotalSize, "12.0 B")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, svc := newTestServer(t, Options{})
	_, err := svc.Messages(context.Background())
	testutil.AssertNoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	testutil.AssertField(t, "status", rr.Code, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `lantransfer_http_requests_total{method="GET",path="/api/messages",status="200"}`) {
		t.Error("request counter missing from /metrics")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := New(Options{UploadDir: t.TempDir()})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	svc := client.NewService(client.New(ln.Addr().String(), client.Options{}))
	testutil.AssertNoError(t, svc.Ping(context.Background()))

	cancel()
	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func decodeError(t *testing.T, r io.Reader) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	testutil.AssertNoError(t, json.NewDecoder(r).Decode(&body))
	return body.Error
}
