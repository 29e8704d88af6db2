package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

const (
	// MaxSenderLength is the longest sender name the server keeps.
	MaxSenderLength = 20
	// MaxContentLength is the longest message body the server keeps.
	MaxContentLength = 500
)

// Service wraps a WireClient with one typed method per server endpoint.
type Service struct {
	wc WireClient
}

// NewService creates a Service on top of wc.
func NewService(wc WireClient) *Service {
	return &Service{wc: wc}
}

// Ping checks that the server answers the messages endpoint.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.Messages(ctx)
	return err
}

// Messages fetches the current message window.
func (s *Service) Messages(ctx context.Context) ([]types.Message, error) {
	const path = "/api/messages"
	res, err := s.wc.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Messages *[]types.Message `json:"messages"`
	}
	if err := decode(res, "GET "+path, &body); err != nil {
		return nil, err
	}
	if body.Messages == nil {
		return nil, errors.Protocol("GET "+path, "response has no messages list")
	}
	return *body.Messages, nil
}

// SendMessage posts a chat message.
func (s *Service) SendMessage(ctx context.Context, sender, content string) (*types.Message, error) {
	const path = "/api/messages"
	op := "POST " + path

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation(op, "message is empty")
	}
	if utf8.RuneCountInString(sender) > MaxSenderLength {
		return nil, errors.Validation(op, "sender name longer than %d characters", MaxSenderLength)
	}

	res, err := s.wc.Request(ctx, http.MethodPost, path, types.SendRequest{Content: content, Sender: sender})
	if err != nil {
		return nil, err
	}

	var body types.SendResponse
	if err := decode(res, op, &body); err != nil {
		return nil, err
	}
	if !body.Success || body.Message == nil {
		return nil, errors.Protocol(op, "message was not accepted: %s", orUnknown(body.Error))
	}
	return body.Message, nil
}

// Files lists the files of one category, newest first.
func (s *Service) Files(ctx context.Context, category types.Category) ([]types.FileRecord, error) {
	path := "/api/files/" + url.PathEscape(string(category))
	op := "GET " + path

	res, err := s.wc.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Files *[]types.FileRecord `json:"files"`
	}
	if err := decode(res, op, &body); err != nil {
		return nil, err
	}
	if body.Files == nil {
		return nil, errors.Protocol(op, "response has no files list")
	}
	return *body.Files, nil
}

// UploadFile sends a local file. The server picks its category.
func (s *Service) UploadFile(ctx context.Context, localPath string, onProgress ProgressFunc) (*types.FileRecord, error) {
	const path = "/api/upload"
	op := "POST " + path

	localPath = strings.TrimSpace(localPath)
	if localPath == "" {
		return nil, errors.Validation(op, "no file path given")
	}
	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Validation(op, "file does not exist: %s", localPath)
		}
		return nil, fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return nil, errors.Validation(op, "%s is a directory", localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	res, err := s.wc.Upload(ctx, path, nil, FilePart{
		Name:   filepath.Base(localPath),
		Reader: f,
		Size:   info.Size(),
	}, onProgress)
	if err != nil {
		return nil, err
	}

	var body types.UploadResponse
	if err := decode(res, op, &body); err != nil {
		return nil, err
	}
	if !body.Success || body.File == nil {
		return nil, errors.Protocol(op, "upload was not accepted: %s", orUnknown(body.Error))
	}
	return body.File, nil
}

// DownloadFile streams a remote file into destDir and returns the local path
// and size. The partial file is removed when the transfer fails.
func (s *Service) DownloadFile(ctx context.Context, category types.Category, name, destDir string, onProgress ProgressFunc) (string, int64, error) {
	path := downloadPath(category, name)
	op := "GET " + path

	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) || base != name {
		return "", 0, errors.Validation(op, "invalid file name %q", name)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", 0, fmt.Errorf("create download directory: %w", err)
	}

	dest := filepath.Join(destDir, base)
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := s.wc.DownloadStreaming(ctx, path, f, onProgress)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", tmp, closeErr)
	}
	if err == nil {
		err = os.Rename(tmp, dest)
	}
	if err != nil {
		os.Remove(tmp)
		return "", n, err
	}
	return dest, n, nil
}

// DeleteFile removes a remote file.
func (s *Service) DeleteFile(ctx context.Context, category types.Category, name string) error {
	path := "/api/delete/" + url.PathEscape(string(category)) + "/" + url.PathEscape(name)
	op := "DELETE " + path

	res, err := s.wc.Request(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	var body types.DeleteResponse
	if err := decode(res, op, &body); err != nil {
		return err
	}
	if !body.Success {
		return errors.Protocol(op, "delete was not confirmed: %s", orUnknown(body.Error))
	}
	return nil
}

// Stats returns per-category file counts and the total size.
func (s *Service) Stats(ctx context.Context) (*types.StatsResponse, error) {
	const path = "/api/stats"
	res, err := s.wc.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var body types.StatsResponse
	if err := decode(res, "GET "+path, &body); err != nil {
		return nil, err
	}
	if body.Stats == nil {
		return nil, errors.Protocol("GET "+path, "response has no stats")
	}
	return &body, nil
}

// Link returns the absolute download URL for a file, or "" when the
// transport has no notion of a base URL.
func (s *Service) Link(category types.Category, name string) string {
	u, ok := s.wc.(interface{ URL(string) string })
	if !ok {
		return ""
	}
	return u.URL(downloadPath(category, name))
}

func downloadPath(category types.Category, name string) string {
	return "/api/download/" + url.PathEscape(string(category)) + "/" + url.PathEscape(name)
}

// decode unmarshals an object body into v.
func decode(res *Result, op string, v any) error {
	if !res.IsObject() {
		return errors.Protocol(op, "expected a JSON object, got %q", truncate(strings.TrimSpace(res.Raw), 80))
	}
	if err := json.Unmarshal(res.Data, v); err != nil {
		return errors.Protocol(op, "malformed response: %v", err)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "no reason given"
	}
	return s
}
