package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
)

const boundaryPrefix = "----LanTransferBoundary"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload posts a multipart/form-data body made of fields and one file part
// named "file". The file is read in blocks and onProgress is called after
// each block.
func (c *HTTPClient) Upload(ctx context.Context, path string, fields map[string]string, file FilePart, onProgress ProgressFunc) (*Result, error) {
	op := http.MethodPost + " " + path

	ctx, cancel := context.WithTimeout(ctx, c.transferTimeout)
	defer cancel()

	body, contentType, err := c.encodeMultipart(ctx, fields, file, onProgress)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Validation(op, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.do(op, req)
}

// encodeMultipart builds the whole request body in memory.
func (c *HTTPClient) encodeMultipart(ctx context.Context, fields map[string]string, file FilePart, onProgress ProgressFunc) ([]byte, string, error) {
	var buf bytes.Buffer
	if file.Size > 0 {
		buf.Grow(int(file.Size) + 1024)
	}

	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(fmt.Sprintf("%s%d", boundaryPrefix, time.Now().UnixNano())); err != nil {
		return nil, "", errors.Validation("upload", "invalid boundary: %v", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}

	if file.Reader != nil {
		if _, err := c.copyBlocks(ctx, part, file.Reader, file.Size, onProgress, false); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// copyBlocks copies src to dst one block at a time, reporting progress
// after every block when total is known. remote marks src as a response
// body, whose read failures are network errors.
func (c *HTTPClient) copyBlocks(ctx context.Context, dst io.Writer, src io.Reader, total int64, onProgress ProgressFunc, remote bool) (int64, error) {
	block := make([]byte, c.blockSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return done, errors.Network("transfer", err)
		}
		n, readErr := src.Read(block)
		if n > 0 {
			if _, err := dst.Write(block[:n]); err != nil {
				return done, fmt.Errorf("write file: %w", err)
			}
			done += int64(n)
			if onProgress != nil && total > 0 {
				onProgress(done, total)
			}
		}
		if readErr == io.EOF {
			return done, nil
		}
		if readErr != nil {
			if remote {
				return done, errors.Network("transfer", readErr)
			}
			return done, fmt.Errorf("read file: %w", readErr)
		}
	}
}
