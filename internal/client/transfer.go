package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
)

// DownloadStreaming GETs path and copies the body into sink block by block.
// It returns the number of bytes written. A failure part way leaves sink
// with a partial body; callers that write files should discard it.
func (c *HTTPClient) DownloadStreaming(ctx context.Context, path string, sink io.Writer, onProgress ProgressFunc) (int64, error) {
	op := http.MethodGet + " " + path

	ctx, cancel := context.WithTimeout(ctx, c.transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return 0, errors.Validation(op, "failed to create request: %v", err)
	}

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Msg("download failed")
		return 0, errors.Network(op, err)
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		return 0, statusError(op, resp)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	written, err := c.copyBlocks(ctx, sink, resp.Body, total, onProgress, true)
	if err != nil {
		return written, err
	}

	c.log.Debug().
		Str("op", op).
		Int64("bytes", written).
		Dur("elapsed", time.Since(startTime)).
		Msg("download complete")

	return written, nil
}
