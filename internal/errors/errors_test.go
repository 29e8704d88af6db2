package errors

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		message  string
		wantKind Kind
		wantText string
	}{
		{404, "File not found", KindNotFound, "File not found"},
		{400, "No file provided", KindValidation, "No file provided"},
		{413, "", KindValidation, "unexpected status 413"},
		{422, "bad name", KindValidation, "bad name"},
		{500, "boom", KindProtocol, "boom"},
		{302, "", KindProtocol, "unexpected status 302"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := FromStatus("GET /x", tt.status, tt.message)
			if err.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", err.Kind, tt.wantKind)
			}
			if err.Message != tt.wantText {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantText)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := Validation("rename", "name too long")
	wrapped := fmt.Errorf("settings: %w", base)

	if got := KindOf(wrapped); got != KindValidation {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindValidation)
	}
	if !Is(wrapped, ErrValidation) {
		t.Error("expected wrapped error to match ErrValidation")
	}
	if Is(wrapped, ErrNetwork) {
		t.Error("validation error must not match ErrNetwork")
	}
	if got := KindOf(New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
}

func TestErrorString(t *testing.T) {
	err := Network("GET /api/messages", context.DeadlineExceeded)
	if got := err.Error(); got != "GET /api/messages: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, context.DeadlineExceeded) {
		t.Error("expected network error to unwrap to the cause")
	}

	bare := &Error{Kind: KindProtocol}
	if got := bare.Error(); got != "protocol" {
		t.Errorf("Error() = %q, want %q", got, "protocol")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", Network("op", syscall.ECONNREFUSED), true},
		{"server error", FromStatus("op", 503, "busy"), true},
		{"unexpected body", Protocol("op", "missing messages"), false},
		{"not found", NotFound("op", "gone"), false},
		{"validation", Validation("op", "bad"), false},
		{"foreign", New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: &osSyscallError{syscall.ECONNREFUSED}}

	tests := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{"nil", nil, ""},
		{"deadline", Network("GET /", context.DeadlineExceeded), "Request timeout"},
		{"cancelled", Network("GET /", context.Canceled), "Request cancelled"},
		{"refused typed", Network("GET /", &url.Error{Op: "Get", URL: "http://x", Err: refused}), "Connection refused"},
		{"refused text", New("dial tcp 127.0.0.1:9: connect: connection refused"), "Connection refused"},
		{"dns", New("dial tcp: lookup nowhere.lan: no such host"), "DNS resolution failed"},
		{"not found", NotFound("DELETE", "File not found"), "Not found - File not found"},
		{"validation", Validation("rename", "name longer than 20 characters"), "Rejected - name longer"},
		{"server", FromStatus("GET", 500, "disk full"), "Server error - disk full"},
		{"protocol", Protocol("GET", "response has no messages list"), "Unexpected server response"},
		{"unknown", New("something odd"), "Request failed: something odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.err)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("Describe() = %q, want prefix %q", got, tt.wantPrefix)
			}
			if strings.Contains(got, "\n") {
				t.Errorf("Describe() must be a single line, got %q", got)
			}
		})
	}
}

// osSyscallError mimics os.SyscallError so the errno sits one level down.
type osSyscallError struct {
	errno syscall.Errno
}

func (e *osSyscallError) Error() string { return "connect: " + e.errno.Error() }
func (e *osSyscallError) Unwrap() error { return e.errno }
