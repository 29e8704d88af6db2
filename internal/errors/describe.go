package errors

import (
	"context"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Describe returns a one-line, actionable message for a status line.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if As(err, &e) {
		switch e.Kind {
		case KindNotFound:
			if e.Message != "" && e.Message != "not found" {
				return "Not found - " + e.Message
			}
			return "Not found - the file may have been deleted by another client"
		case KindValidation:
			return "Rejected - " + firstLine(e.Message)
		case KindProtocol:
			if e.Status >= 500 {
				return "Server error - " + firstLine(e.Message)
			}
			return "Unexpected server response - " + firstLine(e.Message)
		case KindNetwork:
			if e.Err != nil {
				return describeTransport(e.Err)
			}
		}
	}

	return describeTransport(err)
}

// describeTransport categorizes transport failures by unwrapping to the root cause.
func describeTransport(err error) string {
	if Is(err, context.DeadlineExceeded) {
		return "Request timeout - the server took too long, check the network or raise the timeout"
	}
	if Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var opErr *net.OpError
	if As(err, &opErr) {
		if opErr.Timeout() {
			return "Connection timeout - server took too long to respond"
		}
		var errno syscall.Errno
		if As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return "Connection refused - check that the server is running and the port is correct"
			case syscall.ECONNRESET:
				return "Connection reset by server - the server may have restarted"
			case syscall.ENETUNREACH:
				return "Network unreachable - check the network connection and firewall settings"
			case syscall.EHOSTUNREACH:
				return "Host unreachable - check that the server machine is online"
			}
		}
	}

	var urlErr *url.Error
	if As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the server took too long, check the network or raise the timeout"
	}

	return describeText(err.Error())
}

// describeText is the string based fallback for errors without useful types.
func describeText(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the server address"
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check that the server is running and the port is correct"
	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by server - the server may have restarted"
	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return "Network unreachable - check the network connection and firewall settings"
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly - the server terminated the transfer"
	case strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return "Connection timeout - server took too long to respond"
	case strings.Contains(errLower, "no such file or directory"):
		return "File not found - check the local path"
	case strings.Contains(errLower, "permission denied"):
		return "Permission denied - check file permissions"
	}

	return "Request failed: " + firstLine(errStr)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
