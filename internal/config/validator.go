package config

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
)

// MaxUserNameLength matches what the server keeps of a sender name
const MaxUserNameLength = 20

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "poll.interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ParseAddress validates "host[:port]" and returns it with the port filled
// in. host is an IPv4 address or a hostname; an http:// prefix is accepted.
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "", fmt.Errorf("address is empty")
	}

	host, portStr := s, ""
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		host, portStr = s[:i], s[i+1:]
	}

	port := DefaultPort
	if portStr != "" || strings.HasSuffix(s, ":") {
		p, err := strconv.Atoi(portStr)
		if err != nil || p < 1 || p > 65535 {
			return "", fmt.Errorf("invalid port %q", portStr)
		}
		port = p
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", fmt.Errorf("only IPv4 addresses are supported: %s", host)
		}
	} else if looksNumeric(host) || !hostnameRegex.MatchString(host) {
		return "", fmt.Errorf("invalid host %q", host)
	}

	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// looksNumeric catches malformed dotted quads such as 300.1.1.1
func looksNumeric(host string) bool {
	return strings.Trim(host, "0123456789.") == ""
}

// ValidateUserName checks a chat sender name
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return fmt.Errorf("name longer than %d characters", MaxUserNameLength)
	}
	return nil
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Server.Address != "" {
		if _, err := ParseAddress(c.Server.Address); err != nil {
			errors = append(errors, ValidationError{"server.address", c.Server.Address, err.Error()})
		}
	}

	if err := ValidateUserName(c.User.Name); err != nil {
		errors = append(errors, ValidationError{"user.name", c.User.Name, err.Error()})
	}

	if c.Poll.IntervalMs < 50 {
		errors = append(errors, ValidationError{"poll.interval_ms", c.Poll.IntervalMs, "must be at least 50"})
	}

	if c.Client.ControlTimeout <= 0 {
		errors = append(errors, ValidationError{"client.control_timeout", c.Client.ControlTimeout, "must be positive"})
	}
	if c.Client.TransferTimeout <= 0 {
		errors = append(errors, ValidationError{"client.transfer_timeout", c.Client.TransferTimeout, "must be positive"})
	}
	if c.Client.BlockSize < 512 || c.Client.BlockSize > 16*1024*1024 {
		errors = append(errors, ValidationError{"client.block_size", c.Client.BlockSize, "must be between 512 and 16777216"})
	}

	if strings.TrimSpace(c.Download.Dir) == "" {
		errors = append(errors, ValidationError{"download.dir", c.Download.Dir, "cannot be empty"})
	}

	errors = append(errors, c.validateTUI()...)

	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{"logging.level", c.Logging.Level,
			"must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}

	if c.History.MaxEntries < 0 {
		errors = append(errors, ValidationError{"history.max_entries", c.History.MaxEntries, "cannot be negative"})
	}

	if c.Serve.MaxUploadMB <= 0 {
		errors = append(errors, ValidationError{"serve.max_upload_mb", c.Serve.MaxUploadMB, "must be positive"})
	}
	if strings.TrimSpace(c.Serve.UploadDir) == "" {
		errors = append(errors, ValidationError{"serve.upload_dir", c.Serve.UploadDir, "cannot be empty"})
	}

	if len(c.Keys) > 0 {
		for _, e := range keybinds.CheckConfig(c.Keys).Errors() {
			errors = append(errors, ValidationError{"keys." + string(e.Context), e.Key, e.Message})
		}
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError
	checks := []struct {
		field string
		value int
		min   int
	}{
		{"tui.key_timeout_ms", c.TUI.KeyTimeoutMs, 10},
		{"tui.chat_page_size", c.TUI.ChatPageSize, 1},
		{"tui.chat_visible", c.TUI.ChatVisible, 1},
		{"tui.preview_count", c.TUI.PreviewCount, 0},
	}
	for _, ch := range checks {
		if ch.value < ch.min {
			errors = append(errors, ValidationError{ch.field, ch.value, fmt.Sprintf("must be at least %d", ch.min)})
		}
	}
	return errors
}
