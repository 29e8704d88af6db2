package server

import (
	"strings"
	"sync"
	"time"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

const (
	// MaxMessages is how many messages the server keeps
	MaxMessages = 100
	// RecentMessages is how many messages GET /api/messages returns
	RecentMessages = 50
	// MaxSenderLength and MaxContentLength are truncation limits in runes
	MaxSenderLength  = 20
	MaxContentLength = 500
	// DefaultSender names messages posted without a sender
	DefaultSender = "Anonymous"
)

// TimestampLayout is the wire format of message and file timestamps
const TimestampLayout = "2006-01-02T15:04:05.000000"

// MessageLog is the in-memory chat ring. Ids increase monotonically and
// are never reused, even after old messages fall off the ring.
type MessageLog struct {
	mu       sync.RWMutex
	messages []types.Message
	nextID   int64
	now      func() time.Time
}

func NewMessageLog(now func() time.Time) *MessageLog {
	if now == nil {
		now = time.Now
	}
	return &MessageLog{nextID: 1, now: now}
}

// Post appends a message. Content is trimmed and must not be empty;
// sender and content are cut to their limits.
func (l *MessageLog) Post(sender, content string) (types.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return types.Message{}, errors.Validation("post message", "Empty message")
	}
	if strings.TrimSpace(sender) == "" {
		sender = DefaultSender
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := types.Message{
		ID:        l.nextID,
		Sender:    truncateRunes(sender, MaxSenderLength),
		Content:   truncateRunes(content, MaxContentLength),
		Timestamp: l.now().Format(TimestampLayout),
	}
	l.nextID++

	l.messages = append(l.messages, msg)
	if len(l.messages) > MaxMessages {
		l.messages = l.messages[len(l.messages)-MaxMessages:]
	}
	return msg, nil
}

// Recent returns a copy of the last n messages, oldest first
func (l *MessageLog) Recent(n int) []types.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := max(0, len(l.messages)-n)
	out := make([]types.Message, len(l.messages)-start)
	copy(out, l.messages[start:])
	return out
}

// Len returns how many messages are kept
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
