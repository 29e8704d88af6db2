package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Category is one of the fixed storage buckets decided by the server
type Category string

const (
	CategoryImages    Category = "images"
	CategoryDocuments Category = "documents"
	CategoryVideos    Category = "videos"
	CategoryAudios    Category = "audios"
	CategoryArchives  Category = "archives"
	CategoryOthers    Category = "others"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryImages,
	CategoryDocuments,
	CategoryVideos,
	CategoryAudios,
	CategoryArchives,
	CategoryOthers,
}

// categoryExtensions maps each category to the extensions it holds.
// Anything not listed lands in CategoryOthers.
var categoryExtensions = map[Category][]string{
	CategoryImages:    {"png", "jpg", "jpeg", "gif", "bmp", "webp", "ico"},
	CategoryDocuments: {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "md", "csv"},
	CategoryVideos:    {"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm"},
	CategoryAudios:    {"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a"},
	CategoryArchives:  {"zip", "rar", "7z", "tar", "gz", "bz2"},
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// CategoryFor returns the bucket for a filename based on its extension
func CategoryFor(filename string) Category {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return CategoryOthers
	}
	for _, c := range Categories {
		for _, e := range categoryExtensions[c] {
			if e == ext {
				return c
			}
		}
	}
	return CategoryOthers
}

// Label returns the human readable name of a category
func (c Category) Label() string {
	switch c {
	case CategoryImages:
		return "Images"
	case CategoryDocuments:
		return "Documents"
	case CategoryVideos:
		return "Videos"
	case CategoryAudios:
		return "Audio"
	case CategoryArchives:
		return "Archives"
	case CategoryOthers:
		return "Others"
	default:
		return string(c)
	}
}

// Message is a chat message owned by the server
type Message struct {
	ID        int64  `json:"id" yaml:"id"`
	Sender    string `json:"sender" yaml:"sender"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Clock renders the message timestamp as HH:MM:SS, falling back to the raw value
func (m Message) Clock() string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, m.Timestamp); err == nil {
			return t.Format("15:04:05")
		}
	}
	return m.Timestamp
}

// FileRecord describes a stored file as listed by the server
type FileRecord struct {
	Name      string   `json:"name" yaml:"name"`
	Size      string   `json:"size" yaml:"size"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	Category  Category `json:"category" yaml:"category"`
}

// MessagesResponse is the body of GET /api/messages
type MessagesResponse struct {
	Messages []Message `json:"messages"`
	Error    string    `json:"error,omitempty"`
}

// SendRequest is the body of POST /api/messages
type SendRequest struct {
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// SendResponse is the answer to POST /api/messages
type SendResponse struct {
	Success bool     `json:"success"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// FilesResponse is the body of GET /api/files/<category>
type FilesResponse struct {
	Files    []FileRecord `json:"files"`
	Category Category     `json:"category"`
	Error    string       `json:"error,omitempty"`
}

// UploadResponse is the answer to POST /api/upload
type UploadResponse struct {
	Success bool        `json:"success"`
	File    *FileRecord `json:"file,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DeleteResponse is the answer to DELETE /api/delete/<category>/<filename>
type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	Stats      map[Category]int `json:"stats" yaml:"stats"`
	TotalFiles int              `json:"total_files" yaml:"total_files"`
	TotalSize  string           `json:"total_size" yaml:"total_size"`
	Error      string           `json:"error,omitempty" yaml:"-"`
}

// TransferDirection identifies what a history entry recorded
type TransferDirection string

const (
	DirectionUpload   TransferDirection = "upload"
	DirectionDownload TransferDirection = "download"
	DirectionDelete   TransferDirection = "delete"
)

// Transfer is one entry of the local transfer history
type Transfer struct {
	ID         int64             `json:"id" yaml:"id"`
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	Direction  TransferDirection `json:"direction" yaml:"direction"`
	Server     string            `json:"server" yaml:"server"`
	Category   Category          `json:"category" yaml:"category"`
	Name       string            `json:"name" yaml:"name"`
	LocalPath  string            `json:"localPath,omitempty" yaml:"localPath,omitempty"`
	Bytes      int64             `json:"bytes" yaml:"bytes"`
	DurationMs int64             `json:"durationMs" yaml:"durationMs"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the transfer completed without error
func (t Transfer) Succeeded() bool {
	return t.Error == ""
}
