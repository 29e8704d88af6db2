package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Storage keeps uploaded files under root/<category>/<name>
type Storage struct {
	root string
	now  func() time.Time

	// mu serializes picking a free name and moving the upload into place
	mu sync.Mutex
}

func NewStorage(root string, now func() time.Time) *Storage {
	if now == nil {
		now = time.Now
	}
	return &Storage{root: root, now: now}
}

// Root returns the storage directory
func (s *Storage) Root() string {
	return s.root
}

func (s *Storage) dir(c types.Category) string {
	return filepath.Join(s.root, string(c))
}

// CleanName reduces an uploaded filename to its base name and rejects names
// that cannot be stored safely.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	if err := CheckName(name); err != nil {
		return "", err
	}
	return name, nil
}

// CheckName validates a name taken from a URL. Anything with a path
// component is rejected rather than cleaned.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || name == "/" {
		return errors.Validation("check name", "Invalid filename")
	}
	if strings.ContainsAny(name, "/\\") {
		return errors.Validation("check name", "Invalid filename")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.Validation("check name", "Invalid filename")
		}
	}
	return nil
}

// List returns the files of a category, newest first. The category
// directory is created when missing.
func (s *Storage) List(c types.Category) ([]types.FileRecord, error) {
	dir := s.dir(c)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	type listed struct {
		rec types.FileRecord
		mod time.Time
	}
	var files []listed
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isTemp(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, listed{record(info, entry.Name(), c), info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].rec.Name < files[j].rec.Name
	})

	out := make([]types.FileRecord, len(files))
	for i, f := range files {
		out[i] = f.rec
	}
	return out, nil
}

// Save stores the content of r under the category decided by name. An
// existing file is never overwritten: the new one gets a timestamp suffix.
func (s *Storage) Save(name string, r io.Reader) (types.FileRecord, error) {
	name, err := CleanName(name)
	if err != nil {
		return types.FileRecord{}, err
	}
	category := types.CategoryFor(name)
	dir := s.dir(category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return types.FileRecord{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return types.FileRecord{}, fmt.Errorf("failed to write upload: %w", err)
	}

	s.mu.Lock()
	final := s.freeName(dir, name)
	err = os.Rename(tmp.Name(), filepath.Join(dir, final))
	s.mu.Unlock()
	if err != nil {
		os.Remove(tmp.Name())
		return types.FileRecord{}, fmt.Errorf("failed to store upload: %w", err)
	}

	info, err := os.Stat(filepath.Join(dir, final))
	if err != nil {
		return types.FileRecord{}, err
	}
	return record(info, final, category), nil
}

// freeName returns name, or name_YYYYMMDD_HHMMSS.ext when name is taken.
// A counter is added if even that exists.
func (s *Storage) freeName(dir, name string) string {
	if !exists(filepath.Join(dir, name)) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := fmt.Sprintf("%s_%s%s", stem, s.now().Format("20060102_150405"), ext)
	for i := 2; exists(filepath.Join(dir, candidate)); i++ {
		candidate = fmt.Sprintf("%s_%s_%d%s", stem, s.now().Format("20060102_150405"), i, ext)
	}
	return candidate
}

// Open returns a stored file for reading
func (s *Storage) Open(c types.Category, name string) (*os.File, os.FileInfo, error) {
	if err := CheckName(name); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(s.dir(c), name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFound("open file", "File not found")
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, errors.NotFound("open file", "File not found")
	}
	return f, info, nil
}

// Delete removes a stored file
func (s *Storage) Delete(c types.Category, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	path := filepath.Join(s.dir(c), name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return errors.NotFound("delete file", "File not found")
	}
	return os.Remove(path)
}

// Stats counts the files of every category
func (s *Storage) Stats() (types.StatsResponse, error) {
	stats := types.StatsResponse{Stats: make(map[types.Category]int, len(types.Categories))}
	var total int64
	for _, c := range types.Categories {
		entries, err := os.ReadDir(s.dir(c))
		if err != nil && !os.IsNotExist(err) {
			return types.StatsResponse{}, err
		}
		count := 0
		for _, entry := range entries {
			if !entry.Type().IsRegular() || isTemp(entry.Name()) {
				continue
			}
			if info, err := entry.Info(); err == nil {
				total += info.Size()
				count++
			}
		}
		stats.Stats[c] = count
		stats.TotalFiles += count
	}
	stats.TotalSize = types.FormatSize(total)
	return stats, nil
}

const tempPrefix = ".upload-"

func isTemp(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}

func record(info os.FileInfo, name string, c types.Category) types.FileRecord {
	return types.FileRecord{
		Name:      name,
		Size:      types.FormatSize(info.Size()),
		Timestamp: info.ModTime().Format(TimestampLayout),
		Category:  c,
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
