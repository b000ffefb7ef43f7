// Package download turns report export payloads into files.
package download

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/evmarket/analytics-console/internal/model"
)

// ErrUnknownFormat is returned for export formats with no file rendition.
var ErrUnknownFormat = errors.New("unknown export format")

// Sink receives downloaded files.
type Sink interface {
	Save(name string, data []byte) (string, error)
}

// Filename returns the name an export is saved under: report-<id>.<ext>.
func Filename(reportID int64, format model.ExportFormat) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return fmt.Sprintf("report-%d.%s", reportID, format.Extension()), nil
}

// ContentType returns the media type served for an export format.
func ContentType(format model.ExportFormat) string {
	switch format {
	case model.ExportPDF:
		return "application/pdf"
	case model.ExportExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case model.ExportCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// Dir saves files into a directory. Writes are atomic: a partially written
// file is never visible under its final name.
type Dir struct {
	path string
}

func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) Save(name string, data []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.path, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}

	dest := filepath.Join(d.path, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	slog.Info("export saved", "file", dest, "bytes", len(data))
	return dest, nil
}

// Memory keeps files in memory.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (m *Memory) Save(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return name, nil
}

// File returns a saved file.
func (m *Memory) File(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Names lists the saved files in order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
