package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer saves exports under a date-stamped filename in one directory.
type Writer struct {
	dir string
	mu  sync.Mutex
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes content to <dir>/<date>-<name> and returns the path.
func (w *Writer) Save(name, content string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", w.dir, err)
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(w.dir, date+"-"+name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
