// Package textlog appends closed downtime windows to a plain text file.
package textlog

import (
	"fmt"
	"os"
	"sync"

	"connectivity-monitor/internal/downtime"
)

// Writer appends one block per downtime window. It is safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens path for appending, creating it if needed
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open clear text log: %w", err)
	}
	return &Writer{file: f}, nil
}

// SaveDowntime writes the text block for a closed window
func (w *Writer) SaveDowntime(win downtime.Window) error {
	text, err := win.Text()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.WriteString(text); err != nil {
		return fmt.Errorf("write clear text log: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
