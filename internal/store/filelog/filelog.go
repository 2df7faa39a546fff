// Package filelog journals exchange lookups to a plain append-only text file.
package filelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileLog implements store.ExchangeLog on top of an O_APPEND file.
type FileLog struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens path for appending, creating it and its directory when missing.
func Open(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open exchange log: %w", err)
	}
	return &FileLog{file: f}, nil
}

// AppendExchange writes body followed by a newline in a single write.
func (l *FileLog) AppendExchange(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line := body
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return os.ErrClosed
	}
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("write exchange log: %w", err)
	}
	return nil
}

// Close closes the file. Further appends return os.ErrClosed.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
