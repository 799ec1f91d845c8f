package anomaly

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileSink is the append-only anomaly file. Each record is a two line entry
// (header plus raw line) followed by a blank separator line. Writes from
// concurrent requests are serialized by the mutex.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open anomaly file: %w", err)
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) Append(rec Record) error {
	var entry strings.Builder
	fmt.Fprintf(&entry, "[%s] host=%s label=%s", rec.UploadTS, rec.Hostname, rec.Label)
	if rec.Severity != "" {
		fmt.Fprintf(&entry, " severity=%s", rec.Severity)
	}
	entry.WriteByte('\n')
	entry.WriteString(rec.Line)
	entry.WriteString("\n\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteString(entry.String()); err != nil {
		return fmt.Errorf("could not append anomaly entry: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
