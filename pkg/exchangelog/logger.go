// Package exchangelog appends the raw text of every request and response to a file.
package exchangelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends request/response pairs to a file. A disabled Logger
// accepts every call and writes nothing.
type Logger struct {
	file    *os.File
	enabled bool
	mu      sync.Mutex
}

// NewLogger opens logFile in append mode. An empty path returns a disabled Logger.
func NewLogger(logFile string) (*Logger, error) {
	if logFile == "" {
		return &Logger{enabled: false}, nil
	}

	dir := filepath.Dir(logFile)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create exchange log directory: %w", err)
		}
	}

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange log: %w", err)
	}

	return &Logger{
		file:    file,
		enabled: true,
	}, nil
}

// Enabled reports whether entries are written
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Close closes the log file
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// LogExchange writes one entry holding the raw request and response
func (l *Logger) LogExchange(connID, remoteAddr, request, response string) error {
	if !l.Enabled() || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format(time.RFC3339)
	entry := fmt.Sprintf("\n===== EXCHANGE [%s] =====\nConnection: %s\nRemote: %s\n\n----- REQUEST -----\n%s\n----- RESPONSE -----\n%s\n===== END EXCHANGE =====\n",
		timestamp, connID, remoteAddr, request, response)

	if _, err := l.file.WriteString(entry); err != nil {
		return err
	}
	return l.file.Sync()
}
