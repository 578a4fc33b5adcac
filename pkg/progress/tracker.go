package progress

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Status represents the status of a connection being served
type Status string

const (
	// StatusProcessing indicates the connection is being served
	StatusProcessing Status = "processing"
	// StatusError indicates the connection ended without a response
	StatusError Status = "error"
)

// ConnectionProgress represents the progress of a single connection
type ConnectionProgress struct {
	ID        string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Message   string
}

// Tracker is an interface for tracking connections served by the server
type Tracker interface {
	// StartConnection marks a connection as being served
	StartConnection(id string)
	// CompleteConnection marks a connection as answered with statusCode
	CompleteConnection(id string, statusCode string)
	// FailConnection marks a connection as ended without a response
	FailConnection(id string, message string)
	// Finish prints the summary
	Finish()
}

// Stats is a point-in-time view of a tracker's counters
type Stats struct {
	Active    int
	Completed int
	Errors    int
	ByStatus  map[string]int
}

// maxFailures bounds the failures kept for the summary
const maxFailures = 10

// ConsoleTracker implements Tracker and prints a summary on Finish
type ConsoleTracker struct {
	mu        sync.Mutex
	writer    io.Writer
	active    map[string]*ConnectionProgress
	byStatus  map[string]int
	failures  []ConnectionProgress
	startTime time.Time
	completed int
	errors    int
}

// NewConsoleTracker creates a new console tracker
func NewConsoleTracker() *ConsoleTracker {
	return &ConsoleTracker{
		writer:    os.Stdout,
		active:    make(map[string]*ConnectionProgress),
		byStatus:  make(map[string]int),
		startTime: time.Now(),
	}
}

// WithWriter sets the writer for the console tracker
func (t *ConsoleTracker) WithWriter(writer io.Writer) *ConsoleTracker {
	t.writer = writer
	return t
}

// StartConnection marks a connection as being served
func (t *ConsoleTracker) StartConnection(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[id] = &ConnectionProgress{
		ID:        id,
		Status:    StatusProcessing,
		StartTime: time.Now(),
	}
}

// CompleteConnection marks a connection as answered
func (t *ConsoleTracker) CompleteConnection(id string, statusCode string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, id)
	t.byStatus[statusCode]++
	t.completed++
}

// FailConnection marks a connection as ended without a response and keeps
// message among the most recent failures
func (t *ConsoleTracker) FailConnection(id string, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, ok := t.active[id]
	if !ok {
		conn = &ConnectionProgress{ID: id, StartTime: time.Now()}
	}
	delete(t.active, id)

	conn.Status = StatusError
	conn.EndTime = time.Now()
	conn.Message = message

	t.failures = append(t.failures, *conn)
	if len(t.failures) > maxFailures {
		t.failures = t.failures[len(t.failures)-maxFailures:]
	}
	t.errors++
}

// Failures returns the most recent failed connections, oldest first
func (t *ConsoleTracker) Failures() []ConnectionProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	failures := make([]ConnectionProgress, len(t.failures))
	copy(failures, t.failures)
	return failures
}

// Stats returns the current counters
func (t *ConsoleTracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	byStatus := make(map[string]int, len(t.byStatus))
	for code, n := range t.byStatus {
		byStatus[code] = n
	}
	return Stats{
		Active:    len(t.active),
		Completed: t.completed,
		Errors:    t.errors,
		ByStatus:  byStatus,
	}
}

// Finish prints how many connections were served, with which status codes
// and the most recent failures
func (t *ConsoleTracker) Finish() {
	stats := t.Stats()
	failures := t.Failures()

	t.mu.Lock()
	defer t.mu.Unlock()

	duration := time.Since(t.startTime).Round(time.Second)
	fmt.Fprintf(t.writer, "\nServer stopped after %s\n", duration)
	fmt.Fprintf(t.writer, "Served %d connections: %d answered, %d errors\n",
		stats.Completed+stats.Errors, stats.Completed, stats.Errors)

	if len(failures) > 0 {
		fmt.Fprintln(t.writer, color.RedString("Recent failures:"))
		for _, f := range failures {
			fmt.Fprintf(t.writer, "  %s: %s\n", f.ID, f.Message)
		}
	}

	if len(stats.ByStatus) == 0 {
		return
	}

	codes := make([]string, 0, len(stats.ByStatus))
	for code := range stats.ByStatus {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s=%d", colorizeStatus(code), stats.ByStatus[code]))
	}
	fmt.Fprintf(t.writer, "Status codes: %s\n", strings.Join(parts, " "))
}

// colorizeStatus colors a status code by class
func colorizeStatus(code string) string {
	switch {
	case strings.HasPrefix(code, "2"):
		return color.GreenString(code)
	case strings.HasPrefix(code, "4"):
		return color.YellowString(code)
	case strings.HasPrefix(code, "5"):
		return color.RedString(code)
	default:
		return code
	}
}
