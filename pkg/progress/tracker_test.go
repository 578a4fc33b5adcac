package progress

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleTracker(t *testing.T) {
	tracker := NewConsoleTracker().WithWriter(io.Discard)

	tracker.StartConnection("c1")
	tracker.CompleteConnection("c1", "200")

	tracker.StartConnection("c2")
	tracker.FailConnection("c2", "read timeout")

	tracker.StartConnection("c3")
	tracker.CompleteConnection("c3", "404")

	tracker.StartConnection("c4")

	assert.Equal(t, Stats{
		Active:    1,
		Completed: 2,
		Errors:    1,
		ByStatus:  map[string]int{"200": 1, "404": 1},
	}, tracker.Stats())

	tracker.Finish()
}

func TestTrackerKeepsFailureMessages(t *testing.T) {
	tracker := NewConsoleTracker().WithWriter(io.Discard)

	tracker.StartConnection("c1")
	tracker.FailConnection("c1", "read tcp: i/o timeout")
	// a failure for a connection that was never started is still recorded
	tracker.FailConnection("c2", "panic: boom")

	failures := tracker.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "c1", failures[0].ID)
	assert.Equal(t, "read tcp: i/o timeout", failures[0].Message)
	assert.Equal(t, StatusError, failures[0].Status)
	assert.False(t, failures[0].EndTime.Before(failures[0].StartTime))
	assert.Equal(t, "panic: boom", failures[1].Message)
}

func TestTrackerFailuresAreBounded(t *testing.T) {
	tracker := NewConsoleTracker().WithWriter(io.Discard)

	for i := 0; i < maxFailures+5; i++ {
		tracker.FailConnection(fmt.Sprintf("c%d", i), fmt.Sprintf("error %d", i))
	}

	failures := tracker.Failures()
	require.Len(t, failures, maxFailures)
	assert.Equal(t, "c5", failures[0].ID)
	assert.Equal(t, fmt.Sprintf("c%d", maxFailures+4), failures[maxFailures-1].ID)
	assert.Equal(t, maxFailures+5, tracker.Stats().Errors)
}

func TestTrackerSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	tracker := NewConsoleTracker().WithWriter(&buf)

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("c%d", i)
		tracker.StartConnection(id)
		tracker.CompleteConnection(id, "200")
	}
	tracker.StartConnection("c-bad")
	tracker.CompleteConnection("c-bad", "500")
	tracker.StartConnection("c-gone")
	tracker.FailConnection("c-gone", "unexpected EOF")

	tracker.Finish()
	output := buf.String()

	assert.Contains(t, output, "Served 5 connections: 4 answered, 1 errors")
	assert.Contains(t, output, "Recent failures:\n  c-gone: unexpected EOF\n")
	assert.Contains(t, output, "Status codes: 200=3 500=1")
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tracker := NewConsoleTracker().WithWriter(io.Discard)

	numConns := 10
	var wg sync.WaitGroup
	wg.Add(numConns)

	for i := 0; i < numConns; i++ {
		go func(id int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn%d", id)
			tracker.StartConnection(connID)
			time.Sleep(time.Millisecond * 10)
			if id%2 == 0 {
				tracker.CompleteConnection(connID, "200")
			} else {
				tracker.FailConnection(connID, "test error")
			}
		}(i)
	}

	wg.Wait()

	stats := tracker.Stats()
	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 5, stats.Completed)
	assert.Equal(t, 5, stats.Errors)
	assert.Len(t, tracker.Failures(), 5)

	tracker.Finish()
}
