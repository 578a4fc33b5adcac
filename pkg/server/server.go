// Package server accepts TCP connections and answers one request per connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/niels/tinyhttpd/pkg/config"
	"github.com/niels/tinyhttpd/pkg/exchangelog"
	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/progress"
	"github.com/niels/tinyhttpd/pkg/protocol"
	"go.uber.org/multierr"
)

// ErrServerClosed is returned by Serve after Shutdown or context cancellation
var ErrServerClosed = errors.New("server closed")

// Dispatcher produces the response for a parsed request
type Dispatcher interface {
	Dispatch(req *protocol.Request) *protocol.Response
}

// Options controls the listener and per-connection limits
type Options struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxConnections  int
	MaxRequestBytes int
}

// OptionsFromConfig converts the server section of the configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Address:         cfg.Server.Address,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxConnections:  cfg.Server.MaxConnections,
		MaxRequestBytes: cfg.Server.MaxRequestBytes,
	}
}

// Server serves connections with a Dispatcher
type Server struct {
	opts       Options
	dispatcher Dispatcher
	exchange   *exchangelog.Logger
	tracker    progress.Tracker

	semaphore chan struct{}
	wg        sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	stopOnce sync.Once
	closeErr error
}

// New creates a Server. A nil exchange logger disables exchange logging.
func New(opts Options, dispatcher Dispatcher, exchange *exchangelog.Logger) *Server {
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = 1
	}
	return &Server{
		opts:       opts,
		dispatcher: dispatcher,
		exchange:   exchange,
		semaphore:  make(chan struct{}, opts.MaxConnections),
		quit:       make(chan struct{}),
	}
}

// WithTracker sets a tracker notified about every connection
func (s *Server) WithTracker(tracker progress.Tracker) *Server {
	s.tracker = tracker
	return s
}

// Addr returns the listening address, or nil before Serve is called
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe listens on the configured address and serves until ctx is
// done or Shutdown is called
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, handling each on its own goroutine with
// at most MaxConnections in flight. It returns ErrServerClosed once stopped,
// after in-flight connections have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.stopped() {
		ln.Close()
		return ErrServerClosed
	}

	logging.InfoWith("Server listening", map[string]interface{}{
		"address":         ln.Addr().String(),
		"max_connections": s.opts.MaxConnections,
	})

	go func() {
		select {
		case <-ctx.Done():
			s.stop()
		case <-s.quit:
		}
	}()

	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopped() {
				return ErrServerClosed
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				logging.WarnWith("Accept timed out, retrying", map[string]interface{}{"error": err})
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		select {
		case s.semaphore <- struct{}{}:
		case <-s.quit:
			conn.Close()
			return ErrServerClosed
		}

		// Add must not race with the Wait in Shutdown; stop closes quit
		// before it takes mu
		s.mu.Lock()
		if s.stopped() {
			s.mu.Unlock()
			<-s.semaphore
			conn.Close()
			return ErrServerClosed
		}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			defer func() { <-s.semaphore }()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting connections and waits for in-flight ones until
// ctx is done. The exchange log is closed once they have finished.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return multierr.Append(s.closeError(), ctx.Err())
	}

	var exchangeErr error
	if s.exchange != nil {
		exchangeErr = s.exchange.Close()
	}
	if s.tracker != nil {
		s.tracker.Finish()
	}
	return multierr.Combine(s.closeError(), exchangeErr)
}

func (s *Server) stop() {
	s.stopOnce.Do(func() {
		close(s.quit)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				s.closeErr = fmt.Errorf("failed to close listener: %w", err)
			}
		}
	})
}

func (s *Server) stopped() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *Server) closeError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
