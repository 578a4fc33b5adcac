package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/protocol"
	"github.com/rs/zerolog"
)

// ErrRequestTooLarge is returned when a request exceeds MaxRequestBytes
var ErrRequestTooLarge = errors.New("request too large")

const (
	drainTimeout = 500 * time.Millisecond
	drainLimit   = 256 << 10
)

// handleConn reads one request, writes one response and closes conn.
// A panic is confined to this connection.
func (s *Server) handleConn(conn net.Conn) {
	connID := uuid.New().String()
	remoteAddr := conn.RemoteAddr().String()
	logger := logging.WithConnection("server", connID, remoteAddr)
	start := time.Now()

	if s.tracker != nil {
		s.tracker.StartConnection(connID)
	}

	var (
		raw     string
		written bool
	)

	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic while serving connection")
			if !written {
				written = true
				s.respond(conn, logger, connID, raw, protocol.NewResponse(protocol.StatusInternalServerError, nil, ""), start)
				return
			}
			s.fail(connID, fmt.Sprintf("panic: %v", r))
		}
	}()

	if s.opts.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}

	raw, err := readRequest(conn, s.opts.MaxRequestBytes)
	if err != nil {
		if errors.Is(err, ErrRequestTooLarge) {
			logger.Warn().Err(err).Int("limit", s.opts.MaxRequestBytes).Msg("Rejecting oversized request")
			written = true
			s.respond(conn, logger, connID, raw, badRequest(), start)
			drain(conn)
			return
		}
		if raw == "" && errors.Is(err, io.EOF) {
			logger.Debug().Msg("Connection closed before a request was sent")
		} else {
			logger.Warn().Err(err).Msg("Failed to read request")
		}
		s.fail(connID, err.Error())
		return
	}

	req, err := protocol.Parse(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("Malformed request")
		written = true
		s.respond(conn, logger, connID, raw, badRequest(), start)
		return
	}

	logger.Debug().
		Str("method", req.Method.String()).
		Str("path", req.Path).
		Interface("headers", req.Headers).
		Msg("Request received")

	res := s.dispatcher.Dispatch(req)
	written = true
	s.respond(conn, logger.With().Str("method", req.Method.String()).Str("path", req.Path).Logger(), connID, raw, res, start)
}

// respond writes res to conn and records the exchange
func (s *Server) respond(conn net.Conn, logger zerolog.Logger, connID, raw string, res *protocol.Response, start time.Time) {
	if s.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}

	wire := res.String()
	if _, err := io.WriteString(conn, wire); err != nil {
		logger.Warn().Err(err).Msg("Failed to write response")
		s.fail(connID, err.Error())
		return
	}

	logger.Info().
		Str("status", res.StatusCode).
		Int("bytes", len(res.Body)).
		Dur("duration", time.Since(start)).
		Msg("Request served")

	if s.exchange.Enabled() {
		if err := s.exchange.LogExchange(connID, conn.RemoteAddr().String(), raw, wire); err != nil {
			logger.Warn().Err(err).Msg("Failed to write exchange log")
		}
	}

	if s.tracker != nil {
		s.tracker.CompleteConnection(connID, res.StatusCode)
	}
}

func (s *Server) fail(connID, message string) {
	if s.tracker != nil {
		s.tracker.FailConnection(connID, message)
	}
}

// drain half-closes conn and discards what the peer is still sending, so the
// close that follows does not reset the connection before the peer has read
// the response.
func drain(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.CloseWrite()
	}
	conn.SetReadDeadline(time.Now().Add(drainTimeout))
	io.Copy(io.Discard, io.LimitReader(conn, drainLimit))
}

func badRequest() *protocol.Response {
	return protocol.NewResponse(protocol.StatusBadRequest, nil, "")
}

// readRequest reads the request head up to the first blank line, then
// Content-Length bytes of body when that header is present. Blank lines
// before the first non-blank line are skipped. A maxBytes of zero or less
// means no limit.
func readRequest(r io.Reader, maxBytes int) (string, error) {
	limit := int64(maxBytes)
	if maxBytes <= 0 {
		limit = 1<<63 - 1
	} else {
		// one extra byte tells an exact fit from an overflow
		limit++
	}
	br := bufio.NewReader(io.LimitReader(r, limit))

	var (
		sb            strings.Builder
		contentLength int
		sawLine       bool
	)

	tooLarge := func() bool {
		return maxBytes > 0 && sb.Len() > maxBytes
	}

	for {
		line, err := br.ReadString('\n')
		sb.WriteString(line)
		if tooLarge() {
			return sb.String(), ErrRequestTooLarge
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sawLine {
				// peer half-closed without a blank line
				return sb.String(), nil
			}
			return sb.String(), err
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			if sawLine {
				break
			}
			continue
		}
		sawLine = true

		if key, value, ok := strings.Cut(trimmed, ":"); ok && strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				contentLength = n
			}
		}
	}

	if contentLength == 0 {
		return sb.String(), nil
	}
	if maxBytes > 0 && sb.Len()+contentLength > maxBytes {
		return sb.String(), ErrRequestTooLarge
	}

	body := make([]byte, contentLength)
	n, err := io.ReadFull(br, body)
	sb.Write(body[:n])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return sb.String(), err
	}
	return sb.String(), nil
}
