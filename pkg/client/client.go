// Package client sends a single request over a raw TCP connection and parses
// the response the server writes before closing.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/protocol"
	"github.com/niels/tinyhttpd/pkg/retry"
)

// ErrEmptyResponse is returned when the server closes without writing anything
var ErrEmptyResponse = errors.New("empty response")

// DefaultTimeout bounds a whole exchange when no timeout is given
const DefaultTimeout = 10 * time.Second

// Request is what the client puts on the wire
type Request struct {
	Method  string
	Path    string
	Headers protocol.Header
	Body    string
}

// Encode renders the request with the given host. Headers are written sorted
// by key; Host and Content-Length are added unless already present.
func (r *Request) Encode(host string) string {
	method := r.Method
	if method == "" {
		method = protocol.MethodGet.String()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s\r\n", method, r.Path, protocol.DefaultVersion))

	headers := protocol.Header{}
	for k, v := range r.Headers {
		headers[k] = v
	}
	if _, ok := headers["Host"]; !ok && host != "" {
		headers["Host"] = host
	}
	if _, ok := headers["Content-Length"]; !ok && r.Body != "" {
		headers["Content-Length"] = strconv.Itoa(len(r.Body))
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k + ": " + headers[k] + "\r\n")
	}

	sb.WriteString("\r\n")
	sb.WriteString(r.Body)
	return sb.String()
}

// Result holds the parsed response and the bytes it was parsed from
type Result struct {
	Raw      string
	Response *protocol.Response
	Duration time.Duration
}

// Client talks to one server address
type Client struct {
	addr    string
	timeout time.Duration
	retry   retry.Options
}

// New creates a Client. A timeout of zero uses DefaultTimeout.
func New(addr string, timeout time.Duration, retryOpts retry.Options) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		retry:   retryOpts,
	}
}

// Do dials the server, retrying refused or timed out dials, sends req and
// reads until the server closes the connection.
func (c *Client) Do(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	conn, err := retry.Do(ctx, c.dial, c.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}

	logger := logging.WithComponent("client")

	wire := req.Encode(c.addr)
	logger.Debug().
		Str("address", c.addr).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("bytes", len(wire)).
		Msg("Sending request")

	if _, err := io.WriteString(conn, wire); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResponse
	}

	res, err := protocol.ParseResponse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &Result{
		Raw:      string(data),
		Response: res,
		Duration: time.Since(start),
	}
	logger.Debug().
		Str("status", res.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", result.Duration).
		Msg("Response received")
	return result, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	return dialer.DialContext(ctx, "tcp", c.addr)
}
