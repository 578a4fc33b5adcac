package protocol

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DefaultVersion is the version written on every response
const DefaultVersion = "HTTP/1.1"

// Status codes known to the status table
const (
	StatusOK                  = "200"
	StatusBadRequest          = "400"
	StatusNotFound            = "404"
	StatusInternalServerError = "500"
)

// Content types set by the handlers
const (
	ContentTypeHTML       = "text/html"
	ContentTypeCSS        = "text/css"
	ContentTypeJavaScript = "text/javascript"
	ContentTypeJSON       = "application/json"
)

var (
	ErrMalformedStatusLine = errors.New("malformed status line")
	ErrMalformedHeaderLine = errors.New("malformed header line")
)

var statusTexts = map[string]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// StatusText returns the reason phrase for a status code.
// Codes missing from the table get "Not Found".
func StatusText(code string) string {
	if text, ok := statusTexts[code]; ok {
		return text
	}
	return statusTexts[StatusNotFound]
}

// Response is a response ready to be serialized
type Response struct {
	Version    string
	StatusCode string
	Headers    Header
	Body       string

	// only set for responses read off the wire
	statusText string
}

// NewResponse creates a response for the given status code. A nil header map
// becomes {Content-Type: text/html}.
func NewResponse(statusCode string, headers Header, body string) *Response {
	if headers == nil {
		headers = Header{"Content-Type": ContentTypeHTML}
	}
	return &Response{
		Version:    DefaultVersion,
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}
}

// StatusText returns the reason phrase of the response
func (r *Response) StatusText() string {
	if r.statusText != "" {
		return r.statusText
	}
	return StatusText(r.StatusCode)
}

// String returns the response in wire format
func (r *Response) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s %s\r\n", r.Version, r.StatusCode, r.StatusText()))

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s:%s\r\n", k, r.Headers[k]))
	}

	sb.WriteString(fmt.Sprintf("Content-Length: %d\r\n\r\n", len(r.Body)))
	sb.WriteString(r.Body)
	return sb.String()
}

// WriteTo writes the response in wire format to w
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// ParseResponse reads a response in wire format. The Content-Length header,
// when present, bounds the body and is dropped from Headers.
func ParseResponse(raw string) (*Response, error) {
	head, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		head, body, _ = strings.Cut(raw, "\n\n")
	}

	lines := splitLines(head)
	res, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}

	res.Headers = make(Header)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeaderLine, line)
		}
		res.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if cls, ok := res.Headers["Content-Length"]; ok {
		cl, err := strconv.Atoi(cls)
		if err != nil || cl < 0 {
			return nil, fmt.Errorf("%w: invalid Content-Length %q", ErrMalformedHeaderLine, cls)
		}
		if cl < len(body) {
			body = body[:cl]
		}
		delete(res.Headers, "Content-Length")
	}
	res.Body = body
	return res, nil
}

func parseStatusLine(line string) (*Response, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStatusLine, line)
	}
	status, err := strconv.Atoi(fields[1])
	if err != nil || status < 100 || status > 599 {
		return nil, fmt.Errorf("%w: invalid status code %q", ErrMalformedStatusLine, fields[1])
	}

	res := &Response{
		Version:    fields[0],
		StatusCode: fields[1],
	}
	if len(fields) == 3 {
		res.statusText = fields[2]
	}
	return res, nil
}
