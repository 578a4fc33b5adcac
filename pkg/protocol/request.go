package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrMissingRequestLine   = errors.New("missing request line")
	ErrMalformedRequestLine = errors.New("malformed request line")
)

// Method is a request method. Anything other than GET and POST is MethodUnknown.
type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
)

// ParseMethod maps a request line token to a Method
func ParseMethod(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	default:
		return MethodUnknown
	}
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// Version is the protocol version of a request
type Version int

const (
	VersionUnknown Version = iota
	Version11
)

// ParseVersion maps a request line token to a Version
func ParseVersion(s string) Version {
	if s == "HTTP/1.1" {
		return Version11
	}
	return VersionUnknown
}

func (v Version) String() string {
	if v == Version11 {
		return "HTTP/1.1"
	}
	return "UNKNOWN"
}

// Header holds one value per key, keys kept as received.
// Not map[string][]string, unlike http.Header.
type Header map[string]string

// Request is a parsed request
type Request struct {
	Method  Method
	Version Version
	Path    string
	Headers Header
	Body    string
}

// Parse builds a Request from the raw request text.
//
// Lines are classified one by one: a line containing "HTTP" is the request
// line, a line containing a colon is a header, and any other non-empty line
// is the body. Body lines replace each other, so only the last one is kept.
func Parse(raw string) (*Request, error) {
	req := &Request{Headers: make(Header)}
	sawRequestLine := false

	for _, line := range splitLines(raw) {
		switch {
		case strings.Contains(line, "HTTP"):
			if err := req.parseRequestLine(line); err != nil {
				return nil, err
			}
			sawRequestLine = true
		case strings.Contains(line, ":"):
			key, value, _ := strings.Cut(line, ":")
			req.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
		case line != "":
			req.Body = line
		}
	}

	if !sawRequestLine {
		return nil, ErrMissingRequestLine
	}
	return req, nil
}

func (r *Request) parseRequestLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	if !strings.HasPrefix(fields[1], "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrMalformedRequestLine, fields[1])
	}
	r.Method = ParseMethod(fields[0])
	r.Path = fields[1]
	r.Version = ParseVersion(fields[2])
	return nil
}

// Segments splits the path on "/". The leading slash yields an empty first segment.
func (r *Request) Segments() []string {
	return strings.Split(r.Path, "/")
}

// Segment returns segment i of the path, or "" when the path is shorter
func (r *Request) Segment(i int) string {
	segments := r.Segments()
	if i < 0 || i >= len(segments) {
		return ""
	}
	return segments[i]
}

// splitLines splits on LF and drops a trailing CR from every line
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
