package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	assert := assert.New(t)

	res := NewResponse("200", nil, "xxxx")
	assert.Equal(&Response{
		Version:    "HTTP/1.1",
		StatusCode: "200",
		Headers:    Header{"Content-Type": "text/html"},
		Body:       "xxxx",
	}, res)
	assert.Equal("OK", res.StatusText())

	custom := NewResponse("404", Header{"Content-Type": "text/css"}, "")
	assert.Equal(Header{"Content-Type": "text/css"}, custom.Headers)
	assert.Equal("Not Found", custom.StatusText())
}

func TestStatusText(t *testing.T) {
	testData := map[string]string{
		"200": "OK",
		"400": "Bad Request",
		"404": "Not Found",
		"500": "Internal Server Error",
		"999": "Not Found",
		"201": "Not Found",
		"":    "Not Found",
	}

	for code, expected := range testData {
		assert.Equal(t, expected, StatusText(code), "code %q", code)
		assert.Equal(t, expected, NewResponse(code, nil, "").StatusText(), "code %q", code)
	}
}

func TestResponseString(t *testing.T) {
	wire := NewResponse("200", nil, "xxxx").String()

	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type:text/html\r\nContent-Length: 4\r\n\r\nxxxx", wire)
}

func TestResponseStringSortsHeaders(t *testing.T) {
	res := NewResponse("500", Header{"X-B": "2", "X-A": "1"}, "")

	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\nX-A:1\r\nX-B:2\r\nContent-Length: 0\r\n\r\n", res.String())
}

func TestResponseContentLengthCountsBytes(t *testing.T) {
	wire := NewResponse("200", nil, "héllo").String()

	assert.Contains(t, wire, "Content-Length: 6\r\n")
}

func TestResponseWriteTo(t *testing.T) {
	var buf bytes.Buffer
	res := NewResponse("404", nil, "<h1>gone</h1>")

	n, err := res.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, res.String(), buf.String())
}

func TestParseResponse(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	res, err := ParseResponse("HTTP/1.1 200 OK\r\nContent-Type:application/json\r\nContent-Length: 2\r\n\r\n[]")
	require.NoError(err)
	assert.Equal("HTTP/1.1", res.Version)
	assert.Equal("200", res.StatusCode)
	assert.Equal("OK", res.StatusText())
	assert.Equal(Header{"Content-Type": "application/json"}, res.Headers)
	assert.Equal("[]", res.Body)
}

func TestParseResponseKeepsWirePhrase(t *testing.T) {
	res, err := ParseResponse("HTTP/1.1 201 Created And Done\r\n\r\n")
	require.NoError(t, err)

	assert.Equal(t, "Created And Done", res.StatusText())
	assert.Empty(t, res.Body)
}

func TestParseResponseTruncatesToContentLength(t *testing.T) {
	res, err := ParseResponse("HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nabcdef")
	require.NoError(t, err)

	assert.Equal(t, "abc", res.Body)
}

func TestParseResponseRoundTrip(t *testing.T) {
	original := NewResponse("404", Header{"Content-Type": "text/css", "X-Id": "a:b"}, "line1\r\nline2")

	res, err := ParseResponse(original.String())
	require.NoError(t, err)
	assert.Equal(t, original.Headers, res.Headers)
	assert.Equal(t, original.Body, res.Body)
	assert.Equal(t, original.String(), res.String())
}

func TestParseResponseErrors(t *testing.T) {
	testData := []struct {
		name     string
		raw      string
		expected error
	}{
		{"empty", "", ErrMalformedStatusLine},
		{"no code", "HTTP/1.1\r\n\r\n", ErrMalformedStatusLine},
		{"bad code", "HTTP/1.1 abc OK\r\n\r\n", ErrMalformedStatusLine},
		{"code out of range", "HTTP/1.1 700 OK\r\n\r\n", ErrMalformedStatusLine},
		{"header without colon", "HTTP/1.1 200 OK\r\nbroken\r\n\r\n", ErrMalformedHeaderLine},
		{"bad content length", "HTTP/1.1 200 OK\r\nContent-Length: x\r\n\r\n", ErrMalformedHeaderLine},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			_, err := ParseResponse(record.raw)
			assert.True(t, errors.Is(err, record.expected), "got %v", err)
			assert.True(t, strings.Contains(err.Error(), record.expected.Error()))
		})
	}
}
