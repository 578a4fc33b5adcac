package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/quick"
	"github.com/fatih/color"
	"github.com/niels/tinyhttpd/pkg/protocol"
)

// Chroma settings used for bodies
const (
	HighlightFormatter = "terminal16m"
	HighlightStyle     = "monokai"
)

// TerminalFormatter formats responses for terminal output
type TerminalFormatter struct {
	useColor bool
}

// NewTerminalFormatter creates a new terminal formatter
func NewTerminalFormatter(useColor bool) *TerminalFormatter {
	return &TerminalFormatter{useColor: useColor}
}

// Format renders the status line, the headers sorted by key, a blank line
// and the body
func (f *TerminalFormatter) Format(res *protocol.Response) string {
	var sb strings.Builder

	sb.WriteString(f.FormatStatusLine(res))
	sb.WriteString("\n")

	if headers := f.FormatHeaders(res); headers != "" {
		sb.WriteString(headers)
		sb.WriteString("\n")
	}

	if res.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(f.FormatBody(res))
		if !strings.HasSuffix(res.Body, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Write writes the formatted response to w
func (f *TerminalFormatter) Write(w io.Writer, res *protocol.Response) error {
	_, err := io.WriteString(w, f.Format(res))
	return err
}

// FormatStatusLine renders "<version> <code> <text>", colored by status class
func (f *TerminalFormatter) FormatStatusLine(res *protocol.Response) string {
	line := fmt.Sprintf("%s %s %s", res.Version, res.StatusCode, res.StatusText())
	return f.colorize(line, statusAttributes(res.StatusCode)...)
}

// FormatHeaders renders one "Key: value" line per header
func (f *TerminalFormatter) FormatHeaders(res *protocol.Response) string {
	keys := make([]string, 0, len(res.Headers))
	for k := range res.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, f.colorize(k+":", color.FgCyan)+" "+res.Headers[k])
	}
	return strings.Join(lines, "\n")
}

// FormatBody highlights the body with the lexer matching its Content-Type.
// The body is returned unchanged without color, for unknown content types
// or when highlighting fails.
func (f *TerminalFormatter) FormatBody(res *protocol.Response) string {
	lexer := LexerFor(res.Headers["Content-Type"])
	if !f.useColor || lexer == "" || res.Body == "" {
		return res.Body
	}

	var sb strings.Builder
	if err := quick.Highlight(&sb, res.Body, lexer, HighlightFormatter, HighlightStyle); err != nil {
		return res.Body
	}
	return sb.String()
}

// LexerFor maps a Content-Type value to a chroma lexer name, or "" when none
// applies
func LexerFor(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case protocol.ContentTypeJSON:
		return "json"
	case protocol.ContentTypeHTML:
		return "html"
	case protocol.ContentTypeCSS:
		return "css"
	case protocol.ContentTypeJavaScript, "application/javascript":
		return "javascript"
	default:
		return ""
	}
}

func statusAttributes(code string) []color.Attribute {
	switch {
	case strings.HasPrefix(code, "2"):
		return []color.Attribute{color.FgGreen, color.Bold}
	case strings.HasPrefix(code, "4"):
		return []color.Attribute{color.FgYellow, color.Bold}
	case strings.HasPrefix(code, "5"):
		return []color.Attribute{color.FgRed, color.Bold}
	default:
		return []color.Attribute{color.FgWhite, color.Bold}
	}
}

// colorize adds color to text if color is enabled
func (f *TerminalFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}
