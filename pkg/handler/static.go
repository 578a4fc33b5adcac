package handler

import (
	"strings"

	"github.com/niels/tinyhttpd/pkg/protocol"
)

// StaticPageHandler serves pages and assets from the public files
type StaticPageHandler struct {
	files    FileLoader
	notFound Handler
}

// NewStaticPageHandler creates a StaticPageHandler that falls back to notFound
// for missing files
func NewStaticPageHandler(files FileLoader, notFound Handler) *StaticPageHandler {
	return &StaticPageHandler{files: files, notFound: notFound}
}

// Handle serves the file named by the first path segment
func (h *StaticPageHandler) Handle(req *protocol.Request) *protocol.Response {
	switch name := req.Segment(1); name {
	case "":
		return protocol.NewResponse(protocol.StatusOK, nil, loadOrEmpty(h.files, IndexPage))
	case "health":
		return protocol.NewResponse(protocol.StatusOK, nil, loadOrEmpty(h.files, HealthPage))
	default:
		content, ok := h.files.LoadFile(name)
		if !ok {
			return h.notFound.Handle(req)
		}
		headers := protocol.Header{"Content-Type": contentType(name)}
		return protocol.NewResponse(protocol.StatusOK, headers, content)
	}
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".css"):
		return protocol.ContentTypeCSS
	case strings.HasSuffix(name, ".js"):
		return protocol.ContentTypeJavaScript
	default:
		return protocol.ContentTypeHTML
	}
}
