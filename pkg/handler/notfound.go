package handler

import "github.com/niels/tinyhttpd/pkg/protocol"

// PageNotFoundHandler answers every request with 404 and the 404.html page
type PageNotFoundHandler struct {
	files FileLoader
}

// NewPageNotFoundHandler creates a PageNotFoundHandler
func NewPageNotFoundHandler(files FileLoader) *PageNotFoundHandler {
	return &PageNotFoundHandler{files: files}
}

// Handle ignores the request. A missing 404.html yields an empty body.
func (h *PageNotFoundHandler) Handle(_ *protocol.Request) *protocol.Response {
	return protocol.NewResponse(protocol.StatusNotFound, nil, loadOrEmpty(h.files, NotFoundPage))
}
