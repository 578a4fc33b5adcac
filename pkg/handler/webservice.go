package handler

import (
	"encoding/json"

	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/protocol"
)

// WebServiceHandler serves the JSON API under /api
type WebServiceHandler struct {
	orders   OrderLoader
	notFound Handler
}

// NewWebServiceHandler creates a WebServiceHandler that falls back to
// notFound for unknown API paths
func NewWebServiceHandler(orders OrderLoader, notFound Handler) *WebServiceHandler {
	return &WebServiceHandler{orders: orders, notFound: notFound}
}

// Handle serves /api/shipping/orders. Shorter paths and other resources get
// a 404, a failing order source a 500.
func (h *WebServiceHandler) Handle(req *protocol.Request) *protocol.Response {
	segments := req.Segments()
	if len(segments) < 4 {
		return h.notFound.Handle(req)
	}
	if segments[2] != "shipping" || segments[3] != "orders" {
		return h.notFound.Handle(req)
	}

	orders, err := h.orders.LoadOrders()
	if err != nil {
		logging.ErrorWith("Failed to load orders", map[string]interface{}{
			"path":  req.Path,
			"error": err,
		})
		return protocol.NewResponse(protocol.StatusInternalServerError, nil, "")
	}

	body, err := json.Marshal(orders)
	if err != nil {
		logging.ErrorWith("Failed to encode orders", map[string]interface{}{
			"path":  req.Path,
			"error": err,
		})
		return protocol.NewResponse(protocol.StatusInternalServerError, nil, "")
	}

	headers := protocol.Header{"Content-Type": protocol.ContentTypeJSON}
	return protocol.NewResponse(protocol.StatusOK, headers, string(body))
}
