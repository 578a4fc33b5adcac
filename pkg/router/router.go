// Package router selects the handler for a request by method and path.
package router

import (
	"github.com/niels/tinyhttpd/pkg/handler"
	"github.com/niels/tinyhttpd/pkg/protocol"
)

// Kind identifies one of the fixed handler variants
type Kind int

const (
	KindNotFound Kind = iota
	KindStatic
	KindWebService
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindWebService:
		return "webservice"
	default:
		return "notfound"
	}
}

// Route picks the handler variant for req. GET requests under /api go to the
// web service and all other GET requests to the static pages. Every other
// method is not found, whatever the path.
func Route(req *protocol.Request) Kind {
	if req.Method != protocol.MethodGet {
		return KindNotFound
	}
	if req.Segment(1) == "api" {
		return KindWebService
	}
	return KindStatic
}

// Router owns one handler per Kind
type Router struct {
	handlers map[Kind]handler.Handler
}

// New creates a Router from the three handler variants
func New(static, webService, notFound handler.Handler) *Router {
	return &Router{
		handlers: map[Kind]handler.Handler{
			KindStatic:     static,
			KindWebService: webService,
			KindNotFound:   notFound,
		},
	}
}

// NewDefault wires the standard handlers around the given collaborators
func NewDefault(files handler.FileLoader, orders handler.OrderLoader) *Router {
	notFound := handler.NewPageNotFoundHandler(files)
	return New(
		handler.NewStaticPageHandler(files, notFound),
		handler.NewWebServiceHandler(orders, notFound),
		notFound,
	)
}

// Dispatch runs exactly one handler for req and returns its response
func (r *Router) Dispatch(req *protocol.Request) *protocol.Response {
	return r.handlers[Route(req)].Handle(req)
}
