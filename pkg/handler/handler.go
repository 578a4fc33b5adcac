// Package handler implements the three request handlers: static pages, the
// order web service and the not-found page.
package handler

import (
	"github.com/niels/tinyhttpd/pkg/protocol"
	"github.com/niels/tinyhttpd/pkg/store"
)

// Page names looked up through the FileLoader
const (
	IndexPage    = "index.html"
	HealthPage   = "health.html"
	NotFoundPage = "404.html"
)

// Handler turns a request into a response
type Handler interface {
	Handle(req *protocol.Request) *protocol.Response
}

// HandlerFunc is a closure type that implements Handler
type HandlerFunc func(req *protocol.Request) *protocol.Response

// Handle implements Handler
func (f HandlerFunc) Handle(req *protocol.Request) *protocol.Response {
	return f(req)
}

// FileLoader retrieves static content by name. A false result means the
// resource does not exist.
type FileLoader interface {
	LoadFile(name string) (string, bool)
}

// OrderLoader retrieves the order collection
type OrderLoader interface {
	LoadOrders() ([]store.OrderStatus, error)
}

// loadOrEmpty returns the named file, or "" when it cannot be loaded
func loadOrEmpty(files FileLoader, name string) string {
	content, _ := files.LoadFile(name)
	return content
}
