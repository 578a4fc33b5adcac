package handler

import (
	"errors"
	"testing"

	"github.com/niels/tinyhttpd/pkg/protocol"
	"github.com/niels/tinyhttpd/pkg/store"
	"github.com/stretchr/testify/assert"
)

var testPages = mockFiles{
	IndexPage:    "<h1>index</h1>",
	HealthPage:   "<h1>healthy</h1>",
	NotFoundPage: "<h1>not found</h1>",
	"styles.css": "body {}",
	"app.js":     "console.log(1)",
	"about.html": "<h1>about</h1>",
	"README":     "plain",
}

func get(path string) *protocol.Request {
	return &protocol.Request{
		Method:  protocol.MethodGet,
		Version: protocol.Version11,
		Path:    path,
		Headers: protocol.Header{},
	}
}

func TestPageNotFoundHandler(t *testing.T) {
	assert := assert.New(t)

	res := NewPageNotFoundHandler(testPages).Handle(get("/whatever"))
	assert.Equal("404", res.StatusCode)
	assert.Equal("Not Found", res.StatusText())
	assert.Equal("<h1>not found</h1>", res.Body)
	assert.Equal(protocol.Header{"Content-Type": "text/html"}, res.Headers)

	// the request is not consulted at all
	assert.Equal(res, NewPageNotFoundHandler(testPages).Handle(nil))

	empty := NewPageNotFoundHandler(mockFiles{}).Handle(get("/"))
	assert.Equal("404", empty.StatusCode)
	assert.Empty(empty.Body)
}

func TestStaticPageHandler(t *testing.T) {
	h := NewStaticPageHandler(testPages, NewPageNotFoundHandler(testPages))

	testData := []struct {
		path        string
		status      string
		contentType string
		body        string
	}{
		{"/", "200", "text/html", "<h1>index</h1>"},
		{"/health", "200", "text/html", "<h1>healthy</h1>"},
		{"/styles.css", "200", "text/css", "body {}"},
		{"/app.js", "200", "text/javascript", "console.log(1)"},
		{"/about.html", "200", "text/html", "<h1>about</h1>"},
		{"/README", "200", "text/html", "plain"},
		{"/missing.css", "404", "text/html", "<h1>not found</h1>"},
		// only the first segment names the file
		{"/about.html/extra", "200", "text/html", "<h1>about</h1>"},
		{"/css/styles.css", "404", "text/html", "<h1>not found</h1>"},
	}

	for _, record := range testData {
		t.Run(record.path, func(t *testing.T) {
			res := h.Handle(get(record.path))
			assert.Equal(t, record.status, res.StatusCode)
			assert.Equal(t, protocol.Header{"Content-Type": record.contentType}, res.Headers)
			assert.Equal(t, record.body, res.Body)
		})
	}
}

func TestStaticPageHandlerMissingIndex(t *testing.T) {
	files := mockFiles{NotFoundPage: "nf"}
	res := NewStaticPageHandler(files, NewPageNotFoundHandler(files)).Handle(get("/"))

	assert.Equal(t, "200", res.StatusCode)
	assert.Empty(t, res.Body)
}

func TestWebServiceHandler(t *testing.T) {
	var (
		assert = assert.New(t)
		orders = &mockOrders{
			LoadOrdersFunc: func() ([]store.OrderStatus, error) {
				return []store.OrderStatus{
					{OrderID: 1, OrderDate: "21 Jan 2020", OrderStatus: "Delivered"},
					{OrderID: 2, OrderDate: "2 Feb 2020", OrderStatus: "Pending"},
				}, nil
			},
		}
		h = NewWebServiceHandler(orders, NewPageNotFoundHandler(testPages))
	)

	res := h.Handle(get("/api/shipping/orders"))
	assert.Equal("200", res.StatusCode)
	assert.Equal(protocol.Header{"Content-Type": "application/json"}, res.Headers)
	assert.JSONEq(`[
		{"order_id":1,"order_date":"21 Jan 2020","order_status":"Delivered"},
		{"order_id":2,"order_date":"2 Feb 2020","order_status":"Pending"}
	]`, res.Body)
	assert.Equal(1, orders.calls)
}

func TestWebServiceHandlerNotFound(t *testing.T) {
	orders := &mockOrders{
		LoadOrdersFunc: func() ([]store.OrderStatus, error) {
			return nil, nil
		},
	}
	h := NewWebServiceHandler(orders, NewPageNotFoundHandler(testPages))

	for _, path := range []string{"/api", "/api/x", "/api/shipping", "/api/shipping/parcels", "/api/billing/orders"} {
		t.Run(path, func(t *testing.T) {
			res := h.Handle(get(path))
			assert.Equal(t, "404", res.StatusCode)
			assert.Equal(t, "<h1>not found</h1>", res.Body)
		})
	}
	assert.Zero(t, orders.calls)
}

func TestWebServiceHandlerEmptyOrders(t *testing.T) {
	orders := &mockOrders{
		LoadOrdersFunc: func() ([]store.OrderStatus, error) {
			return []store.OrderStatus{}, nil
		},
	}

	res := NewWebServiceHandler(orders, NewPageNotFoundHandler(testPages)).Handle(get("/api/shipping/orders"))
	assert.Equal(t, "200", res.StatusCode)
	assert.Equal(t, "[]", res.Body)
}

func TestWebServiceHandlerLoadFailure(t *testing.T) {
	orders := &mockOrders{
		LoadOrdersFunc: func() ([]store.OrderStatus, error) {
			return nil, errors.New("orders.json: permission denied")
		},
	}

	res := NewWebServiceHandler(orders, NewPageNotFoundHandler(testPages)).Handle(get("/api/shipping/orders"))
	assert.Equal(t, "500", res.StatusCode)
	assert.Equal(t, "Internal Server Error", res.StatusText())
	assert.Empty(t, res.Body)
}

func TestHandlerFunc(t *testing.T) {
	var h Handler = HandlerFunc(func(req *protocol.Request) *protocol.Response {
		return protocol.NewResponse("200", nil, req.Path)
	})

	assert.Equal(t, "/echo", h.Handle(get("/echo")).Body)
}
