package handler

import (
	"github.com/niels/tinyhttpd/pkg/store"
)

// mockFiles is an in-memory FileLoader
type mockFiles map[string]string

func (m mockFiles) LoadFile(name string) (string, bool) {
	content, ok := m[name]
	return content, ok
}

// mockOrders is an OrderLoader backed by a function
type mockOrders struct {
	LoadOrdersFunc func() ([]store.OrderStatus, error)
	calls          int
}

func (m *mockOrders) LoadOrders() ([]store.OrderStatus, error) {
	m.calls++
	return m.LoadOrdersFunc()
}
