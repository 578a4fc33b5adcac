package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultOrdersFile is the file name looked up inside the data directory
const DefaultOrdersFile = "orders.json"

// OrderStatus is one shipping order record
type OrderStatus struct {
	OrderID     int    `json:"order_id"`
	OrderDate   string `json:"order_date"`
	OrderStatus string `json:"order_status"`
}

// OrderFile loads orders from a JSON array on disk
type OrderFile struct {
	Path string
}

// NewOrderFile creates an OrderFile reading from path
func NewOrderFile(path string) *OrderFile {
	return &OrderFile{Path: path}
}

// LoadOrders reads and decodes the whole order collection. The file is read
// on every call so edits are picked up without a restart.
func (f *OrderFile) LoadOrders() ([]OrderStatus, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var orders []OrderStatus
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse orders file %s: %w", f.Path, err)
	}
	if orders == nil {
		orders = []OrderStatus{}
	}
	return orders, nil
}
