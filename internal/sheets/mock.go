package sheets

import (
	"context"
	"sync"
)

// MockExporter records exports for tests.
type MockExporter struct {
	ExportFunc func(ctx context.Context, report Report) error
	Reports    []Report
	mu         sync.Mutex
}

// NewMockExporter creates a new mock exporter.
func NewMockExporter() *MockExporter {
	return &MockExporter{}
}

// Export implements Exporter.
func (m *MockExporter) Export(ctx context.Context, report Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, report)
	}
	return nil
}

// Calls returns how many exports were recorded.
func (m *MockExporter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}
