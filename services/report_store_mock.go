package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockReportStore is an in-memory report store for testing
type MockReportStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	// FailNextSave makes the next Save return an error
	FailNextSave bool
}

// NewMockReportStore creates a new mock report store
func NewMockReportStore() *MockReportStore {
	return &MockReportStore{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global report store instance
func (m *MockReportStore) SetAsMockForTesting() {
	SetReportStore(m)
}

// Save stores the uploaded file in memory
func (m *MockReportStore) Save(fileHeader *multipart.FileHeader, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextSave {
		m.FailNextSave = false
		return fmt.Errorf("mock report store failure")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	m.files[filename] = content
	return nil
}

// Read returns the stored file's content
func (m *MockReportStore) Read(filename string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, exists := m.files[filename]
	if !exists {
		return nil, ErrFileNotFound
	}
	return content, nil
}

// Delete removes the stored file
func (m *MockReportStore) Delete(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filename)
	return nil
}

// Put seeds a file directly into mock storage
func (m *MockReportStore) Put(filename string, content []byte) {
	m.mu.Lock()
	m.files[filename] = content
	m.mu.Unlock()
}

// FileExists checks if a file exists in mock storage
func (m *MockReportStore) FileExists(filename string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[filename]
	return exists
}

// Clear removes all files from mock storage
func (m *MockReportStore) Clear() {
	m.mu.Lock()
	m.files = make(map[string][]byte)
	m.mu.Unlock()
}
