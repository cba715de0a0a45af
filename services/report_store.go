package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/pathcare/pathlab-api/config"
)

// ErrFileNotFound indicates the requested file is absent from the store.
// This is distinct from an unknown report filename: the appointment may
// reference a file that has since been removed from storage.
var ErrFileNotFound = errors.New("file not found in report store")

// ReportStore defines the interface for report file storage
type ReportStore interface {
	// Save persists the uploaded file under the given generated filename.
	// The file must be fully written before Save returns.
	Save(fileHeader *multipart.FileHeader, filename string) error
	// Read returns the stored file's content
	Read(filename string) ([]byte, error)
	// Delete removes the stored file
	Delete(filename string) error
}

var reportStoreInstance ReportStore

// InitReportStore selects the report storage backend from configuration:
// S3 when a bucket is configured, local disk otherwise.
func InitReportStore(cfg *config.Config) (ReportStore, error) {
	if cfg.AWSS3Bucket != "" {
		store, err := NewS3ReportStore(cfg)
		if err != nil {
			return nil, err
		}
		reportStoreInstance = store
		return reportStoreInstance, nil
	}

	reportStoreInstance = NewLocalReportStore(filepath.Join(cfg.UploadDir, "reports"))
	return reportStoreInstance, nil
}

// GetReportStore returns the initialized report store instance
func GetReportStore() ReportStore {
	return reportStoreInstance
}

// SetReportStore sets the report store instance (primarily for testing)
func SetReportStore(store ReportStore) {
	reportStoreInstance = store
}

// LocalReportStore stores report files on the local filesystem
type LocalReportStore struct {
	dir string
}

// NewLocalReportStore creates a report store rooted at dir
func NewLocalReportStore(dir string) *LocalReportStore {
	return &LocalReportStore{dir: dir}
}

// Save writes the uploaded file to disk, removing any partial file on failure
func (s *LocalReportStore) Save(fileHeader *multipart.FileHeader, filename string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	fullPath := filepath.Join(s.dir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write report file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	return nil
}

// Read returns the stored file's content
func (s *LocalReportStore) Read(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	return data, nil
}

// Delete removes the stored file
func (s *LocalReportStore) Delete(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report file: %w", err)
	}
	return nil
}
