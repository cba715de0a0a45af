package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxReportSize is 10MB in bytes
	MaxReportSize = 10 * 1024 * 1024
	// MaxImageSize is 5MB in bytes
	MaxImageSize = 5 * 1024 * 1024
)

// allowedImageTypes are the accepted avatar content types
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateReportFile validates that the uploaded file is a PDF within the size limit
func ValidateReportFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxReportSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxReportSize/(1024*1024)),
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PDF files are allowed",
		}
	}

	return nil
}

// ValidateImageFile validates that the uploaded file is an accepted image type
// within the size limit and returns its canonical extension
func ValidateImageFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxImageSize {
		return "", &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024)),
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only image files are allowed",
		}
	}

	return ext, nil
}

// ReportFilename generates a collision-resistant filename for an uploaded
// report. The caller-supplied name is never used.
func ReportFilename(appointmentID uint) string {
	return fmt.Sprintf("report-%d-%s.pdf", appointmentID, uuid.NewString())
}

// AvatarFilename generates a collision-resistant filename for a profile picture
func AvatarFilename(userID uint, ext string) string {
	return fmt.Sprintf("profile-%d-%s%s", userID, uuid.NewString(), ext)
}

// SafeFilename reports whether a client-supplied filename is free of
// path-traversal characters
func SafeFilename(filename string) bool {
	return filename != "" &&
		!strings.Contains(filename, "..") &&
		!strings.Contains(filename, "/") &&
		!strings.Contains(filename, "\\")
}

// SaveUploadedFile saves the uploaded file under uploadDir with the given
// filename and returns the filename. The destination directory is created if
// it does not exist.
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, filename string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(uploadDir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	return filename, nil
}
