package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrInvalidFilePath     = errors.New("invalid file path")
	ErrFileNotFound        = errors.New("file not found")
)

const receiptsDir = "receipts"

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/heic": ".heic",
	"image/heif": ".heic",
	"image/webp": ".webp",
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
}

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".webp": "image/webp",
}

// FileService keeps receipt images under uploadDir/receipts/{yyyy}/{MM}
type FileService struct {
	uploadDir     string
	maxFileSize   int64
	publicBaseURL string
	logger        *slog.Logger
	now           func() time.Time
}

// NewFileService creates a file service rooted at uploadDir
func NewFileService(uploadDir string, maxFileSize int64, publicBaseURL string, logger *slog.Logger) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		uploadDir:     uploadDir,
		maxFileSize:   maxFileSize,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.With("component", "file_service"),
		now:           time.Now,
	}
}

// IsAllowedContentType reports whether an upload with this MIME type is accepted
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[normalizeContentType(contentType)]
	return ok
}

// MimeTypeFromPath returns the image MIME type for a stored file, defaulting to JPEG
func MimeTypeFromPath(p string) string {
	if mime, ok := mimeByExtension[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}
	return "image/jpeg"
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Save validates and stores the upload, returning its forward-slash path relative to the upload root
func (s *FileService) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	defaultExt, ok := allowedContentTypes[normalizeContentType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if size == 0 {
		return "", ErrEmptyFile
	}
	if size > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		ext = defaultExt
	}

	now := s.now().UTC()
	relativeDir := path.Join(receiptsDir, now.Format("2006"), now.Format("01"))
	name := fmt.Sprintf("receipt_%s_%s%s", now.Format("20060102_150405"), fileToken(), ext)
	relativePath := path.Join(relativeDir, name)

	fullDir := filepath.Join(s.uploadDir, filepath.FromSlash(relativeDir))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(s.uploadDir, filepath.FromSlash(relativePath))
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	// One extra byte reveals a body larger than the ceiling even when size lied
	written, copyErr := io.Copy(file, io.LimitReader(r, s.maxFileSize+1))
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("failed to write file: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("failed to close file: %w", closeErr)
	case written == 0:
		err = ErrEmptyFile
	case written > s.maxFileSize:
		err = ErrFileTooLarge
	}
	if err != nil {
		if removeErr := os.Remove(fullPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warn("Failed to remove partial upload", "path", relativePath, "error", removeErr)
		}
		return "", err
	}

	s.logger.Info("Stored receipt image", "path", relativePath, "size", written)
	return relativePath, nil
}

// Delete removes a stored file. Missing files are ignored.
func (s *FileService) Delete(relativePath string) error {
	fullPath, err := s.Resolve(relativePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("Deleted receipt image", "path", relativePath)
	return nil
}

// URL returns the public address of a stored file
func (s *FileService) URL(relativePath string) string {
	relativePath = strings.TrimSpace(strings.ReplaceAll(relativePath, "\\", "/"))
	if relativePath == "" {
		return ""
	}
	return s.publicBaseURL + "/api/files/" + strings.TrimLeft(relativePath, "/")
}

// Resolve maps relativePath into the upload root, rejecting anything that escapes it
func (s *FileService) Resolve(relativePath string) (string, error) {
	relativePath = strings.ReplaceAll(relativePath, "\\", "/")
	if relativePath == "" || path.IsAbs(relativePath) {
		return "", ErrInvalidFilePath
	}

	cleaned := path.Clean(relativePath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidFilePath
	}

	root, err := filepath.Abs(s.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload directory: %w", err)
	}

	fullPath := filepath.Join(root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidFilePath
	}

	return fullPath, nil
}

// ReadFile returns the content of a stored file
func (s *FileService) ReadFile(relativePath string) ([]byte, error) {
	fullPath, err := s.Resolve(relativePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// fileToken disambiguates uploads stored within the same second
func fileToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
