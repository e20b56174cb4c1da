package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileService(t *testing.T) (*FileService, string) {
	t.Helper()
	dir := t.TempDir()
	service := NewFileService(dir, 1024, "http://localhost:8000/", nil)
	service.now = func() time.Time { return time.Date(2024, 1, 10, 12, 30, 45, 0, time.UTC) }
	return service, dir
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestFileService_SaveStoresUnderDatedDirectory(t *testing.T) {
	service, dir := newTestFileService(t)
	content := []byte("fake jpeg body")

	rel, err := service.Save("영수증.JPG", "image/jpeg", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "receipts/2024/01/receipt_20240110_123045_"), rel)
	assert.True(t, strings.HasSuffix(rel, ".jpg"), rel)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	read, err := service.ReadFile(rel)
	require.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestFileService_SaveUsesContentTypeExtensionForUnknownNames(t *testing.T) {
	service, _ := newTestFileService(t)

	rel, err := service.Save("upload", "image/png; charset=binary", 3, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(rel))
}

func TestFileService_SaveRejectsUnsupportedType(t *testing.T) {
	service, dir := newTestFileService(t)

	_, err := service.Save("anim.gif", "image/gif", 3, strings.NewReader("gif"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Zero(t, countFiles(t, dir))
}

func TestFileService_SaveRejectsBadSizes(t *testing.T) {
	service, dir := newTestFileService(t)

	_, err := service.Save("a.jpg", "image/jpeg", 0, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = service.Save("a.jpg", "image/jpeg", 2048, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// declared size lies about the body
	_, err = service.Save("a.jpg", "image/jpeg", 10, bytes.NewReader(make([]byte, 2048)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Zero(t, countFiles(t, dir))
}

func TestFileService_SameSecondUploadsDoNotCollide(t *testing.T) {
	service, _ := newTestFileService(t)

	first, err := service.Save("a.jpg", "image/jpeg", 1, strings.NewReader("a"))
	require.NoError(t, err)
	second, err := service.Save("a.jpg", "image/jpeg", 1, strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestFileService_DeleteIsIdempotent(t *testing.T) {
	service, dir := newTestFileService(t)

	rel, err := service.Save("a.webp", "image/webp", 1, strings.NewReader("w"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(rel))
	assert.Zero(t, countFiles(t, dir))
	assert.NoError(t, service.Delete(rel))

	_, err = service.ReadFile(rel)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_ResolveRejectsTraversal(t *testing.T) {
	service, dir := newTestFileService(t)

	for _, p := range []string{"", "../secret", "receipts/../../etc/passwd", "/etc/passwd", "..", `..\windows`} {
		_, err := service.Resolve(p)
		assert.ErrorIs(t, err, ErrInvalidFilePath, p)
	}

	full, err := service.Resolve("receipts/2024/01/a.jpg")
	require.NoError(t, err)
	root, _ := filepath.Abs(dir)
	assert.Equal(t, filepath.Join(root, "receipts", "2024", "01", "a.jpg"), full)
}

func TestFileService_URL(t *testing.T) {
	service, _ := newTestFileService(t)

	assert.Equal(t, "http://localhost:8000/api/files/receipts/2024/01/a.jpg", service.URL("receipts/2024/01/a.jpg"))
	assert.Empty(t, service.URL(""))
}

func TestMimeTypeFromPath(t *testing.T) {
	assert.Equal(t, "image/png", MimeTypeFromPath("receipts/a.PNG"))
	assert.Equal(t, "image/webp", MimeTypeFromPath("a.webp"))
	assert.Equal(t, "image/jpeg", MimeTypeFromPath("a.bin"))
	assert.True(t, IsAllowedContentType("image/heic"))
	assert.False(t, IsAllowedContentType("application/pdf"))
}
