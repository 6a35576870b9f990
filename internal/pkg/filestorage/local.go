package filestorage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/smartsecretaria/secretaria/internal/pkg/logger"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The URL prefix the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the directory on disk; baseURL is the public prefix it is served under.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SavePhotoWithPath stores a photo in a subdirectory under a unique name
func (ls *LocalStorage) SavePhotoWithPath(photo *upload.Photo, subPath string) (string, error) {
	if photo == nil {
		return "", nil
	}

	dir := ls.basePath
	if subPath != "" {
		dir = filepath.Join(ls.basePath, filepath.Clean("/"+subPath))
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	// Unique filename to prevent collisions
	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(photo.Filename))
	dstPath := filepath.Join(dir, uniqueFilename)

	if err := os.WriteFile(dstPath, photo.Data, 0644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write photo")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := uniqueFilename
	if subPath != "" {
		rel = path.Join(strings.Trim(filepath.ToSlash(subPath), "/"), uniqueFilename)
	}
	accessible := ls.baseURL + "/" + rel

	logger.Info().Str("filename", photo.Filename).Str("saved_as", uniqueFilename).Str("url", accessible).Msg("Photo saved")
	return accessible, nil
}

// SavePhoto stores a photo at the storage root
func (ls *LocalStorage) SavePhoto(photo *upload.Photo) (string, error) {
	return ls.SavePhotoWithPath(photo, "")
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}

// GetFullPath maps a URL returned by SavePhoto back onto the filesystem.
// URLs outside the storage prefix resolve to "".
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	if rel == fileURL && ls.baseURL != "" {
		u, err := url.Parse(fileURL)
		if err != nil {
			return ""
		}
		base, err := url.Parse(ls.baseURL)
		if err != nil || !strings.HasPrefix(u.Path, base.Path) {
			return ""
		}
		rel = strings.TrimPrefix(u.Path, base.Path)
	}

	rel = path.Clean("/" + rel)
	if rel == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
