package filestorage

import "github.com/smartsecretaria/secretaria/internal/pkg/upload"

// FileStorage defines the interface for photo storage operations
type FileStorage interface {
	// SavePhoto stores a checked photo and returns its public URL
	SavePhoto(photo *upload.Photo) (string, error)

	// SavePhotoWithPath stores a photo under a subdirectory
	SavePhotoWithPath(photo *upload.Photo, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SavePhoto
	DeleteFile(fileURL string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
