// Package upload checks images attached to records before they are sent.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// MaxPhotoSize is the largest accepted photo in bytes
const MaxPhotoSize = 5 << 20

// User-facing rejection messages
const (
	NotAnImageMessage = "Por favor, selecione apenas arquivos de imagem"
	TooLargeMessage   = "A imagem deve ter no máximo 5MB"
)

// Photo is a checked image ready to be uploaded
type Photo struct {
	Filename string
	MIME     string
	Data     []byte
}

// CheckPhoto accepts data when its detected type is an image and it fits MaxPhotoSize.
// The filename gets the extension of the detected type when it has none.
func CheckPhoto(filename string, data []byte) (*Photo, error) {
	if len(data) > MaxPhotoSize {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidPhoto, "photo too large").
			WithStatusMsg(TooLargeMessage).
			WithDetails(map[string]interface{}{"size": len(data)})
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidPhoto, "not an image").
			WithStatusMsg(NotAnImageMessage).
			WithDetails(map[string]interface{}{"mime": mtype.String()})
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "foto"
	}
	if filepath.Ext(name) == "" {
		name += mtype.Extension()
	}

	return &Photo{
		Filename: name,
		MIME:     mtype.String(),
		Data:     data,
	}, nil
}

// ReadPhoto loads and checks a photo from disk, refusing to read past the size limit
func ReadPhoto(path string) (*Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return CheckPhoto(path, data)
}
