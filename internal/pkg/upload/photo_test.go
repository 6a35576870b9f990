package upload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCheckPhotoAcceptsImage(t *testing.T) {
	p, err := CheckPhoto("retrato", pngHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MIME != "image/png" {
		t.Fatalf("expected image/png, got %q", p.MIME)
	}
	if p.Filename != "retrato.png" {
		t.Fatalf("expected extension to be added, got %q", p.Filename)
	}
}

func TestCheckPhotoRejectsNonImage(t *testing.T) {
	_, err := CheckPhoto("notas.txt", []byte("apenas texto"))
	if !errors.Is(err, apperrors.ErrInvalidPhoto) {
		t.Fatalf("expected invalid photo, got %v", err)
	}
	if msg := apperrors.UserMessage(err, ""); msg != NotAnImageMessage {
		t.Fatalf("expected %q, got %q", NotAnImageMessage, msg)
	}
}

func TestCheckPhotoRejectsLargeFile(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxPhotoSize)...)
	_, err := CheckPhoto("grande.png", data)
	if msg := apperrors.UserMessage(err, ""); msg != TooLargeMessage {
		t.Fatalf("expected %q, got %q", TooLargeMessage, msg)
	}
}

func TestReadPhoto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foto.png")
	if err := os.WriteFile(path, pngHeader, 0600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := ReadPhoto(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Filename != "foto.png" || len(p.Data) != len(pngHeader) {
		t.Fatalf("unexpected photo: %s %d", p.Filename, len(p.Data))
	}
}
