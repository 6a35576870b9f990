package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/smartsecretaria/secretaria/internal/form"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
)

// PhotoField is the multipart field of an uploaded photo
const PhotoField = "foto"

// TeacherService is the /professor/ resource with photo uploads
type TeacherService struct {
	*Resource[models.Teacher]
}

// Teachers returns the /professor/ resource
func (c *Client) Teachers() *TeacherService {
	return &TeacherService{Resource: NewResource[models.Teacher](c, TeachersPath)}
}

// CreateWithPhoto creates a teacher; with a photo the record is sent as multipart form data
func (s *TeacherService) CreateWithPhoto(ctx context.Context, t models.Teacher, photo *upload.Photo) (models.Teacher, error) {
	if photo == nil {
		return s.Create(ctx, t)
	}
	fields, err := recordFields(t)
	if err != nil {
		return models.Teacher{}, err
	}
	return s.sendMultipart(ctx, http.MethodPost, s.path, fields, photo)
}

// UpdateWithPhoto sends a partial update, as multipart form data when a photo is attached
func (s *TeacherService) UpdateWithPhoto(ctx context.Context, id int64, fields map[string]json.RawMessage, photo *upload.Photo) (models.Teacher, error) {
	if photo == nil {
		return s.Update(ctx, id, fields)
	}
	return s.sendMultipart(ctx, http.MethodPatch, s.item(id), fields, photo)
}

func (s *TeacherService) sendMultipart(ctx context.Context, method, path string, fields map[string]json.RawMessage, photo *upload.Photo) (models.Teacher, error) {
	body, contentType, err := encodeMultipart(fields, photo)
	if err != nil {
		return models.Teacher{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.c.URL(path), bytes.NewReader(body))
	if err != nil {
		return models.Teacher{}, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var out models.Teacher
	err = s.c.Do(req, &out)
	return out, err
}

func recordFields(v interface{}) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	for _, f := range form.ReadOnlyFields {
		delete(out, f)
	}
	return out, nil
}

// encodeMultipart writes one form field per JSON field; arrays repeat the field per item
func encodeMultipart(fields map[string]json.RawMessage, photo *upload.Photo) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values, err := formValues(fields[name])
		if err != nil {
			return nil, "", fmt.Errorf("field %s: %w", name, err)
		}
		for _, v := range values {
			if err := w.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, PhotoField, escapeQuotes(photo.Filename)))
	header.Set("Content-Type", photo.MIME)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(photo.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func formValues(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	case map[string]interface{}:
		return []string{string(raw)}, nil
	default:
		return []string{fmt.Sprint(val)}, nil
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
