package apperrors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// GeneralField is the reserved error key for failures that are not tied to a field
const GeneralField = "general"

// APIError is returned for every non-2xx API response
type APIError struct {
	Status int
	Method string
	Path   string
	Body   []byte
}

// Error implements error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

// Unwrap maps the HTTP status onto the matching sentinel error
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return ErrBadRequest
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrPermissionDenied
	case e.Status == http.StatusNotFound:
		return ErrResourceNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	}
	return nil
}

// Detail returns the "detail" message of the body, if the API sent one
func (e *APIError) Detail() string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Detail
}

// FieldErrors flattens a structured error body ({"cpf": ["invalid"], ...}) into
// field -> first message. Non-field keys land under GeneralField. The boolean is
// false when the body carries no usable payload.
func (e *APIError) FieldErrors() (map[string]string, bool) {
	if len(e.Body) == 0 {
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(raw))
	for _, key := range keys {
		msg, ok := firstMessage(raw[key])
		if !ok {
			continue
		}
		field := key
		if key == "detail" || key == "non_field_errors" {
			field = GeneralField
		}
		if _, taken := out[field]; taken {
			continue
		}
		out[field] = msg
	}

	return out, len(out) > 0
}

func firstMessage(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if msg, ok := firstMessage(item); ok {
				return msg, true
			}
		}
	}

	return "", false
}
