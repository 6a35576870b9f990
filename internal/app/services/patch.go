package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// readOnly fields are ignored when they appear in a write payload
var readOnly = map[string]bool{"id": true, "foto": true}

// applyPatch overlays the JSON fields of patch on current. Unknown fields are rejected.
func applyPatch[T any](current T, patch map[string]json.RawMessage) (T, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return current, fmt.Errorf("decode record: %w", err)
	}

	for k, v := range patch {
		if readOnly[k] {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return current, fmt.Errorf("encode patch: %w", err)
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return current, apperrors.NewCustomError(apperrors.ErrBadRequest, "invalid payload").
			WithStatusMsg(err.Error())
	}
	return out, nil
}

// decodeRecord decodes a full record from a JSON body, rejecting unknown fields
func decodeRecord[T any](body []byte) (T, error) {
	var zero T
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return zero, apperrors.NewCustomError(apperrors.ErrBadRequest, "invalid JSON").
			WithStatusMsg("JSON parse error - " + err.Error())
	}
	return applyPatch(zero, fields)
}

// fieldError builds a validation error carrying field -> message details
func fieldError(field, message string) error {
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, "validation failed").
		WithDetails(map[string]interface{}{field: message})
}
