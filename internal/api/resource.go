package api

import (
	"context"
	"net/http"
	"strconv"
)

// Resource is a REST collection addressed as <path> and <path><id>/
type Resource[T any] struct {
	c    *Client
	path string
}

// NewResource binds a collection path such as "/aluno/" to the client
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

// Path returns the collection path
func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) item(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}

// List fetches every record of the collection
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	if err := r.c.call(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.c.call(ctx, http.MethodGet, r.item(id), nil, &item)
	return item, err
}

// Create posts a new record and returns the stored version
func (r *Resource[T]) Create(ctx context.Context, value T) (T, error) {
	var created T
	err := r.c.call(ctx, http.MethodPost, r.path, value, &created)
	return created, err
}

// Update sends a partial update; fields is usually the output of form.Diff
func (r *Resource[T]) Update(ctx context.Context, id int64, fields interface{}) (T, error) {
	var updated T
	err := r.c.call(ctx, http.MethodPatch, r.item(id), fields, &updated)
	return updated, err
}

// Delete removes one record
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.call(ctx, http.MethodDelete, r.item(id), nil, nil)
}
