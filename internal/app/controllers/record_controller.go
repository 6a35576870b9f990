package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/middleware"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// RecordService is the CRUD surface shared by students, classes and subjects
type RecordService[T any] interface {
	List(ctx context.Context) []T
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, body []byte, actor string) (T, error)
	Update(ctx context.Context, id int64, patch map[string]json.RawMessage, actor string) (T, error)
	Delete(ctx context.Context, id int64, actor string) error
}

// RecordController exposes a RecordService as list/detail endpoints
type RecordController[T any] struct {
	service RecordService[T]
	logger  zerolog.Logger
}

// NewRecordController creates a new RecordController
func NewRecordController[T any](service RecordService[T], logger zerolog.Logger) *RecordController[T] {
	return &RecordController[T]{service: service, logger: logger}
}

// List handles GET on the collection
func (c *RecordController[T]) List(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.service.List(ctx.Request.Context()))
}

// Get handles GET on one record
func (c *RecordController[T]) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	record, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, record)
}

// Create handles POST on the collection
func (c *RecordController[T]) Create(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("could not read body"))
		return
	}

	record, err := c.service.Create(ctx.Request.Context(), body, middleware.Username(ctx))
	if err != nil {
		c.logger.Debug().Err(err).Msg("Create rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, record)
}

// Update handles PATCH on one record
func (c *RecordController[T]) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	patch, ok := bindObject(ctx)
	if !ok {
		return
	}

	record, err := c.service.Update(ctx.Request.Context(), id, patch, middleware.Username(ctx))
	if err != nil {
		c.logger.Debug().Err(err).Int64("id", id).Msg("Update rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, record)
}

// Delete handles DELETE on one record
func (c *RecordController[T]) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.service.Delete(ctx.Request.Context(), id, middleware.Username(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// parseID reads the :id path parameter; a malformed id answers 404
func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": middleware.NotFoundDetail})
		return 0, false
	}
	return id, true
}

// bindObject decodes a JSON object body into raw fields
func bindObject(ctx *gin.Context) (map[string]json.RawMessage, bool) {
	fields := map[string]json.RawMessage{}
	if err := json.NewDecoder(ctx.Request.Body).Decode(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return nil, false
	}
	return fields, true
}
