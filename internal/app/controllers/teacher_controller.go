package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/middleware"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
)

// MaxMultipartMemory bounds the in-memory part of multipart bodies
const MaxMultipartMemory = upload.MaxPhotoSize + 1<<20

// arrayFields are sent once per item in multipart bodies
var arrayFields = map[string]bool{"disciplinas": true}

// TeacherController handles /professor/ in JSON or multipart encoding
type TeacherController struct {
	service *services.TeacherService
	logger  zerolog.Logger
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(service *services.TeacherService, logger zerolog.Logger) *TeacherController {
	return &TeacherController{
		service: service,
		logger:  logger,
	}
}

// List handles GET /professor/
func (c *TeacherController) List(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.service.List(ctx.Request.Context()))
}

// Get handles GET /professor/:id/
func (c *TeacherController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	teacher, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, teacher)
}

// Delete handles DELETE /professor/:id/
func (c *TeacherController) Delete(ctx *gin.Context) {
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

// Create handles POST /professor/
func (c *TeacherController) Create(ctx *gin.Context) {
	fields, photo, ok := c.bindTeacher(ctx)
	if !ok {
		return
	}

	teacher, err := c.service.Create(ctx.Request.Context(), fields, photo, middleware.Username(ctx))
	if err != nil {
		c.logger.Debug().Err(err).Msg("Teacher create rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, teacher)
}

// Update handles PATCH /professor/:id/
func (c *TeacherController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	fields, photo, ok := c.bindTeacher(ctx)
	if !ok {
		return
	}

	teacher, err := c.service.Update(ctx.Request.Context(), id, fields, photo, middleware.Username(ctx))
	if err != nil {
		c.logger.Debug().Err(err).Int64("id", id).Msg("Teacher update rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, teacher)
}

func (c *TeacherController) bindTeacher(ctx *gin.Context) (map[string]json.RawMessage, *upload.Photo, bool) {
	if ctx.ContentType() != gin.MIMEMultipartPOSTForm {
		fields, ok := bindObject(ctx)
		return fields, nil, ok
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "Multipart form parse error - " + err.Error()})
		return nil, nil, false
	}

	fields, err := formFields(form.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, nil, false
	}

	files := form.File["foto"]
	if len(files) == 0 {
		return fields, nil, true
	}

	photo, err := readPhoto(files[0])
	if err != nil {
		c.logger.Info().Err(err).Str("filename", files[0].Filename).Msg("Photo rejected")
		middleware.HandleAPIError(ctx, err)
		return nil, nil, false
	}
	return fields, photo, true
}

// formFields turns multipart values into JSON fields. Array fields carry integer ids.
func formFields(values map[string][]string) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(values))
	for name, vals := range values {
		var (
			encoded []byte
			err     error
		)
		if arrayFields[name] {
			ids := make([]int64, 0, len(vals))
			for _, v := range vals {
				id, perr := strconv.ParseInt(v, 10, 64)
				if perr != nil {
					return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid id").
						WithDetails(map[string]interface{}{name: fmt.Sprintf("Tipo incorreto. Esperado valor pk, recebeu %s.", v)})
				}
				ids = append(ids, id)
			}
			encoded, err = json.Marshal(ids)
		} else {
			encoded, err = json.Marshal(vals[len(vals)-1])
		}
		if err != nil {
			return nil, err
		}
		fields[name] = encoded
	}
	return fields, nil
}

func readPhoto(fh *multipart.FileHeader) (*upload.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, upload.MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	return upload.CheckPhoto(fh.Filename, data)
}
