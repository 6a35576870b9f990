package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/models"
)

// ClassController handles /turma/ and its choices
type ClassController struct {
	*RecordController[models.Class]
	service *services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(service *services.ClassService, logger zerolog.Logger) *ClassController {
	return &ClassController{
		RecordController: NewRecordController[models.Class](service, logger),
		service:          service,
	}
}

// Choices handles GET /turma/choices/
func (c *ClassController) Choices(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.service.Choices())
}

// NewStudentController creates the /aluno/ controller
func NewStudentController(service *services.StudentService, logger zerolog.Logger) *RecordController[models.Student] {
	return NewRecordController[models.Student](service, logger)
}

// NewSubjectController creates the /disciplina/ controller
func NewSubjectController(service *services.SubjectService, logger zerolog.Logger) *RecordController[models.Subject] {
	return NewRecordController[models.Subject](service, logger)
}

// DashboardController handles /dashboard/
type DashboardController struct {
	service *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

// Summary handles GET /dashboard/
func (c *DashboardController) Summary(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.service.Summary(ctx.Request.Context()))
}
