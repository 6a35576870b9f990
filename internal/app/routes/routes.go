package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/smartsecretaria/secretaria/internal/app/controllers"
	"github.com/smartsecretaria/secretaria/internal/middleware"
	"github.com/smartsecretaria/secretaria/internal/models"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Students  *controllers.RecordController[models.Student]
	Teachers  *controllers.TeacherController
	Classes   *controllers.ClassController
	Subjects  *controllers.RecordController[models.Subject]
	Dashboard *controllers.DashboardController
}

// recordHandlers is the handler set of one collection
type recordHandlers interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

// SetupRouter configures all application routes under prefix
func SetupRouter(router *gin.Engine, prefix string, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group(prefix)

	// --- Public token routes ---
	api.POST("/token/", middleware.ValidateRequest[models.Credentials](), c.Auth.ObtainToken)
	api.POST("/token/refresh/", middleware.ValidateRequest[models.RefreshRequest](), c.Auth.RefreshToken)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/turma/choices/", c.Classes.Choices)
		authenticated.GET("/dashboard/", c.Dashboard.Summary)

		mountRecords(authenticated.Group("/aluno"), c.Students)
		mountRecords(authenticated.Group("/professor"), c.Teachers)
		mountRecords(authenticated.Group("/turma"), c.Classes)
		mountRecords(authenticated.Group("/disciplina"), c.Subjects)
	}
}

func mountRecords(g *gin.RouterGroup, h recordHandlers) {
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/:id/", h.Get)
	g.PATCH("/:id/", h.Update)
	g.PUT("/:id/", h.Update)
	g.DELETE("/:id/", h.Delete)
}
