// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/middleware"
	"github.com/smartsecretaria/secretaria/internal/models"
)

// AuthController handles the token endpoints
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// ObtainToken handles POST /token/. The body is bound by middleware.ValidateRequest.
func (c *AuthController) ObtainToken(ctx *gin.Context) {
	creds := middleware.Body[models.Credentials](ctx)

	pair, err := c.authService.ObtainTokenPair(ctx.Request.Context(), *creds)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", creds.Username).Msg("Token request rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

// RefreshToken handles POST /token/refresh/
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	req := middleware.Body[models.RefreshRequest](ctx)

	res, err := c.authService.RefreshAccessToken(ctx.Request.Context(), req.Refresh)
	if err != nil {
		c.logger.Info().Err(err).Msg("Refresh rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
