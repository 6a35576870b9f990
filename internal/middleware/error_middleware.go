package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/logger"
)

// Messages of the generic error bodies
const (
	NotFoundDetail           = "Não encontrado."
	InvalidCredentialsDetail = "Usuário e/ou senha incorreto(s)"
	TokenInvalidDetail       = "O token é inválido ou expirado"
	InternalErrorDetail      = "Erro interno do servidor."
)

// HandleAPIError writes err as a {"detail": ...} or {"field": ["message"]} body
func HandleAPIError(c *gin.Context, err error) {
	var ce *apperrors.CustomError
	hasCustom := errors.As(err, &ce)

	switch {
	case errors.Is(err, apperrors.ErrInvalidPhoto):
		c.JSON(http.StatusBadRequest, gin.H{"foto": []string{apperrors.UserMessage(err, "Arquivo inválido.")}})
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		if hasCustom && len(ce.Details) > 0 {
			c.JSON(http.StatusBadRequest, fieldBody(ce.Details))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": apperrors.UserMessage(err, err.Error())})
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": NotFoundDetail})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": InvalidCredentialsDetail})
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": TokenInvalidDetail, "code": TokenNotValidCode})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"detail": "Você não tem permissão para executar essa ação."})
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": InternalErrorDetail})
	}
}

// fieldBody turns field -> message details into field -> [message]
func fieldBody(details map[string]interface{}) gin.H {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	body := gin.H{}
	for _, k := range keys {
		switch v := details[k].(type) {
		case []string:
			body[k] = v
		case string:
			body[k] = []string{v}
		default:
			body[k] = []string{fmt.Sprint(v)}
		}
	}
	return body
}
