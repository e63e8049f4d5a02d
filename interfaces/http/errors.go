package http

import (
	"errors"
	"net/http"

	"clipcast/domain/planner"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"
	"clipcast/usecase"

	"github.com/gin-gonic/gin"
)

// writeError maps usecase errors onto status codes. Planning failures carry their kind.
func writeError(ctx *gin.Context, err error) {
	var planErr *planner.Error
	switch {
	case errors.As(err, &planErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": planErr.Error(), "kind": planErr.Kind.String()})
	case errors.Is(err, usecase.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
	case errors.Is(err, repository.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.GetLogger().WithField("path", ctx.FullPath()).WithField("error", err.Error()).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func userID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString("user_id")
	if id == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return "", false
	}
	return id, true
}
