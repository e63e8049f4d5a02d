package middleware

import (
	"net/http"
	"strings"

	"clipcast/domain/dto"

	"github.com/gin-gonic/gin"
)

// Identity attaches the single dashboard user to every request as "user_id".
// An X-User-Id header may override it only when it matches the configured user.
func Identity(anonymousUserID string) gin.HandlerFunc {
	res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

	return func(ctx *gin.Context) {
		if anonymousUserID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if h := strings.TrimSpace(ctx.GetHeader("X-User-Id")); h != "" && h != anonymousUserID {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set("user_id", anonymousUserID)
		ctx.Next()
	}
}
