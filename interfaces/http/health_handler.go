package http

import (
	"net/http"

	"clipcast/usecase"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(ctx *gin.Context)
}

type HealthHandler struct {
	healthUsecase usecase.IHealthUsecase
}

func NewHealthHandler(uc usecase.IHealthUsecase) IHealthHandler {
	return &HealthHandler{healthUsecase: uc}
}

// Healthz is 503 only when the campaign store is unreachable
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	report := h.healthUsecase.Check(ctx.Request.Context())
	status := http.StatusOK
	if report.Status == usecase.HealthDown {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, report)
}
