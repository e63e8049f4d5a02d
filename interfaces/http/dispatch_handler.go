package http

import (
	"net/http"
	"strconv"

	"clipcast/usecase"

	"github.com/gin-gonic/gin"
)

type IDispatchHandler interface {
	ProcessDuePosts(ctx *gin.Context)
}

type DispatchHandler struct {
	dispatchUsecase usecase.IDispatchUsecase
	defaultBatch    int
}

func NewDispatchHandler(uc usecase.IDispatchUsecase, defaultBatch int) IDispatchHandler {
	return &DispatchHandler{dispatchUsecase: uc, defaultBatch: defaultBatch}
}

// ProcessDuePosts runs one dispatcher batch on demand
func (h *DispatchHandler) ProcessDuePosts(ctx *gin.Context) {
	batchSize := h.defaultBatch
	if v := ctx.Query("batch"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > usecase.MaxDispatchBatch {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "batch must be between 1 and 200", "kind": "validation"})
			return
		}
		batchSize = n
	}
	summary, err := h.dispatchUsecase.ProcessDuePosts(ctx.Request.Context(), batchSize)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"processed": true, "batch": batchSize, "summary": summary})
}
