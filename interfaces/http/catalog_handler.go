package http

import (
	"net/http"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/usecase"

	"github.com/gin-gonic/gin"
)

type ICatalogHandler interface {
	RegisterContent(ctx *gin.Context)
	GenerateClips(ctx *gin.Context)
	ListContent(ctx *gin.Context)
	ListAccounts(ctx *gin.Context)
	ConnectAccount(ctx *gin.Context)
	UpdateAccount(ctx *gin.Context)
	GetPlatforms(ctx *gin.Context)
}

type CatalogHandler struct {
	catalogUsecase usecase.ICatalogUsecase
}

func NewCatalogHandler(uc usecase.ICatalogUsecase) ICatalogHandler {
	return &CatalogHandler{catalogUsecase: uc}
}

func (h *CatalogHandler) RegisterContent(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.RegisterContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	item, err := h.catalogUsecase.RegisterContent(ctx.Request.Context(), user, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) GenerateClips(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.GenerateClipsRequest
	// an empty body asks for the default clip count
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
			return
		}
	}
	clips, err := h.catalogUsecase.GenerateClips(ctx.Request.Context(), user, ctx.Param("contentId"), req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"clips": clips})
}

func (h *CatalogHandler) ListContent(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	items, err := h.catalogUsecase.ListContent(ctx.Request.Context(), user)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"content": items})
}

func (h *CatalogHandler) ListAccounts(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	accounts, err := h.catalogUsecase.ListAccounts(ctx.Request.Context(), user)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *CatalogHandler) ConnectAccount(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.ConnectAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	dest, err := h.catalogUsecase.ConnectAccount(ctx.Request.Context(), user, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dest)
}

func (h *CatalogHandler) UpdateAccount(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	dest, err := h.catalogUsecase.SetAccountActive(ctx.Request.Context(), user, ctx.Param("accountId"), req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dest)
}

func (h *CatalogHandler) GetPlatforms(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"platforms": model.Platforms})
}
