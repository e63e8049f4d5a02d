package http

import (
	"net/http"
	"strconv"

	"clipcast/domain/dto"
	"clipcast/usecase"

	"github.com/gin-gonic/gin"
)

type ICampaignHandler interface {
	CreateCampaign(ctx *gin.Context)
	ListCampaigns(ctx *gin.Context)
	GetCampaign(ctx *gin.Context)
	ListPosts(ctx *gin.Context)
	ListAudit(ctx *gin.Context)
}

type CampaignHandler struct {
	campaignUsecase usecase.ICampaignUsecase
}

func NewCampaignHandler(uc usecase.ICampaignUsecase) ICampaignHandler {
	return &CampaignHandler{campaignUsecase: uc}
}

func (h *CampaignHandler) CreateCampaign(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	res, err := h.campaignUsecase.CreateCampaign(ctx.Request.Context(), user, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *CampaignHandler) ListCampaigns(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	limit := 0
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	list, err := h.campaignUsecase.ListCampaigns(ctx.Request.Context(), user, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"campaigns": list})
}

func (h *CampaignHandler) GetCampaign(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	detail, err := h.campaignUsecase.GetCampaign(ctx.Request.Context(), user, ctx.Param("campaignId"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (h *CampaignHandler) ListPosts(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	campaignID := ctx.Param("campaignId")
	posts, err := h.campaignUsecase.ListPosts(ctx.Request.Context(), user, campaignID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"campaign_id": campaignID, "posts": posts})
}

func (h *CampaignHandler) ListAudit(ctx *gin.Context) {
	user, ok := userID(ctx)
	if !ok {
		return
	}
	limit := 0
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	campaignID := ctx.Param("campaignId")
	entries, err := h.campaignUsecase.ListAudit(ctx.Request.Context(), user, campaignID, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"campaign_id": campaignID, "audit": entries})
}
