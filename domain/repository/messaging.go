package repository

import (
	"context"

	"clipcast/domain/dto"
	"clipcast/domain/model"
)

const (
	EventCampaignCreated = "campaign.created"
	EventPostStatus      = "post.status"
)

// IEventPublisher delivers domain events to a message bus
type IEventPublisher interface {
	Publish(ctx context.Context, event string, payload []byte) error
}

// ICampaignCache caches campaign details keyed by campaign id
type ICampaignCache interface {
	GetDetail(ctx context.Context, campaignID string) (*dto.CampaignDetail, bool)
	SetDetail(ctx context.Context, detail *dto.CampaignDetail)
	Invalidate(ctx context.Context, campaignIDs ...string)
	Ping(ctx context.Context) error
}

// IPlatform posts a piece of content to a destination and returns the platform reference
type IPlatform interface {
	Publish(ctx context.Context, post model.PlatformPost) (string, error)
}
