package repository

import (
	"context"
	"errors"
	"time"

	"clipcast/domain/model"
)

// ErrNotFound is returned (wrapped with the missing id) when a lookup matches nothing
var ErrNotFound = errors.New("not found")

// ICampaign persists campaigns and their scheduled posts
type ICampaign interface {
	// CreateWithPosts stores the campaign and every post atomically
	CreateWithPosts(ctx context.Context, campaign *model.Campaign, posts []model.ScheduledPost) error
	GetCampaign(ctx context.Context, userID, campaignID string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error)
	ListPosts(ctx context.Context, campaignID string) ([]model.ScheduledPost, error)

	// FetchDuePosts returns posts scheduled at or before now and posting posts nobody holds
	// a live claim on, oldest first
	FetchDuePosts(ctx context.Context, now time.Time, limit int) ([]model.DuePost, error)
	// ClaimPost moves a due post into posting under a time-limited claim. False means another
	// worker claimed it since it was fetched or still holds the claim.
	ClaimPost(ctx context.Context, postID int64, attempts int) (bool, error)
	MarkPostResult(ctx context.Context, postID int64, status model.PostStatus, externalRef, errMsg *string) error
	// CompleteFinishedCampaigns marks campaigns without outstanding posts as completed
	CompleteFinishedCampaigns(ctx context.Context) (int64, error)
}

// IPostAudit is an append-only history of post status transitions
type IPostAudit interface {
	Append(ctx context.Context, entries ...model.PostAudit) error
	ListByCampaign(ctx context.Context, campaignID string, limit int64) ([]model.PostAudit, error)
}
