package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/domain/planner"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"
	"clipcast/infrastructure/metrics"
	"clipcast/infrastructure/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCampaignListLimit = 50
	maxCampaignListLimit     = 200
	defaultAuditLimit        = 100
	maxAuditLimit            = 500
)

type ICampaignUsecase interface {
	CreateCampaign(ctx context.Context, userID string, req dto.CreateCampaignRequest) (*dto.CreateCampaignResponse, error)
	ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error)
	GetCampaign(ctx context.Context, userID, campaignID string) (*dto.CampaignDetail, error)
	ListPosts(ctx context.Context, userID, campaignID string) ([]model.ScheduledPost, error)
	ListAudit(ctx context.Context, userID, campaignID string, limit int) ([]model.PostAudit, error)
}

type campaignUsecase struct {
	campaigns repository.ICampaign
	catalog   repository.ICatalog
	publisher repository.IEventPublisher
	cache     repository.ICampaignCache
	audit     repository.IPostAudit
	metrics   *metrics.Collector
	planner   *planner.Planner
	now       func() time.Time
	newID     func() string
}

type CampaignOption func(*campaignUsecase)

// WithClock drives both the planner and campaign timestamps from now
func WithClock(now func() time.Time) CampaignOption {
	return func(u *campaignUsecase) { u.now = now }
}

func WithIDGenerator(newID func() string) CampaignOption {
	return func(u *campaignUsecase) { u.newID = newID }
}

// WithPostAudit enables the audit trail listing; without it ListAudit is always empty
func WithPostAudit(audit repository.IPostAudit) CampaignOption {
	return func(u *campaignUsecase) { u.audit = audit }
}

func NewCampaignUsecase(
	campaigns repository.ICampaign,
	catalog repository.ICatalog,
	publisher repository.IEventPublisher,
	cache repository.ICampaignCache,
	collector *metrics.Collector,
	opts ...CampaignOption,
) ICampaignUsecase {
	u := &campaignUsecase{
		campaigns: campaigns,
		catalog:   catalog,
		publisher: publisher,
		cache:     cache,
		metrics:   collector,
		now:       utils.GetCurrentTime,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.planner = planner.New(planner.WithClock(u.now))
	return u
}

func (u *campaignUsecase) CreateCampaign(ctx context.Context, userID string, req dto.CreateCampaignRequest) (*dto.CreateCampaignResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: campaign name is required", ErrValidation)
	}

	// an empty list is a planning error even when the other list names unknown ids
	if err := planner.CheckSelection(len(req.ContentIDs), len(req.DestinationIDs)); err != nil {
		u.planningFailed(err)
		return nil, err
	}
	items, dests, err := u.resolveSelection(ctx, userID, req.ContentIDs, req.DestinationIDs)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	unit, magnitude := "", 0
	if req.Interval != nil {
		unit, magnitude = req.Interval.Unit, req.Interval.Magnitude
	}
	policy := planner.FromSelector(req.Policy, unit, magnitude, req.StartAt, now)

	posts, err := u.planner.Plan(items, dests, policy)
	if err != nil {
		u.planningFailed(err)
		return nil, err
	}

	campaign := newCampaign(u.newID(), userID, name, policy, now)
	campaign.PostCount = len(posts)
	if posts[0].Status == model.PostStatusPosting {
		campaign.Status = model.CampaignStatusRunning
	}
	if err := u.campaigns.CreateWithPosts(ctx, campaign, posts); err != nil {
		logger.GetLogger().WithField("error", err).WithField("campaign_id", campaign.ID).Error("Error while persisting campaign")
		return nil, fmt.Errorf("persist campaign: %w", err)
	}

	u.metrics.CampaignPlanned(campaign.Policy, len(posts))
	logger.GetLogger().WithFields(map[string]interface{}{
		"campaign_id": campaign.ID,
		"policy":      campaign.Policy,
		"posts":       len(posts),
	}).Info("Campaign planned")

	publishEvent(ctx, u.publisher, repository.EventCampaignCreated, dto.CampaignCreatedEvent{
		CampaignID: campaign.ID,
		UserID:     campaign.UserID,
		Name:       campaign.Name,
		Policy:     campaign.Policy,
		Status:     string(campaign.Status),
		PostCount:  campaign.PostCount,
		CreatedAt:  campaign.CreatedAt,
	})
	if u.cache != nil {
		u.cache.SetDetail(ctx, &dto.CampaignDetail{Campaign: campaign, Posts: posts})
	}

	return &dto.CreateCampaignResponse{Campaign: campaign, PostsCreated: len(posts)}, nil
}

func (u *campaignUsecase) planningFailed(err error) {
	var planErr *planner.Error
	if errors.As(err, &planErr) {
		u.metrics.PlanningFailed(planErr.Kind.String())
	}
}

func newCampaign(id, userID, name string, policy planner.Policy, now time.Time) *model.Campaign {
	c := &model.Campaign{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Policy:    policy.Name(),
		Status:    model.CampaignStatusScheduled,
		CreatedAt: now,
	}
	switch p := policy.(type) {
	case planner.FixedInterval:
		unit := p.Unit.String()
		magnitude := p.Magnitude
		c.IntervalUnit = &unit
		c.IntervalMagnitude = &magnitude
		if p.Anchor != nil {
			start := p.Anchor.UTC()
			c.StartAt = &start
		}
	case planner.Anchored:
		start := p.Start.UTC()
		c.StartAt = &start
	}
	return c
}

// resolveSelection loads content and destinations concurrently and returns them in request
// order. Repeated ids yield repeated entries; an unknown id is ErrNotFound.
func (u *campaignUsecase) resolveSelection(ctx context.Context, userID string, contentIDs, destinationIDs []string) ([]model.ContentItem, []model.Destination, error) {
	var items []model.ContentItem
	var dests []model.Destination

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := u.catalog.FindContentByIDs(gctx, userID, uniqueIDs(contentIDs))
		if err != nil {
			return err
		}
		byID := make(map[string]model.ContentItem, len(found))
		for _, it := range found {
			byID[it.ID] = it
		}
		items = make([]model.ContentItem, 0, len(contentIDs))
		for _, id := range contentIDs {
			it, ok := byID[id]
			if !ok {
				return fmt.Errorf("content %s: %w", id, repository.ErrNotFound)
			}
			items = append(items, it)
		}
		return nil
	})
	g.Go(func() error {
		found, err := u.catalog.FindDestinationsByIDs(gctx, userID, uniqueIDs(destinationIDs))
		if err != nil {
			return err
		}
		byID := make(map[string]model.Destination, len(found))
		for _, d := range found {
			byID[d.ID] = d
		}
		dests = make([]model.Destination, 0, len(destinationIDs))
		for _, id := range destinationIDs {
			d, ok := byID[id]
			if !ok {
				return fmt.Errorf("destination %s: %w", id, repository.ErrNotFound)
			}
			dests = append(dests, d)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, dests, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (u *campaignUsecase) ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error) {
	if limit <= 0 {
		limit = defaultCampaignListLimit
	}
	if limit > maxCampaignListLimit {
		limit = maxCampaignListLimit
	}
	list, err := u.campaigns.ListCampaigns(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*model.Campaign{}
	}
	return list, nil
}

func (u *campaignUsecase) GetCampaign(ctx context.Context, userID, campaignID string) (*dto.CampaignDetail, error) {
	if u.cache != nil {
		if detail, ok := u.cache.GetDetail(ctx, campaignID); ok && detail.Campaign != nil && detail.Campaign.UserID == userID {
			return detail, nil
		}
	}

	campaign, err := u.campaigns.GetCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	posts, err := u.campaigns.ListPosts(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.ScheduledPost{}
	}
	detail := &dto.CampaignDetail{Campaign: campaign, Posts: posts}
	if u.cache != nil {
		u.cache.SetDetail(ctx, detail)
	}
	return detail, nil
}

func (u *campaignUsecase) ListPosts(ctx context.Context, userID, campaignID string) ([]model.ScheduledPost, error) {
	detail, err := u.GetCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	return detail.Posts, nil
}

// ListAudit returns the newest status transitions of a campaign the user owns
func (u *campaignUsecase) ListAudit(ctx context.Context, userID, campaignID string, limit int) ([]model.PostAudit, error) {
	if _, err := u.campaigns.GetCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	if u.audit == nil {
		return []model.PostAudit{}, nil
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	entries, err := u.audit.ListByCampaign(ctx, campaignID, int64(limit))
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("campaign_id", campaignID).Error("Error while listing post audit")
		return nil, err
	}
	if entries == nil {
		entries = []model.PostAudit{}
	}
	return entries, nil
}
