package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"
	"clipcast/infrastructure/metrics"
	"clipcast/infrastructure/utils"
)

const (
	DefaultDispatchBatch = 25
	MaxDispatchBatch     = 200
	// posts still unresolved after this many claims are failed instead of retried
	maxDispatchAttempts = 3
)

// PostBroadcaster pushes post status changes to live subscribers
type PostBroadcaster interface {
	BroadcastPostStatus(userID string, post model.ScheduledPost)
}

type IDispatchUsecase interface {
	ProcessDuePosts(ctx context.Context, batchSize int) (*dto.DispatchSummary, error)
}

type dispatchUsecase struct {
	campaigns   repository.ICampaign
	catalog     repository.ICatalog
	platform    repository.IPlatform
	audit       repository.IPostAudit
	publisher   repository.IEventPublisher
	cache       repository.ICampaignCache
	broadcaster PostBroadcaster
	metrics     *metrics.Collector
	now         func() time.Time

	// one batch at a time per process; replicas are kept apart by the claim lease
	mu sync.Mutex
}

func NewDispatchUsecase(
	campaigns repository.ICampaign,
	catalog repository.ICatalog,
	platform repository.IPlatform,
	audit repository.IPostAudit,
	publisher repository.IEventPublisher,
	cache repository.ICampaignCache,
	broadcaster PostBroadcaster,
	collector *metrics.Collector,
) IDispatchUsecase {
	return &dispatchUsecase{
		campaigns:   campaigns,
		catalog:     catalog,
		platform:    platform,
		audit:       audit,
		publisher:   publisher,
		cache:       cache,
		broadcaster: broadcaster,
		metrics:     collector,
		now:         utils.GetCurrentTime,
	}
}

type dispatchLookup struct {
	content      map[string]model.ContentItem
	destinations map[string]model.Destination
}

// ProcessDuePosts publishes one batch of due posts, oldest first, then completes
// campaigns that have nothing left to post
func (u *dispatchUsecase) ProcessDuePosts(ctx context.Context, batchSize int) (*dto.DispatchSummary, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	started := time.Now()
	defer func() { u.metrics.ObserveDispatch(time.Since(started)) }()

	if batchSize <= 0 {
		batchSize = DefaultDispatchBatch
	}
	if batchSize > MaxDispatchBatch {
		batchSize = MaxDispatchBatch
	}

	due, err := u.campaigns.FetchDuePosts(ctx, u.now(), batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch due posts: %w", err)
	}
	summary := &dto.DispatchSummary{Picked: len(due)}

	lookups, err := u.loadLookups(ctx, due)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]struct{})
	for _, dp := range due {
		if ctx.Err() != nil {
			break
		}
		status, ok := u.dispatchOne(ctx, dp, lookups[dp.UserID])
		if !ok {
			continue
		}
		touched[dp.CampaignID] = struct{}{}
		if status == model.PostStatusPosted {
			summary.Posted++
		} else {
			summary.Failed++
		}
	}

	completed, err := u.campaigns.CompleteFinishedCampaigns(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while completing campaigns")
	}
	summary.Finished = int(completed)

	if u.cache != nil && len(touched) > 0 {
		ids := make([]string, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		u.cache.Invalidate(ctx, ids...)
	}

	if summary.Picked > 0 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"picked":    summary.Picked,
			"posted":    summary.Posted,
			"failed":    summary.Failed,
			"completed": summary.Finished,
		}).Info("Dispatch batch processed")
	}
	return summary, nil
}

// loadLookups fetches the content and destinations referenced by the batch, per owner
func (u *dispatchUsecase) loadLookups(ctx context.Context, due []model.DuePost) (map[string]dispatchLookup, error) {
	contentIDs := map[string][]string{}
	destIDs := map[string][]string{}
	for _, dp := range due {
		contentIDs[dp.UserID] = append(contentIDs[dp.UserID], dp.ContentID)
		destIDs[dp.UserID] = append(destIDs[dp.UserID], dp.DestinationID)
	}

	out := make(map[string]dispatchLookup, len(contentIDs))
	for userID := range contentIDs {
		items, err := u.catalog.FindContentByIDs(ctx, userID, uniqueIDs(contentIDs[userID]))
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		dests, err := u.catalog.FindDestinationsByIDs(ctx, userID, uniqueIDs(destIDs[userID]))
		if err != nil {
			return nil, fmt.Errorf("load destinations: %w", err)
		}
		l := dispatchLookup{
			content:      make(map[string]model.ContentItem, len(items)),
			destinations: make(map[string]model.Destination, len(dests)),
		}
		for _, it := range items {
			l.content[it.ID] = it
		}
		for _, d := range dests {
			l.destinations[d.ID] = d
		}
		out[userID] = l
	}
	return out, nil
}

// dispatchOne claims and publishes a single post. ok is false when the post was
// skipped (claimed elsewhere or the store rejected the update).
func (u *dispatchUsecase) dispatchOne(ctx context.Context, dp model.DuePost, lookup dispatchLookup) (model.PostStatus, bool) {
	lg := logger.GetLogger().WithField("post_id", dp.ID).WithField("campaign_id", dp.CampaignID)

	claimed, err := u.campaigns.ClaimPost(ctx, dp.ID, dp.Attempts)
	if err != nil {
		lg.WithField("error", err).Error("Error while claiming post")
		return "", false
	}
	if !claimed {
		lg.Debug("Post claimed by another worker")
		return "", false
	}

	res := u.publish(ctx, dp, lookup)
	status := model.PostStatusPosted
	var ref, errMsg *string
	if res.err != nil {
		status = model.PostStatusFailed
		msg := res.err.Error()
		errMsg = &msg
	} else {
		ref = &res.ref
	}

	if err := u.campaigns.MarkPostResult(ctx, dp.ID, status, ref, errMsg); err != nil {
		lg.WithField("error", err).Error("Error while recording post result")
		return "", false
	}
	u.metrics.PostDispatched(string(status))

	post := dp.ScheduledPost
	post.Status = status
	post.ExternalRef = ref
	post.ErrorMessage = errMsg
	post.Attempts = dp.Attempts + 1
	u.afterDispatch(ctx, dp.UserID, post)

	if errMsg != nil {
		lg.WithField("error", *errMsg).Warn("Post failed")
	}
	return status, true
}

type publishResult struct {
	ref string
	err error
}

func (u *dispatchUsecase) publish(ctx context.Context, dp model.DuePost, lookup dispatchLookup) publishResult {
	if dp.Attempts >= maxDispatchAttempts {
		return publishResult{err: fmt.Errorf("gave up after %d attempts", dp.Attempts)}
	}
	item, ok := lookup.content[dp.ContentID]
	if !ok {
		return publishResult{err: fmt.Errorf("content %s: %w", dp.ContentID, repository.ErrNotFound)}
	}
	dest, ok := lookup.destinations[dp.DestinationID]
	if !ok {
		return publishResult{err: fmt.Errorf("destination %s: %w", dp.DestinationID, repository.ErrNotFound)}
	}
	if !dest.IsActive {
		return publishResult{err: errors.New("destination is no longer active")}
	}

	ref, err := u.platform.Publish(ctx, model.PlatformPost{
		PostKey:   dp.Key,
		Platform:  dest.Platform,
		Handle:    dest.Handle,
		ContentID: item.ID,
		Title:     item.Title,
		Duration:  item.DurationSeconds,
	})
	return publishResult{ref: ref, err: err}
}

// afterDispatch fans the new status out to audit, event bus and live streams.
// None of these can fail the dispatch.
func (u *dispatchUsecase) afterDispatch(ctx context.Context, userID string, post model.ScheduledPost) {
	at := u.now()
	if u.audit != nil {
		err := u.audit.Append(ctx, model.PostAudit{
			PostID:       post.ID,
			CampaignID:   post.CampaignID,
			UserID:       userID,
			Status:       post.Status,
			ExternalRef:  post.ExternalRef,
			ErrorMessage: post.ErrorMessage,
			CreatedAt:    at,
		})
		if err != nil {
			logger.GetLogger().WithField("error", err).WithField("post_id", post.ID).Warn("Post audit append failed")
		}
	}
	publishEvent(ctx, u.publisher, repository.EventPostStatus, dto.PostStatusEvent{
		PostID:        post.ID,
		PostKey:       post.Key,
		CampaignID:    post.CampaignID,
		UserID:        userID,
		DestinationID: post.DestinationID,
		Status:        string(post.Status),
		ExternalRef:   post.ExternalRef,
		Error:         post.ErrorMessage,
		At:            at,
	})
	if u.broadcaster != nil {
		u.broadcaster.BroadcastPostStatus(userID, post)
	}
}
