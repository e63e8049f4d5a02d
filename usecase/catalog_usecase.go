package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"
	"clipcast/infrastructure/utils"

	"github.com/google/uuid"
)

const (
	defaultClipCount = 3
	maxClipCount     = 10
	minClipSeconds   = 15
	maxClipSeconds   = 60
)

type ICatalogUsecase interface {
	RegisterContent(ctx context.Context, userID string, req dto.RegisterContentRequest) (*model.ContentItem, error)
	GenerateClips(ctx context.Context, userID, contentID string, req dto.GenerateClipsRequest) ([]model.ContentItem, error)
	ListContent(ctx context.Context, userID string) ([]model.ContentItem, error)

	ConnectAccount(ctx context.Context, userID string, req dto.ConnectAccountRequest) (*model.Destination, error)
	ListAccounts(ctx context.Context, userID string) ([]model.Destination, error)
	SetAccountActive(ctx context.Context, userID, accountID string, req dto.UpdateAccountRequest) (*model.Destination, error)
}

type catalogUsecase struct {
	catalog repository.ICatalog
	rng     *rand.Rand
	now     func() time.Time
}

// NewCatalogUsecase builds the content and account usecase. rng drives mock clip
// generation; nil uses a time-seeded source.
func NewCatalogUsecase(catalog repository.ICatalog, rng *rand.Rand) ICatalogUsecase {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &catalogUsecase{catalog: catalog, rng: rng, now: utils.GetCurrentTime}
}

func (u *catalogUsecase) RegisterContent(ctx context.Context, userID string, req dto.RegisterContentRequest) (*model.ContentItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: durationSeconds must be positive", ErrValidation)
	}
	now := u.now()
	item := model.ContentItem{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		Kind:            model.ContentKindUpload,
		DurationSeconds: req.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.catalog.CreateContent(ctx, []model.ContentItem{item}); err != nil {
		return nil, err
	}
	return &item, nil
}

// GenerateClips cuts mock clips out of a source item. Offsets, lengths and
// virality scores are random; every clip fits inside the source.
func (u *catalogUsecase) GenerateClips(ctx context.Context, userID, contentID string, req dto.GenerateClipsRequest) ([]model.ContentItem, error) {
	count := req.Count
	if count == 0 {
		count = defaultClipCount
	}
	if count < 1 || count > maxClipCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrValidation, maxClipCount)
	}
	source, err := u.catalog.GetContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if source.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: source %s has no duration", ErrValidation, source.ID)
	}

	now := u.now()
	clips := make([]model.ContentItem, 0, count)
	for i := 1; i <= count; i++ {
		longest := min(maxClipSeconds, source.DurationSeconds)
		shortest := min(minClipSeconds, longest)
		duration := shortest + u.rng.IntN(longest-shortest+1)
		offset := u.rng.IntN(source.DurationSeconds - duration + 1)
		score := math.Round(u.rng.Float64()*1000) / 10
		parent := source.ID

		clips = append(clips, model.ContentItem{
			ID:              uuid.NewString(),
			UserID:          userID,
			Title:           fmt.Sprintf("%s #%d", source.Title, i),
			Kind:            model.ContentKindClip,
			ParentID:        &parent,
			DurationSeconds: duration,
			StartOffset:     offset,
			ViralityScore:   &score,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if err := u.catalog.CreateContent(ctx, clips); err != nil {
		return nil, err
	}
	logger.GetLogger().WithField("source", source.ID).WithField("clips", len(clips)).Info("Clips generated")
	return clips, nil
}

func (u *catalogUsecase) ListContent(ctx context.Context, userID string) ([]model.ContentItem, error) {
	items, err := u.catalog.ListContent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.ContentItem{}
	}
	return items, nil
}

func (u *catalogUsecase) ConnectAccount(ctx context.Context, userID string, req dto.ConnectAccountRequest) (*model.Destination, error) {
	platform := model.Platform(strings.ToLower(strings.TrimSpace(req.Platform)))
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unsupported platform %q", ErrValidation, req.Platform)
	}
	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		return nil, fmt.Errorf("%w: handle is required", ErrValidation)
	}
	now := u.now()
	dest := &model.Destination{
		ID:        uuid.NewString(),
		UserID:    userID,
		Platform:  platform,
		Handle:    handle,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.catalog.CreateDestination(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (u *catalogUsecase) ListAccounts(ctx context.Context, userID string) ([]model.Destination, error) {
	dests, err := u.catalog.ListDestinations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if dests == nil {
		dests = []model.Destination{}
	}
	return dests, nil
}

func (u *catalogUsecase) SetAccountActive(ctx context.Context, userID, accountID string, req dto.UpdateAccountRequest) (*model.Destination, error) {
	if req.IsActive == nil {
		return nil, fmt.Errorf("%w: isActive is required", ErrValidation)
	}
	return u.catalog.SetDestinationActive(ctx, userID, accountID, *req.IsActive)
}
