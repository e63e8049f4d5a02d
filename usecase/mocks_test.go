package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clipcast/domain/dto"
	"clipcast/domain/model"
)

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) CreateWithPosts(ctx context.Context, campaign *model.Campaign, posts []model.ScheduledPost) error {
	args := m.Called(ctx, campaign, posts)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetCampaign(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	args := m.Called(ctx, userID, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListPosts(ctx context.Context, campaignID string) ([]model.ScheduledPost, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduledPost), args.Error(1)
}

func (m *MockCampaignRepository) FetchDuePosts(ctx context.Context, now time.Time, limit int) ([]model.DuePost, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DuePost), args.Error(1)
}

func (m *MockCampaignRepository) ClaimPost(ctx context.Context, postID int64, attempts int) (bool, error) {
	args := m.Called(ctx, postID, attempts)
	return args.Bool(0), args.Error(1)
}

func (m *MockCampaignRepository) MarkPostResult(ctx context.Context, postID int64, status model.PostStatus, externalRef, errMsg *string) error {
	args := m.Called(ctx, postID, status, externalRef, errMsg)
	return args.Error(0)
}

func (m *MockCampaignRepository) CompleteFinishedCampaigns(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateContent(ctx context.Context, items []model.ContentItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetContent(ctx context.Context, userID, contentID string) (*model.ContentItem, error) {
	args := m.Called(ctx, userID, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentItem), args.Error(1)
}

func (m *MockCatalogRepository) ListContent(ctx context.Context, userID string) ([]model.ContentItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentItem), args.Error(1)
}

func (m *MockCatalogRepository) FindContentByIDs(ctx context.Context, userID string, ids []string) ([]model.ContentItem, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentItem), args.Error(1)
}

func (m *MockCatalogRepository) CreateDestination(ctx context.Context, dest *model.Destination) error {
	args := m.Called(ctx, dest)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListDestinations(ctx context.Context, userID string) ([]model.Destination, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Destination), args.Error(1)
}

func (m *MockCatalogRepository) FindDestinationsByIDs(ctx context.Context, userID string, ids []string) ([]model.Destination, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Destination), args.Error(1)
}

func (m *MockCatalogRepository) SetDestinationActive(ctx context.Context, userID, destinationID string, active bool) (*model.Destination, error) {
	args := m.Called(ctx, userID, destinationID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Destination), args.Error(1)
}

func (m *MockCatalogRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event string, payload []byte) error {
	args := m.Called(ctx, event, payload)
	return args.Error(0)
}

type MockCampaignCache struct {
	mock.Mock
}

func (m *MockCampaignCache) GetDetail(ctx context.Context, campaignID string) (*dto.CampaignDetail, bool) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*dto.CampaignDetail), args.Bool(1)
}

func (m *MockCampaignCache) SetDetail(ctx context.Context, detail *dto.CampaignDetail) {
	m.Called(ctx, detail)
}

func (m *MockCampaignCache) Invalidate(ctx context.Context, campaignIDs ...string) {
	m.Called(ctx, campaignIDs)
}

func (m *MockCampaignCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Publish(ctx context.Context, post model.PlatformPost) (string, error) {
	args := m.Called(ctx, post)
	return args.String(0), args.Error(1)
}

type MockPostAudit struct {
	mock.Mock
}

func (m *MockPostAudit) Append(ctx context.Context, entries ...model.PostAudit) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockPostAudit) ListByCampaign(ctx context.Context, campaignID string, limit int64) ([]model.PostAudit, error) {
	args := m.Called(ctx, campaignID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PostAudit), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastPostStatus(userID string, post model.ScheduledPost) {
	m.Called(userID, post)
}
