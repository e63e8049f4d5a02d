package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/usecase"
)

const testClaimLease = 5 * time.Minute

// leaseStore keeps posts in memory with the same fetch and claim rules as the SQL stores
type leaseStore struct {
	mu        sync.Mutex
	posts     map[int64]*model.DuePost
	claimedAt map[int64]time.Time
}

func newLeaseStore(posts ...model.DuePost) *leaseStore {
	s := &leaseStore{posts: map[int64]*model.DuePost{}, claimedAt: map[int64]time.Time{}}
	for i := range posts {
		p := posts[i]
		s.posts[p.ID] = &p
	}
	return s
}

func (s *leaseStore) available(id int64, now time.Time) bool {
	p := s.posts[id]
	switch p.Status {
	case model.PostStatusScheduled:
		return !p.ScheduledAt.After(now)
	case model.PostStatusPosting:
		at, held := s.claimedAt[id]
		return !held || at.Before(now.Add(-testClaimLease))
	}
	return false
}

func (s *leaseStore) CreateWithPosts(context.Context, *model.Campaign, []model.ScheduledPost) error {
	return errors.New("not supported")
}

func (s *leaseStore) GetCampaign(context.Context, string, string) (*model.Campaign, error) {
	return nil, errors.New("not supported")
}

func (s *leaseStore) ListCampaigns(context.Context, string, int) ([]*model.Campaign, error) {
	return nil, errors.New("not supported")
}

func (s *leaseStore) ListPosts(context.Context, string) ([]model.ScheduledPost, error) {
	return nil, errors.New("not supported")
}

func (s *leaseStore) FetchDuePosts(_ context.Context, now time.Time, limit int) ([]model.DuePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []model.DuePost
	for id, p := range s.posts {
		if s.available(id, now) {
			due = append(due, *p)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *leaseStore) ClaimPost(_ context.Context, postID int64, attempts int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p, ok := s.posts[postID]
	if !ok || p.Attempts != attempts || !s.available(postID, now) {
		return false, nil
	}
	p.Status = model.PostStatusPosting
	p.Attempts++
	s.claimedAt[postID] = now
	return true, nil
}

func (s *leaseStore) MarkPostResult(_ context.Context, postID int64, status model.PostStatus, _, _ *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[postID].Status = status
	return nil
}

func (s *leaseStore) CompleteFinishedCampaigns(context.Context) (int64, error) {
	return 0, nil
}

func (s *leaseStore) status(id int64) model.PostStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id].Status
}

// slowPlatform holds every publish until release is closed
type slowPlatform struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newSlowPlatform() *slowPlatform {
	return &slowPlatform{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (p *slowPlatform) Publish(ctx context.Context, post model.PlatformPost) (string, error) {
	p.calls.Add(1)
	p.entered <- struct{}{}
	select {
	case <-p.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "https://example.test/" + post.PostKey, nil
}

// stubAfterDispatch accepts every side effect of a finished post
func (f *dispatchFixture) stubAfterDispatch() {
	f.catalog.On("FindContentByIDs", mock.Anything, "anonymous", []string{"c1"}).
		Return([]model.ContentItem{{ID: "c1", Title: "Keynote #1", DurationSeconds: 30}}, nil).Maybe()
	f.catalog.On("FindDestinationsByIDs", mock.Anything, "anonymous", []string{"d1"}).
		Return([]model.Destination{{ID: "d1", Platform: model.PlatformMicroblog, Handle: "@clips", IsActive: true}}, nil).Maybe()
	f.audit.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.cache.On("Invalidate", mock.Anything, mock.Anything).Maybe()
	f.broadcaster.On("BroadcastPostStatus", mock.Anything, mock.Anything).Maybe()
}

func TestDispatchUsecase_OverlappingBatchesPublishOnce(t *testing.T) {
	ctx := context.Background()
	store := newLeaseStore(duePost(1, "c1", "d1", 0))
	platform := newSlowPlatform()
	f := newDispatchFixture()
	f.stubAfterDispatch()
	uc := usecase.NewDispatchUsecase(store, f.catalog, platform, f.audit, f.publisher, f.cache, f.broadcaster, nil)

	var wg sync.WaitGroup
	summaries := make([]*dto.DispatchSummary, 2)
	errs := make([]error, 2)
	run := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summaries[i], errs[i] = uc.ProcessDuePosts(ctx, 10)
		}()
	}

	run(0)
	<-platform.entered
	run(1)
	assert.Never(t, func() bool { return platform.calls.Load() > 1 }, 150*time.Millisecond, 10*time.Millisecond,
		"a second batch must not publish a post the first batch is still publishing")

	close(platform.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.EqualValues(t, 1, platform.calls.Load())
	assert.Equal(t, 1, summaries[0].Posted+summaries[1].Posted)
	assert.Equal(t, model.PostStatusPosted, store.status(1))
}

func TestDispatchUsecase_ReplicaSkipsLeasedPost(t *testing.T) {
	ctx := context.Background()
	store := newLeaseStore(duePost(1, "c1", "d1", 0))
	platform := newSlowPlatform()
	f := newDispatchFixture()
	f.stubAfterDispatch()
	replicaA := usecase.NewDispatchUsecase(store, f.catalog, platform, f.audit, f.publisher, f.cache, f.broadcaster, nil)
	replicaB := usecase.NewDispatchUsecase(store, f.catalog, platform, f.audit, f.publisher, f.cache, f.broadcaster, nil)

	done := make(chan error, 1)
	go func() {
		_, err := replicaA.ProcessDuePosts(ctx, 10)
		done <- err
	}()
	<-platform.entered

	summary, err := replicaB.ProcessDuePosts(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, summary.Picked, "a post under a live claim is not due")
	assert.EqualValues(t, 1, platform.calls.Load())

	close(platform.release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, platform.calls.Load())
	assert.Equal(t, model.PostStatusPosted, store.status(1))
}

func TestDispatchUsecase_ExpiredLeaseIsRetried(t *testing.T) {
	stuck := duePost(1, "c1", "d1", 1)
	stuck.Status = model.PostStatusPosting
	store := newLeaseStore(stuck)
	store.claimedAt[1] = time.Now().Add(-2 * testClaimLease)

	f := newDispatchFixture()
	f.stubAfterDispatch()
	f.platform.On("Publish", mock.Anything, mock.Anything).Return("https://example.test/c1:d1", nil).Once()
	uc := usecase.NewDispatchUsecase(store, f.catalog, f.platform, f.audit, f.publisher, f.cache, f.broadcaster, nil)

	summary, err := uc.ProcessDuePosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Picked)
	assert.Equal(t, 1, summary.Posted)
	assert.Equal(t, model.PostStatusPosted, store.status(1))
	f.platform.AssertExpectations(t)
}
