package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipcast/domain/dto"
	"clipcast/domain/model"
	"clipcast/domain/planner"
	"clipcast/domain/repository"
	httpHandler "clipcast/interfaces/http"
	"clipcast/usecase"
)

type mockCampaignUsecase struct {
	mock.Mock
}

func (m *mockCampaignUsecase) CreateCampaign(ctx context.Context, userID string, req dto.CreateCampaignRequest) (*dto.CreateCampaignResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CreateCampaignResponse), args.Error(1)
}

func (m *mockCampaignUsecase) ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Campaign), args.Error(1)
}

func (m *mockCampaignUsecase) GetCampaign(ctx context.Context, userID, campaignID string) (*dto.CampaignDetail, error) {
	args := m.Called(ctx, userID, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CampaignDetail), args.Error(1)
}

func (m *mockCampaignUsecase) ListPosts(ctx context.Context, userID, campaignID string) ([]model.ScheduledPost, error) {
	args := m.Called(ctx, userID, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduledPost), args.Error(1)
}

func (m *mockCampaignUsecase) ListAudit(ctx context.Context, userID, campaignID string, limit int) ([]model.PostAudit, error) {
	args := m.Called(ctx, userID, campaignID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PostAudit), args.Error(1)
}

type mockDispatchUsecase struct {
	mock.Mock
}

func (m *mockDispatchUsecase) ProcessDuePosts(ctx context.Context, batchSize int) (*dto.DispatchSummary, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DispatchSummary), args.Error(1)
}

type stubHealth struct {
	report dto.HealthReport
}

func (s stubHealth) Check(context.Context) dto.HealthReport { return s.report }

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(user string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCampaignHandler_CreateCampaign(t *testing.T) {
	body := `{"name":"Launch","contentIds":["c1"],"destinationIds":["d1","d2"],"policy":"immediate"}`
	want := dto.CreateCampaignRequest{Name: "Launch", ContentIDs: []string{"c1"}, DestinationIDs: []string{"d1", "d2"}, Policy: "immediate"}

	tests := []struct {
		name       string
		result     *dto.CreateCampaignResponse
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "created",
			result:     &dto.CreateCampaignResponse{Campaign: &model.Campaign{ID: "camp-1", Status: model.CampaignStatusRunning}, PostsCreated: 2},
			wantStatus: http.StatusOK,
		},
		{
			name:       "inactive destination",
			err:        &planner.Error{Kind: planner.KindInactiveDestination, Subject: "d2"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "inactive_destination",
		},
		{
			name:       "validation",
			err:        fmt.Errorf("%w: campaign name is required", usecase.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation",
		},
		{
			name:       "unknown id",
			err:        fmt.Errorf("destination d9: %w", repository.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "persistence",
			err:        errors.New("persist campaign: connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockCampaignUsecase)
			if tt.err != nil {
				uc.On("CreateCampaign", mock.Anything, "anonymous", want).Return(nil, tt.err).Once()
			} else {
				uc.On("CreateCampaign", mock.Anything, "anonymous", want).Return(tt.result, nil).Once()
			}
			r := newTestRouter("anonymous")
			r.POST("/api/campaigns", httpHandler.NewCampaignHandler(uc).CreateCampaign)

			w := doJSON(r, http.MethodPost, "/api/campaigns", body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, resp["kind"])
			}
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 2, resp["postsCreated"])
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, resp["error"], "connection reset")
			}
			uc.AssertExpectations(t)
		})
	}
}

func TestCampaignHandler_BadBodyAndMissingUser(t *testing.T) {
	uc := new(mockCampaignUsecase)

	r := newTestRouter("anonymous")
	r.POST("/api/campaigns", httpHandler.NewCampaignHandler(uc).CreateCampaign)
	w := doJSON(r, http.MethodPost, "/api/campaigns", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	anon := newTestRouter("")
	anon.POST("/api/campaigns", httpHandler.NewCampaignHandler(uc).CreateCampaign)
	w = doJSON(anon, http.MethodPost, "/api/campaigns", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	uc.AssertNotCalled(t, "CreateCampaign", mock.Anything, mock.Anything, mock.Anything)
}

func TestCampaignHandler_GetAndList(t *testing.T) {
	uc := new(mockCampaignUsecase)
	uc.On("GetCampaign", mock.Anything, "anonymous", "camp-1").
		Return(&dto.CampaignDetail{Campaign: &model.Campaign{ID: "camp-1"}, Posts: []model.ScheduledPost{{ID: 1}}}, nil).Once()
	uc.On("GetCampaign", mock.Anything, "anonymous", "ghost").
		Return(nil, fmt.Errorf("campaign ghost: %w", repository.ErrNotFound)).Once()
	uc.On("ListCampaigns", mock.Anything, "anonymous", 10).Return([]*model.Campaign{{ID: "camp-1"}}, nil).Once()
	uc.On("ListPosts", mock.Anything, "anonymous", "camp-1").Return([]model.ScheduledPost{{ID: 1}, {ID: 2}}, nil).Once()

	h := httpHandler.NewCampaignHandler(uc)
	r := newTestRouter("anonymous")
	r.GET("/api/campaigns", h.ListCampaigns)
	r.GET("/api/campaigns/:campaignId", h.GetCampaign)
	r.GET("/api/campaigns/:campaignId/posts", h.ListPosts)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/campaigns/camp-1", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/campaigns/ghost", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/campaigns?limit=10", "").Code)

	w := doJSON(r, http.MethodGet, "/api/campaigns/camp-1/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Posts []model.ScheduledPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 2)
	uc.AssertExpectations(t)
}

func TestCampaignHandler_ListAudit(t *testing.T) {
	ref := "https://example/ref"
	uc := new(mockCampaignUsecase)
	uc.On("ListAudit", mock.Anything, "anonymous", "camp-1", 0).
		Return([]model.PostAudit{{PostID: 7, CampaignID: "camp-1", Status: model.PostStatusPosted, ExternalRef: &ref}}, nil).Once()
	uc.On("ListAudit", mock.Anything, "anonymous", "camp-1", 5).Return([]model.PostAudit{}, nil).Once()
	uc.On("ListAudit", mock.Anything, "anonymous", "ghost", 0).
		Return(nil, fmt.Errorf("campaign ghost: %w", repository.ErrNotFound)).Once()

	r := newTestRouter("anonymous")
	r.GET("/api/campaigns/:campaignId/audit", httpHandler.NewCampaignHandler(uc).ListAudit)

	w := doJSON(r, http.MethodGet, "/api/campaigns/camp-1/audit", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		CampaignID string            `json:"campaign_id"`
		Audit      []model.PostAudit `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "camp-1", resp.CampaignID)
	require.Len(t, resp.Audit, 1)
	assert.Equal(t, model.PostStatusPosted, resp.Audit[0].Status)

	w = doJSON(r, http.MethodGet, "/api/campaigns/camp-1/audit?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"audit":[]`)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/campaigns/ghost/audit", "").Code)

	anon := newTestRouter("")
	anon.GET("/api/campaigns/:campaignId/audit", httpHandler.NewCampaignHandler(uc).ListAudit)
	assert.Equal(t, http.StatusUnauthorized, doJSON(anon, http.MethodGet, "/api/campaigns/camp-1/audit", "").Code)
	uc.AssertExpectations(t)
}

func TestDispatchHandler_BatchBounds(t *testing.T) {
	uc := new(mockDispatchUsecase)
	uc.On("ProcessDuePosts", mock.Anything, 25).Return(&dto.DispatchSummary{Picked: 1, Posted: 1}, nil).Once()
	uc.On("ProcessDuePosts", mock.Anything, 200).Return(&dto.DispatchSummary{}, nil).Once()

	r := newTestRouter("anonymous")
	r.POST("/api/posts/dispatch", httpHandler.NewDispatchHandler(uc, 25).ProcessDuePosts)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/posts/dispatch", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/posts/dispatch?batch=200", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/posts/dispatch?batch=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/posts/dispatch?batch=201", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/posts/dispatch?batch=ten", "").Code)
	uc.AssertExpectations(t)
}

func TestHealthHandler_Healthz(t *testing.T) {
	tests := []struct {
		status string
		want   int
	}{
		{usecase.HealthOK, http.StatusOK},
		{usecase.HealthDegraded, http.StatusOK},
		{usecase.HealthDown, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := newTestRouter("")
			h := httpHandler.NewHealthHandler(stubHealth{report: dto.HealthReport{Status: tt.status, Checks: map[string]string{"campaignDb": tt.status}}})
			r.GET("/healthz", h.Healthz)

			w := doJSON(r, http.MethodGet, "/healthz", "")
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"`+tt.status+`"`)
		})
	}
}
