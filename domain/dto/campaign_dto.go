package dto

import (
	"time"

	"clipcast/domain/model"
)

// Res is the generic envelope used for non-resource responses
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}

// IntervalRequest carries the parameters of a custom interval policy
type IntervalRequest struct {
	Unit      string `json:"unit"`
	Magnitude int    `json:"magnitude"`
}

// CreateCampaignRequest is the body of POST /api/campaigns
type CreateCampaignRequest struct {
	Name           string           `json:"name"`
	ContentIDs     []string         `json:"contentIds"`
	DestinationIDs []string         `json:"destinationIds"`
	Policy         string           `json:"policy"` // immediate | hourly | daily | custom
	Interval       *IntervalRequest `json:"interval,omitempty"`
	StartAt        *time.Time       `json:"startAt,omitempty"`
}

type CreateCampaignResponse struct {
	Campaign     *model.Campaign `json:"campaign"`
	PostsCreated int             `json:"postsCreated"`
}

// CampaignDetail is a campaign together with its posts in sequence order
type CampaignDetail struct {
	Campaign *model.Campaign       `json:"campaign"`
	Posts    []model.ScheduledPost `json:"posts"`
}

// DispatchSummary reports one dispatcher batch
type DispatchSummary struct {
	Picked   int `json:"picked"`
	Posted   int `json:"posted"`
	Failed   int `json:"failed"`
	Finished int `json:"campaignsCompleted"`
}
