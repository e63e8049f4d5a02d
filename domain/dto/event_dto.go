package dto

import "time"

// CampaignCreatedEvent is published as "campaign.created"
type CampaignCreatedEvent struct {
	CampaignID string    `json:"campaignId"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Policy     string    `json:"policy"`
	Status     string    `json:"status"`
	PostCount  int       `json:"postCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PostStatusEvent is published as "post.status" after every dispatch attempt
type PostStatusEvent struct {
	PostID        int64     `json:"postId"`
	PostKey       string    `json:"postKey"`
	CampaignID    string    `json:"campaignId"`
	UserID        string    `json:"userId"`
	DestinationID string    `json:"destinationId"`
	Status        string    `json:"status"`
	ExternalRef   *string   `json:"externalRef,omitempty"`
	Error         *string   `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

// HealthReport is the body of GET /healthz
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
