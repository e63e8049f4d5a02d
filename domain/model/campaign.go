package model

import "time"

type PostStatus string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPosting   PostStatus = "posting"
	PostStatusPosted    PostStatus = "posted"
	PostStatusFailed    PostStatus = "failed"
)

type CampaignStatus string

const (
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign groups one fan-out planning call and its persisted posts
type Campaign struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	Name              string         `json:"name"`
	Policy            string         `json:"policy"` // immediate | hourly | daily | custom
	IntervalUnit      *string        `json:"interval_unit,omitempty"`
	IntervalMagnitude *int           `json:"interval_magnitude,omitempty"`
	StartAt           *time.Time     `json:"start_at,omitempty"`
	Status            CampaignStatus `json:"status"`
	PostCount         int            `json:"post_count"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ScheduledPost is one (content, destination) pair produced by the planner.
// The planner fills Key..Status; the remaining fields are owned by persistence.
type ScheduledPost struct {
	Key           string     `json:"key"`
	ContentID     string     `json:"content_id"`
	DestinationID string     `json:"destination_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Sequence      int        `json:"sequence"`
	Status        PostStatus `json:"status"`

	ID           int64     `json:"id,omitempty"`
	CampaignID   string    `json:"campaign_id,omitempty"`
	ExternalRef  *string   `json:"external_ref,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// PostAudit is an append-only log entry of a post status transition
type PostAudit struct {
	PostID       int64      `json:"post_id" bson:"postId"`
	CampaignID   string     `json:"campaign_id" bson:"campaignId"`
	UserID       string     `json:"user_id" bson:"userId"`
	Status       PostStatus `json:"status" bson:"status"`
	ExternalRef  *string    `json:"external_ref,omitempty" bson:"externalRef,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty" bson:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"createdAt"`
}

// DuePost is a post picked up by the dispatcher along with the campaign owner
type DuePost struct {
	ScheduledPost
	UserID string
}

// PlatformPost is what the dispatcher hands to a platform publisher
type PlatformPost struct {
	PostKey   string
	Platform  Platform
	Handle    string
	ContentID string
	Title     string
	Duration  int
}
