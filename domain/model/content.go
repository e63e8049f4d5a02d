package model

import "time"

// Platform is the closed set of destination platform tags
type Platform string

const (
	PlatformShortFormVideo Platform = "short-form-video"
	PlatformLongFormVideo  Platform = "long-form-video"
	PlatformPhotoSharing   Platform = "photo-sharing"
	PlatformMicroblog      Platform = "microblog"
)

// Platforms lists every supported platform in display order
var Platforms = []Platform{PlatformShortFormVideo, PlatformLongFormVideo, PlatformPhotoSharing, PlatformMicroblog}

func (p Platform) Valid() bool {
	switch p {
	case PlatformShortFormVideo, PlatformLongFormVideo, PlatformPhotoSharing, PlatformMicroblog:
		return true
	}
	return false
}

type ContentKind string

const (
	ContentKindUpload ContentKind = "upload"
	ContentKindClip   ContentKind = "clip"
)

// ContentItem is a piece of video content eligible for distribution (uploaded asset or generated clip)
type ContentItem struct {
	ID              string      `json:"id" gorm:"primaryKey;size:64"`
	UserID          string      `json:"user_id" gorm:"size:64;index"`
	Title           string      `json:"title" gorm:"size:255"`
	Kind            ContentKind `json:"kind" gorm:"size:16"`
	ParentID        *string     `json:"parent_id,omitempty" gorm:"size:64"`
	DurationSeconds int         `json:"duration_seconds"`
	StartOffset     int         `json:"start_offset_seconds"`
	ViralityScore   *float64    `json:"virality_score,omitempty"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// Destination is a connected social-platform account
type Destination struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"size:64;index"`
	Platform  Platform  `json:"platform" gorm:"size:32"`
	Handle    string    `json:"handle" gorm:"size:255"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
