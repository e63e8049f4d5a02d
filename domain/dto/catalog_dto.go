package dto

// RegisterContentRequest is the body of POST /api/content
type RegisterContentRequest struct {
	Title           string `json:"title"`
	DurationSeconds int    `json:"durationSeconds"`
}

// GenerateClipsRequest is the body of POST /api/content/:contentId/clips
type GenerateClipsRequest struct {
	Count int `json:"count"`
}

// ConnectAccountRequest is the body of POST /api/accounts
type ConnectAccountRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// UpdateAccountRequest is the body of PATCH /api/accounts/:accountId
type UpdateAccountRequest struct {
	IsActive *bool `json:"isActive"`
}
