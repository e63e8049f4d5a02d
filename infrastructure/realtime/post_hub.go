package realtime

import (
	"net/http"
	"sync"

	"clipcast/domain/model"

	"github.com/gin-gonic/gin"
)

const postStatusEvent = "post_status"

// PostStatusEvent is the SSE payload sent when a scheduled post changes status
type PostStatusEvent struct {
	Type          string  `json:"type"`
	CampaignID    string  `json:"campaign_id"`
	PostID        int64   `json:"post_id"`
	PostKey       string  `json:"post_key"`
	ContentID     string  `json:"content_id"`
	DestinationID string  `json:"destination_id"`
	Status        string  `json:"status"`
	ExternalRef   *string `json:"external_ref,omitempty"`
	Error         *string `json:"error,omitempty"`
}

// PostHub fans post status events out to the SSE streams of the owning user
type PostHub struct {
	mu    sync.RWMutex
	users map[string]map[chan PostStatusEvent]struct{}
}

func NewPostHub() *PostHub {
	return &PostHub{users: make(map[string]map[chan PostStatusEvent]struct{})}
}

// Serve streams events for the user set by the identity middleware until the client goes away
func (h *PostHub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := make(chan PostStatusEvent, 16)
	h.subscribe(userID, ch)
	defer h.unsubscribe(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			c.SSEvent(postStatusEvent, evt)
			c.Writer.Flush()
		}
	}
}

// Subscribers reports the number of open streams for a user
func (h *PostHub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *PostHub) subscribe(userID string, ch chan PostStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan PostStatusEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *PostHub) unsubscribe(userID string, ch chan PostStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastPostStatus delivers the post's current status to every stream of userID.
// Slow subscribers miss events rather than blocking the dispatcher.
func (h *PostHub) BroadcastPostStatus(userID string, post model.ScheduledPost) {
	evt := PostStatusEvent{
		Type:          postStatusEvent,
		CampaignID:    post.CampaignID,
		PostID:        post.ID,
		PostKey:       post.Key,
		ContentID:     post.ContentID,
		DestinationID: post.DestinationID,
		Status:        string(post.Status),
		ExternalRef:   post.ExternalRef,
		Error:         post.ErrorMessage,
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[userID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
