package platform

import (
	"context"
	"fmt"
	"strings"

	"clipcast/domain/model"
	"clipcast/domain/repository"

	"github.com/google/go-querystring/query"
)

var intentEndpoints = map[model.Platform]string{
	model.PlatformShortFormVideo: "https://shorts.clipcast.local/intent/upload",
	model.PlatformLongFormVideo:  "https://video.clipcast.local/intent/upload",
	model.PlatformPhotoSharing:   "https://photos.clipcast.local/intent/share",
	model.PlatformMicroblog:      "https://micro.clipcast.local/intent/post",
}

type intentParams struct {
	Text     string `url:"text"`
	URL      string `url:"url"`
	Via      string `url:"via,omitempty"`
	Ref      string `url:"ref"`
	Duration int    `url:"duration"`
}

// MockPublisher stands in for real platform APIs. It builds a share-intent URL for every
// accepted post and returns it as the external reference.
type MockPublisher struct {
	contentBaseURL string
}

func NewMockPublisher(contentBaseURL string) *MockPublisher {
	return &MockPublisher{contentBaseURL: strings.TrimRight(contentBaseURL, "/")}
}

var _ repository.IPlatform = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, post model.PlatformPost) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	endpoint, ok := intentEndpoints[post.Platform]
	if !ok {
		return "", fmt.Errorf("unsupported platform %q", post.Platform)
	}
	if post.Duration <= 0 {
		return "", fmt.Errorf("content %s has no playable duration", post.ContentID)
	}

	values, err := query.Values(intentParams{
		Text:     post.Title,
		URL:      fmt.Sprintf("%s/content/%s", m.contentBaseURL, post.ContentID),
		Via:      strings.TrimPrefix(post.Handle, "@"),
		Ref:      post.PostKey,
		Duration: post.Duration,
	})
	if err != nil {
		return "", err
	}
	return endpoint + "?" + values.Encode(), nil
}
