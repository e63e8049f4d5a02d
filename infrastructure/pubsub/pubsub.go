package pubsub

import (
	"context"
	"errors"
	"sync"

	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSub creates a Google Cloud Pub/Sub client for the project
func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID, opts...)
}

// EventPublisher publishes domain events to a single topic. The event name travels
// in the "event" attribute so subscribers can filter without decoding the payload.
type EventPublisher struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewEventPublisher(client *pubsub.Client, topicName string) *EventPublisher {
	return &EventPublisher{client: client, topicName: topicName}
}

var _ repository.IEventPublisher = (*EventPublisher)(nil)

func (p *EventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		topic, err = p.client.CreateTopic(ctx, p.topicName)
		if err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event string, payload []byte) error {
	if p.client == nil {
		return nil
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event": event},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("serverId", serverID).WithField("event", event).Debug("Message published")
	return nil
}

// Close flushes pending messages
func (p *EventPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
