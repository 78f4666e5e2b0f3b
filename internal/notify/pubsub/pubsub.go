// Package pubsub publishes new-document notifications to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// Notifier wraps a Pub/Sub topic.
type Notifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a Notifier for the given project and topic.
func New(ctx context.Context, projectID, topicName string) (*Notifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Notifier{client: client, topic: client.Topic(topicName)}, nil
}

// Publish marshals the notification to JSON and publishes it, waiting for
// the server acknowledgment.
func (n *Notifier) Publish(ctx context.Context, notification docwatch.Notification) error {
	if n.topic == nil {
		return fmt.Errorf("pubsub topic is not configured")
	}
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"company": notification.Company,
			"scan_id": notification.ScanID,
		},
	}
	if _, err := n.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close stops the topic's publish goroutines and releases the client.
func (n *Notifier) Close() error {
	if n.topic != nil {
		n.topic.Stop()
	}
	if n.client != nil {
		return n.client.Close()
	}
	return nil
}
