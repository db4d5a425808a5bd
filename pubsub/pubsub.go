package pubsub

import (
	"cloud.google.com/go/pubsub"
	"context"
)

type Client struct {
	client             *pubsub.Client
	notificationsTopic *pubsub.Topic
}

func NewClient(
	ctx context.Context,
	projectID,
	notificationsTopicID string,
) (*Client, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:             client,
		notificationsTopic: client.Topic(notificationsTopicID),
	}, nil
}

// Close flushes pending publishes and releases the connection.
func (c *Client) Close() error {
	c.notificationsTopic.Stop()
	return c.client.Close()
}
