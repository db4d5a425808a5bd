package pubsub

import (
	"cloud.google.com/go/pubsub"
	"context"
	"encoding/json"
	"github.com/lukasz-zimnoch/ladder"
	"sync"
	"time"
)

const publishTimeout = 30 * time.Second

// EventService publishes events on the notifications topic. Publishing is
// not bound to the caller's context, so events raised while the process
// shuts down are still delivered.
type EventService struct {
	client *Client
	logger ladder.Logger

	pending sync.WaitGroup
}

func NewEventService(client *Client, logger ladder.Logger) *EventService {
	return &EventService{
		client: client,
		logger: logger.WithField("notifier", "pubsub"),
	}
}

func (es *EventService) Publish(event *ladder.Event) {
	es.publishOnNotificationsTopic(event)
}

// Wait blocks until every published event has been acknowledged or has
// failed.
func (es *EventService) Wait() {
	es.pending.Wait()
}

func (es *EventService) publishOnNotificationsTopic(event *ladder.Event) {
	topicLogger := es.logger.WithField("topic", "notifications")

	messageData, err := json.Marshal(newNotificationEvent(event))
	if err != nil {
		topicLogger.Errorf("could not marshal ladder event: [%v]", err)
		return
	}

	es.publishOnTopic(
		es.client.notificationsTopic,
		messageData,
		topicLogger,
	)
}

func (es *EventService) publishOnTopic(
	topic *pubsub.Topic,
	messageData []byte,
	topicLogger ladder.Logger,
) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), publishTimeout)

	result := topic.Publish(ctx, &pubsub.Message{
		Data: messageData,
	})

	es.pending.Add(1)

	go func() {
		defer es.pending.Done()
		defer cancelCtx()

		id, err := result.Get(ctx)
		if err != nil {
			topicLogger.Errorf(
				"could not publish ladder event: [%v]",
				err,
			)
			return
		}

		topicLogger.Infof("published ladder event with ID: [%v]", id)
	}()
}

type notificationEvent struct {
	Subject string
	Payload string
}

func newNotificationEvent(event *ladder.Event) *notificationEvent {
	return &notificationEvent{
		Subject: event.Subject,
		Payload: event.Payload,
	}
}
