package pubsub

import (
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"context"
	"encoding/json"
	"github.com/lukasz-zimnoch/ladder"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"testing"
)

type testLogger struct{}

func (tl *testLogger) Debugf(format string, args ...interface{})   {}
func (tl *testLogger) Infof(format string, args ...interface{})    {}
func (tl *testLogger) Warningf(format string, args ...interface{}) {}
func (tl *testLogger) Errorf(format string, args ...interface{})   {}
func (tl *testLogger) Fatalf(format string, args ...interface{})   {}

func (tl *testLogger) WithField(key string, value interface{}) ladder.Logger {
	return tl
}

func (tl *testLogger) WithFields(fields map[string]interface{}) ladder.Logger {
	return tl
}

func newTestClient(t *testing.T) (*Client, *pstest.Server) {
	server := pstest.NewServer()
	t.Cleanup(func() { _ = server.Close() })

	connection, err := grpc.Dial(server.Addr, grpc.WithInsecure())
	if err != nil {
		t.Fatal(err)
	}

	client, err := pubsub.NewClient(
		context.Background(),
		"ladder-test",
		option.WithGRPCConn(connection),
	)
	if err != nil {
		t.Fatal(err)
	}

	topic, err := client.CreateTopic(context.Background(), "notifications")
	if err != nil {
		t.Fatal(err)
	}

	return &Client{client: client, notificationsTopic: topic}, server
}

func TestEventService_PublishAndWait(t *testing.T) {
	client, server := newTestClient(t)

	eventService := NewEventService(client, &testLogger{})

	eventService.Publish(&ladder.Event{
		Subject: "Ladders cancelled",
		Payload: "Ladders have been cancelled",
	})

	eventService.Wait()

	if err := client.Close(); err != nil {
		t.Fatal(err)
	}

	messages := server.Messages()
	if len(messages) != 1 {
		t.Fatalf(
			"unexpected messages count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			1,
			len(messages),
		)
	}

	var event notificationEvent
	if err := json.Unmarshal(messages[0].Data, &event); err != nil {
		t.Fatal(err)
	}

	if event.Subject != "Ladders cancelled" {
		t.Errorf(
			"unexpected subject\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			"Ladders cancelled",
			event.Subject,
		)
	}
}
