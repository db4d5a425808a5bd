package mail

import (
	"fmt"
	"github.com/lukasz-zimnoch/ladder"
	"gopkg.in/mail.v2"
	"sync"
)

const subjectPrefix = "Ladder notification"

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Recipient string
}

// EventService mails every published event to a single recipient.
type EventService struct {
	config *Config
	logger ladder.Logger
	sender mail.Sender

	pending sync.WaitGroup
}

func NewEventService(config *Config, logger ladder.Logger) *EventService {
	return &EventService{
		config: config,
		logger: logger.WithField("notifier", "mail"),
	}
}

func (es *EventService) Publish(event *ladder.Event) {
	es.pending.Add(1)

	go func() {
		defer es.pending.Done()

		if err := es.Send(event); err != nil {
			es.logger.Errorf("could not send notification: [%v]", err)
			return
		}

		es.logger.Debugf("sent notification [%v]", event.Subject)
	}()
}

// Wait blocks until every published event has been sent or has failed.
func (es *EventService) Wait() {
	es.pending.Wait()
}

func (es *EventService) Send(event *ladder.Event) error {
	message := es.message(event)

	if es.sender != nil {
		if err := mail.Send(es.sender, message); err != nil {
			return fmt.Errorf("could not send email: [%v]", err)
		}

		return nil
	}

	dialer := mail.NewDialer(
		es.config.Host,
		es.config.Port,
		es.config.Username,
		es.config.Password,
	)

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("could not send email: [%v]", err)
	}

	return nil
}

func (es *EventService) message(event *ladder.Event) *mail.Message {
	message := mail.NewMessage()
	message.SetHeader("From", es.config.Username)
	message.SetHeader("To", es.config.Recipient)
	message.SetHeader(
		"Subject",
		fmt.Sprintf("%v: %v", subjectPrefix, event.Subject),
	)
	message.SetBody("text/plain", event.Payload)

	return message
}
