package ladder

import (
	"fmt"
	"strings"
)

type Event struct {
	Subject string
	Payload string
}

func NewLadderPlacedEvent(
	cycleID ID,
	exchange string,
	candle *Candle,
	tiers PositionTiers,
	records []*OrderRecord,
) *Event {
	orderIDs := make([]string, len(records))
	for index, record := range records {
		orderIDs[index] = record.OrderID
	}

	return &Event{
		Subject: fmt.Sprintf("Ladder placed for %v", candle.Symbol),
		Payload: fmt.Sprintf(
			"New ladder has been placed:\n"+
				"- Cycle: %v\n"+
				"- Exchange: %v\n"+
				"- Symbol: %v\n"+
				"- Open price: %v\n"+
				"- Tiers: %v\n"+
				"- Orders: %v",
			cycleID.String(),
			exchange,
			candle.Symbol,
			candle.OpenPrice,
			tiers.String(),
			strings.Join(orderIDs, ", "),
		),
	}
}

func NewLaddersCancelledEvent(
	cycleID ID,
	exchange string,
	report *CancelReport,
) *Event {
	rejections := make([]string, len(report.Rejected))
	for index, rejection := range report.Rejected {
		rejections[index] = rejection.String()
	}

	return &Event{
		Subject: "Ladders cancelled",
		Payload: fmt.Sprintf(
			"Ladders have been cancelled:\n"+
				"- Cycle: %v\n"+
				"- Exchange: %v\n"+
				"- Cancelled: %v\n"+
				"- Rejected: %v\n"+
				"%v",
			cycleID.String(),
			exchange,
			len(report.Cancelled),
			len(report.Rejected),
			strings.Join(rejections, "\n"),
		),
	}
}

func NewCycleFailedEvent(cycleID ID, exchange string, err error) *Event {
	return &Event{
		Subject: "Cycle failed",
		Payload: fmt.Sprintf(
			"Cycle step has failed:\n"+
				"- Cycle: %v\n"+
				"- Exchange: %v\n"+
				"- Error: %v",
			cycleID.String(),
			exchange,
			err,
		),
	}
}

type EventService interface {
	Publish(event *Event)
}

// EventServices publishes every event on all wrapped services.
type EventServices []EventService

func (es EventServices) Publish(event *Event) {
	for _, service := range es {
		service.Publish(event)
	}
}
