package ladder

import (
	"fmt"
	"time"
)

type JournalStatus int

const (
	StatusPlaced JournalStatus = iota
	StatusCancelled
	StatusCancelRejected
)

func (js JournalStatus) String() string {
	switch js {
	case StatusPlaced:
		return "PLACED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusCancelRejected:
		return "CANCEL_REJECTED"
	default:
		panic("unknown journal status")
	}
}

// JournalEntry is one append-only audit line about an order. The journal
// is never read back to rebuild cycle state.
type JournalEntry struct {
	ID          ID
	CycleID     ID
	Symbol      string
	OrderID     string
	OrderLinkID string
	Price       string
	Qty         string
	Status      JournalStatus
	Note        string
	Time        time.Time
}

type OrderJournal interface {
	Record(entries ...*JournalEntry) error
}

type journalWriter struct {
	journal   OrderJournal
	idService IDService
	cycleID   ID
	now       func() time.Time
}

func (jw *journalWriter) placed(
	requests []*OrderRequest,
	records []*OrderRecord,
) error {
	byLinkID := make(map[string]*OrderRequest, len(requests))
	for _, request := range requests {
		byLinkID[request.OrderLinkID] = request
	}

	entries := make([]*JournalEntry, 0, len(records))
	for _, record := range records {
		entry := jw.entry(record, StatusPlaced)

		if request, ok := byLinkID[record.OrderLinkID]; ok {
			entry.Price = request.Price
			entry.Qty = request.Qty
		}

		entries = append(entries, entry)
	}

	return jw.journal.Record(entries...)
}

func (jw *journalWriter) cancelled(report *CancelReport) error {
	entries := make(
		[]*JournalEntry,
		0,
		len(report.Cancelled)+len(report.Rejected),
	)

	for _, record := range report.Cancelled {
		entries = append(entries, jw.entry(record, StatusCancelled))
	}

	for _, rejection := range report.Rejected {
		entry := jw.entry(rejection.Record, StatusCancelRejected)
		entry.Note = fmt.Sprintf("%v (%v)", rejection.Message, rejection.Code)
		entries = append(entries, entry)
	}

	return jw.journal.Record(entries...)
}

func (jw *journalWriter) entry(
	record *OrderRecord,
	status JournalStatus,
) *JournalEntry {
	return &JournalEntry{
		ID:          jw.idService.NewID(),
		CycleID:     jw.cycleID,
		Symbol:      record.Symbol,
		OrderID:     record.OrderID,
		OrderLinkID: record.OrderLinkID,
		Status:      status,
		Time:        jw.now(),
	}
}
