package postgres

import (
	"fmt"
	"github.com/jackc/pgtype"
	"github.com/lukasz-zimnoch/ladder"
	"time"
)

type OrderJournal struct {
	client *Client
}

func NewOrderJournal(client *Client) *OrderJournal {
	return &OrderJournal{client}
}

func (oj *OrderJournal) Record(entries ...*ladder.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `INSERT INTO 
    	journal_entry (id, cycle_id, symbol, order_id, order_link_id, price, qty, status, note, time) 
    	VALUES (:id, :cycle_id, :symbol, :order_id, :order_link_id, :price, :qty, :status, :note, :time)`

	transaction, err := oj.client.instance().Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: [%v]", err)
	}

	for _, entry := range entries {
		entryRow, err := new(journalRow).wrap(entry)
		if err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf(
				"could not convert journal entry [%v] to pg row: [%v]",
				entry.ID,
				err,
			)
		}

		if _, err := transaction.NamedExec(query, entryRow); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf(
				"could not execute command for journal entry [%v]: [%v]",
				entry.ID,
				err,
			)
		}
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: [%v]", err)
	}

	return nil
}

type journalRow struct {
	ID          string
	CycleID     string `db:"cycle_id"`
	Symbol      string
	OrderID     string `db:"order_id"`
	OrderLinkID string `db:"order_link_id"`
	Price       pgtype.Numeric
	Qty         pgtype.Numeric
	Status      string
	Note        string
	Time        time.Time
}

func (jr *journalRow) wrap(entry *ladder.JournalEntry) (*journalRow, error) {
	price, err := textToNumeric(entry.Price)
	if err != nil {
		return nil, err
	}

	qty, err := textToNumeric(entry.Qty)
	if err != nil {
		return nil, err
	}

	jr.ID = entry.ID.String()
	jr.CycleID = entry.CycleID.String()
	jr.Symbol = entry.Symbol
	jr.OrderID = entry.OrderID
	jr.OrderLinkID = entry.OrderLinkID
	jr.Price = price
	jr.Qty = qty
	jr.Status = entry.Status.String()
	jr.Note = entry.Note
	jr.Time = entry.Time

	return jr, nil
}
