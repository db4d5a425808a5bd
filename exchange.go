package ladder

import (
	"context"
)

type ExchangeService interface {
	ExchangeCandleService
	ExchangeOrderService
	ExchangeInstrumentService

	ExchangeName() string
}

type ExchangeCandleService interface {
	// LatestCandle returns the most recent candle for the symbol.
	LatestCandle(ctx context.Context, symbol string) (*Candle, error)
}

type ExchangeOrderService interface {
	// PlaceOrders submits the requests as one batch and returns a record
	// for every order the exchange accepted.
	PlaceOrders(
		ctx context.Context,
		requests []*OrderRequest,
	) ([]*OrderRecord, error)

	CancelOrders(
		ctx context.Context,
		records []*OrderRecord,
	) (*CancelReport, error)
}

type ExchangeInstrumentService interface {
	Instruments(ctx context.Context, symbols ...string) ([]*Instrument, error)
}
