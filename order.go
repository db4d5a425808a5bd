package ladder

import (
	"fmt"
)

type OrderSide string

const SideBuy OrderSide = "Buy"

type OrderType string

const TypeLimit OrderType = "Limit"

type OrderRequest struct {
	Symbol      string
	Side        OrderSide
	Type        OrderType
	Qty         string
	Price       string
	OrderLinkID string
}

func (or *OrderRequest) String() string {
	return fmt.Sprintf(
		"%v %v %v %v @ %v",
		or.Symbol,
		or.Side,
		or.Type,
		or.Qty,
		or.Price,
	)
}

// NewLadderOrders turns calculated tiers into limit-buy requests, one per
// tier, each with a fresh client link id.
func NewLadderOrders(
	symbol string,
	tiers PositionTiers,
	idService IDService,
) []*OrderRequest {
	requests := make([]*OrderRequest, len(tiers))

	for index, tier := range tiers {
		requests[index] = &OrderRequest{
			Symbol:      symbol,
			Side:        SideBuy,
			Type:        TypeLimit,
			Qty:         tier.Size,
			Price:       tier.Price,
			OrderLinkID: idService.NewID().String(),
		}
	}

	return requests
}

// OrderRecord is the cancellation key of a placed order.
type OrderRecord struct {
	Symbol      string
	OrderID     string
	OrderLinkID string
}

func (or *OrderRecord) String() string {
	return fmt.Sprintf("%v/%v", or.Symbol, or.OrderID)
}

// OrderBatch is the set of orders placed during one cycle. It is built by
// folding per-symbol placement results and handed once to the cancel step.
type OrderBatch struct {
	symbols []string
	records map[string][]*OrderRecord
}

func NewOrderBatch() *OrderBatch {
	return &OrderBatch{records: make(map[string][]*OrderRecord)}
}

// With returns a new batch extended with the given records. The receiver
// is left untouched.
func (ob *OrderBatch) With(symbol string, records ...*OrderRecord) *OrderBatch {
	if len(records) == 0 {
		return ob
	}

	next := &OrderBatch{
		symbols: make([]string, 0, len(ob.symbols)+1),
		records: make(map[string][]*OrderRecord, len(ob.records)+1),
	}

	next.symbols = append(next.symbols, ob.symbols...)
	for key, value := range ob.records {
		next.records[key] = value
	}

	existing, known := next.records[symbol]
	if !known {
		next.symbols = append(next.symbols, symbol)
	}

	merged := make([]*OrderRecord, 0, len(existing)+len(records))
	merged = append(merged, existing...)
	merged = append(merged, records...)
	next.records[symbol] = merged

	return next
}

// Symbols returns symbols in placement order.
func (ob *OrderBatch) Symbols() []string {
	symbols := make([]string, len(ob.symbols))
	copy(symbols, ob.symbols)
	return symbols
}

func (ob *OrderBatch) Records(symbol string) []*OrderRecord {
	records := make([]*OrderRecord, len(ob.records[symbol]))
	copy(records, ob.records[symbol])
	return records
}

func (ob *OrderBatch) Len() int {
	count := 0
	for _, records := range ob.records {
		count += len(records)
	}

	return count
}

func (ob *OrderBatch) Empty() bool {
	return ob.Len() == 0
}

type CancelRejection struct {
	Record  *OrderRecord
	Code    int
	Message string
}

func (cr *CancelRejection) String() string {
	return fmt.Sprintf("%v: %v (%v)", cr.Record, cr.Message, cr.Code)
}

// CancelReport lists per-order outcomes of a batch cancellation as the
// exchange reported them. Orders already filled or closed end up in
// Rejected.
type CancelReport struct {
	Cancelled []*OrderRecord
	Rejected  []*CancelRejection
}
