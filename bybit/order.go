package bybit

import (
	"context"
	"github.com/lukasz-zimnoch/ladder"
)

// batchRequest field order is part of the signature: category, then request.
type batchRequest struct {
	Category string      `json:"category"`
	Request  interface{} `json:"request"`
}

type orderEntry struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	OrderLinkID string `json:"orderLinkId,omitempty"`
}

type cancelEntry struct {
	Symbol  string `json:"symbol"`
	OrderID string `json:"orderId"`
}

type batchResult struct {
	List []batchResultItem `json:"list"`
}

type batchResultItem struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
	CreateAt    string `json:"createAt,omitempty"`
}

// PlaceOrders returns records only for list entries that carry an order
// id; entries the exchange refused come back with an empty one.
func (es *ExchangeService) PlaceOrders(
	ctx context.Context,
	requests []*ladder.OrderRequest,
) ([]*ladder.OrderRecord, error) {
	const op = "place orders"

	entries := make([]orderEntry, len(requests))
	for index, request := range requests {
		entries[index] = orderEntry{
			Symbol:      request.Symbol,
			Side:        string(request.Side),
			OrderType:   string(request.Type),
			Qty:         request.Qty,
			Price:       request.Price,
			OrderLinkID: request.OrderLinkID,
		}
	}

	response, err := es.postSigned(
		ctx,
		op,
		es.batchOrderClient,
		&batchRequest{Category: es.config.Category, Request: entries},
	)
	if err != nil {
		return nil, ladder.NewError(ladder.KindOrderPlacement, op, err)
	}

	if !response.OK() {
		return nil, ladder.NewError(ladder.KindOrderPlacement, op, response.err())
	}

	var result batchResult
	if err := response.decodeResult(&result); err != nil {
		return nil, ladder.NewError(
			ladder.KindOrderPlacement,
			op,
			ladder.NewError(ladder.KindDecode, op, err),
		)
	}

	records := make([]*ladder.OrderRecord, 0, len(result.List))
	for _, item := range result.List {
		if len(item.OrderID) == 0 {
			continue
		}

		records = append(records, &ladder.OrderRecord{
			Symbol:      item.Symbol,
			OrderID:     item.OrderID,
			OrderLinkID: item.OrderLinkID,
		})
	}

	return records, nil
}

// CancelOrders reports each order as cancelled or rejected according to
// retExtInfo.list, which follows the request order.
func (es *ExchangeService) CancelOrders(
	ctx context.Context,
	records []*ladder.OrderRecord,
) (*ladder.CancelReport, error) {
	const op = "cancel orders"

	entries := make([]cancelEntry, len(records))
	for index, record := range records {
		entries[index] = cancelEntry{
			Symbol:  record.Symbol,
			OrderID: record.OrderID,
		}
	}

	response, err := es.postSigned(
		ctx,
		op,
		es.batchCancelClient,
		&batchRequest{Category: es.config.Category, Request: entries},
	)
	if err != nil {
		return nil, ladder.NewError(ladder.KindOrderCancellation, op, err)
	}

	if !response.OK() {
		return nil, ladder.NewError(
			ladder.KindOrderCancellation,
			op,
			response.err(),
		)
	}

	outcomes, err := response.extInfoList()
	if err != nil {
		return nil, ladder.NewError(
			ladder.KindOrderCancellation,
			op,
			ladder.NewError(ladder.KindDecode, op, err),
		)
	}

	report := &ladder.CancelReport{}
	for index, record := range records {
		if index < len(outcomes) && outcomes[index].Code != retCodeOK {
			report.Rejected = append(report.Rejected, &ladder.CancelRejection{
				Record:  record,
				Code:    outcomes[index].Code,
				Message: outcomes[index].Msg,
			})
			continue
		}

		report.Cancelled = append(report.Cancelled, record)
	}

	return report, nil
}
