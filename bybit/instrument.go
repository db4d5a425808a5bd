package bybit

import (
	"context"
	"fmt"
	"github.com/lukasz-zimnoch/ladder"
)

const DefaultInstrumentsURL = "https://api.bybit.com/v5/market/instruments-info"

type instrumentsResult struct {
	Category string           `json:"category"`
	List     []instrumentItem `json:"list"`
}

type instrumentItem struct {
	Symbol      string `json:"symbol"`
	PriceFilter struct {
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
	LotSizeFilter struct {
		QtyStep string `json:"qtyStep"`
	} `json:"lotSizeFilter"`
}

// Instruments fetches tick and step sizes one symbol at a time. Symbols
// the exchange does not list are left out of the result.
func (es *ExchangeService) Instruments(
	ctx context.Context,
	symbols ...string,
) ([]*ladder.Instrument, error) {
	const op = "fetch instruments"

	if es.instrumentsClient == nil || len(es.config.InstrumentsURL) == 0 {
		return nil, ladder.Errorf(
			ladder.KindConfigMissing,
			op,
			"instruments url is not set",
		)
	}

	instruments := make([]*ladder.Instrument, 0, len(symbols))

	for _, symbol := range symbols {
		response, err := es.get(
			ctx,
			op,
			es.instrumentsClient,
			map[string]string{
				"category": es.config.Category,
				"symbol":   symbol,
			},
		)
		if err != nil {
			return nil, err
		}

		if !response.OK() {
			return nil, ladder.NewError(
				ladder.KindDecode,
				op,
				fmt.Errorf("symbol [%v]: [%v]", symbol, response.err()),
			)
		}

		var result instrumentsResult
		if err := response.decodeResult(&result); err != nil {
			return nil, ladder.NewError(ladder.KindDecode, op, err)
		}

		for _, item := range result.List {
			if item.Symbol != symbol {
				continue
			}

			instruments = append(instruments, &ladder.Instrument{
				Symbol:   item.Symbol,
				TickSize: item.PriceFilter.TickSize,
				QtyStep:  item.LotSizeFilter.QtyStep,
			})
		}
	}

	return instruments, nil
}
