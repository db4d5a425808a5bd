package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/lukasz-zimnoch/ladder"
)

type klineResult struct {
	Symbol   string  `json:"symbol"`
	Category string  `json:"category"`
	List     []kline `json:"list"`
}

// kline is sent by the exchange as a positional array of strings:
// [startTime, open, high, low, close, volume, turnover].
type kline struct {
	StartTime  string
	OpenPrice  string
	HighPrice  string
	LowPrice   string
	ClosePrice string
	Volume     string
	Turnover   string
}

func (k *kline) UnmarshalJSON(data []byte) error {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if len(fields) != 7 {
		return fmt.Errorf("expected 7 kline fields, got [%v]", len(fields))
	}

	k.StartTime = fields[0]
	k.OpenPrice = fields[1]
	k.HighPrice = fields[2]
	k.LowPrice = fields[3]
	k.ClosePrice = fields[4]
	k.Volume = fields[5]
	k.Turnover = fields[6]

	return nil
}

func (k kline) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{
		k.StartTime,
		k.OpenPrice,
		k.HighPrice,
		k.LowPrice,
		k.ClosePrice,
		k.Volume,
		k.Turnover,
	})
}

// LatestCandle reads the kline endpoint, which lists candles newest first.
func (es *ExchangeService) LatestCandle(
	ctx context.Context,
	symbol string,
) (*ladder.Candle, error) {
	const op = "fetch kline"

	response, err := es.get(
		ctx,
		op,
		es.klineClient,
		map[string]string{"symbol": symbol},
	)
	if err != nil {
		return nil, err
	}

	if !response.OK() {
		return nil, ladder.NewError(ladder.KindDecode, op, response.err())
	}

	var result klineResult
	if err := response.decodeResult(&result); err != nil {
		return nil, ladder.NewError(ladder.KindDecode, op, err)
	}

	if len(result.List) == 0 {
		return nil, ladder.Errorf(
			ladder.KindNoData,
			op,
			"no kline data for [%v]",
			symbol,
		)
	}

	latest := result.List[0]

	startTime, err := parseMilliseconds(latest.StartTime)
	if err != nil {
		return nil, ladder.NewError(
			ladder.KindDecode,
			op,
			fmt.Errorf("could not parse start time: [%v]", err),
		)
	}

	return &ladder.Candle{
		Symbol:     symbol,
		StartTime:  startTime,
		OpenPrice:  latest.OpenPrice,
		HighPrice:  latest.HighPrice,
		LowPrice:   latest.LowPrice,
		ClosePrice: latest.ClosePrice,
		Volume:     latest.Volume,
		Turnover:   latest.Turnover,
	}, nil
}
