package ladder

import (
	"fmt"
	"time"
)

// Kline prices and volumes stay in the exchange's decimal text form.
type Candle struct {
	Symbol     string
	StartTime  time.Time
	OpenPrice  string
	HighPrice  string
	LowPrice   string
	ClosePrice string
	Volume     string
	Turnover   string
}

func (c *Candle) String() string {
	return fmt.Sprintf(
		"symbol: %v, time: %v, open: %v",
		c.Symbol,
		c.StartTime.UTC().Format(time.RFC3339),
		c.OpenPrice,
	)
}
