package ladder

import (
	"fmt"
	"github.com/shopspring/decimal"
)

const maxStepDecimals = 18

// Precision holds the number of decimal places the exchange accepts for
// an instrument's price and quantity.
type Precision struct {
	PriceDecimals int32
	SizeDecimals  int32
}

func (p Precision) String() string {
	return fmt.Sprintf("price: %v, size: %v", p.PriceDecimals, p.SizeDecimals)
}

// DefaultPrecisions is used until (or instead of) the instrument info sync.
func DefaultPrecisions() map[string]Precision {
	return map[string]Precision{
		"BEAMUSDT": {PriceDecimals: 6, SizeDecimals: 0},
		"SEIUSDT":  {PriceDecimals: 5, SizeDecimals: 0},
		"AGIXUSDT": {PriceDecimals: 5, SizeDecimals: 0},
	}
}

type PrecisionRepository interface {
	SavePrecision(symbol string, precision Precision)

	Precision(symbol string) (Precision, bool)
}

// Instrument is the subset of exchange instrument metadata needed to
// derive a Precision.
type Instrument struct {
	Symbol   string
	TickSize string
	QtyStep  string
}

func (i *Instrument) Precision() (Precision, error) {
	priceDecimals, err := stepDecimals(i.TickSize)
	if err != nil {
		return Precision{}, fmt.Errorf(
			"could not parse tick size for [%v]: [%v]",
			i.Symbol,
			err,
		)
	}

	sizeDecimals, err := stepDecimals(i.QtyStep)
	if err != nil {
		return Precision{}, fmt.Errorf(
			"could not parse qty step for [%v]: [%v]",
			i.Symbol,
			err,
		)
	}

	return Precision{
		PriceDecimals: priceDecimals,
		SizeDecimals:  sizeDecimals,
	}, nil
}

// stepDecimals returns the fractional digits of a step like "0.00010".
func stepDecimals(step string) (int32, error) {
	value, err := decimal.NewFromString(step)
	if err != nil {
		return 0, err
	}

	if !value.IsPositive() {
		return 0, fmt.Errorf("step must be positive: [%v]", step)
	}

	for places := int32(0); places <= maxStepDecimals; places++ {
		if value.Shift(places).IsInteger() {
			return places, nil
		}
	}

	return 0, fmt.Errorf("step has too many decimals: [%v]", step)
}

// SyncPrecisions overwrites the repository entries for every instrument
// the exchange reported. Symbols missing from the response keep whatever
// precision the repository already had.
func SyncPrecisions(
	logger Logger,
	repository PrecisionRepository,
	instruments []*Instrument,
) int {
	synced := 0

	for _, instrument := range instruments {
		precision, err := instrument.Precision()
		if err != nil {
			logger.Warningf("skipping instrument: [%v]", err)
			continue
		}

		repository.SavePrecision(instrument.Symbol, precision)

		logger.Debugf(
			"synced precision [%v] for [%v]",
			precision,
			instrument.Symbol,
		)

		synced++
	}

	return synced
}
