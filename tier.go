package ladder

import (
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

// Tier is one rung of the ladder: a discount below the reference price and
// the notional allocated to it.
type Tier struct {
	Discount   decimal.Decimal
	Allocation decimal.Decimal
}

func DefaultTiers() []Tier {
	return []Tier{
		{
			Discount:   decimal.RequireFromString("0.20"),
			Allocation: decimal.NewFromInt(1000),
		},
		{
			Discount:   decimal.RequireFromString("0.25"),
			Allocation: decimal.NewFromInt(1000),
		},
		{
			Discount:   decimal.RequireFromString("0.30"),
			Allocation: decimal.NewFromInt(2000),
		},
	}
}

func (t Tier) price(openPrice decimal.Decimal) decimal.Decimal {
	return openPrice.Mul(decimal.NewFromInt(1).Sub(t.Discount))
}

type PositionTier struct {
	Tier  Tier
	Price string
	Size  string
}

func (pt *PositionTier) String() string {
	return fmt.Sprintf(
		"-%v%%: %v @ %v",
		pt.Tier.Discount.Shift(2).String(),
		pt.Size,
		pt.Price,
	)
}

type PositionTiers []*PositionTier

func (pts PositionTiers) String() string {
	parts := make([]string, len(pts))
	for index, tier := range pts {
		parts[index] = tier.String()
	}

	return strings.Join(parts, ", ")
}

type PositionCalculator struct {
	precisionRepository PrecisionRepository
	tiers               []Tier
}

func NewPositionCalculator(
	precisionRepository PrecisionRepository,
	tiers ...Tier,
) *PositionCalculator {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}

	return &PositionCalculator{
		precisionRepository: precisionRepository,
		tiers:               tiers,
	}
}

// CalculateTiers returns ok == false without an error when the symbol has
// no known precision; the caller is expected to skip it.
func (pc *PositionCalculator) CalculateTiers(
	symbol string,
	openPrice string,
) (PositionTiers, bool, error) {
	precision, ok := pc.precisionRepository.Precision(symbol)
	if !ok {
		return nil, false, nil
	}

	open, err := decimal.NewFromString(openPrice)
	if err != nil {
		return nil, true, NewError(
			KindDecode,
			"calculate tiers",
			fmt.Errorf("could not parse open price [%v]: [%v]", openPrice, err),
		)
	}

	if !open.IsPositive() {
		return nil, true, Errorf(
			KindDecode,
			"calculate tiers",
			"open price must be positive: [%v]",
			openPrice,
		)
	}

	positionTiers := make(PositionTiers, len(pc.tiers))

	for index, tier := range pc.tiers {
		price := tier.price(open)
		size := tier.Allocation.Div(price)

		positionTiers[index] = &PositionTier{
			Tier:  tier,
			Price: price.StringFixed(precision.PriceDecimals),
			Size:  size.StringFixed(precision.SizeDecimals),
		}
	}

	return positionTiers, true, nil
}
