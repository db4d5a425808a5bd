package ladder

import (
	"context"
	"sync"
	"time"
)

type Cycle struct {
	ID        ID
	Batch     *OrderBatch
	StartTime time.Time
}

// CycleRunner performs the two halves of a cycle: placing a ladder per
// symbol and cancelling what was placed. Failures are scoped to a symbol
// and reported through the logger and the event service; they never
// escape the runner.
type CycleRunner struct {
	logger     Logger
	exchange   ExchangeService
	symbols    []string
	calculator *PositionCalculator
	idService  IDService
	journal    OrderJournal
	events     EventService
	now        func() time.Time
}

func NewCycleRunner(
	logger Logger,
	exchange ExchangeService,
	symbols []string,
	calculator *PositionCalculator,
	idService IDService,
	journal OrderJournal,
	events EventService,
) *CycleRunner {
	return &CycleRunner{
		logger:     logger,
		exchange:   exchange,
		symbols:    symbols,
		calculator: calculator,
		idService:  idService,
		journal:    journal,
		events:     events,
		now:        time.Now,
	}
}

// Place fetches the latest candle for every symbol concurrently, then
// places ladders one symbol at a time. The returned cycle carries the
// batch of every accepted order.
func (cr *CycleRunner) Place(ctx context.Context) *Cycle {
	cycle := &Cycle{
		ID:        cr.idService.NewID(),
		Batch:     NewOrderBatch(),
		StartTime: cr.now(),
	}

	cycleLogger := cr.logger.WithField("cycleID", cycle.ID.String())
	journal := cr.journalWriter(cycle)

	candles := cr.fetchCandles(ctx, cycleLogger)

	cycleLogger.Infof(
		"fetched candles for [%v] out of [%v] symbols",
		len(candles),
		len(cr.symbols),
	)

	for _, candle := range candles {
		symbolLogger := cycleLogger.WithField("symbol", candle.Symbol)

		requests, records, err := cr.placeLadder(
			ctx,
			symbolLogger,
			cycle,
			candle,
		)
		if err != nil {
			symbolLogger.Errorf("could not place ladder: [%v]", err)
			cr.events.Publish(
				NewCycleFailedEvent(cycle.ID, cr.exchange.ExchangeName(), err),
			)
			continue
		}

		if len(records) == 0 {
			continue
		}

		if err := journal.placed(requests, records); err != nil {
			symbolLogger.Warningf("could not journal placed orders: [%v]", err)
		}

		cycle.Batch = cycle.Batch.With(candle.Symbol, records...)
	}

	cycleLogger.Infof("cycle holds [%v] open orders", cycle.Batch.Len())

	return cycle
}

func (cr *CycleRunner) fetchCandles(
	ctx context.Context,
	logger Logger,
) []*Candle {
	type result struct {
		candle *Candle
		err    error
	}

	results := make([]result, len(cr.symbols))

	var wg sync.WaitGroup
	wg.Add(len(cr.symbols))

	for index, symbol := range cr.symbols {
		go func(index int, symbol string) {
			defer wg.Done()

			candle, err := cr.exchange.LatestCandle(ctx, symbol)
			results[index] = result{candle, err}
		}(index, symbol)
	}

	wg.Wait()

	candles := make([]*Candle, 0, len(results))
	for index, result := range results {
		if result.err != nil {
			logger.WithField("symbol", cr.symbols[index]).Warningf(
				"excluding symbol from cycle: [%v]",
				result.err,
			)
			continue
		}

		candles = append(candles, result.candle)
	}

	return candles
}

func (cr *CycleRunner) placeLadder(
	ctx context.Context,
	logger Logger,
	cycle *Cycle,
	candle *Candle,
) ([]*OrderRequest, []*OrderRecord, error) {
	tiers, supported, err := cr.calculator.CalculateTiers(
		candle.Symbol,
		candle.OpenPrice,
	)
	if err != nil {
		return nil, nil, err
	}

	if !supported {
		logger.Warningf("skipping symbol without known precision")
		return nil, nil, nil
	}

	logger.Infof(
		"placing ladder; open price: [%v], tiers: [%v]",
		candle.OpenPrice,
		tiers,
	)

	requests := NewLadderOrders(candle.Symbol, tiers, cr.idService)

	records, err := cr.exchange.PlaceOrders(ctx, requests)
	if err != nil {
		return nil, nil, err
	}

	if len(records) != len(requests) {
		logger.Warningf(
			"exchange accepted [%v] out of [%v] orders",
			len(records),
			len(requests),
		)
	}

	logger.Infof("placed [%v] orders", len(records))

	cr.events.Publish(
		NewLadderPlacedEvent(
			cycle.ID,
			cr.exchange.ExchangeName(),
			candle,
			tiers,
			records,
		),
	)

	return requests, records, nil
}

// Cancel submits one cancellation batch per symbol for exactly the orders
// held by the cycle. Outcomes are logged per order; a failed batch is not
// retried.
func (cr *CycleRunner) Cancel(ctx context.Context, cycle *Cycle) {
	cycleLogger := cr.logger.WithField("cycleID", cycle.ID.String())

	if cycle.Batch.Empty() {
		cycleLogger.Infof("no orders to cancel")
		return
	}

	journal := cr.journalWriter(cycle)
	summary := &CancelReport{}

	for _, symbol := range cycle.Batch.Symbols() {
		symbolLogger := cycleLogger.WithField("symbol", symbol)
		records := cycle.Batch.Records(symbol)

		symbolLogger.Infof("cancelling [%v] orders", len(records))

		report, err := cr.exchange.CancelOrders(ctx, records)
		if err != nil {
			symbolLogger.Errorf("could not cancel orders: [%v]", err)
			cr.events.Publish(
				NewCycleFailedEvent(cycle.ID, cr.exchange.ExchangeName(), err),
			)
			continue
		}

		for _, rejection := range report.Rejected {
			symbolLogger.Warningf(
				"exchange rejected cancellation: [%v]",
				rejection,
			)
		}

		symbolLogger.Infof(
			"cancelled [%v] orders, [%v] rejected",
			len(report.Cancelled),
			len(report.Rejected),
		)

		if err := journal.cancelled(report); err != nil {
			symbolLogger.Warningf(
				"could not journal cancelled orders: [%v]",
				err,
			)
		}

		summary.Cancelled = append(summary.Cancelled, report.Cancelled...)
		summary.Rejected = append(summary.Rejected, report.Rejected...)
	}

	cr.events.Publish(
		NewLaddersCancelledEvent(
			cycle.ID,
			cr.exchange.ExchangeName(),
			summary,
		),
	)
}

func (cr *CycleRunner) journalWriter(cycle *Cycle) *journalWriter {
	return &journalWriter{
		journal:   cr.journal,
		idService: cr.idService,
		cycleID:   cycle.ID,
		now:       cr.now,
	}
}
