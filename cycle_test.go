package ladder

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type testExchange struct {
	mutex sync.Mutex

	candles        map[string]*Candle
	placeErrors    map[string]error
	placedRequests [][]*OrderRequest
	cancelled      [][]*OrderRecord
	rejectedIDs    map[string]bool
	orderCounter   int
}

func newTestExchange(candles ...*Candle) *testExchange {
	exchange := &testExchange{
		candles:     make(map[string]*Candle),
		placeErrors: make(map[string]error),
		rejectedIDs: make(map[string]bool),
	}

	for _, candle := range candles {
		exchange.candles[candle.Symbol] = candle
	}

	return exchange
}

func (te *testExchange) ExchangeName() string {
	return "test"
}

func (te *testExchange) LatestCandle(
	ctx context.Context,
	symbol string,
) (*Candle, error) {
	candle, ok := te.candles[symbol]
	if !ok {
		return nil, Errorf(KindNoData, "fetch kline", "no kline data for [%v]", symbol)
	}

	return candle, nil
}

func (te *testExchange) PlaceOrders(
	ctx context.Context,
	requests []*OrderRequest,
) ([]*OrderRecord, error) {
	te.mutex.Lock()
	defer te.mutex.Unlock()

	te.placedRequests = append(te.placedRequests, requests)

	if err, ok := te.placeErrors[requests[0].Symbol]; ok {
		return nil, err
	}

	records := make([]*OrderRecord, len(requests))
	for index, request := range requests {
		te.orderCounter++
		records[index] = &OrderRecord{
			Symbol:      request.Symbol,
			OrderID:     fmt.Sprintf("order-%v", te.orderCounter),
			OrderLinkID: request.OrderLinkID,
		}
	}

	return records, nil
}

func (te *testExchange) CancelOrders(
	ctx context.Context,
	records []*OrderRecord,
) (*CancelReport, error) {
	te.mutex.Lock()
	defer te.mutex.Unlock()

	te.cancelled = append(te.cancelled, records)

	report := &CancelReport{}
	for _, record := range records {
		if te.rejectedIDs[record.OrderID] {
			report.Rejected = append(report.Rejected, &CancelRejection{
				Record:  record,
				Code:    110001,
				Message: "order not exists or too late to cancel",
			})
			continue
		}

		report.Cancelled = append(report.Cancelled, record)
	}

	return report, nil
}

func (te *testExchange) Instruments(
	ctx context.Context,
	symbols ...string,
) ([]*Instrument, error) {
	return nil, nil
}

type testJournal struct {
	mutex   sync.Mutex
	entries []*JournalEntry
}

func (tj *testJournal) Record(entries ...*JournalEntry) error {
	tj.mutex.Lock()
	defer tj.mutex.Unlock()

	tj.entries = append(tj.entries, entries...)
	return nil
}

func (tj *testJournal) countByStatus(status JournalStatus) int {
	tj.mutex.Lock()
	defer tj.mutex.Unlock()

	count := 0
	for _, entry := range tj.entries {
		if entry.Status == status {
			count++
		}
	}

	return count
}

type testEventService struct {
	mutex  sync.Mutex
	events []*Event
}

func (tes *testEventService) Publish(event *Event) {
	tes.mutex.Lock()
	defer tes.mutex.Unlock()

	tes.events = append(tes.events, event)
}

func (tes *testEventService) subjects() []string {
	tes.mutex.Lock()
	defer tes.mutex.Unlock()

	subjects := make([]string, len(tes.events))
	for index, event := range tes.events {
		subjects[index] = event.Subject
	}

	return subjects
}

func newTestCycleRunner(
	exchange *testExchange,
	journal *testJournal,
	events EventService,
	symbols ...string,
) *CycleRunner {
	return NewCycleRunner(
		&testLogger{},
		exchange,
		symbols,
		NewPositionCalculator(testPrecisionRepository(DefaultPrecisions())),
		&testIDService{},
		journal,
		events,
	)
}

func testCandle(symbol, openPrice string) *Candle {
	return &Candle{
		Symbol:    symbol,
		StartTime: time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
		OpenPrice: openPrice,
	}
}

func TestCycleRunner_PlaceAndCancel(t *testing.T) {
	exchange := newTestExchange(testCandle("BEAMUSDT", "2.00"))
	journal := &testJournal{}
	events := &testEventService{}

	runner := newTestCycleRunner(exchange, journal, events, "BEAMUSDT")

	cycle := runner.Place(context.Background())

	if cycle.Batch.Len() != 3 {
		t.Fatalf(
			"unexpected batch length\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			3,
			cycle.Batch.Len(),
		)
	}

	expectedPrices := []string{"1.600000", "1.500000", "1.400000"}
	expectedQtys := []string{"625", "667", "1429"}
	for index, request := range exchange.placedRequests[0] {
		if request.Price != expectedPrices[index] ||
			request.Qty != expectedQtys[index] {
			t.Errorf(
				"unexpected request [%v]\n"+
					"expected: [%v @ %v]\n"+
					"actual:   [%v @ %v]",
				index,
				expectedQtys[index],
				expectedPrices[index],
				request.Qty,
				request.Price,
			)
		}
	}

	runner.Cancel(context.Background(), cycle)

	if len(exchange.cancelled) != 1 {
		t.Fatalf(
			"unexpected cancel calls count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			1,
			len(exchange.cancelled),
		)
	}

	placed := cycle.Batch.Records("BEAMUSDT")
	cancelled := exchange.cancelled[0]
	if len(cancelled) != len(placed) {
		t.Fatalf(
			"unexpected cancelled orders count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			len(placed),
			len(cancelled),
		)
	}
	for index := range placed {
		if cancelled[index].OrderID != placed[index].OrderID {
			t.Errorf(
				"unexpected cancelled order [%v]\n"+
					"expected: [%v]\n"+
					"actual:   [%v]",
				index,
				placed[index].OrderID,
				cancelled[index].OrderID,
			)
		}
	}

	if count := journal.countByStatus(StatusPlaced); count != 3 {
		t.Errorf(
			"unexpected placed journal entries\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			3,
			count,
		)
	}

	if count := journal.countByStatus(StatusCancelled); count != 3 {
		t.Errorf(
			"unexpected cancelled journal entries\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			3,
			count,
		)
	}

	for _, entry := range journal.entries {
		if entry.Status == StatusPlaced && len(entry.Price) == 0 {
			t.Errorf("placed entry [%v] has no price", entry.OrderID)
		}
	}

	expectedSubjects := []string{"Ladder placed for BEAMUSDT", "Ladders cancelled"}
	actualSubjects := events.subjects()
	if fmt.Sprint(actualSubjects) != fmt.Sprint(expectedSubjects) {
		t.Errorf(
			"unexpected events\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			expectedSubjects,
			actualSubjects,
		)
	}
}

func TestCycleRunner_Place_ExcludesSymbolWithoutData(t *testing.T) {
	exchange := newTestExchange(
		testCandle("BEAMUSDT", "2.00"),
		testCandle("AGIXUSDT", "0.2713"),
	)

	runner := newTestCycleRunner(
		exchange,
		&testJournal{},
		&testEventService{},
		"BEAMUSDT",
		"SEIUSDT",
		"AGIXUSDT",
	)

	cycle := runner.Place(context.Background())

	expectedSymbols := []string{"BEAMUSDT", "AGIXUSDT"}
	if fmt.Sprint(cycle.Batch.Symbols()) != fmt.Sprint(expectedSymbols) {
		t.Errorf(
			"unexpected batch symbols\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			expectedSymbols,
			cycle.Batch.Symbols(),
		)
	}

	if cycle.Batch.Len() != 6 {
		t.Errorf(
			"unexpected batch length\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			6,
			cycle.Batch.Len(),
		)
	}
}

func TestCycleRunner_Place_SkipsUnsupportedSymbol(t *testing.T) {
	exchange := newTestExchange(
		testCandle("BTCUSDT", "30000"),
		testCandle("SEIUSDT", "0.5"),
	)

	runner := newTestCycleRunner(
		exchange,
		&testJournal{},
		&testEventService{},
		"BTCUSDT",
		"SEIUSDT",
	)

	cycle := runner.Place(context.Background())

	if len(exchange.placedRequests) != 1 {
		t.Errorf(
			"unexpected place calls count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			1,
			len(exchange.placedRequests),
		)
	}

	if len(cycle.Batch.Records("BTCUSDT")) != 0 {
		t.Errorf("unsupported symbol should not be placed")
	}
}

func TestCycleRunner_Place_ContinuesAfterPlacementFailure(t *testing.T) {
	exchange := newTestExchange(
		testCandle("BEAMUSDT", "2.00"),
		testCandle("SEIUSDT", "0.5"),
	)
	exchange.placeErrors["BEAMUSDT"] = Errorf(
		KindOrderPlacement,
		"place orders",
		"exchange returned code [10001]",
	)
	events := &testEventService{}

	runner := newTestCycleRunner(
		exchange,
		&testJournal{},
		events,
		"BEAMUSDT",
		"SEIUSDT",
	)

	cycle := runner.Place(context.Background())

	expectedSymbols := []string{"SEIUSDT"}
	if fmt.Sprint(cycle.Batch.Symbols()) != fmt.Sprint(expectedSymbols) {
		t.Errorf(
			"unexpected batch symbols\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			expectedSymbols,
			cycle.Batch.Symbols(),
		)
	}

	failed := 0
	for _, subject := range events.subjects() {
		if subject == "Cycle failed" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf(
			"unexpected failure events count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			1,
			failed,
		)
	}
}

func TestCycleRunner_Cancel_JournalsRejections(t *testing.T) {
	exchange := newTestExchange(testCandle("BEAMUSDT", "2.00"))
	journal := &testJournal{}

	runner := newTestCycleRunner(
		exchange,
		journal,
		&testEventService{},
		"BEAMUSDT",
	)

	cycle := runner.Place(context.Background())
	exchange.rejectedIDs[cycle.Batch.Records("BEAMUSDT")[1].OrderID] = true

	runner.Cancel(context.Background(), cycle)

	if count := journal.countByStatus(StatusCancelled); count != 2 {
		t.Errorf(
			"unexpected cancelled journal entries\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			2,
			count,
		)
	}

	if count := journal.countByStatus(StatusCancelRejected); count != 1 {
		t.Errorf(
			"unexpected rejected journal entries\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			1,
			count,
		)
	}
}

func TestCycleRunner_Cancel_EmptyBatch(t *testing.T) {
	exchange := newTestExchange()

	runner := newTestCycleRunner(
		exchange,
		&testJournal{},
		&testEventService{},
		"BEAMUSDT",
	)

	cycle := runner.Place(context.Background())
	runner.Cancel(context.Background(), cycle)

	if len(exchange.cancelled) != 0 {
		t.Errorf(
			"unexpected cancel calls count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			0,
			len(exchange.cancelled),
		)
	}
}
