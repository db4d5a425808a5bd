package inmem

import (
	"github.com/lukasz-zimnoch/ladder"
	"sync"
)

// OrderJournal keeps the most recent entries in memory. Older entries are
// dropped once the window is full.
type OrderJournal struct {
	entriesMutex sync.RWMutex
	entries      []*ladder.JournalEntry

	windowSize int
}

func NewOrderJournal(windowSize int) *OrderJournal {
	return &OrderJournal{
		entries:    make([]*ladder.JournalEntry, 0),
		windowSize: windowSize,
	}
}

func (oj *OrderJournal) Record(entries ...*ladder.JournalEntry) error {
	oj.entriesMutex.Lock()
	defer oj.entriesMutex.Unlock()

	oj.entries = append(oj.entries, entries...)

	// remove oldest entries if journal size has been exceeded
	if overflow := len(oj.entries) - oj.windowSize; overflow > 0 {
		copy(oj.entries, oj.entries[overflow:])
		for index := len(oj.entries) - overflow; index < len(oj.entries); index++ {
			oj.entries[index] = nil
		}
		oj.entries = oj.entries[:len(oj.entries)-overflow]
	}

	return nil
}

func (oj *OrderJournal) Entries() []*ladder.JournalEntry {
	oj.entriesMutex.RLock()
	defer oj.entriesMutex.RUnlock()

	snapshot := make([]*ladder.JournalEntry, len(oj.entries))
	copy(snapshot, oj.entries)

	return snapshot
}
