package inmem

import (
	"github.com/lukasz-zimnoch/ladder"
	"sync"
)

// PrecisionRepository caches instrument precision for the process
// lifetime.
type PrecisionRepository struct {
	precisionsMutex sync.RWMutex
	precisions      map[string]ladder.Precision
}

func NewPrecisionRepository(
	seed map[string]ladder.Precision,
) *PrecisionRepository {
	precisions := make(map[string]ladder.Precision, len(seed))
	for symbol, precision := range seed {
		precisions[symbol] = precision
	}

	return &PrecisionRepository{precisions: precisions}
}

func (pr *PrecisionRepository) SavePrecision(
	symbol string,
	precision ladder.Precision,
) {
	pr.precisionsMutex.Lock()
	defer pr.precisionsMutex.Unlock()

	pr.precisions[symbol] = precision
}

func (pr *PrecisionRepository) Precision(
	symbol string,
) (ladder.Precision, bool) {
	pr.precisionsMutex.RLock()
	defer pr.precisionsMutex.RUnlock()

	precision, ok := pr.precisions[symbol]
	return precision, ok
}
