package ladder

import (
	"fmt"
	"sync"
)

type testID string

func (ti testID) String() string {
	return string(ti)
}

type testIDService struct {
	mutex   sync.Mutex
	counter int
}

func (tis *testIDService) NewID() ID {
	tis.mutex.Lock()
	defer tis.mutex.Unlock()

	tis.counter++
	return testID(fmt.Sprintf("id-%v", tis.counter))
}

func (tis *testIDService) NewIDFromString(id string) (ID, error) {
	return testID(id), nil
}

type testPrecisionRepository map[string]Precision

func (tpr testPrecisionRepository) SavePrecision(
	symbol string,
	precision Precision,
) {
	tpr[symbol] = precision
}

func (tpr testPrecisionRepository) Precision(symbol string) (Precision, bool) {
	precision, ok := tpr[symbol]
	return precision, ok
}

type testLogger struct{}

func (tl *testLogger) Debugf(format string, args ...interface{})   {}
func (tl *testLogger) Infof(format string, args ...interface{})    {}
func (tl *testLogger) Warningf(format string, args ...interface{}) {}
func (tl *testLogger) Errorf(format string, args ...interface{})   {}
func (tl *testLogger) Fatalf(format string, args ...interface{})   {}

func (tl *testLogger) WithField(key string, value interface{}) Logger {
	return tl
}

func (tl *testLogger) WithFields(fields map[string]interface{}) Logger {
	return tl
}
