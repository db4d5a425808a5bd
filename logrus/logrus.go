package logrus

import (
	"github.com/lukasz-zimnoch/ladder"
	"github.com/sirupsen/logrus"
	"os"
)

type wrapper struct {
	*logrus.Entry
}

func (w *wrapper) WithField(key string, value interface{}) ladder.Logger {
	return &wrapper{w.Entry.WithField(key, value)}
}

func (w *wrapper) WithFields(fields map[string]interface{}) ladder.Logger {
	return &wrapper{w.Entry.WithFields(fields)}
}

func ConfigureStandardLogger(format, level string) (ladder.Logger, error) {
	fieldMap := logrus.FieldMap{
		logrus.FieldKeyLevel: "severity",
		logrus.FieldKeyMsg:   "message",
	}

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap: fieldMap,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			FieldMap:      fieldMap,
		})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logrus.SetLevel(logLevel)

	logrus.SetOutput(os.Stdout)

	return Wrap(logrus.StandardLogger()), nil
}

// Wrap adapts an arbitrary logrus logger, e.g. one writing to a test buffer.
func Wrap(logger *logrus.Logger) ladder.Logger {
	return &wrapper{logger.WithFields(map[string]interface{}{})}
}
