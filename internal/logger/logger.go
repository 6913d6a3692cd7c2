package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus logger
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a JSON logger for serviceName. An empty level falls back to LOG_LEVEL, then info.
func New(serviceName, level string) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return &Logger{Logger: log, service: serviceName}
}

// Discard returns a logger that writes nowhere (tests).
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}

// Entry returns an entry carrying the service field.
func (l *Logger) Entry() *logrus.Entry {
	return l.WithField("service", l.service)
}

// WithSession adds quiz session attribution.
func (l *Logger) WithSession(sessionID, quizID, userID string) *logrus.Entry {
	return l.Entry().WithFields(logrus.Fields{
		"session_id": sessionID,
		"quiz_id":    quizID,
		"user_id":    userID,
	})
}
