package logger

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Logger interface is used to allow tests to inject custom loggers.
type Logger interface {
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debug(...interface{})
	Warn(...interface{})
	Info(...interface{})
	WithField(key string, value interface{}) Logger
	Writer() io.Writer
	SetWriter(io.Writer)
}

type logger struct {
	*log.Logger
}

// NewLogger returns a new Logger instance backed by Logrus. The level is a
// logrus level as returned by config.GetLogLevel.
func NewLogger(level uint32) Logger {
	l := log.New()
	l.SetLevel(log.Level(level))
	logFormatter := &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	l.Formatter = logFormatter
	return &logger{l}
}

// NewDiscardLogger returns a Logger that drops everything.
func NewDiscardLogger() Logger {
	l := NewLogger(uint32(log.PanicLevel))
	l.SetWriter(io.Discard)
	return l
}

func (l *logger) WithField(key string, value interface{}) Logger {
	return &entry{l.Logger.WithField(key, value)}
}

func (l *logger) Writer() io.Writer {
	return l.Out
}

func (l *logger) SetWriter(writer io.Writer) {
	l.Out = writer
}

// entry carries fields attached with WithField.
type entry struct {
	*log.Entry
}

func (e *entry) WithField(key string, value interface{}) Logger {
	return &entry{e.Entry.WithField(key, value)}
}

func (e *entry) Writer() io.Writer {
	return e.Logger.Out
}

func (e *entry) SetWriter(writer io.Writer) {
	e.Logger.Out = writer
}
