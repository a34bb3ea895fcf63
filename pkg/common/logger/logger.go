// Package logger provides the structured logger every manager embeds,
// wrapping logrus with a small key/value surface so call sites never touch
// logrus.Fields directly.
package logger

import (
	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Logger is a logrus entry scoped to a set of persistent key/value fields.
type Logger struct {
	entry *logrus.Entry
}

// With returns a Logger carrying keyvals (alternating key, value pairs) as
// persistent fields on every subsequent log call.
func With(keyvals ...interface{}) *Logger {
	root := &Logger{entry: logrus.NewEntry(base)}
	return root.WithFields(keyvals...)
}

// WithFields attaches additional alternating key/value fields.
func (l *Logger) WithFields(keyvals ...interface{}) *Logger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Info(msg string, keyvals ...interface{})  { l.WithFields(keyvals...).entry.Info(msg) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.WithFields(keyvals...).entry.Warn(msg) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.WithFields(keyvals...).entry.Error(msg) }
func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.WithFields(keyvals...).entry.Debug(msg) }

// SetVerbose toggles debug-level output, the logging equivalent of the
// teacher's --verbose flag.
func SetVerbose(verbose bool) {
	if verbose {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
}
