package amqp

import "github.com/sirupsen/logrus"

// Logger is the minimal structured-logging surface the runtime logs
// through. A default logrus-backed implementation is installed at package
// init; callers needing integration with their own logging pipeline can
// substitute one with SetLogger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

var defaultLogger Logger = &logrusLogger{entry: logrus.WithField("component", "amqp")}

// SetLogger installs a process-wide Logger implementation. Pass nil to
// silence logging entirely.
func SetLogger(l Logger) {
	if l == nil {
		defaultLogger = noopLogger{}
		return
	}
	defaultLogger = l
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}
