// Package logger provides the application-wide structured loggers.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	Info  *logrus.Logger
	Error *logrus.Logger
)

func init() {
	Info = logrus.New()
	Info.SetOutput(os.Stdout)
	Info.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Info.SetLevel(logrus.InfoLevel)

	Error = logrus.New()
	Error.SetOutput(os.Stderr)
	Error.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Error.SetLevel(logrus.ErrorLevel)
}

// WithFields is shorthand for Info.WithFields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Info.WithFields(fields)
}
