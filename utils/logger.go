package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func InitLogger() {
	InitLoggerWith(logrus.InfoLevel, "text")
}

// InitLoggerWith menyiapkan logger dari LOG_LEVEL dan LOG_FORMAT ("text" atau "json")
func InitLoggerWith(level logrus.Level, format string) {
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if format == "json" {
		formatter = &logrus.JSONFormatter{}
	}

	InfoLogger = newLogger(os.Stdout, formatter, level)
	ErrorLogger = newLogger(os.Stderr, formatter, logrus.ErrorLevel)
}

func newLogger(out *os.File, formatter logrus.Formatter, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(formatter)
	l.SetLevel(level)
	return l
}
