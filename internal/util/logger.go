// internal/util/logger.go
package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// InitLogger initializes the application-wide logger. The level defaults to
// info and can be overridden with LOG_LEVEL.
func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// GetLogger returns the application-wide logger, initializing it if needed.
func GetLogger() *logrus.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}
