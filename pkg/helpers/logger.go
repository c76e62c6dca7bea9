package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LoggerOptions selects the logger's format and verbosity. Level overrides
// the environment default when it parses.
type LoggerOptions struct {
	App   string
	Env   string
	Level string
}

// NewLogger builds the process logger: human-readable text in development,
// JSON everywhere else.
func NewLogger(opts LoggerOptions) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	dev := opts.Env == "development"
	if dev {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(levelFor(opts.Level, dev))

	logger.WithFields(logrus.Fields{
		"app":   opts.App,
		"env":   opts.Env,
		"level": logger.GetLevel().String(),
	}).Info("logger ready")
	return logger
}

func levelFor(name string, dev bool) logrus.Level {
	if name != "" {
		if lvl, err := logrus.ParseLevel(name); err == nil {
			return lvl
		}
	}
	if dev {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
