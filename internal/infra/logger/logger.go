// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"

	"homework_status_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Components take entries from it via Component.
var Log = logrus.New()

// Init applies the configured level and format to Log, writing to stdout.
func Init(cfg *config.AppConfig) {
	Configure(Log, os.Stdout, cfg.LogLevel, cfg.Environment)
}

// Configure sets output, level and formatter on l.
// Structured JSON is used where logs are shipped (production, staging); text everywhere else.
// An unparsable level falls back to info and is reported once.
func Configure(l *logrus.Logger, out io.Writer, level, environment string) {
	l.SetOutput(out)
	l.SetFormatter(formatterFor(environment))

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	if err != nil {
		l.WithField("log_level", level).Warn("Unknown log level, using info")
	}

	l.WithFields(logrus.Fields{
		"level":       l.GetLevel().String(),
		"environment": environment,
	}).Debug("Logger configured")
}

func formatterFor(environment string) logrus.Formatter {
	switch environment {
	case "production", "staging":
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	}
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
