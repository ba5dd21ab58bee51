package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/config"
)

// Log is the process-wide logger.
var Log = logrus.New()

// Init configures Log from the application config: JSON output for prod/staging,
// human readable text everywhere else.
func Init(cfg config.Config) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	switch strings.ToLower(cfg.Env) {
	case "prod", "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.WithFields(logrus.Fields{
		"env":   cfg.Env,
		"level": Log.GetLevel().String(),
	}).Debug("logger initialized")
}

// Get returns the configured logger.
func Get() *logrus.Logger {
	return Log
}
