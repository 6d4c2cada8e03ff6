package support

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to both the
// zerolog global logger and the logrus standard logger.
func ConfigureLogging(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetOutput(os.Stderr)

	if logrusLevel, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(logrusLevel)
	}
}
