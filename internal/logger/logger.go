package logger

import (
	"os"

	"bookings-system/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger оборачивает logrus, чтобы остальной код не зависел от конкретной
// библиотеки логирования напрямую.
type Logger struct {
	*logrus.Logger
}

// New создает логгер по конфигурации (уровень, формат, файл).
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("Failed to open log file, falling back to stdout")
		} else {
			log.SetOutput(file)
		}
	}

	return &Logger{Logger: log}
}
