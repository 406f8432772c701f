package drivers

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm/logger"
)

// configureLogger maps a log level name onto a GORM logger. "info" shows all
// SQL, "warn" slow queries and errors, "error" only errors; anything else is
// silent.
func configureLogger(logLevel string) logger.Interface {
	level := logger.Silent
	switch logLevel {
	case "info":
		level = logger.Info
	case "warn":
		level = logger.Warn
	case "error":
		level = logger.Error
	default:
		return logger.Default.LogMode(logger.Silent)
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}
