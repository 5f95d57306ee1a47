package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLogger configures both loggers. An empty or unknown level falls back to info.
func InitLogger(level string) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// InfoLogger ke stdout, ErrorLogger ke stderr
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	InfoLogger.SetLevel(ParseLevel(level))
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

func ParseLevel(value string) logrus.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return logrus.InfoLevel
	}
	if lvl, err := logrus.ParseLevel(value); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

// TenantFields builds the log fields every tab operation carries.
func TenantFields(empresaID, comandaID string) logrus.Fields {
	fields := logrus.Fields{"empresa_id": empresaID}
	if comandaID != "" {
		fields["comanda_id"] = comandaID
	}
	return fields
}
