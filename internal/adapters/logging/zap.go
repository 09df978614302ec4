package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// Field keys whose values never reach the log output
var sensitiveKeys = map[string]bool{
	"cardnumber":             true,
	"card_number":            true,
	"cardverificationcode":   true,
	"card_verification_code": true,
	"shared_secret":          true,
	"sharedsecret":           true,
}

// ZapLogger adapts zap.Logger to the ports.Logger interface
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// New builds a zap logger: production config when environment is "production",
// development otherwise. level overrides the config's default when set.
func New(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(l)
	}

	return cfg.Build()
}

func (z *ZapLogger) Info(msg string, fields ...ports.Field) {
	z.logger.Info(msg, convertFields(fields)...)
}

func (z *ZapLogger) Error(msg string, fields ...ports.Field) {
	z.logger.Error(msg, convertFields(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...ports.Field) {
	z.logger.Warn(msg, convertFields(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields ...ports.Field) {
	z.logger.Debug(msg, convertFields(fields)...)
}

// Zap returns the underlying logger
func (z *ZapLogger) Zap() *zap.Logger {
	return z.logger
}

func convertFields(fields []ports.Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		if sensitiveKeys[strings.ToLower(f.Key)] {
			zapFields[i] = zap.String(f.Key, mask(f.Value))
			continue
		}
		if err, ok := f.Value.(error); ok {
			zapFields[i] = zap.NamedError(f.Key, err)
			continue
		}
		zapFields[i] = zap.Any(f.Key, f.Value)
	}
	return zapFields
}

// mask keeps the last four characters of values that look like card numbers
func mask(v interface{}) string {
	s, ok := v.(string)
	if !ok || len(s) < 12 {
		return "[REDACTED]"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
