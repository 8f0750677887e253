package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// Logger wraps zap.SugaredLogger with a few application helpers
type Logger struct {
	*zap.SugaredLogger
	level zapcore.Level
}

// New builds a logger. format is "json" or "console".
func New(level, format string) (*Logger, error) {
	var zapConfig zap.Config
	if format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{SugaredLogger: zapLogger.Sugar(), level: lvl}, nil
}

// NewNop returns a logger that discards everything (used in tests)
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), level: zapcore.FatalLevel}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{SugaredLogger: l.With("component", component), level: l.level}
}

// GormLogLevel maps the zap level onto gorm's logger levels.
func (l *Logger) GormLogLevel() gormlogger.LogLevel {
	switch {
	case l.level <= zapcore.DebugLevel:
		return gormlogger.Info
	case l.level <= zapcore.WarnLevel:
		return gormlogger.Warn
	case l.level <= zapcore.ErrorLevel:
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

// GinMiddleware logs one line per request
func (l *Logger) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			l.Errorw("HTTP request", fields...)
		case c.Writer.Status() >= 400:
			l.Warnw("HTTP request", fields...)
		default:
			l.Infow("HTTP request", fields...)
		}
	}
}
