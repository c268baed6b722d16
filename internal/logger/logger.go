package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new logger instance based on configuration.
func New(serviceName, environment, logLevel, logFormat string) (*zap.Logger, error) {
	var zc zap.Config

	if environment == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if logFormat == "json" {
		zc.Encoding = "json"
	} else {
		zc.Encoding = "console"
	}

	zc.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
	}

	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}

	zc.EncoderConfig.CallerKey = "caller"
	zc.EncoderConfig.StacktraceKey = "stacktrace"
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := zc.Build()
	if err != nil {
		return nil, err
	}

	if hostname, err := os.Hostname(); err == nil {
		log = log.With(zap.String("hostname", hostname))
	}

	return log, nil
}

// WithEpisode scopes a logger to one episode
func WithEpisode(log *zap.Logger, episodeID int64) *zap.Logger {
	return log.With(zap.Int64("episode_id", episodeID))
}

// WithCorrelation adds the correlation id of a message or request
func WithCorrelation(log *zap.Logger, correlationID string) *zap.Logger {
	if correlationID == "" {
		return log
	}
	return log.With(zap.String("correlation_id", correlationID))
}
