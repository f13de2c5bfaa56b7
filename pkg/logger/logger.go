package logger

import (
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/huynhanx03/go-commons/pkg/settings"
)

const (
	defaultMaxSize    = 100 // Megabytes
	defaultMaxBackups = 3
	defaultMaxAge     = 28 // Days
)

// New builds a JSON zap logger from cfg. Records go to stdout and, when
// FileLogName is set, to a size-rotated file as well.
func New(cfg settings.Logger) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
		}
		level = parsed
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.FileLogName != "" {
		sinks = append(sinks, zapcore.AddSync(newRotator(cfg)))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.NewMultiWriteSyncer(sinks...),
		level,
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newRotator(cfg settings.Logger) *lumberjack.Logger {
	rotator := &lumberjack.Logger{
		Filename:   cfg.FileLogName,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if rotator.MaxSize == 0 {
		rotator.MaxSize = defaultMaxSize
	}
	if rotator.MaxBackups == 0 {
		rotator.MaxBackups = defaultMaxBackups
	}
	if rotator.MaxAge == 0 {
		rotator.MaxAge = defaultMaxAge
	}

	return rotator
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	return enc
}
