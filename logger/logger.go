package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until Init runs.
var Logger = zap.NewNop()

// Init builds the JSON production logger. Debug lowers the level so that
// per-request store activity is visible in development.
func Init(debug bool) {
	l, err := build(debug)
	if err != nil {
		panic(err)
	}
	Logger = l
}

func build(debug bool, opts ...zap.Option) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.StacktraceKey = ""
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return config.Build(opts...)
}

// Sync flushes buffered entries
func Sync() {
	_ = Logger.Sync()
}
