package logger

import (
	"io"
	"os"
	"strings"

	"github.com/Adda-Baaj/typed-request/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface shared by the app and its packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Zap wraps a SugaredLogger as a Logger.
type Zap struct {
	S *zap.SugaredLogger
}

func (z Zap) InfoObj(msg, key string, obj interface{})  { z.S.Desugar().Info(msg, zap.Any(key, obj)) }
func (z Zap) DebugObj(msg, key string, obj interface{}) { z.S.Desugar().Debug(msg, zap.Any(key, obj)) }
func (z Zap) WarnObj(msg, key string, obj interface{})  { z.S.Desugar().Warn(msg, zap.Any(key, obj)) }
func (z Zap) ErrorObj(msg, key string, obj interface{}) { z.S.Desugar().Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Init initializes a zap SugaredLogger using settings from config.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	return initWithWriter(cfg, zapcore.Lock(os.Stdout))
}

func initWithWriter(cfg *config.Config, w io.Writer) (*zap.SugaredLogger, error) {
	level := ParseLevel(cfg.LogLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName), zap.String("env", cfg.Env))
	sugar := logger.Sugar()
	S = sugar
	return sugar, nil
}

// ParseLevel maps a config level name onto a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key` through the
// package-level logger and are no-ops before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	Zap{S: S}.InfoObj(msg, key, obj)
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	Zap{S: S}.DebugObj(msg, key, obj)
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	Zap{S: S}.WarnObj(msg, key, obj)
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	Zap{S: S}.ErrorObj(msg, key, obj)
}
