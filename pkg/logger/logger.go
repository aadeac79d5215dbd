package logger

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/instill-ai/segmask/config"
)

var once sync.Once
var core zapcore.Core

// GetZapLogger returns the process-wide zap logger. Debug builds log
// debug/info to stdout with the development encoder; production builds log
// info only. Warnings and above always go to stderr. Log entries are also
// attached as events to the span found in ctx, if any is recording.
func GetZapLogger(ctx context.Context) (*zap.Logger, error) {
	once.Do(func() {
		stdoutSyncer := zapcore.Lock(os.Stdout)
		stderrSyncer := zapcore.Lock(os.Stderr)

		warnErrorFatal := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= zapcore.WarnLevel
		})

		if config.Config.Log.Debug {
			debugInfo := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level == zapcore.DebugLevel || level == zapcore.InfoLevel
			})
			encoder := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
			core = zapcore.NewTee(
				zapcore.NewCore(encoder, stdoutSyncer, debugInfo),
				zapcore.NewCore(encoder, stderrSyncer, warnErrorFatal),
			)
		} else {
			infoOnly := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level == zapcore.InfoLevel
			})
			encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			core = zapcore.NewTee(
				zapcore.NewCore(encoder, stdoutSyncer, infoOnly),
				zapcore.NewCore(encoder, stderrSyncer, warnErrorFatal),
			)
		}
	})

	logger := zap.New(core).WithOptions(
		zap.Hooks(func(entry zapcore.Entry) error {
			span := trace.SpanFromContext(ctx)
			if !span.IsRecording() {
				return nil
			}
			span.AddEvent("log", trace.WithAttributes(
				attribute.String("log.severity", entry.Level.String()),
				attribute.String("log.message", entry.Message),
			))
			if entry.Level >= zap.ErrorLevel {
				span.SetStatus(codes.Error, entry.Message)
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return nil
		}))

	return logger, nil
}
