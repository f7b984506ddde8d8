package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/on-the-ground/tracify/effects"
	"github.com/on-the-ground/tracify/shared/render"
)

// LogLevel defines the severity level used for observed effects.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogWarn:
		return zapcore.WarnLevel
	case LogError:
		return zapcore.ErrorLevel
	case LogDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

var _ effects.Observer = ZapObserver{}

// ZapObserver writes every handler call made by effects.Handle to a zap.Logger.
// Arguments and results are rendered as canonical JSON. Results that are
// errors are logged at error level regardless of Level.
type ZapObserver struct {
	Logger *zap.Logger
	Level  LogLevel
}

// Observer creates a ZapObserver logging at info level.
//
// Usage:
//
//	v, err := effects.Handle(ctx, comp, handlers, effects.WithObserver(log.Observer(logger)))
func Observer(logger *zap.Logger) ZapObserver {
	return ZapObserver{Logger: logger, Level: LogInfo}
}

func (o ZapObserver) Enter(name string, args []any) {
	o.Logger.Log(o.Level.zapLevel(), "effect requested",
		zap.String("effect", name),
		zap.String("args", render.List(args)),
	)
}

func (o ZapObserver) Leave(name string, result any) {
	if err, ok := result.(error); ok {
		o.Logger.Error("effect failed",
			zap.String("effect", name),
			zap.Error(err),
		)
		return
	}
	o.Logger.Log(o.Level.zapLevel(), "effect resolved",
		zap.String("effect", name),
		zap.String("result", render.Canonical(result)),
	)
}
