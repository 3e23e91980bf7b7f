package log

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// ZerologLogger is the default Logger backend.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{logger: zl}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { emit(z.logger.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { emit(z.logger.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { emit(z.logger.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...any) { emit(z.logger.Error(), msg, fields) }

func (z *ZerologLogger) With(fields ...any) Logger {
	err, kv := splitError(fields)
	ctx := z.logger.With().Fields(kv)
	if err != nil {
		ctx = ctx.AnErr(ErrAttrKey, err)
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	zl := toZerologLevel(level)
	return zl >= z.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// warn is installed as the errors.Warn sink by SetLogger.
func (z *ZerologLogger) warn(w error) {
	ev := z.logger.Warn()
	var m zerolog.LogObjectMarshaler
	if errors.As(w, &m) {
		ev = ev.EmbedObject(m)
	}
	ev.Msg(w.Error())
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	err, kv := splitError(fields)
	if err != nil {
		ev = ev.AnErr(ErrAttrKey, err)
		var m zerolog.LogObjectMarshaler
		if errors.As(err, &m) {
			ev = ev.Object("error_detail", m)
		}
	}
	for i := 0; i < len(kv); i += 2 {
		ev = ev.Interface(fieldKey(kv[i]), kv[i+1])
	}
	ev.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
