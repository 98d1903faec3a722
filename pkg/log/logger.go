package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	regerrors "github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/rs/zerolog"
)

// zerologLogger is the default Logger backend.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger creates a Logger writing JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		e = appendField(e, fmt.Sprint(fields[i]), fields[i+1])
	}
	if len(fields)%2 == 1 {
		e = e.Interface("!BADKEY", fields[len(fields)-1])
	}
	e.Msg(msg)
}

// With implements Logger.With.
func (l *zerologLogger) With(fields ...any) Logger {
	c := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		c = appendContext(c, fmt.Sprint(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: c.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	zlevel := toZerologLevel(level)
	return zlevel >= l.zl.GetLevel() && zlevel >= zerolog.GlobalLevel()
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

// ParseLevel converts a level name ("debug", "info", "warn", "error").
func ParseLevel(level string) (Level, error) {
	switch level {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, regerrors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}
}

// ZerologProvider hands out component loggers sharing one writer.
type ZerologProvider struct {
	mu    sync.RWMutex
	w     io.Writer
	level Level
	root  Logger
}

// NewZerologProvider creates a provider writing to w. With pretty set the
// output is zerolog's human readable console format instead of JSON.
func NewZerologProvider(w io.Writer, level Level, pretty bool) *ZerologProvider {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return &ZerologProvider{w: w, level: level, root: NewZerologLogger(w, level)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel. Loggers handed out before the
// call keep their level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.root = NewZerologLogger(p.w, level)
}

var (
	providerMu     sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo, false)
)

// SetProvider replaces the process-wide provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

func provider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return globalProvider
}

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	return provider().GetLogger()
}

// GetLoggerWithName returns the process-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return provider().GetLoggerWithName(name)
}

// SetupLogger configures the process-wide provider and routes library
// warnings (pkg/errors.Warn) into it.
func SetupLogger(level string, pretty bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetProvider(NewZerologProvider(os.Stderr, lvl, pretty))
	RouteWarnings()
	return nil
}

// RouteWarnings sends pkg/errors warnings to the "warnings" component logger.
func RouteWarnings() {
	regerrors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(),
			ErrorTypeKey, fmt.Sprintf("%T", w),
			"warning", w,
		)
	})
}
