// Package logger provides the process-wide structured logging facility for
// the client toolkit: level gating, component-scoped loggers, sensitive-field
// masking and timing helpers, backed by zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Level orders log severities from debug up to error.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel maps a level name to a Level.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// Ctx tags an entry with the component and action it belongs to, plus any
// correlation fields.
type Ctx struct {
	Component string
	Action    string
	Fields    map[string]any
}

// Core owns the output sink and the minimum level. The minimum level is fixed
// for the lifetime of the Core.
type Core struct {
	zl  zerolog.Logger
	min Level
}

// NewCore builds a Core writing JSON lines to w, dropping entries below min.
func NewCore(w io.Writer, min Level) *Core {
	if w == nil {
		w = io.Discard
	}
	zl := zerolog.New(w).Level(min.zerologLevel()).With().Timestamp().Logger()
	return &Core{zl: zl, min: min}
}

var std atomic.Pointer[Core]

func init() {
	std.Store(NewCore(os.Stderr, levelFromEnv()))
}

func levelFromEnv() Level {
	if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
		return lvl
	}
	if os.Getenv("APP_ENV") == "production" {
		return LevelInfo
	}
	return LevelDebug
}

// Default returns the process-wide Core.
func Default() *Core { return std.Load() }

// SetDefault replaces the process-wide Core. Intended for startup wiring and
// tests; scoped loggers pick up the replacement on their next call.
func SetDefault(c *Core) {
	if c != nil {
		std.Store(c)
	}
}

// Enabled reports whether entries at lvl would be emitted.
func (c *Core) Enabled(lvl Level) bool { return lvl >= c.min }

// emit writes one entry. Emission failures never propagate to the caller.
func (c *Core) emit(lvl Level, msg string, ctx *Ctx, data any) {
	defer func() { _ = recover() }()

	var ev *zerolog.Event
	switch lvl {
	case LevelDebug:
		ev = c.zl.Debug()
	case LevelInfo:
		ev = c.zl.Info()
	case LevelWarn:
		ev = c.zl.Warn()
	default:
		ev = c.zl.Error()
	}
	if ctx != nil {
		if ctx.Component != "" {
			ev = ev.Str("component", ctx.Component)
		}
		if ctx.Action != "" {
			ev = ev.Str("action", ctx.Action)
		}
		for k, v := range ctx.Fields {
			ev = ev.Interface(k, v)
		}
	}
	if data != nil {
		ev = ev.Interface("data", data)
	}
	ev.Msg(msg)
}

// Log emits a message at lvl when it passes the configured minimum.
func Log(lvl Level, msg string, ctx *Ctx, data any) {
	Default().emit(lvl, msg, ctx, data)
}

// LogError emits msg at error level together with a normalized view of err.
func LogError(msg string, err error, ctx *Ctx) {
	Default().logError(msg, err, ctx)
}

func (c *Core) logError(msg string, err error, ctx *Ctx) {
	if ctx == nil {
		ctx = &Ctx{}
	}
	fields := map[string]any{}
	for k, v := range ctx.Fields {
		fields[k] = v
	}
	if err != nil {
		fields["error"] = err.Error()
		fields["error_type"] = fmt.Sprintf("%T", err)
	}
	c.emit(LevelError, msg, &Ctx{Component: ctx.Component, Action: ctx.Action, Fields: fields}, nil)
}

// Logger is a scoped logger pre-bound to a component name.
type Logger struct {
	core      *Core
	component string
}

// New returns a scoped logger for component, bound to the default Core at
// call time so sink replacement takes effect everywhere.
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) coreRef() *Core {
	if l.core != nil {
		return l.core
	}
	return Default()
}

func (l *Logger) log(lvl Level, msg, action string, data any) {
	l.coreRef().emit(lvl, msg, &Ctx{Component: l.component, Action: action}, data)
}

// Debug logs at debug level. The optional first element of data is attached
// as the entry payload.
func (l *Logger) Debug(msg string, data ...any) { l.log(LevelDebug, msg, "", first(data)) }

// Info logs at info level.
func (l *Logger) Info(msg string, data ...any) { l.log(LevelInfo, msg, "", first(data)) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, data ...any) { l.log(LevelWarn, msg, "", first(data)) }

// Error logs msg with err at error level.
func (l *Logger) Error(msg string, err error, data ...any) {
	ctx := &Ctx{Component: l.component}
	if payload := first(data); payload != nil {
		ctx.Fields = map[string]any{"data": payload}
	}
	l.coreRef().logError(msg, err, ctx)
}

// Action logs an info entry tagged with an action name.
func (l *Logger) Action(action, msg string, data ...any) {
	l.log(LevelInfo, msg, action, first(data))
}

func first(data []any) any {
	if len(data) == 0 {
		return nil
	}
	return data[0]
}
