package logger

import (
	"fmt"
	"time"
)

// slowThreshold escalates performance entries to warn level.
const slowThreshold = 3000 * time.Millisecond

// Stopwatch measures one operation for performance logging.
type Stopwatch struct {
	label string
	start time.Time
}

// Timer starts a stopwatch for label.
func Timer(label string) *Stopwatch {
	return &Stopwatch{label: label, start: time.Now()}
}

// End emits a performance entry and returns the elapsed milliseconds.
func (s *Stopwatch) End(ctx *Ctx) float64 {
	elapsed := float64(time.Since(s.start)) / float64(time.Millisecond)
	Perf(s.label, elapsed, ctx)
	return elapsed
}

// Perf logs a completed operation with its duration, escalating slow
// operations to warn level.
func Perf(operation string, durationMs float64, ctx *Ctx) {
	lvl := LevelDebug
	if durationMs > float64(slowThreshold/time.Millisecond) {
		lvl = LevelWarn
	}
	fields := map[string]any{"duration_ms": durationMs}
	merged := &Ctx{Action: "perf", Fields: fields}
	if ctx != nil {
		merged.Component = ctx.Component
		if ctx.Action != "" {
			merged.Action = ctx.Action
		}
		for k, v := range ctx.Fields {
			fields[k] = v
		}
	}
	Log(lvl, fmt.Sprintf("%s completed", operation), merged, nil)
}

// User logs a categorical user action.
func User(action string, details any) {
	Log(LevelInfo, "user action", &Ctx{Component: "user", Action: action}, details)
}

// Nav logs a navigation transition.
func Nav(from, to string) {
	Log(LevelInfo, "navigation", &Ctx{
		Component: "nav",
		Fields:    map[string]any{"from": from, "to": to},
	}, nil)
}

// Mount logs a view becoming active.
func Mount(name string) {
	Log(LevelDebug, "component mounted", &Ctx{Component: name, Action: "mount"}, nil)
}

// Unmount logs a view being torn down.
func Unmount(name string) {
	Log(LevelDebug, "component unmounted", &Ctx{Component: name, Action: "unmount"}, nil)
}

// APIEvents groups the request/response/error entries emitted around each
// outbound API call.
type APIEvents struct{}

// API is the shared instance used by the API client.
var API APIEvents

// Request logs that a call is starting. Headers must already have secrets
// redacted by the caller; the body is masked here and only logged when debug
// is enabled.
func (APIEvents) Request(method, url string, body any, headers map[string]string) {
	ctx := &Ctx{Component: "api", Action: "request", Fields: map[string]any{
		"method": method,
		"url":    url,
	}}
	if len(headers) > 0 {
		ctx.Fields["headers"] = headers
	}
	Log(LevelInfo, "API request", ctx, nil)
	if body != nil && Default().Enabled(LevelDebug) {
		Log(LevelDebug, "API request body", &Ctx{Component: "api", Action: "request"}, Mask(body))
	}
}

// Response logs a completed call at a level derived from the status code.
func (APIEvents) Response(method, url string, status int, durationMs float64, data any) {
	lvl := LevelInfo
	switch {
	case status >= 400:
		lvl = LevelError
	case status >= 300:
		lvl = LevelWarn
	}
	Log(lvl, "API response", &Ctx{Component: "api", Action: "response", Fields: map[string]any{
		"method":      method,
		"url":         url,
		"status":      status,
		"duration_ms": durationMs,
	}}, nil)
	if data != nil && Default().Enabled(LevelDebug) {
		Log(LevelDebug, "API response body", &Ctx{Component: "api", Action: "response"}, data)
	}
}

// Error logs a transport-level failure.
func (APIEvents) Error(method, url string, err error, durationMs float64) {
	fields := map[string]any{"method": method, "url": url}
	if durationMs > 0 {
		fields["duration_ms"] = durationMs
	}
	LogError(fmt.Sprintf("API Error: %s %s", method, url), err, &Ctx{
		Component: "api",
		Fields:    fields,
	})
}
