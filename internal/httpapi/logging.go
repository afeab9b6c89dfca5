package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Nop until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("LLM_REQUEST_LOG"))

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// reqLog tracks one inference request for start/end logging.
type reqLog struct {
	lvl   LogLevel
	rid   string
	path  string
	model string
	start time.Time
}

func startRequest(r *http.Request, model string) reqLog {
	rl := reqLog{
		lvl:   requestLogLevel(r),
		rid:   middleware.GetReqID(r.Context()),
		path:  r.URL.Path,
		model: model,
		start: time.Now(),
	}
	if rl.lvl >= LevelInfo {
		zlog.Info().Str("path", rl.path).Str("model", model).Str("request_id", rl.rid).Msg("request start")
	}
	return rl
}

// end logs the outcome. Errors are logged from LevelError up, successes from LevelInfo.
func (rl reqLog) end(status int, err error) {
	switch {
	case err != nil && rl.lvl >= LevelError:
		zlog.Error().Err(err).Int("status", status).Str("model", rl.model).
			Str("request_id", rl.rid).Dur("dur", time.Since(rl.start)).Msg("request end")
	case err == nil && rl.lvl >= LevelInfo:
		zlog.Info().Int("status", status).Str("model", rl.model).
			Str("request_id", rl.rid).Dur("dur", time.Since(rl.start)).Msg("request end")
	}
}

// debug logs a payload summary when the request asked for debug logging.
func (rl reqLog) debug(msg string, fields map[string]any) {
	if rl.lvl >= LevelDebug {
		zlog.Debug().Fields(fields).Str("request_id", rl.rid).Msg(msg)
	}
}
