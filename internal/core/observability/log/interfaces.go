package log

import (
	"time"

	"go.uber.org/zap"
)

// Log is the logging surface used across the subsystem. Components receive
// an instance from the caller at construction time; there is no package
// level singleton.
type Log interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Log
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Field = zap.Field

func String(key, value string) Field              { return zap.String(key, value) }
func Int(key string, value int) Field             { return zap.Int(key, value) }
func Int64(key string, value int64) Field         { return zap.Int64(key, value) }
func Uint64(key string, value uint64) Field       { return zap.Uint64(key, value) }
func Float64(key string, value float64) Field     { return zap.Float64(key, value) }
func Bool(key string, value bool) Field           { return zap.Bool(key, value) }
func Duration(key string, d time.Duration) Field  { return zap.Duration(key, d) }
func Time(key string, t time.Time) Field          { return zap.Time(key, t) }
func Err(err error) Field                         { return zap.Error(err) }
func Any(key string, value interface{}) Field     { return zap.Any(key, value) }
func Strings(key string, values []string) Field   { return zap.Strings(key, values) }
