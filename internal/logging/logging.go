// =============================================================================
// GST Returns Reporter - Logging
// =============================================================================
//
// Packages log through the small Logger interface below and never import zap
// directly. The command layer builds the real logger once config is loaded:
//
//   - Console core: human-readable, stderr, level from config
//   - File core:    JSON lines through lumberjack (rotated by size and age)
//
// Both cores are joined with zapcore.NewTee so one call reaches both.
//
// =============================================================================

package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging interface used throughout the module. The variadic
// arguments are alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// File is the JSON log file. Empty disables the file core.
	File string

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays removes rotated files older than this.
	MaxAgeDays int
}

// =============================================================================
// ZAP ADAPTER
// =============================================================================

// ZapLogger adapts a sugared zap logger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds the console and file logger.
//
// PARAMETERS:
//   - opts: Level and log file settings.
//
// RETURNS:
//   - The logger.
//   - An error if the level is not recognised.
func New(opts Options) (*ZapLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
	}

	return &ZapLogger{sugar: zap.New(zapcore.NewTee(cores...)).Sugar()}, nil
}

// FromCore wraps an existing zap core. Tests use it with an observer core.
func FromCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// ParseLevel converts a config level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// With returns a logger that adds the given key/value pairs to every entry.
func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *ZapLogger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *ZapLogger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *ZapLogger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

// =============================================================================
// FALLBACKS
// =============================================================================

// With attaches fields to any Logger. Loggers that cannot carry fields are
// returned unchanged.
func With(l Logger, keysAndValues ...interface{}) Logger {
	if z, ok := l.(*ZapLogger); ok {
		return z.With(keysAndValues...)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Stdout returns a plain logger used before config has loaded.
func Stdout() Logger { return stdoutLogger{} }

type stdoutLogger struct{}

func (stdoutLogger) Debug(msg string, kv ...interface{}) { printLine("DEBUG", msg, kv) }
func (stdoutLogger) Info(msg string, kv ...interface{})  { printLine("INFO", msg, kv) }
func (stdoutLogger) Warn(msg string, kv ...interface{})  { printLine("WARN", msg, kv) }
func (stdoutLogger) Error(msg string, kv ...interface{}) { printLine("ERROR", msg, kv) }

func printLine(level, msg string, kv []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	fmt.Println(b.String())
}
