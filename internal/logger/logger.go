// Package logger provides leveled logging for the ai-office CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the pipeline. Errors are
// always printed. An optional rotating JSON file records every level.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	console           = newConsole(os.Stderr)
	file              = zap.NewNop()
	rotator *lumberjack.Logger
)

// Options configures the file sink.
type Options struct {
	// File is the log file path. Empty disables the file sink.
	File string

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is how many rotated files are kept.
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
}

// Init configures the rotating file sink. Safe to call more than once;
// the previous file is closed.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	if rotator != nil {
		_ = file.Sync()
		_ = rotator.Close()
		rotator = nil
		file = zap.NewNop()
	}
	if opts.File == "" {
		return
	}

	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = 28
	}

	rotator = &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), zap.DebugLevel)
	file = zap.New(core)
}

// Sync flushes the file sink.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = file.Sync()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for console logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	console = newConsole(w)
}

// newConsole builds a logger that prints "[LEVEL] message" lines.
func newConsole(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), zap.DebugLevel)
	return zap.New(core)
}

func emit(level zapcore.Level, always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	msg := fmt.Sprintf(format, args...)
	if verbose || always {
		if ce := console.Check(level, msg); ce != nil {
			ce.Write()
		}
	}
	if ce := file.Check(level, msg); ce != nil {
		ce.Write()
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(zap.DebugLevel, false, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(zap.InfoLevel, false, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(zap.WarnLevel, false, format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	emit(zap.ErrorLevel, true, format, args...)
}
