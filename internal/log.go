// Package internal holds process-wide helpers shared by the commands.
package internal

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by NewLogger.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// NewLogger builds the process logger. Logs go to stderr so stdout stays
// free for command output and the stdio transport.
func NewLogger(level zapcore.Level, format string) (*zap.SugaredLogger, error) {
	return newLogger(os.Stderr, level, format)
}

func newLogger(w io.Writer, level zapcore.Level, format string) (*zap.SugaredLogger, error) {
	var encoder zapcore.Encoder
	switch format {
	case JSONFormat:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case ConsoleFormat, "":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller()).Sugar().Named("provstats"), nil
}

// Warning logs a warning.
func Warning(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
}
