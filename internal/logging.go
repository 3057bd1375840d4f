package internal

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LevelSet map[zapcore.Level]bool

func (ls LevelSet) Enabled(l zapcore.Level) bool {
	return ls[l]
}

// InitLogger installs the global logger used through zap.S(). Progress goes
// to stdout, warnings and errors always go to stderr.
func InitLogger(debug bool) {
	zap.ReplaceGlobals(NewLogger(os.Stdout, os.Stderr, debug))
}

func NewLogger(stdout, stderr io.Writer, debug bool) *zap.Logger {
	levels := LevelSet{zapcore.InfoLevel: true}
	if debug {
		levels[zapcore.DebugLevel] = true
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "", // Disable timestamp
		LevelKey:      "", // Disable log level
		CallerKey:     "", // Disable caller
		FunctionKey:   "", // Disable function name
		StacktraceKey: "", // Disable stacktrace
		MessageKey:    "msg",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	stdoutCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(stdout), zap.LevelEnablerFunc(levels.Enabled))

	stderrCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(stderr), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	}))

	return zap.New(zapcore.NewTee(stdoutCore, stderrCore))
}
