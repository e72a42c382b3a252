// Package logging builds the process logger for the lfcdk binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerboseEnv turns on debug logging when set to a true value.
const VerboseEnv = "LFCDK_VERBOSE"

// Opts configures the logger.
type Opts struct {
	// Verbose logs at debug level instead of info.
	Verbose bool
	// Encoding is "console" (default) or "json".
	Encoding string
	// Color is "auto" (default), "always" or "never".
	Color string
}

// VerboseFromEnv reports whether VerboseEnv holds a true value.
func VerboseFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv(VerboseEnv))
	return err == nil && v
}

func (opts Opts) useColor(w io.Writer) bool {
	switch opts.Color {
	case "always", "on":
		return true
	case "never", "off":
		return false
	}

	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Encoder returns the zap encoder for the configured encoding.
func (opts Opts) Encoder(w io.Writer) (zapcore.Encoder, error) {
	switch opts.Encoding {
	case "json":
		if opts.Verbose {
			return zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), nil
		}
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	case "console", "":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = TimeOffsetFormatter(time.Now())
		if opts.useColor(w) {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, errors.Newf("unknown log encoding %q", opts.Encoding)
	}
}

// NewLogger returns a logger writing to w. Color detection looks at w itself,
// so pass the file, not a locked wrapper.
func (opts Opts) NewLogger(w zapcore.WriteSyncer) (*zap.Logger, error) {
	enc, err := opts.Encoder(w)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Verbose {
		level.SetLevel(zap.DebugLevel)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.Lock(w), level)), nil
}

// Setup builds a stderr logger and installs it as the zap global. The returned
// function restores the previous globals and flushes.
func Setup(opts Opts) (func(), error) {
	logger, err := opts.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}

	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}, nil
}

// TimeOffsetFormatter encodes times as the offset from start. Only useful for
// short-lived processes.
func TimeOffsetFormatter(start time.Time) zapcore.TimeEncoder {
	return func(t time.Time, e zapcore.PrimitiveArrayEncoder) {
		diff := t.Sub(start)
		switch {
		case diff < time.Second:
			e.AppendString(fmt.Sprintf(" %3dms", diff.Milliseconds()))
		case diff < 5*time.Minute:
			e.AppendString(fmt.Sprintf("%5.1fs", diff.Seconds()))
		default:
			e.AppendString(fmt.Sprintf("%5.1fm", diff.Minutes()))
		}
	}
}
