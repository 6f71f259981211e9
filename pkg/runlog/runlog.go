// Package runlog builds the per-run logging context: every line goes to the
// console and to an append-mode log file in the run's target directory.
package runlog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFileName is the fixed log file name, shared by every run against the
// same target directory so the file accumulates history.
const DefaultFileName = "CSV_to_Parquet_BULK.log"

type Options struct {
	Dir      string
	FileName string    // default DefaultFileName
	Level    string    // zap level name, default info
	Console  io.Writer // default os.Stdout
}

// Logger is one run's logging context. It is constructed explicitly and
// passed to whatever needs it; there is no package-level instance.
type Logger struct {
	*zap.SugaredLogger
	file *os.File
}

// New opens (or creates) the log file under opt.Dir in append mode and tees
// it with the console. The caller owns the Logger and must Close it.
func New(opt Options) (*Logger, error) {
	name := opt.FileName
	if name == "" {
		name = DefaultFileName
	}
	lvl := zapcore.InfoLevel
	if opt.Level != "" {
		parsed, err := zapcore.ParseLevel(opt.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "log level %q", opt.Level)
		}
		lvl = parsed
	}
	console := opt.Console
	if console == nil {
		console = os.Stdout
	}
	f, err := os.OpenFile(filepath.Join(opt.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(), zapcore.AddSync(console), lvl),
		zapcore.NewCore(newEncoder(), zapcore.AddSync(f), lvl),
	)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), file: f}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Path reports the log file location, empty for a nop logger.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close flushes and closes the log file. Sync errors on terminal stdout are
// expected and ignored.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
