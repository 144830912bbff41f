// Package logging builds the logrus logger shared by every fsgrowth command.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/danpilch/fsgrowth/pkg/config"
)

// Options selects console verbosity on top of the configured level.
type Options struct {
	Verbose bool
	Quiet   bool
	Console io.Writer
}

// New returns a logger writing to the console and, when cfg.File is set, to a
// rotated log file. Quiet limits the console to errors; the file keeps the
// configured level. The returned closer flushes the log file.
func New(cfg config.LoggingConfig, opts Options) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.level: %w", err)
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}

	consoleLevel := level
	if opts.Quiet {
		consoleLevel = logrus.ErrorLevel
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if opts.Console != nil {
		logger.AddHook(&writer.Hook{
			Writer:    opts.Console,
			LogLevels: levelsUpTo(consoleLevel),
		})
	}

	var closer io.Closer = nopCloser{}
	fileLevel := logrus.PanicLevel
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		logger.AddHook(&writer.Hook{
			Writer:    rotator,
			LogLevels: levelsUpTo(level),
		})
		closer = rotator
		fileLevel = level
	}

	logger.SetLevel(maxLevel(consoleLevel, fileLevel))
	return logger, closer, nil
}

// levelsUpTo returns every level at or above the severity of l.
func levelsUpTo(l logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, lv := range logrus.AllLevels {
		if lv <= l {
			out = append(out, lv)
		}
	}
	return out
}

func maxLevel(a, b logrus.Level) logrus.Level {
	if a > b {
		return a
	}
	return b
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
