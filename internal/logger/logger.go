package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Setup builds the process logger from a level name and a format ("text" or "json").
// The standard logrus logger is configured the same way so package-level calls agree with it.
func Setup(level, format string) (*logrus.Logger, error) {
	return setup(os.Stdout, level, format)
}

func setup(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter logrus.Formatter
	switch format {
	case "json":
		formatter = &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	case "text", "":
		formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(formatter)

	logrus.SetOutput(out)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(formatter)

	return log, nil
}
