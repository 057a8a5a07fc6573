package inits

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const timeFormat = "2006-01-02 15:04:05"

// logSplitter implements zerolog.LevelWriter, sending errors to stderr.
type logSplitter struct {
	out io.Writer
	err io.Writer
}

func (l logSplitter) Write(p []byte) (n int, err error) {
	return l.out.Write(p)
}

func (l logSplitter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level <= zerolog.WarnLevel {
		return l.out.Write(p)
	}
	return l.err.Write(p)
}

// LoggerInit configures the global zerolog logger. Console output is
// human-readable; otherwise lines are JSON.
func LoggerInit(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	splitter := logSplitter{out: os.Stdout, err: os.Stderr}
	if console {
		splitter = logSplitter{
			out: zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat},
			err: zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat},
		}
	}
	log.Logger = zerolog.New(splitter).With().Timestamp().Logger()
}
