package telemetry

import (
	"io"
	"log/slog"
	"os"
)

type SlogOptions struct {
	Debug bool
	// if specified, log records are appended to this file in addition
	// to stderr. downstream tailing relies on the text format staying
	// stable: time=... level=... msg=... key=value
	File string
}

func InitSlog(opts SlogOptions) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("failed to open log file, logging to stderr only", "path", opts.File, "err", err)
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})))
}
