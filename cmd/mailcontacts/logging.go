package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logOut *os.File

// setupLogging configures the global zerolog logger: a console writer on
// stderr, or JSON lines appended to --log-file.
func setupLogging(stderr io.Writer) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if logFile == "" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        stderr,
			TimeFormat: time.Kitchen,
		}).With().Timestamp().Logger()
		return nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logOut = f
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return nil
}

// quietLogging silences console logging while a full-screen view owns
// the terminal. File logging is left alone.
func quietLogging() {
	if logOut == nil {
		log.Logger = zerolog.Nop()
	}
}

func closeLogging() {
	if logOut != nil {
		_ = logOut.Close()
		logOut = nil
	}
}
