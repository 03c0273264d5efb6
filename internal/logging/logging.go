// Package logging configures the process-wide zerolog logger: human
// console output by default, switching to structured JSON when
// TRUEFLOW_LOG_FORMAT=json or output isn't a terminal, and --verbose
// raising the level from Info to Debug.
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the global zerolog logger.
func Init(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer = os.Stderr
	useJSON := os.Getenv("TRUEFLOW_LOG_FORMAT") == "json"

	if !useJSON && isatty.IsTerminal(writer.Fd()) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
