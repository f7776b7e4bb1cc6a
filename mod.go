// Package courier holds the process-wide logger and metric collectors shared
// by the packages of the delivery ledger.
package courier

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors is the list of prometheus collectors exposed by the packages.
// They are registered only when the prometheus handler is installed.
var PromCollectors []prometheus.Collector
