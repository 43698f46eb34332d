// Package handler serves the admin/health HTTP API next to the bot.
package handler

import (
	"TuneRelay/internal/stats"
)

var statsAgg *stats.Aggregator

// Init wires the handlers against the stats aggregator.
func Init(agg *stats.Aggregator) {
	statsAgg = agg
}
