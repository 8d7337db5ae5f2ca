// internal/connections/metrics.go

package connections

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	likesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ember_likes_total",
		Help: "Total number of likes recorded",
	})

	matchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ember_matches_total",
		Help: "Total number of matches created",
	})

	unmatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ember_unmatches_total",
		Help: "Total number of unmatches performed",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ember_blocks_total",
		Help: "Total number of blocks recorded",
	})

	channelTeardownFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ember_chat_channel_teardown_failures_total",
		Help: "Chat channel deletions that failed and were skipped",
	})
)
