package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts full sync passes per entity kind and outcome.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_sync_runs_total",
		Help: "Full sync passes by entity kind and outcome.",
	}, []string{"entity", "status"})

	// SyncedNodes counts remote nodes applied to the local mirror.
	SyncedNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_sync_nodes_total",
		Help: "Remote nodes upserted into the local mirror.",
	}, []string{"entity"})

	// WebhookDeliveries counts processed webhook deliveries by topic and
	// outcome.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_webhook_deliveries_total",
		Help: "Webhook deliveries by topic and outcome.",
	}, []string{"topic", "status"})
)
