package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzsway_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// MessagesDelivered counts live direct-message pushes by outcome.
	MessagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzsway_messages_delivered_total",
		Help: "Total number of live direct-message push attempts by outcome",
	}, []string{"outcome"})

	// PresenceOnline is the gauge of users currently registered in the presence map.
	PresenceOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buzzsway_presence_online_users",
		Help: "Number of users currently registered as online",
	})

	// MediaStoreBytes counts bytes written to the content-addressed media store.
	MediaStoreBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzsway_media_store_bytes_total",
		Help: "Total bytes written to the media store",
	})
)
