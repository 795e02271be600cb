package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coaching_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// FanOutNotifications counts notification records per kind, committed or lost with a failed chunk
	FanOutNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_fanout_notifications_total",
			Help: "Notification records written or dropped by fan-out",
		},
		[]string{"kind", "status"},
	)

	FanOutChunks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_fanout_chunks_total",
			Help: "Fan-out write batches by outcome",
		},
		[]string{"status"},
	)

	AudienceSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coaching_fanout_audience_size",
			Help:    "Resolved audience size per publication event",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"kind"},
	)

	StorageUsageBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coaching_storage_usage_bytes",
			Help: "Object storage bytes used per prefix",
		},
		[]string{"prefix"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCount, RequestDuration, FanOutNotifications, FanOutChunks, AudienceSize, StorageUsageBytes)
	})
}
