package jobs

import (
	"context"
	"log"
	"time"

	"coachingportal/metrics"
	"coachingportal/services"
)

// UsageSource is satisfied by services.StorageService.
type UsageSource interface {
	Usage(ctx context.Context) (*services.StorageUsage, error)
}

// StorageReporter periodically logs object storage usage and exports it as a gauge.
type StorageReporter struct {
	usage    UsageSource
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
}

func NewStorageReporter(usage UsageSource, interval time.Duration) *StorageReporter {
	return &StorageReporter{
		usage:    usage,
		interval: interval,
		timeout:  2 * time.Minute,
		logger:   log.New(log.Writer(), "[STORAGE_REPORTER] ", log.LstdFlags),
	}
}

// Start reports once immediately and then on every tick until ctx is cancelled.
func (r *StorageReporter) Start(ctx context.Context) {
	r.logger.Printf("Starting storage reporter every %v", r.interval)

	r.runReport(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Storage reporter stopped")
			return
		case <-ticker.C:
			r.runReport(ctx)
		}
	}
}

func (r *StorageReporter) runReport(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	usage, err := r.usage.Usage(ctx)
	if err != nil {
		r.logger.Printf("Error computing storage usage: %v", err)
		return
	}

	for prefix, fig := range usage.Prefixes {
		metrics.StorageUsageBytes.WithLabelValues(prefix).Set(float64(fig.Bytes))
	}
	metrics.StorageUsageBytes.WithLabelValues("total").Set(float64(usage.Total.Bytes))

	if !usage.Allowed {
		r.logger.Printf("Storage limit reached: %.4f GB of %d bytes, uploads are blocked", usage.Total.GB, usage.LimitBytes)
		return
	}
	r.logger.Printf("Storage usage: %.2f MB (%.4f GB) of %d bytes", usage.Total.MB, usage.Total.GB, usage.LimitBytes)
}
