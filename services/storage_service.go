package services

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

const DefaultStorageLimitBytes int64 = 5 * 1024 * 1024 * 1024

type UsageFigure struct {
	Bytes int64   `json:"bytes"`
	MB    float64 `json:"mb"`
	GB    float64 `json:"gb"`
}

func NewUsageFigure(bytes int64) UsageFigure {
	return UsageFigure{
		Bytes: bytes,
		MB:    round(float64(bytes)/(1024*1024), 2),
		GB:    round(float64(bytes)/(1024*1024*1024), 4),
	}
}

type StorageUsage struct {
	Prefixes   map[string]UsageFigure `json:"prefixes"`
	Total      UsageFigure            `json:"total"`
	LimitBytes int64                  `json:"limit_bytes"`
	Allowed    bool                   `json:"allowed"`
}

// StorageService guards uploads against a fixed total byte limit across prefixes.
// Usage is recomputed from the object store on every call.
type StorageService struct {
	storage    ObjectStorage
	prefixes   []string
	limitBytes int64
}

func NewStorageService(storage ObjectStorage, prefixes []string, limitBytes int64) *StorageService {
	if limitBytes <= 0 {
		limitBytes = DefaultStorageLimitBytes
	}
	return &StorageService{storage: storage, prefixes: prefixes, limitBytes: limitBytes}
}

func (s *StorageService) Usage(ctx context.Context) (*StorageUsage, error) {
	sizes := make(map[string]int64, len(s.prefixes))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	for _, prefix := range s.prefixes {
		prefix := prefix
		eg.Go(func() error {
			size, err := s.storage.PrefixSize(ctx, prefix)
			if err != nil {
				return fmt.Errorf("failed to size %s: %w", prefix, err)
			}
			mu.Lock()
			sizes[prefix] = size
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	usage := &StorageUsage{
		Prefixes:   make(map[string]UsageFigure, len(sizes)),
		LimitBytes: s.limitBytes,
	}
	var total int64
	for prefix, size := range sizes {
		usage.Prefixes[prefix] = NewUsageFigure(size)
		total += size
	}
	usage.Total = NewUsageFigure(total)
	usage.Allowed = total < s.limitBytes
	return usage, nil
}

// CheckUpload fails with ErrStorageLimitExceeded once usage reaches the limit.
func (s *StorageService) CheckUpload(ctx context.Context) error {
	usage, err := s.Usage(ctx)
	if err != nil {
		return err
	}
	if !usage.Allowed {
		return fmt.Errorf("%w: used %.2f GB of %.2f GB", ErrStorageLimitExceeded,
			usage.Total.GB, float64(s.limitBytes)/(1024*1024*1024))
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
