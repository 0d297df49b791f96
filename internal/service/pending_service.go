package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type enrollmentLister interface {
	ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error)
}

// PendingServiceConfig tunes the scan loop and its cache.
type PendingServiceConfig struct {
	BatchSize       int
	ScanConcurrency int
	CacheTTL        time.Duration
}

// PendingService counts enrollments awaiting staff validation. The backend
// exposes no aggregate count, so the count is produced by an exhaustive
// paged scan that reclassifies every record locally; any status filter the
// listing collaborator claims to honor is treated as advisory only.
type PendingService struct {
	lister  enrollmentLister
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     PendingServiceConfig
	now     func() time.Time
}

// NewPendingService constructs a PendingService.
func NewPendingService(lister enrollmentLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg PendingServiceConfig) *PendingService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.ScanConcurrency <= 0 {
		cfg.ScanConcurrency = 4
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PendingService{lister: lister, cache: cache, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

func pendingCacheKey(cycleID string) string {
	return fmt.Sprintf("pending:cycle:%s", cycleID)
}

// Count returns the pending-validation count for a cycle, serving a cached
// value when available unless refresh is forced.
func (s *PendingService) Count(ctx context.Context, cycleID string, forceRefresh bool) (*models.PendingCount, error) {
	if cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id required")
	}
	key := pendingCacheKey(cycleID)
	if !forceRefresh && s.cache != nil {
		var cached models.PendingCount
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	result, err := s.scan(ctx, cycleID)
	if err != nil {
		return result, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("pending count cache write failed", zap.String("cycle_id", cycleID), zap.Error(err))
		}
	}
	return result, nil
}

// Invalidate drops the cached count for a cycle. Called after every
// approve/reject so the next read rescans.
func (s *PendingService) Invalidate(ctx context.Context, cycleID string) {
	if s.cache == nil || cycleID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, pendingCacheKey(cycleID)); err != nil {
		s.logger.Warn("pending count invalidation failed", zap.String("cycle_id", cycleID), zap.Error(err))
	}
}

// scan walks every page of the cycle's enrollments and counts the records
// whose display status is pre-enrolled. A short or empty batch ends the
// scan. On a mid-scan listing failure the accumulated count is returned
// tagged partial together with the error, never as a complete figure.
func (s *PendingService) scan(ctx context.Context, cycleID string) (*models.PendingCount, error) {
	started := s.now()
	offset := 0
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return &models.PendingCount{CycleID: cycleID, Count: total, Partial: true, RefreshedAt: started},
				appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "pending scan cancelled")
		}
		batch, err := s.lister.ListByCycle(ctx, cycleID, offset, s.cfg.BatchSize, models.StatusPreEnrolled)
		if err != nil {
			return &models.PendingCount{CycleID: cycleID, Count: total, Partial: true, RefreshedAt: started},
				appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "pending scan interrupted")
		}
		for _, record := range batch {
			if record.DisplayStatus() == models.StatusPreEnrolled {
				total++
			}
		}
		if len(batch) < s.cfg.BatchSize {
			break
		}
		offset += s.cfg.BatchSize
	}
	if s.metrics != nil {
		s.metrics.ObservePendingScan(s.now().Sub(started))
		s.metrics.SetPendingCount(cycleID, total)
	}
	return &models.PendingCount{CycleID: cycleID, Count: total, RefreshedAt: started}, nil
}

// CountMany scans several cycles on a bounded worker pool. Per-cycle scans
// share no state; a failed cycle yields its partial result and the first
// error is reported. Respects context cancellation.
func (s *PendingService) CountMany(ctx context.Context, cycleIDs []string, forceRefresh bool) ([]models.PendingCount, error) {
	if len(cycleIDs) == 0 {
		return nil, nil
	}

	type indexed struct {
		idx    int
		result models.PendingCount
		err    error
	}

	jobs := make(chan int)
	results := make(chan indexed, len(cycleIDs))
	workers := s.cfg.ScanConcurrency
	if workers > len(cycleIDs) {
		workers = len(cycleIDs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				count, err := s.Count(ctx, cycleIDs[idx], forceRefresh)
				out := indexed{idx: idx, err: err}
				if count != nil {
					out.result = *count
				} else {
					out.result = models.PendingCount{CycleID: cycleIDs[idx], Partial: err != nil}
				}
				results <- out
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range cycleIDs {
			select {
			case <-ctx.Done():
				return
			case jobs <- idx:
			}
		}
	}()

	wg.Wait()
	close(results)

	counts := make([]models.PendingCount, len(cycleIDs))
	seen := make([]bool, len(cycleIDs))
	var firstErr error
	for out := range results {
		counts[out.idx] = out.result
		seen[out.idx] = true
		if out.err != nil && firstErr == nil {
			firstErr = out.err
		}
	}
	for idx, ok := range seen {
		if !ok {
			counts[idx] = models.PendingCount{CycleID: cycleIDs[idx], Partial: true}
			if firstErr == nil {
				firstErr = appErrors.Wrap(ctx.Err(), appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "pending scan cancelled")
			}
		}
	}
	return counts, firstErr
}
