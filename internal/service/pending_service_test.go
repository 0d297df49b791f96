package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type fakeLister struct {
	batches [][]models.EnrollmentRecord
	failAt  int // call index that errors, -1 disables
	calls   int
}

func (f *fakeLister) ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error) {
	call := f.calls
	f.calls++
	if f.failAt >= 0 && call == f.failAt {
		return nil, errors.New("connection reset")
	}
	if call >= len(f.batches) {
		return nil, nil
	}
	return f.batches[call], nil
}

func pendingRecord(kind models.EnrollmentKind, status models.EnrollmentStatus) models.EnrollmentRecord {
	return models.EnrollmentRecord{Kind: kind, RawStatus: status}
}

func newTestPendingService(lister enrollmentLister, batchSize int) *PendingService {
	return NewPendingService(lister, nil, nil, nil, PendingServiceConfig{BatchSize: batchSize})
}

func TestPendingCountReclassifiesEveryRecord(t *testing.T) {
	// The backend filter is advisory: the batch includes records that the
	// filter should have excluded, and the local reclassification must be
	// the one that decides.
	lister := &fakeLister{
		failAt: -1,
		batches: [][]models.EnrollmentRecord{{
			pendingRecord(models.KindPayment, models.StatusPreEnrolled),
			pendingRecord(models.KindExemption, models.StatusRegistered),
			pendingRecord(models.KindPayment, models.StatusRegistered),
			pendingRecord(models.KindPayment, models.StatusConfirmed),
		}},
	}
	svc := newTestPendingService(lister, 200)

	count, err := svc.Count(context.Background(), "cycle-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Count)
	assert.False(t, count.Partial)
	assert.Equal(t, 1, lister.calls)
}

func TestPendingCountWalksEveryPage(t *testing.T) {
	full := make([]models.EnrollmentRecord, 3)
	for i := range full {
		full[i] = pendingRecord(models.KindPayment, models.StatusPreEnrolled)
	}
	lister := &fakeLister{
		failAt: -1,
		batches: [][]models.EnrollmentRecord{
			full,
			full,
			{pendingRecord(models.KindPayment, models.StatusPreEnrolled)},
		},
	}
	svc := newTestPendingService(lister, 3)

	count, err := svc.Count(context.Background(), "cycle-1", false)
	require.NoError(t, err)
	assert.Equal(t, 7, count.Count)
	assert.Equal(t, 3, lister.calls, "scan stops on the first short page")
}

func TestPendingCountEmptyCycle(t *testing.T) {
	lister := &fakeLister{failAt: -1}
	svc := newTestPendingService(lister, 200)

	count, err := svc.Count(context.Background(), "cycle-1", false)
	require.NoError(t, err)
	assert.Equal(t, 0, count.Count)
	assert.Equal(t, 1, lister.calls)
}

func TestPendingCountMidScanFailureIsPartial(t *testing.T) {
	full := []models.EnrollmentRecord{
		pendingRecord(models.KindPayment, models.StatusPreEnrolled),
		pendingRecord(models.KindExemption, models.StatusRegistered),
	}
	lister := &fakeLister{batches: [][]models.EnrollmentRecord{full}, failAt: 1}
	svc := newTestPendingService(lister, 2)

	count, err := svc.Count(context.Background(), "cycle-1", false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTransport))
	require.NotNil(t, count)
	assert.True(t, count.Partial)
	assert.Equal(t, 2, count.Count)
}

// cancellingLister cancels the scan's context while serving the first page,
// always returning a full batch so an unchecked scan would keep paging.
type cancellingLister struct {
	cancel context.CancelFunc
	calls  int
}

func (f *cancellingLister) ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error) {
	f.calls++
	f.cancel()
	batch := make([]models.EnrollmentRecord, limit)
	for i := range batch {
		batch[i] = pendingRecord(models.KindPayment, models.StatusPreEnrolled)
	}
	return batch, nil
}

func TestPendingCountAbandonedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lister := &cancellingLister{cancel: cancel}
	svc := newTestPendingService(lister, 2)

	count, err := svc.Count(ctx, "cycle-1", false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTransport))
	require.NotNil(t, count)
	assert.True(t, count.Partial)
	assert.Equal(t, 2, count.Count)
	assert.Equal(t, 1, lister.calls, "no further pages after cancellation")
}

func TestCountManyCancelledContextAllPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestPendingService(&perCycleLister{counts: map[string]int{"a": 3, "b": 1, "c": 2}}, 200)

	done := make(chan struct{})
	var (
		counts []models.PendingCount
		err    error
	)
	go func() {
		counts, err = svc.CountMany(ctx, []string{"a", "b", "c"}, false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("CountMany did not return after cancellation")
	}

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTransport))
	require.Len(t, counts, 3)
	for _, count := range counts {
		assert.True(t, count.Partial, "cycle %s", count.CycleID)
	}
}

func TestPendingCountRequiresCycleID(t *testing.T) {
	svc := newTestPendingService(&fakeLister{failAt: -1}, 200)
	_, err := svc.Count(context.Background(), "", false)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

type perCycleLister struct {
	counts map[string]int
	fail   map[string]bool
}

func (f *perCycleLister) ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error) {
	if f.fail[cycleID] {
		return nil, fmt.Errorf("cycle %s unreachable", cycleID)
	}
	n := f.counts[cycleID]
	if offset >= n {
		return nil, nil
	}
	end := offset + limit
	if end > n {
		end = n
	}
	records := make([]models.EnrollmentRecord, 0, end-offset)
	for i := offset; i < end; i++ {
		records = append(records, pendingRecord(models.KindPayment, models.StatusPreEnrolled))
	}
	return records, nil
}

func TestCountManyPreservesOrder(t *testing.T) {
	lister := &perCycleLister{counts: map[string]int{"a": 2, "b": 0, "c": 5}}
	svc := newTestPendingService(lister, 200)

	counts, err := svc.CountMany(context.Background(), []string{"a", "b", "c"}, false)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, "a", counts[0].CycleID)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 0, counts[1].Count)
	assert.Equal(t, 5, counts[2].Count)
}

func TestCountManyReportsFailedCycleAsPartial(t *testing.T) {
	lister := &perCycleLister{
		counts: map[string]int{"a": 1, "b": 1},
		fail:   map[string]bool{"b": true},
	}
	svc := newTestPendingService(lister, 200)

	counts, err := svc.CountMany(context.Background(), []string{"a", "b"}, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTransport))
	require.Len(t, counts, 2)
	assert.False(t, counts[0].Partial)
	assert.Equal(t, 1, counts[0].Count)
	assert.True(t, counts[1].Partial)
}

func TestCountManyEmptyInput(t *testing.T) {
	svc := newTestPendingService(&fakeLister{failAt: -1}, 200)
	counts, err := svc.CountMany(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Nil(t, counts)
}
