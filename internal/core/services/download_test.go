package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"forge-service/internal/core/domain"
	"forge-service/internal/testutil"
)

func TestDownloadService_RecordModDownload(t *testing.T) {
	tracking := new(testutil.MockTrackingRepo)
	versions := new(testutil.MockModVersionRepo)
	svc := NewDownloadService(tracking, versions, nil)

	published := time.Now().Add(-time.Hour)
	versions.On("GetByID", mock.Anything, int64(10)).Return(&domain.ModVersion{ID: 10, Link: "https://x/file.7z", PublishedAt: &published}, nil)
	tracking.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.TrackingEvent) bool {
		return e.VisitableID == 10 && e.IP == "1.2.3.4" && e.UserID != nil && *e.UserID == 3
	}), mock.MatchedBy(func(since time.Time) bool {
		return time.Since(since) >= domain.DownloadDebounce
	})).Return(true, nil).Once()

	v, counted, err := svc.RecordModDownload(context.Background(), &domain.User{ID: 3}, 10, "1.2.3.4")
	assert.NoError(t, err)
	assert.True(t, counted)
	assert.Equal(t, "https://x/file.7z", v.Link)

	tracking.On("Record", mock.Anything, mock.AnythingOfType("*domain.TrackingEvent"), mock.Anything).Return(false, nil).Once()

	_, counted, err = svc.RecordModDownload(context.Background(), nil, 10, "1.2.3.4")
	assert.NoError(t, err)
	assert.False(t, counted)
	tracking.AssertNumberOfCalls(t, "Record", 2)
}

// debouncingTracking counts the first event per (event, target, ip) and
// drops the rest, the way the postgres repository does under its lock.
type debouncingTracking struct {
	testutil.MockTrackingRepo
	mu   sync.Mutex
	seen map[string]bool
}

func (d *debouncingTracking) Record(_ context.Context, e *domain.TrackingEvent, _ time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := fmt.Sprintf("%s:%d:%s", e.EventName, e.VisitableID, e.IP)
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func TestDownloadService_RecordModDownload_Concurrent(t *testing.T) {
	tracking := &debouncingTracking{seen: map[string]bool{}}
	versions := new(testutil.MockModVersionRepo)
	svc := NewDownloadService(tracking, versions, nil)

	published := time.Now().Add(-time.Hour)
	versions.On("GetByID", mock.Anything, int64(10)).Return(&domain.ModVersion{ID: 10, PublishedAt: &published}, nil)

	var wg sync.WaitGroup
	var counted atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := svc.RecordModDownload(context.Background(), nil, 10, "1.2.3.4")
			assert.NoError(t, err)
			if ok {
				counted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), counted.Load())
}

func TestDownloadService_RecordAddonDownload_Unpublished(t *testing.T) {
	versions := new(testutil.MockAddonVersionRepo)
	svc := NewDownloadService(new(testutil.MockTrackingRepo), nil, versions)

	versions.On("GetByID", mock.Anything, int64(5)).Return(&domain.AddonVersion{ID: 5, Disabled: true}, nil)

	_, _, err := svc.RecordAddonDownload(context.Background(), nil, 5, "1.2.3.4")
	assert.ErrorIs(t, err, domain.ErrAddonVersionNotFound)
}

func TestDownloadService_Recalculate(t *testing.T) {
	tracking := new(testutil.MockTrackingRepo)
	svc := NewDownloadService(tracking, nil, nil)

	tracking.On("RecalculateModDownloads", mock.Anything).Return(nil)
	tracking.On("RecalculateAddonDownloads", mock.Anything).Return(nil)

	assert.NoError(t, svc.Recalculate(context.Background()))
	tracking.AssertExpectations(t)
}

func TestDownloadService_Recalculate_Error(t *testing.T) {
	tracking := new(testutil.MockTrackingRepo)
	svc := NewDownloadService(tracking, nil, nil)

	boom := errors.New("boom")
	tracking.On("RecalculateModDownloads", mock.Anything).Return(boom)
	tracking.On("RecalculateAddonDownloads", mock.Anything).Return(nil)

	err := svc.Recalculate(context.Background())
	assert.ErrorIs(t, err, boom)
}
