package citydata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/testutil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/timeutil"
)

type recordingStore struct {
	mu    sync.Mutex
	loads [][]CityRecord
}

func (s *recordingStore) LoadSnapshot(records []CityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, records)
	return nil
}

func (s *recordingStore) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

func TestRefresherReloadsOnTick(t *testing.T) {
	mock := httputil.NewMockClient()
	mock.AddResponse(200, testutil.MetricsCSV)

	store := &recordingStore{}
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	r := &Refresher{
		Client:   mock,
		URL:      "https://example.com/metrics.csv",
		Store:    store,
		Clock:    clock,
		Interval: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// Wait for the ticker to register before advancing.
	deadline := time.After(2 * time.Second)
	for {
		clock.Advance(time.Hour)
		if store.loadCount() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("refresher never reloaded the store")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestRefresherZeroIntervalDisabled(t *testing.T) {
	r := &Refresher{Interval: 0}

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return immediately with zero interval")
	}
}

func TestRefresherKeepsDataOnFailure(t *testing.T) {
	mock := httputil.NewMockClient()
	mock.AddResponse(500, "boom")

	store := &recordingStore{}
	r := &Refresher{
		Client: mock,
		URL:    "https://example.com/metrics.csv",
		Store:  store,
	}

	if err := r.refreshOnce(context.Background()); err == nil {
		t.Error("refreshOnce succeeded, want error")
	}
	if store.loadCount() != 0 {
		t.Errorf("store loaded %d times on failed fetch", store.loadCount())
	}
}
