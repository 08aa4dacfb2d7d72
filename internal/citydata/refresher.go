package citydata

import (
	"context"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/monitoring"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/timeutil"
)

// Store is where refreshed reference data lands.
type Store interface {
	LoadSnapshot(records []CityRecord) error
}

// Refresher periodically re-fetches the remote reference CSV and reloads
// the store. A failed fetch keeps the previous data; the next tick retries.
type Refresher struct {
	Client   httputil.Client
	URL      string
	Store    Store
	Clock    timeutil.Clock
	Interval time.Duration
}

// Run fetches on every tick until ctx is cancelled. It does not perform an
// initial fetch; the caller seeds the store at startup.
func (r *Refresher) Run(ctx context.Context) {
	if r.Interval <= 0 {
		return
	}

	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	ticker := clock.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if err := r.refreshOnce(ctx); err != nil {
				monitoring.Logf("reference data refresh failed: %v", err)
			}
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) error {
	records, err := Fetch(ctx, r.Client, r.URL)
	if err != nil {
		return err
	}
	if err := r.Store.LoadSnapshot(records); err != nil {
		return err
	}
	monitoring.Logf("refreshed reference data: %d cities", len(records))
	return nil
}
