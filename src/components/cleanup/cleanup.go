package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/chromium-bot/chromium/src/components/suspicious"
	"github.com/chromium-bot/chromium/src/data"
)

// Service runs the periodic housekeeping: purging guild configurations
// whose soft-delete retention has expired, and pruning the burst detector's
// in-memory trackers.
type Service struct {
	Guilds   *data.GuildStore
	Detector *suspicious.Detector

	Retention     time.Duration // soft-delete retention window
	PurgeEvery    time.Duration
	SweepEvery    time.Duration
	TrackerMaxAge time.Duration
}

func New(guilds *data.GuildStore, detector *suspicious.Detector) *Service {
	return &Service{
		Guilds:        guilds,
		Detector:      detector,
		Retention:     60 * 24 * time.Hour,
		PurgeEvery:    24 * time.Hour,
		SweepEvery:    5 * time.Minute,
		TrackerMaxAge: 10 * time.Minute,
	}
}

// Run blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	purge := time.NewTicker(s.PurgeEvery)
	sweep := time.NewTicker(s.SweepEvery)
	defer purge.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-purge.C:
			n, err := s.Guilds.PurgeExpired(s.Retention)
			if err != nil {
				log.Printf("cleanup: purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("cleanup: permanently removed %d expired guild configuration(s)", n)
			}
		case <-sweep.C:
			s.Detector.CleanupExpired(s.TrackerMaxAge)
		}
	}
}
