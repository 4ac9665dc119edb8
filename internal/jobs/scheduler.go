// Package jobs runs the periodic housekeeping the API needs: expiring
// stale invitations in the database and sweeping the in-memory token,
// activity and rate-limit tables.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"photoselect/internal/ratelimit"
	"photoselect/internal/repository"
	"photoselect/internal/security"
)

type Scheduler struct {
	cron        *cron.Cron
	invitations *repository.InvitationRepository
	csrf        *security.CSRFStore
	tracker     *security.SessionTracker
	limiter     *ratelimit.Limiter
	log         zerolog.Logger
}

func NewScheduler(
	invitations *repository.InvitationRepository,
	csrf *security.CSRFStore,
	tracker *security.SessionTracker,
	limiter *ratelimit.Limiter,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		invitations: invitations,
		csrf:        csrf,
		tracker:     tracker,
		limiter:     limiter,
		log:         log,
	}
}

func (s *Scheduler) Start() error {
	// In-memory tables are cheap to sweep; once a minute keeps them
	// from growing between bursts.
	if _, err := s.cron.AddFunc("0 * * * * *", s.sweepMemory); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.expireInvitations); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepMemory() {
	csrfSwept := s.csrf.Sweep()
	trackerSwept := s.tracker.Sweep()
	limiterSwept := s.limiter.Sweep()

	if csrfSwept+trackerSwept+limiterSwept > 0 {
		s.log.Debug().
			Int("csrf", csrfSwept).
			Int("tracker", trackerSwept).
			Int("limiter", limiterSwept).
			Msg("swept in-memory state")
	}
}

func (s *Scheduler) expireInvitations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.invitations.ExpirePending(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("expire invitations failed")
		return
	}
	if expired > 0 {
		s.log.Info().Int64("count", expired).Msg("expired stale invitations")
	}
}
