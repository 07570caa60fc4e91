package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/ender-chat-be/internal/database"
	"github.com/isdelr/ender-chat-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// maintenanceTimeout bounds a single maintenance run.
const maintenanceTimeout = 2 * time.Minute

// Scheduler runs periodic database maintenance on a cron schedule.
type Scheduler struct {
	db         *sql.DB
	userSvc    services.UserServiceProvider
	messageSvc services.MessageServiceProvider
	stats      StatsProvider
	cron       *cron.Cron
}

// NewScheduler creates a new scheduler instance. An empty spec creates a
// scheduler that never fires.
func NewScheduler(spec string, db *sql.DB, userSvc services.UserServiceProvider, messageSvc services.MessageServiceProvider, stats StatsProvider) (*Scheduler, error) {
	s := &Scheduler{
		db:         db,
		userSvc:    userSvc,
		messageSvc: messageSvc,
		stats:      stats,
		cron:       cron.New(),
	}

	if spec != "" {
		if _, err := s.cron.AddFunc(spec, s.runJob); err != nil {
			return nil, fmt.Errorf("invalid maintenance schedule %q: %w", spec, err)
		}
	}
	return s, nil
}

// Start begins firing scheduled jobs in the background.
func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting maintenance scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped maintenance scheduler.")
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	if err := s.RunMaintenance(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduler: maintenance failed")
	}
}

// RunMaintenance checkpoints the database and logs room and host statistics.
func (s *Scheduler) RunMaintenance(ctx context.Context) error {
	start := time.Now()
	if err := database.Maintain(ctx, s.db); err != nil {
		return err
	}

	users, err := s.userSvc.CountUsers(ctx)
	if err != nil {
		return err
	}
	messages, err := s.messageSvc.CountMessages(ctx)
	if err != nil {
		return err
	}

	stats, err := s.stats.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Scheduler: host stats incomplete")
	}

	log.Info().
		Int("users", users).
		Int("messages", messages).
		Float64("memory_used_percent", stats.MemoryUsedPercent).
		Float64("load1", stats.Load1).
		Dur("took", time.Since(start)).
		Msg("Scheduler: maintenance complete")
	return nil
}
