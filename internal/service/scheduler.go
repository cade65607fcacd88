package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"rpsarena/internal/security"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs background maintenance jobs
type Scheduler struct {
	sched gocron.Scheduler
}

// NewScheduler creates a stopped scheduler
func NewScheduler() (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, fn func(ctx context.Context) error) error {
	_, err := s.sched.NewJob(
		def,
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := fn(ctx); err != nil {
				log.WithError(err).WithField("job", name).Error("Scheduled job failed")
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	log.WithField("job", name).Info("Scheduled job registered")
	return nil
}

// AddStatsDigest mails the scoreboard to adminEmail on a cron schedule
func (s *Scheduler) AddStatsDigest(cronExpr string, stats *StatsService, email *EmailService, adminEmail string) error {
	return s.add("stats-digest", gocron.CronJob(cronExpr, false), func(ctx context.Context) error {
		return SendDigest(ctx, stats, email, adminEmail)
	})
}

// AddBackup exports the database to S3 on a cron schedule
func (s *Scheduler) AddBackup(cronExpr string, backups *BackupService, uploader *BackupUploader) error {
	return s.add("s3-backup", gocron.CronJob(cronExpr, false), func(ctx context.Context) error {
		_, err := backups.ExportAndUpload(ctx, uploader)
		return err
	})
}

// AddRateLimiterSweep drops idle rate limiter entries at a fixed interval
func (s *Scheduler) AddRateLimiterSweep(every time.Duration, limiters ...*security.RateLimiter) error {
	return s.add("rate-limiter-sweep", gocron.DurationJob(every), func(ctx context.Context) error {
		dropped := 0
		for _, rl := range limiters {
			dropped += rl.Sweep()
		}
		log.Debugf("Rate limiter sweep dropped %d clients", dropped)
		return nil
	})
}

// Start begins running jobs
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// SendDigest gathers current stats and mails them to adminEmail
func SendDigest(ctx context.Context, stats *StatsService, email *EmailService, adminEmail string) error {
	if adminEmail == "" || !email.IsEnabled() {
		return nil
	}
	current, err := stats.GetStats(ctx)
	if err != nil {
		return err
	}
	return email.SendStatsDigest(ctx, adminEmail, current, time.Now())
}
