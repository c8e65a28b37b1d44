package services

import (
	"context"
	"time"

	"evapod/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Maintenance schedules
const (
	PurgeSchedule    = "@hourly"
	OTPSweepSchedule = "@every 5m"
)

// CronService runs the maintenance jobs
type CronService struct {
	cron     *cron.Cron
	sessions repositories.SessionRepository
	tokens   repositories.UserTokenRepository
	otp      *OTPService
	logger   *zap.Logger
}

// NewCronService creates a new cron service
func NewCronService(
	sessions repositories.SessionRepository,
	tokens repositories.UserTokenRepository,
	otp *OTPService,
	logger *zap.Logger,
) *CronService {
	log := cronLogger(logger)
	return &CronService{
		cron:     cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log))),
		sessions: sessions,
		tokens:   tokens,
		otp:      otp,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(PurgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Purge(ctx, time.Now())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(OTPSweepSchedule, func() {
		if n := s.otp.Sweep(); n > 0 {
			s.logger.Debug("expired login codes swept", zap.Int("count", n))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron service started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron service stopped")
}

// Purge deletes sessions and email tokens that expired, were revoked or
// were used before now
func (s *CronService) Purge(ctx context.Context, now time.Time) {
	sessions, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("failed to purge sessions", zap.Error(err))
	}
	tokens, err := s.tokens.DeleteStale(ctx, now)
	if err != nil {
		s.logger.Error("failed to purge email tokens", zap.Error(err))
	}
	s.logger.Info("expired credentials purged", zap.Int64("sessions", sessions), zap.Int64("tokens", tokens))
}

// cronLogger routes scheduler errors and recovered panics to zap
func cronLogger(logger *zap.Logger) cron.Logger {
	return cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
}
