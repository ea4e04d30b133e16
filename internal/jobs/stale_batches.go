package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"MarginSight/api/constants"
	"MarginSight/internal/logger"
	"MarginSight/internal/serviceiface"
)

// StaleBatchConfig controls the reaper that fails batches stuck in
// processing, typically after a crash mid-run.
type StaleBatchConfig struct {
	Schedule string
	MaxAge   time.Duration
}

func NewDefaultStaleBatchConfig() StaleBatchConfig {
	return StaleBatchConfig{
		Schedule: "*/15 * * * *",
		MaxAge:   2 * time.Hour,
	}
}

type CronService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &CronService{config: cfg, pool: pool}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	cfg := NewDefaultStaleBatchConfig()
	if s.config != nil {
		if schedule, ok := s.config["stale_batch_schedule"].(string); ok && schedule != "" {
			cfg.Schedule = schedule
		}
		if hours, ok := s.config["stale_batch_max_age_hours"].(int); ok && hours > 0 {
			cfg.MaxAge = time.Duration(hours) * time.Hour
		}
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(cfg.Schedule, func() {
		if err := reapStaleBatches(s.pool, cfg.MaxAge); err != nil {
			log.Printf("[ERROR] stale batch reaper: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule stale batch reaper: %v", err)
	}
	s.cron.Start()

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started with stale batch reaper")
	}
	log.Println("Cron service started, stale batch reaper scheduled")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

func reapStaleBatches(pool *pgxpool.Pool, maxAge time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tag, err := pool.Exec(ctx, `
		UPDATE mpa_batches
		SET status = $1, error_message = 'processing timed out'
		WHERE status = $2 AND updated_at < now() - $3::interval`,
		constants.BatchStatusFailed, constants.BatchStatusProcessing,
		fmt.Sprintf("%d seconds", int(maxAge.Seconds())))
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n > 0 {
		msg := fmt.Sprintf("Marked %d stale batches as failed", n)
		log.Println("[INFO]", msg)
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(msg)
		}
	}
	return nil
}
