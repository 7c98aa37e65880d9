package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/infrastructure/buffer"
	"github.com/fastygo/droptracker/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention bounds how long an item may wait before it is discarded.
	Retention time.Duration
	// MaxItems caps the queue; zero means unbounded.
	MaxItems int
}

// BufferProcessor synchronizes buffered operations with primary datastores.
type BufferProcessor struct {
	store    *buffer.Store
	monitor  ConnectionHealth
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:    store,
		monitor:  monitor,
		userRepo: userRepo,
		taskRepo: taskRepo,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := everySpec(cfg.Interval)
	if _, err := bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	}); err != nil {
		bp.logger.Error("invalid buffer drain schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	if _, err := bp.cron.AddFunc("@hourly", bp.cleanup); err != nil {
		bp.logger.Error("invalid buffer cleanup schedule", zap.Error(err))
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started")
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain processes buffered items synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	// A user's writes replay in order: once one fails, the rest of that
	// user's batch waits for the next drain.
	blocked := make(map[string]bool)
	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if blocked[item.UserID] {
			continue
		}
		err := bp.processItem(ctx, item)
		if err == nil {
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
			continue
		}

		log := bp.logger.With(
			zap.String("item_id", item.ID),
			zap.String("entity", item.Entity),
			zap.String("operation", item.Operation),
			zap.Int("retries", item.Retries+1),
			zap.Error(err))
		switch {
		case !domain.IsTransient(err):
			log.Warn("dropping buffer item rejected by storage")
			_ = bp.store.Remove(item)
		case item.Retries+1 >= bp.cfg.MaxRetries:
			log.Warn("dropping buffer item (max retries reached)")
			_ = bp.store.Remove(item)
		default:
			log.Error("failed to process buffer item")
			blocked[item.UserID] = true
			if err := bp.store.Retry(item); err != nil {
				bp.logger.Error("failed to record buffer retry", zap.String("item_id", item.ID), zap.Error(err))
			}
		}
	}
	return nil
}

// BufferOperation persists an operation that already failed against primary
// storage so the next drain can replay it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	if bp.cfg.MaxItems > 0 && bp.Size() >= bp.cfg.MaxItems {
		return fmt.Errorf("buffer full (%d items)", bp.cfg.MaxItems)
	}

	if err := bp.store.Enqueue(item); err != nil {
		return err
	}
	bp.logger.Info("operation buffered",
		zap.String("entity", item.Entity),
		zap.String("operation", item.Operation),
		zap.String("user_id", item.UserID))
	return nil
}

func (bp *BufferProcessor) cleanup() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffered operations dropped", zap.Int("count", removed))
	}
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityProfile:
		if bp.userRepo == nil {
			return fmt.Errorf("user repository not configured")
		}
		var user domain.User
		if err := json.Unmarshal(item.Data, &user); err != nil {
			return err
		}
		return bp.userRepo.Upsert(ctx, &user)

	case buffer.EntityTask:
		if bp.taskRepo == nil {
			return fmt.Errorf("task repository not configured")
		}
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationCreate:
			// The original write may have landed before the outage was noticed.
			_, err := bp.taskRepo.Create(ctx, &task)
			if errors.Is(err, domain.ErrTaskExists) {
				return nil
			}
			return err
		case buffer.OperationUpdate:
			return bp.taskRepo.Update(ctx, &task)
		case buffer.OperationDelete:
			err := bp.taskRepo.Delete(ctx, task.ID)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil
			}
			return err
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}
	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

func everySpec(interval time.Duration) string {
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds)
}
