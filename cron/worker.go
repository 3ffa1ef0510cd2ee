package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"petcare/config"
	"petcare/models"
	"petcare/services/booking"
	"petcare/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Reconciler is the slice of the booking service the worker drives.
type Reconciler interface {
	Reconcile(ctx context.Context, bookingID string) (models.BookingStatus, error)
}

// QueueRedisOpt is the asynq connection shared by the enqueuing client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReconcileWorker starts the asynq server in the background and returns it for shutdown.
func InitReconcileWorker(svc Reconciler, logger *zap.Logger) *asynq.Server {
	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueReconcile: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("reconcile task failed", zap.String("type", task.Type()), zap.ByteString("payload", task.Payload()), zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileBooking, HandleReconcileTask(svc, logger))

	go func() {
		logger.Info("reconcile worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("reconcile worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("reconcile worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// HandleReconcileTask runs the deferred gateway check for one booking.
// Missing bookings and malformed payloads are not retried.
func HandleReconcileTask(svc Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid reconcile payload: %v: %w", err, asynq.SkipRetry)
		}

		status, err := svc.Reconcile(ctx, p.BookingID)
		if err != nil {
			if booking.CodeOf(err) == booking.CodeNotFound {
				return fmt.Errorf("reconcile %s: %v: %w", p.BookingID, err, asynq.SkipRetry)
			}
			return fmt.Errorf("reconcile %s: %w", p.BookingID, err)
		}

		logger.Info("reconcile task done",
			zap.String("bookingId", p.BookingID),
			zap.String("trigger", p.Trigger),
			zap.String("status", string(status)))
		return nil
	}
}
