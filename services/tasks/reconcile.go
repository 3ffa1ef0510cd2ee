package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petcare/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeReconcileBooking = "booking:reconcile"
	QueueReconcile       = "reconcile"

	TriggerCreated     = "created"
	TriggerAbandoned   = "abandoned"
	TriggerOrderFailed = "order_failed"
)

// NewReconcileTask builds the one-shot deferred status check for a booking.
// Each trigger gets its own task id, so a report from the client never collides with the
// check queued at creation.
func NewReconcileTask(payload models.ReconcilePayload, delay time.Duration, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileBooking, b)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.TaskID(ReconcileTaskID(payload.BookingID, payload.Trigger)),
		asynq.MaxRetry(maxRetry),
		asynq.Queue(QueueReconcile),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

func ReconcileTaskID(bookingID, trigger string) string {
	return "reconcile:" + bookingID + ":" + trigger
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is satisfied by *asynq.Inspector.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// ReconcileScheduler queues deferred checks on Redis so they outlive the HTTP request and the process.
type ReconcileScheduler struct {
	client    Enqueuer
	inspector TaskInspector
	delay     time.Duration
	maxRetry  int
	logger    *zap.Logger
}

func NewReconcileScheduler(client Enqueuer, inspector TaskInspector, delay time.Duration, maxRetry int, logger *zap.Logger) *ReconcileScheduler {
	return &ReconcileScheduler{client: client, inspector: inspector, delay: delay, maxRetry: maxRetry, logger: logger}
}

// ScheduleReconcile is idempotent while a check for the same trigger is still waiting or running.
// A finished or archived check with the same id is replaced so the new request is not lost.
func (s *ReconcileScheduler) ScheduleReconcile(ctx context.Context, bookingID, trigger string) error {
	task, opts, err := NewReconcileTask(models.ReconcilePayload{BookingID: bookingID, Trigger: trigger}, s.delay, s.maxRetry)
	if err != nil {
		return fmt.Errorf("build reconcile task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if isConflict(err) {
		replaced, rerr := s.replaceFinished(bookingID, trigger)
		if rerr != nil {
			return rerr
		}
		if !replaced {
			s.logger.Debug("reconcile already scheduled", zap.String("bookingId", bookingID), zap.String("trigger", trigger))
			return nil
		}
		info, err = s.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		return fmt.Errorf("enqueue reconcile for %s: %w", bookingID, err)
	}

	s.logger.Info("reconcile scheduled",
		zap.String("bookingId", bookingID),
		zap.String("trigger", trigger),
		zap.String("taskId", info.ID),
		zap.Time("processAt", info.NextProcessAt))
	return nil
}

// replaceFinished deletes a completed or archived task holding the id. It reports whether it did.
func (s *ReconcileScheduler) replaceFinished(bookingID, trigger string) (bool, error) {
	if s.inspector == nil {
		return false, nil
	}
	id := ReconcileTaskID(bookingID, trigger)
	info, err := s.inspector.GetTaskInfo(QueueReconcile, id)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		// Removed between the conflict and the lookup.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect reconcile task %s: %w", id, err)
	}
	if info.State != asynq.TaskStateArchived && info.State != asynq.TaskStateCompleted {
		return false, nil
	}
	if err := s.inspector.DeleteTask(QueueReconcile, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("delete finished reconcile task %s: %w", id, err)
	}
	s.logger.Info("replacing finished reconcile task", zap.String("taskId", id), zap.String("state", info.State.String()))
	return true, nil
}

func isConflict(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}
