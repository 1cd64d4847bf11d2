// Package tasks builds and enqueues background jobs.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"mentorhub/models"
	"mentorhub/services/access"
)

const TypeSessionReminder = "session:reminder"

// Reminders fire this long before the session starts.
const reminderLead = 10 * time.Minute

func NewSessionReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues session reminders on the asynq queue. A nil
// *Scheduler is a valid no-op receiver so callers need no nil checks
// when the queue is not configured.
type Scheduler struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewScheduler(client *asynq.Client, logger *zap.Logger) *Scheduler {
	return &Scheduler{Client: client, Logger: logger}
}

// ScheduleSessionReminder queues one reminder per booking, timed
// before the session window opens. Sessions already inside their lead
// window are skipped.
func (s *Scheduler) ScheduleSessionReminder(b *models.Booking, participants []string) error {
	if s == nil || s.Client == nil {
		return nil
	}

	start, _, err := access.SessionWindow(*b)
	if err != nil {
		return err
	}
	fireAt := start.Add(-reminderLead)
	if !fireAt.After(time.Now()) {
		s.Logger.Debug("session too close, skipping reminder",
			zap.String("bookingId", b.ID))
		return nil
	}

	payload := models.ReminderPayload{
		BookingID:   b.ID,
		UserID:      b.UserID,
		MentorID:    b.MentorID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		SessionType: b.SessionType,
	}
	task, opts, err := NewSessionReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	info, err := s.Client.Enqueue(task, opts...)
	if err != nil {
		return err
	}
	s.Logger.Info("session reminder queued",
		zap.String("bookingId", b.ID),
		zap.String("taskId", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
