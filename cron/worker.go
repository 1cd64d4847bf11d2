// Package cron runs the background asynq worker for queued reminders.
package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"mentorhub/config"
	mentorRepo "mentorhub/database/repository/mentor"
	userRepo "mentorhub/database/repository/user"
	"mentorhub/models"
	"mentorhub/services/realtime"
	"mentorhub/services/tasks"
	"mentorhub/utils"
)

// InitReminderWorker starts the async worker in the background.
func InitReminderWorker(hub *realtime.Hub, mentors mentorRepo.MentorRepository, users userRepo.UserRepository) {
	logger := utils.GetLogger()
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionReminder, handleSessionReminder(hub, mentors, users))

	go monitorRedisConnection()

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("reminder worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("reminder worker exhausted retries")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleSessionReminder delivers the reminder to both participants'
// live connections. The mentor's user account is resolved at fire
// time through the profile email; participants with no open
// connection simply miss the ping.
func handleSessionReminder(hub *realtime.Hub, mentors mentorRepo.MentorRepository, users userRepo.UserRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		ev := realtime.NewEvent(realtime.EvSessionReminder, map[string]string{
			"bookingId":   p.BookingID,
			"date":        p.Date,
			"startTime":   p.StartTime,
			"sessionType": p.SessionType,
		})

		hub.NotifyUser(p.UserID, ev)

		mentor, err := mentors.GetByID(ctx, p.MentorID)
		if err != nil {
			logger.Warn("reminder mentor lookup failed",
				zap.String("bookingId", p.BookingID), zap.Error(err))
			return nil
		}
		mentorUser, err := users.GetByEmail(ctx, mentor.Email)
		if err != nil {
			logger.Warn("reminder mentor account lookup failed",
				zap.String("bookingId", p.BookingID), zap.Error(err))
			return nil
		}
		hub.NotifyUser(mentorUser.ID, ev)

		logger.Info("session reminder delivered",
			zap.String("bookingId", p.BookingID))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures
// at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()
	logger := utils.GetLogger()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("reminder queue redis unreachable", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
