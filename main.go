package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"mentorhub/config"
	"mentorhub/cron"
	"mentorhub/database"
	bookingRepoPkg "mentorhub/database/repository/booking"
	chatRepoPkg "mentorhub/database/repository/chat"
	mentorRepoPkg "mentorhub/database/repository/mentor"
	paymentRepoPkg "mentorhub/database/repository/payment"
	userRepoPkg "mentorhub/database/repository/user"
	"mentorhub/handlers"
	"mentorhub/middleware"
	"mentorhub/routes"
	"mentorhub/services/booking"
	"mentorhub/services/chat"
	"mentorhub/services/payment"
	"mentorhub/services/realtime"
	"mentorhub/services/scheduling"
	"mentorhub/services/tasks"
	"mentorhub/services/user"
	"mentorhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	database.EnsureIndexes()
	utils.InitAuthCache()

	// Repositories.
	users := userRepoPkg.NewMongoUserRepo()
	mentors := mentorRepoPkg.NewMongoMentorRepo()
	bookings := bookingRepoPkg.NewMongoBookingRepo()
	payments := paymentRepoPkg.NewMongoPaymentRepo()
	chatRooms := chatRepoPkg.NewMongoChatRepo()

	// Services.
	ledger := scheduling.NewLedger(bookings)
	availability := &scheduling.Availability{Mentors: mentors}

	userService := &user.Service{Users: users, Logger: logger}

	bookingService := &booking.DefaultService{
		Repo:    bookings,
		Mentors: mentors,
		Ledger:  ledger,
		Logger:  logger,
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := tasks.NewScheduler(asynqClient, logger)

	var orders payment.OrderClient
	if config.AppConfig.RazorpayKeyID != "" {
		orders = payment.NewRazorpayOrders(config.AppConfig.RazorpayKeyID, config.AppConfig.RazorpayKeySecret)
	} else {
		logger.Warn("razorpay keys not configured, checkout disabled")
	}
	paymentGate := &payment.Gate{
		Orders:    orders,
		KeySecret: config.AppConfig.RazorpayKeySecret,
		Payments:  payments,
		Bookings:  bookings,
		Mentors:   mentors,
		Ledger:    ledger,
		Reminders: reminderScheduler,
		Logger:    logger,
	}

	hub := realtime.NewHub(chatRooms, bookings, mentors, logger)

	chatService := &chat.Service{
		Rooms:    chatRooms,
		Bookings: bookings,
		Mentors:  mentors,
		Users:    users,
		Logger:   logger,
	}

	cron.InitReminderWorker(hub, mentors, users)

	// Router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, &routes.Handlers{
		UserRepo: users,
		User:     &handlers.UserHandler{Svc: userService},
		Mentor:   &handlers.MentorHandler{Availability: availability, Mentors: mentors},
		Booking:  &handlers.BookingHandler{Svc: bookingService},
		Payment:  &handlers.PaymentHandler{Gate: paymentGate},
		Chat:     &handlers.ChatHandler{Svc: chatService},
		WS:       &handlers.WSHandler{Hub: hub, Users: users},
	})

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
