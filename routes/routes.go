package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	userRepo "mentorhub/database/repository/user"
	"mentorhub/handlers"
	"mentorhub/middleware"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	UserRepo userRepo.UserRepository

	User    *handlers.UserHandler
	Mentor  *handlers.MentorHandler
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Chat    *handlers.ChatHandler
	WS      *handlers.WSHandler
}

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1/auth")
	{
		api.POST("/register", h.User.Register)
		api.POST("/login", h.User.Login)

		api.Use(middleware.JWTAuthMiddleware(h.UserRepo))
		api.POST("/logout", h.User.Logout)
		api.GET("/me", h.User.Profile)
	}
}

// RegisterMentorRoutes registers mentor profile and availability
// endpoints.
func RegisterMentorRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1/mentors")
	{
		api.GET("/:id", h.Mentor.GetByID)

		api.Use(middleware.JWTAuthMiddleware(h.UserRepo))
		api.PUT("/availability", h.Mentor.UpdateAvailability)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(h.UserRepo))
		api.POST("", h.Booking.Create)
		api.GET("/my-bookings", h.Booking.MyBookings)
		api.GET("/mentor-bookings", h.Booking.MentorBookings)
		api.GET("/:id", h.Booking.GetByID)
		api.PUT("/:id/status", h.Booking.UpdateStatus)
	}
}

// RegisterPaymentRoutes registers checkout and settlement endpoints.
func RegisterPaymentRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1/payments")
	{
		api.Use(middleware.JWTAuthMiddleware(h.UserRepo))
		api.POST("/create-order", h.Payment.CreateOrder)
		api.POST("/verify", h.Payment.Verify)
		api.GET("/user/history", h.Payment.History)
		api.GET("/:id", h.Payment.GetByID)
	}
}

// RegisterChatRoutes registers room and history endpoints plus the
// websocket entry.
func RegisterChatRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1/chat")
	{
		api.Use(middleware.JWTAuthMiddleware(h.UserRepo))
		api.POST("/room/create", h.Chat.CreateRoom)
		api.GET("/room/:bookingId", h.Chat.RoomForBooking)
		api.GET("/rooms", h.Chat.MyRooms)
		api.GET("/messages/:roomId", h.Chat.Messages)
	}

	// The websocket handshake authenticates itself via query token.
	r.GET("/ws", h.WS.Serve)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and
// middleware.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterUserRoutes(r, h)
	RegisterMentorRoutes(r, h)
	RegisterBookingRoutes(r, h)
	RegisterPaymentRoutes(r, h)
	RegisterChatRoutes(r, h)
	RegisterHealthRoute(r)
}
