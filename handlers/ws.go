package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mentorhub/config"
	userRepo "mentorhub/database/repository/user"
	"mentorhub/services/realtime"
	"mentorhub/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == config.AppConfig.FrontendURL
	},
}

type WSHandler struct {
	Hub   *realtime.Hub
	Users userRepo.UserRepository
}

// Serve authenticates and upgrades a websocket connection. Browsers
// cannot set headers on the upgrade request, so the token rides in the
// query string; the same hash check as the HTTP middleware applies.
func (h *WSHandler) Serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, email, err := utils.ExtractIdentityFromToken(tokenString)
	if err != nil || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	usr, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil || usr.TokenHash != utils.HashToken(tokenString) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token mismatch"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		getLogger(c).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.Hub, conn, userID, email)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump(context.Background())
}
