// Package realtime is the in-process broker for chat and call
// signaling. One Hub instance is created at startup and injected into
// the websocket handler and the reminder worker; it is never reached
// through package globals.
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	chatRepo "mentorhub/database/repository/chat"
	mentorRepo "mentorhub/database/repository/mentor"
	"mentorhub/models"
	"mentorhub/services/access"
)

const historyLimit = 50

// Hub routes events between connected clients and persists chat
// traffic. All membership state is process-local; a client that
// reconnects re-joins its rooms.
type Hub struct {
	Rooms    chatRepo.ChatRepository
	Bookings bookingRepo.BookingRepository
	Mentors  mentorRepo.MentorRepository
	Logger   *zap.Logger

	mu sync.Mutex
	// rooms: roomID → members. joined: client → roomIDs. Inverses of
	// each other, both updated under mu.
	rooms  map[string]map[*Client]bool
	joined map[*Client]map[string]bool
	byUser map[string]map[*Client]bool
	negs   map[*Client]map[string]*Negotiation
}

func NewHub(rooms chatRepo.ChatRepository, bookings bookingRepo.BookingRepository, mentors mentorRepo.MentorRepository, logger *zap.Logger) *Hub {
	return &Hub{
		Rooms:    rooms,
		Bookings: bookings,
		Mentors:  mentors,
		Logger:   logger,
		rooms:    make(map[string]map[*Client]bool),
		joined:   make(map[*Client]map[string]bool),
		byUser:   make(map[string]map[*Client]bool),
		negs:     make(map[*Client]map[string]*Negotiation),
	}
}

// Register adds a connected client to the user index.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]bool)
	}
	h.byUser[c.UserID][c] = true
}

// Unregister removes a client from every room and index and closes its
// send channel. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.joined[c]; !ok {
		if conns := h.byUser[c.UserID]; conns == nil || !conns[c] {
			return
		}
	}
	for roomID := range h.joined[c] {
		delete(h.rooms[roomID], c)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.joined, c)
	delete(h.negs, c)
	if conns := h.byUser[c.UserID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	close(c.send)
}

// NotifyUser delivers an event to every live connection of a user.
// Used by the reminder worker; a user with no connection gets nothing.
func (h *Hub) NotifyUser(userID string, ev Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.byUser[userID] {
		c.emit(ev)
	}
}

// HandleEvent dispatches one inbound frame. Every failure path answers
// the sender with an error event; the connection is never dropped for
// a rejected event.
func (h *Hub) HandleEvent(ctx context.Context, c *Client, env Envelope) {
	switch env.Event {
	case EvJoinRoom:
		var p joinPayload
		if !decode(c, env.Data, &p) {
			return
		}
		h.joinRoom(ctx, c, p.RoomID)
	case EvSendMessage:
		var p sendMessagePayload
		if !decode(c, env.Data, &p) {
			return
		}
		h.sendMessage(ctx, c, p)
	case EvTyping:
		var p typingPayload
		if !decode(c, env.Data, &p) {
			return
		}
		h.typing(c, p)
	case EvMarkRead:
		var p markReadPayload
		if !decode(c, env.Data, &p) {
			return
		}
		h.markRead(ctx, c, p.RoomID)
	case EvOffer, EvAnswer, EvICECandidate:
		var p signalPayload
		if !decode(c, env.Data, &p) {
			return
		}
		h.relaySignal(c, env.Event, p)
	default:
		c.emit(errorEvent("unknown event: " + env.Event))
	}
}

func decode(c *Client, data json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.emit(errorEvent("malformed payload"))
		return false
	}
	return true
}

// joinRoom admits a client to a room after re-running the session
// gate. First join delivers the recent history; re-joins only re-ack.
func (h *Hub) joinRoom(ctx context.Context, c *Client, roomID string) {
	room, err := h.Rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		c.emit(errorEvent("room not found"))
		return
	}
	b, err := h.Bookings.GetByID(ctx, room.BookingID)
	if err != nil {
		c.emit(errorEvent("booking not found for room"))
		return
	}
	mentor, err := h.Mentors.GetByID(ctx, b.MentorID)
	if err != nil {
		c.emit(errorEvent("mentor not found for room"))
		return
	}

	if d := access.CanEnter(*b, mentor.Email, c.UserID, c.Email, time.Now()); !d.Allowed {
		c.emit(errorEvent(d.Reason))
		return
	}

	// The mentee side initiates media negotiation; the mentor side
	// responds. The role is told to the client so only one side offers.
	role := RoleResponder
	if c.UserID == b.UserID {
		role = RoleInitiator
	}

	h.mu.Lock()
	already := h.rooms[roomID][c]
	if !already {
		if h.rooms[roomID] == nil {
			h.rooms[roomID] = make(map[*Client]bool)
		}
		h.rooms[roomID][c] = true
		if h.joined[c] == nil {
			h.joined[c] = make(map[string]bool)
		}
		h.joined[c][roomID] = true
		if h.negs[c] == nil {
			h.negs[c] = make(map[string]*Negotiation)
		}
		h.negs[c][roomID] = &Negotiation{Role: role}
	}
	h.mu.Unlock()

	if !already {
		msgs, err := h.Rooms.MessagesByRoom(ctx, roomID, historyLimit, 0)
		if err != nil {
			h.Logger.Warn("failed to load room history",
				zap.String("roomId", roomID), zap.Error(err))
		} else {
			for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
				msgs[i], msgs[j] = msgs[j], msgs[i]
			}
			if msgs == nil {
				msgs = []models.Message{}
			}
			c.emit(NewEvent(EvRoomHistory, map[string]interface{}{
				"roomId":   roomID,
				"messages": msgs,
			}))
		}
	}

	c.emit(NewEvent(EvRoomJoined, map[string]interface{}{
		"roomId":  roomID,
		"success": true,
		"role":    role.String(),
	}))
}

// sendMessage persists and fans out one chat message. The session gate
// is re-run on every send: an expired or cancelled session rejects the
// next message even on an established connection.
func (h *Hub) sendMessage(ctx context.Context, c *Client, p sendMessagePayload) {
	if strings.TrimSpace(p.Message) == "" {
		c.emit(errorEvent("message must not be empty"))
		return
	}
	if !h.isMember(c, p.RoomID) {
		c.emit(errorEvent("join the room before sending"))
		return
	}

	room, err := h.Rooms.GetRoomByID(ctx, p.RoomID)
	if err != nil {
		c.emit(errorEvent("room not found"))
		return
	}
	b, err := h.Bookings.GetByID(ctx, room.BookingID)
	if err != nil {
		c.emit(errorEvent("booking not found for room"))
		return
	}
	mentor, err := h.Mentors.GetByID(ctx, b.MentorID)
	if err != nil {
		c.emit(errorEvent("mentor not found for room"))
		return
	}
	if d := access.CanEnter(*b, mentor.Email, c.UserID, c.Email, time.Now()); !d.Allowed {
		c.emit(errorEvent(d.Reason))
		return
	}

	msg := models.Message{
		ID:         uuid.New().String(),
		RoomID:     p.RoomID,
		SenderID:   c.UserID,
		ReceiverID: p.ReceiverID,
		Body:       p.Message,
		Timestamp:  time.Now(),
	}
	if err := h.Rooms.InsertMessage(ctx, &msg); err != nil {
		h.Logger.Error("failed to persist message",
			zap.String("roomId", p.RoomID), zap.Error(err))
		c.emit(errorEvent("failed to send message"))
		return
	}
	if err := h.Rooms.RecordMessage(ctx, p.RoomID, p.Message, p.ReceiverID, msg.Timestamp); err != nil {
		h.Logger.Warn("failed to update room summary",
			zap.String("roomId", p.RoomID), zap.Error(err))
	}

	h.broadcast(p.RoomID, NewEvent(EvNewMessage, msg), nil)
}

// typing relays an ephemeral indicator to the other members. Nothing
// is persisted.
func (h *Hub) typing(c *Client, p typingPayload) {
	if !h.isMember(c, p.RoomID) {
		c.emit(errorEvent("join the room before sending"))
		return
	}
	h.broadcast(p.RoomID, NewEvent(EvUserTyping, map[string]interface{}{
		"roomId":   p.RoomID,
		"userId":   c.UserID,
		"isTyping": p.IsTyping,
	}), c)
}

// markRead flips the caller's unread messages in a room and tells the
// other members.
func (h *Hub) markRead(ctx context.Context, c *Client, roomID string) {
	if !h.isMember(c, roomID) {
		c.emit(errorEvent("join the room before sending"))
		return
	}
	if err := h.Rooms.MarkMessagesRead(ctx, roomID, c.UserID); err != nil {
		h.Logger.Warn("failed to mark messages read",
			zap.String("roomId", roomID), zap.Error(err))
		c.emit(errorEvent("failed to mark messages read"))
		return
	}
	if err := h.Rooms.ResetUnread(ctx, roomID, c.UserID); err != nil {
		h.Logger.Warn("failed to reset unread counter",
			zap.String("roomId", roomID), zap.Error(err))
	}
	h.broadcast(roomID, NewEvent(EvMessagesRead, map[string]string{
		"roomId": roomID,
		"userId": c.UserID,
	}), c)
}

// relaySignal forwards an offer, answer, or ICE candidate to the other
// room members, stamping the sender. Offer and answer advance the
// negotiation state machines; glare is resolved by superseding the
// outstanding offer.
func (h *Hub) relaySignal(c *Client, event string, p signalPayload) {
	if !h.isMember(c, p.RoomID) {
		c.emit(errorEvent("join the room before sending"))
		return
	}

	out := map[string]interface{}{
		"roomId":   p.RoomID,
		"senderId": c.UserID,
	}

	h.mu.Lock()
	switch event {
	case EvOffer:
		out["offer"] = p.Offer
		if n := h.negs[c][p.RoomID]; n != nil {
			n.LocalOffer()
		}
		for peer := range h.rooms[p.RoomID] {
			if peer == c {
				continue
			}
			if n := h.negs[peer][p.RoomID]; n != nil {
				if n.RemoteOffer() {
					h.Logger.Debug("offer glare superseded",
						zap.String("roomId", p.RoomID), zap.String("userId", peer.UserID))
				}
			}
		}
	case EvAnswer:
		out["answer"] = p.Answer
		if n := h.negs[c][p.RoomID]; n != nil {
			n.LocalAnswer()
		}
		for peer := range h.rooms[p.RoomID] {
			if peer == c {
				continue
			}
			if n := h.negs[peer][p.RoomID]; n != nil {
				n.RemoteAnswer()
			}
		}
	case EvICECandidate:
		out["candidate"] = p.Candidate
	}
	h.mu.Unlock()

	h.broadcast(p.RoomID, NewEvent(event, out), c)
}

func (h *Hub) isMember(c *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.joined[c][roomID]
}

// broadcast fans an event out to a room's members, optionally skipping
// one client.
func (h *Hub) broadcast(roomID string, ev Envelope, except *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if c == except {
			continue
		}
		c.emit(ev)
	}
}
