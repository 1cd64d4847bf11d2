package realtime

import (
	"encoding/json"

	"mentorhub/utils"
)

// Client → server event names.
const (
	EvJoinRoom     = "join_room"
	EvSendMessage  = "send_message"
	EvTyping       = "typing"
	EvMarkRead     = "mark_read"
	EvOffer        = "webrtc_offer"
	EvAnswer       = "webrtc_answer"
	EvICECandidate = "webrtc_ice_candidate"
)

// Server → client event names. The three webrtc_* names are shared in
// both directions.
const (
	EvRoomJoined      = "room_joined"
	EvRoomHistory     = "room_history"
	EvNewMessage      = "new_message"
	EvUserTyping      = "user_typing"
	EvMessagesRead    = "messages_read"
	EvSessionReminder = "session_reminder"
	EvError           = "error"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an envelope, marshaling the payload. Payloads are
// plain structs/maps; a marshal failure is a programming error and is
// reported as an empty-data envelope.
func NewEvent(event string, payload interface{}) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.GetLogger().Sugar().Errorf("realtime: failed to marshal %s payload: %v", event, err)
		return Envelope{Event: event}
	}
	return Envelope{Event: event, Data: data}
}

func errorEvent(message string) Envelope {
	return NewEvent(EvError, map[string]string{"message": message})
}

type joinPayload struct {
	RoomID string `json:"roomId"`
}

type sendMessagePayload struct {
	RoomID     string `json:"roomId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

type markReadPayload struct {
	RoomID string `json:"roomId"`
}

// signalPayload covers the three webrtc_* events; exactly one of the
// body fields is set, and the relay never inspects its contents.
type signalPayload struct {
	RoomID    string          `json:"roomId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}
