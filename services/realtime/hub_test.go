package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	chatRepo "mentorhub/database/repository/chat"
	mentorRepo "mentorhub/database/repository/mentor"
	"mentorhub/models"
)

type fakeRoomStore struct {
	rooms    map[string]*models.ChatRoom
	messages []models.Message

	recordCalls   int
	lastReceiver  string
	resetCalls    int
	markReadCalls int
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*models.ChatRoom)}
}

func (f *fakeRoomStore) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) GetRoomByID(ctx context.Context, id string) (*models.ChatRoom, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, chatRepo.ErrRoomNotFound
}

func (f *fakeRoomStore) GetRoomByBookingID(ctx context.Context, bookingID string) (*models.ChatRoom, error) {
	for _, r := range f.rooms {
		if r.BookingID == bookingID {
			return r, nil
		}
	}
	return nil, chatRepo.ErrRoomNotFound
}

func (f *fakeRoomStore) RoomsByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	return nil, nil
}

func (f *fakeRoomStore) RecordMessage(ctx context.Context, roomID, body, receiverID string, at time.Time) error {
	f.recordCalls++
	f.lastReceiver = receiverID
	return nil
}

func (f *fakeRoomStore) ResetUnread(ctx context.Context, roomID, userID string) error {
	f.resetCalls++
	return nil
}

func (f *fakeRoomStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeRoomStore) MessagesByRoom(ctx context.Context, roomID string, limit, skip int64) ([]models.Message, error) {
	// Newest first, like the store.
	var out []models.Message
	for i := len(f.messages) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.messages[i].RoomID == roomID {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

func (f *fakeRoomStore) MarkMessagesRead(ctx context.Context, roomID, receiverID string) error {
	f.markReadCalls++
	for i := range f.messages {
		if f.messages[i].RoomID == roomID && f.messages[i].ReceiverID == receiverID {
			f.messages[i].IsRead = true
		}
	}
	return nil
}

type fakeBookingStore struct {
	booking *models.Booking
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if f.booking != nil && f.booking.ID == id {
		return f.booking, nil
	}
	return nil, bookingRepo.ErrNotFound
}

func (f *fakeBookingStore) FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) CreateIfFree(ctx context.Context, b *models.Booking) error { return nil }

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (f *fakeBookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return nil, nil
}

type fakeMentorStore struct {
	mentor *models.Mentor
}

func (f *fakeMentorStore) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	if f.mentor != nil && f.mentor.ID == id {
		return f.mentor, nil
	}
	return nil, mentorRepo.ErrNotFound
}

func (f *fakeMentorStore) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	return nil, mentorRepo.ErrNotFound
}

func (f *fakeMentorStore) UpdateSlots(ctx context.Context, id string, slots []models.Slot) error {
	return nil
}

func (f *fakeMentorStore) SetSlotBooked(ctx context.Context, mentorID string, key mentorRepo.SlotKey, booked bool) error {
	return nil
}

// testFixture wires a hub around one paid booking whose session window
// spans the whole current day, so the gate is open during the test.
type testFixture struct {
	hub    *Hub
	store  *fakeRoomStore
	mentee *Client
	mentor *Client
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	store := newFakeRoomStore()
	b := &models.Booking{
		ID:            "b1",
		UserID:        "mentee-1",
		MentorID:      "m1",
		Date:          time.Now().Format("2006-01-02"),
		StartTime:     "00:00",
		EndTime:       "23:59",
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
	}
	store.rooms["room-1"] = &models.ChatRoom{
		ID:           "room-1",
		BookingID:    "b1",
		Participants: []string{"mentee-1", "mentor-acct-1"},
		IsActive:     true,
	}

	hub := NewHub(store, &fakeBookingStore{booking: b}, &fakeMentorStore{
		mentor: &models.Mentor{ID: "m1", Email: "mentor@example.com"},
	}, zap.NewNop())

	mentee := &Client{UserID: "mentee-1", Email: "mentee@example.com", hub: hub, send: make(chan Envelope, 32)}
	mentor := &Client{UserID: "mentor-acct-1", Email: "mentor@example.com", hub: hub, send: make(chan Envelope, 32)}
	hub.Register(mentee)
	hub.Register(mentor)

	return &testFixture{hub: hub, store: store, mentee: mentee, mentor: mentor}
}

func drain(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countEvents(evs []Envelope, name string) int {
	n := 0
	for _, ev := range evs {
		if ev.Event == name {
			n++
		}
	}
	return n
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func (f *testFixture) join(t *testing.T, c *Client) {
	t.Helper()
	f.hub.HandleEvent(context.Background(), c, Envelope{
		Event: EvJoinRoom,
		Data:  mustJSON(t, map[string]string{"roomId": "room-1"}),
	})
}

func TestJoinRoomAnnouncesNegotiationRole(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)

	wantRole := func(c *Client, want string) {
		t.Helper()
		for _, ev := range drain(c) {
			if ev.Event != EvRoomJoined {
				continue
			}
			var p struct {
				Role string `json:"role"`
			}
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				t.Fatal(err)
			}
			if p.Role != want {
				t.Errorf("role = %q, want %q", p.Role, want)
			}
			return
		}
		t.Fatal("no room_joined event delivered")
	}
	wantRole(f.mentee, "initiator")
	wantRole(f.mentor, "responder")
}

func TestJoinRoomDeliversHistoryOnce(t *testing.T) {
	f := newFixture(t)
	f.store.messages = []models.Message{
		{ID: "m1", RoomID: "room-1", SenderID: "mentor-acct-1", Body: "hello", Timestamp: time.Now().Add(-2 * time.Minute)},
		{ID: "m2", RoomID: "room-1", SenderID: "mentee-1", Body: "hi", Timestamp: time.Now().Add(-time.Minute)},
	}

	f.join(t, f.mentee)
	f.join(t, f.mentee) // idempotent re-join

	evs := drain(f.mentee)
	if got := countEvents(evs, EvRoomHistory); got != 1 {
		t.Errorf("room_history delivered %d times, want 1", got)
	}
	if got := countEvents(evs, EvRoomJoined); got != 2 {
		t.Errorf("room_joined delivered %d times, want 2", got)
	}
	if got := countEvents(evs, EvError); got != 0 {
		t.Errorf("unexpected error events: %d", got)
	}

	// History is chronological.
	for _, ev := range evs {
		if ev.Event != EvRoomHistory {
			continue
		}
		var payload struct {
			Messages []models.Message `json:"messages"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			t.Fatal(err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].ID != "m1" {
			t.Errorf("history not ascending: %+v", payload.Messages)
		}
	}
}

func TestJoinRoomDeniedWhenUnpaid(t *testing.T) {
	f := newFixture(t)
	b, _ := f.hub.Bookings.GetByID(context.Background(), "b1")
	b.PaymentStatus = models.PaymentStatusPending

	f.join(t, f.mentee)

	evs := drain(f.mentee)
	if countEvents(evs, EvRoomJoined) != 0 {
		t.Error("unpaid booking must not be joinable")
	}
	if countEvents(evs, EvError) != 1 {
		t.Errorf("expected one error event, got %d", countEvents(evs, EvError))
	}
}

func TestJoinRoomDeniedForStranger(t *testing.T) {
	f := newFixture(t)
	stranger := &Client{UserID: "intruder", Email: "intruder@example.com", hub: f.hub, send: make(chan Envelope, 8)}
	f.hub.Register(stranger)

	f.join(t, stranger)

	evs := drain(stranger)
	if countEvents(evs, EvRoomJoined) != 0 {
		t.Error("stranger must not join the room")
	}
	if countEvents(evs, EvError) != 1 {
		t.Errorf("expected one error event, got %d", countEvents(evs, EvError))
	}
}

func TestSendMessagePersistsOnceAndFansOut(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvSendMessage,
		Data: mustJSON(t, map[string]string{
			"roomId":     "room-1",
			"receiverId": "mentor-acct-1",
			"message":    "see you at ten",
		}),
	})

	if len(f.store.messages) != 1 {
		t.Fatalf("message persisted %d times, want 1", len(f.store.messages))
	}
	if f.store.recordCalls != 1 || f.store.lastReceiver != "mentor-acct-1" {
		t.Errorf("room summary update: calls=%d receiver=%q", f.store.recordCalls, f.store.lastReceiver)
	}

	// Both sides receive the event, including the sender.
	if countEvents(drain(f.mentee), EvNewMessage) != 1 {
		t.Error("sender did not receive new_message echo")
	}
	if countEvents(drain(f.mentor), EvNewMessage) != 1 {
		t.Error("receiver did not receive new_message")
	}
}

func TestSendMessageOfflineReceiverStillPersisted(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	drain(f.mentee)

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvSendMessage,
		Data: mustJSON(t, map[string]string{
			"roomId":     "room-1",
			"receiverId": "mentor-acct-1",
			"message":    "are you there?",
		}),
	})

	if len(f.store.messages) != 1 {
		t.Fatalf("message persisted %d times, want 1", len(f.store.messages))
	}
	if f.store.lastReceiver != "mentor-acct-1" {
		t.Error("unread must still be recorded for the offline receiver")
	}
}

func TestSendMessageRequiresMembership(t *testing.T) {
	f := newFixture(t)
	// Participant, but has not joined on this connection.
	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvSendMessage,
		Data: mustJSON(t, map[string]string{
			"roomId":     "room-1",
			"receiverId": "mentor-acct-1",
			"message":    "hello",
		}),
	})

	if len(f.store.messages) != 0 {
		t.Error("message from a non-joined connection must not be persisted")
	}
	if countEvents(drain(f.mentee), EvError) != 1 {
		t.Error("expected an error event")
	}
}

func TestSendMessageGateRecheckedPerSend(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	drain(f.mentee)

	// The session ends between sends.
	b, _ := f.hub.Bookings.GetByID(context.Background(), "b1")
	b.Date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvSendMessage,
		Data: mustJSON(t, map[string]string{
			"roomId":     "room-1",
			"receiverId": "mentor-acct-1",
			"message":    "too late",
		}),
	})

	if len(f.store.messages) != 0 {
		t.Error("message after session end must not be persisted")
	}
	evs := drain(f.mentee)
	if countEvents(evs, EvError) != 1 {
		t.Fatalf("expected one error event, got %d", countEvents(evs, EvError))
	}
}

func TestTypingExcludesSender(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvTyping,
		Data:  mustJSON(t, map[string]interface{}{"roomId": "room-1", "isTyping": true}),
	})

	if countEvents(drain(f.mentee), EvUserTyping) != 0 {
		t.Error("typing echoed back to sender")
	}
	if countEvents(drain(f.mentor), EvUserTyping) != 1 {
		t.Error("typing not relayed to the other member")
	}
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	f.store.messages = []models.Message{
		{ID: "m1", RoomID: "room-1", SenderID: "mentor-acct-1", ReceiverID: "mentee-1", Body: "ping"},
	}
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{
		Event: EvMarkRead,
		Data:  mustJSON(t, map[string]string{"roomId": "room-1"}),
	})

	if f.store.markReadCalls != 1 || f.store.resetCalls != 1 {
		t.Errorf("markRead=%d reset=%d, want 1 and 1", f.store.markReadCalls, f.store.resetCalls)
	}
	if !f.store.messages[0].IsRead {
		t.Error("message not flipped to read")
	}
	if countEvents(drain(f.mentor), EvMessagesRead) != 1 {
		t.Error("other member not told about the read")
	}
	if countEvents(drain(f.mentee), EvMessagesRead) != 0 {
		t.Error("reader needs no messages_read echo")
	}
}

func TestUnregisterCleansUp(t *testing.T) {
	f := newFixture(t)
	f.join(t, f.mentee)
	f.join(t, f.mentor)
	drain(f.mentee)
	drain(f.mentor)

	f.hub.Unregister(f.mentee)

	// Events no longer reach the departed client.
	f.hub.HandleEvent(context.Background(), f.mentor, Envelope{
		Event: EvSendMessage,
		Data: mustJSON(t, map[string]string{
			"roomId":     "room-1",
			"receiverId": "mentee-1",
			"message":    "gone?",
		}),
	})
	if len(f.store.messages) != 1 {
		t.Error("message from the remaining member must persist")
	}

	f.hub.NotifyUser("mentee-1", NewEvent(EvSessionReminder, nil))
	select {
	case _, ok := <-f.mentee.send:
		if ok {
			t.Error("unregistered client received an event")
		}
	default:
		t.Error("send channel should be closed after unregister")
	}
}

func TestNotifyUserReachesAllConnections(t *testing.T) {
	f := newFixture(t)
	second := &Client{UserID: "mentee-1", Email: "mentee@example.com", hub: f.hub, send: make(chan Envelope, 8)}
	f.hub.Register(second)

	f.hub.NotifyUser("mentee-1", NewEvent(EvSessionReminder, map[string]string{"bookingId": "b1"}))

	if countEvents(drain(f.mentee), EvSessionReminder) != 1 {
		t.Error("first connection missed the notification")
	}
	if countEvents(drain(second), EvSessionReminder) != 1 {
		t.Error("second connection missed the notification")
	}
}

func TestUnknownEvent(t *testing.T) {
	f := newFixture(t)
	f.hub.HandleEvent(context.Background(), f.mentee, Envelope{Event: "dance"})
	if countEvents(drain(f.mentee), EvError) != 1 {
		t.Error("unknown event must answer with an error event")
	}
}
