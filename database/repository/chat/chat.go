package chatRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorhub/database"
	"mentorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrRoomNotFound is returned when no chat room matches the query.
var ErrRoomNotFound = errors.New("chat room not found")

// ChatRepository defines data access for chat rooms and messages.
// Rooms are mutated only through the broker path: RecordMessage and
// ResetUnread own lastMessage/unreadCount.
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoomByID(ctx context.Context, id string) (*models.ChatRoom, error)
	GetRoomByBookingID(ctx context.Context, bookingID string) (*models.ChatRoom, error)
	RoomsByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error)
	// RecordMessage updates the room's last-message fields and
	// increments the receiver's unread counter.
	RecordMessage(ctx context.Context, roomID, body, receiverID string, at time.Time) error
	// ResetUnread zeroes the given participant's unread counter.
	ResetUnread(ctx context.Context, roomID, userID string) error

	InsertMessage(ctx context.Context, msg *models.Message) error
	// MessagesByRoom returns messages newest-first (callers reverse for
	// chronological display).
	MessagesByRoom(ctx context.Context, roomID string, limit, skip int64) ([]models.Message, error)
	// MarkMessagesRead bulk-flips isRead on unread messages addressed
	// to receiverID in the room.
	MarkMessagesRead(ctx context.Context, roomID, receiverID string) error
}

type MongoChatRepo struct {
	rooms    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoChatRepo() *MongoChatRepo {
	return &MongoChatRepo{
		rooms:    database.DB().Collection("chatrooms"),
		messages: database.DB().Collection("messages"),
	}
}

func (r *MongoChatRepo) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.rooms.InsertOne(ctx, room); err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) GetRoomByID(ctx context.Context, id string) (*models.ChatRoom, error) {
	return r.findRoom(ctx, bson.M{"id": id})
}

func (r *MongoChatRepo) GetRoomByBookingID(ctx context.Context, bookingID string) (*models.ChatRoom, error) {
	return r.findRoom(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoChatRepo) findRoom(ctx context.Context, filter bson.M) (*models.ChatRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var room models.ChatRoom
	err := r.rooms.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat room: %w", err)
	}
	return &room, nil
}

func (r *MongoChatRepo) RoomsByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"participants": userID, "isActive": true}
	opts := options.Find().SetSort(bson.D{{Key: "lastMessageTime", Value: -1}})
	cur, err := r.rooms.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	defer cur.Close(ctx)

	var rooms []models.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode chat rooms: %w", err)
	}
	return rooms, nil
}

func (r *MongoChatRepo) RecordMessage(ctx context.Context, roomID, body, receiverID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"lastMessage": body, "lastMessageTime": at},
		"$inc": bson.M{"unreadCount." + receiverID: 1},
	}
	if _, err := r.rooms.UpdateOne(ctx, bson.M{"id": roomID}, update); err != nil {
		return fmt.Errorf("failed to record message on room %s: %w", roomID, err)
	}
	return nil
}

func (r *MongoChatRepo) ResetUnread(ctx context.Context, roomID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"unreadCount." + userID: 0}}
	if _, err := r.rooms.UpdateOne(ctx, bson.M{"id": roomID}, update); err != nil {
		return fmt.Errorf("failed to reset unread count on room %s: %w", roomID, err)
	}
	return nil
}

func (r *MongoChatRepo) InsertMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) MessagesByRoom(ctx context.Context, roomID string, limit, skip int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)
	cur, err := r.messages.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

func (r *MongoChatRepo) MarkMessagesRead(ctx context.Context, roomID, receiverID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"roomId": roomID, "receiverId": receiverID, "isRead": false}
	if _, err := r.messages.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}}); err != nil {
		return fmt.Errorf("failed to mark messages read in room %s: %w", roomID, err)
	}
	return nil
}
