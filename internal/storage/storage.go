package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"pairchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrSelfRoom is returned when both sides of a room request are the same user.
var ErrSelfRoom = errors.New("cannot open a room with yourself")

type Storage interface {
	EnsureUser(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)

	GetOrCreateRoom(userA, userB uint) (*models.ChatRoom, error)
	LatestRoomFor(userID uint) (*models.ChatRoom, error)
	GetRoomByID(roomID uint) (*models.ChatRoom, error)

	SaveMessage(msg *models.Message) error
	RecentHistory(roomID uint, limit int) ([]models.Message, error)

	PublishEvent(roomID uint, ev models.MessageEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService Constructor
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// EnsureUser returns the user with the given username, creating the row on
// first contact.
func (s *Service) EnsureUser(username string) (*models.User, error) {
	var user models.User

	result := s.DB.Where("username = ?", username).
		FirstOrCreate(&user, models.User{Username: username})
	if result.Error != nil {
		log.Printf("ERROR: Failed to save user %q on first contact: %v", username, result.Error)
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("INFO: New user %q saved to database (id=%d).", username, user.ID)
	}
	return &user, nil
}

// GetUserByID returns the user, or nil without an error when no such row exists.
func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User

	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// canonicalPair orders a user pair deterministically, lower id first, so both
// argument orders resolve to the same room row.
func canonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreateRoom resolves the single room for an unordered pair of users,
// creating it lazily on first contact. Concurrent first contacts are settled
// by the unique index on (user1_id, user2_id): the loser of the create race
// re-fetches the winner's row.
func (s *Service) GetOrCreateRoom(userA, userB uint) (*models.ChatRoom, error) {
	if userA == userB {
		return nil, ErrSelfRoom
	}
	first, second := canonicalPair(userA, userB)

	var room models.ChatRoom
	err := s.DB.Where("user1_id = ? AND user2_id = ?", first, second).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room = models.ChatRoom{User1ID: first, User2ID: second}
	err = s.DB.Create(&room).Error
	if err == nil {
		return &room, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the first-contact race; the winner's row is the room.
		room = models.ChatRoom{}
		if err := s.DB.Where("user1_id = ? AND user2_id = ?", first, second).First(&room).Error; err != nil {
			return nil, err
		}
		return &room, nil
	}

	log.Printf("ERROR: Failed to create room for pair (%d, %d): %v", first, second, err)
	return nil, err
}

// LatestRoomFor returns the user's most recently active room, or nil without
// an error when the user has none.
func (s *Service) LatestRoomFor(userID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom

	err := s.DB.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at DESC").
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find latest room for user %d: %v", userID, err)
		return nil, err
	}
	return &room, nil
}

// GetRoomByID returns the room, or nil without an error when no such row exists.
func (s *Service) GetRoomByID(roomID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom

	err := s.DB.First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %d: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// SaveMessage appends one message and touches the room's last activity to the
// message's SentAt. Both writes commit together: the activity ordering seen by
// LatestRoomFor never reflects a message that failed to persist.
func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			log.Printf("ERROR: Failed to save message for room %d: %v", msg.RoomID, err)
			return err
		}
		return tx.Model(&models.ChatRoom{}).
			Where("id = ?", msg.RoomID).
			Update("updated_at", msg.SentAt).Error
	})
}

// RecentHistory returns up to limit of the room's newest messages, oldest
// first. The query walks newest-first to find the window, then the slice is
// flipped for delivery order.
func (s *Service) RecentHistory(roomID uint, limit int) ([]models.Message, error) {
	var messages []models.Message

	err := s.DB.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("sent_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat history for room %d: %v", roomID, err)
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PublishEvent publishes a live message event on the room's broadcast channel.
func (s *Service) PublishEvent(roomID uint, ev models.MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(s.Ctx, RoomChannel(roomID), payload).Err(); err != nil {
		log.Printf("ERROR: Failed to publish event for room %d: %v", roomID, err)
		return err
	}
	return nil
}

// SubscribeRoomEvents subscribes to every room's broadcast channel. Each
// server process runs one pattern subscription and routes locally.
func (s *Service) SubscribeRoomEvents() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, roomChannelPattern)
}
