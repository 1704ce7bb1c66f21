package service

import (
	"context"
	"errors"
	"strings"

	"socialnet/backend/internal/events"
	"socialnet/backend/internal/metrics"
	"socialnet/backend/internal/models"

	"gorm.io/gorm"
)

// Messages stores direct messages. Sending requires an accepted friendship at
// send time; existing messages survive a later unfriend.
type Messages struct {
	db     *gorm.DB
	events events.Publisher
}

// NewMessages creates a Messages service.
func NewMessages(db *gorm.DB, pub events.Publisher) *Messages {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Messages{db: db, events: pub}
}

// Send stores a message from senderID to receiverID.
func (s *Messages) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if receiverID == 0 || strings.TrimSpace(content) == "" {
		return nil, validation("receiver_id and content are required")
	}

	msg := models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := areFriends(tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if !ok {
			return forbidden("you can only message your friends")
		}
		return tx.Omit("Sender", "Receiver").Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	s.events.Publish(ctx, events.New(events.MessageNew, MessagePayload{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
	}, receiverID))
	return &msg, nil
}

// ListFor returns every message userID sent or received, newest first, as a
// single feed across all correspondents.
func (s *Messages) ListFor(ctx context.Context, userID uint, page Page) ([]models.Message, error) {
	var msgs []models.Message
	err := page.apply(s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC")).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Get returns a message if actorID sent or received it.
func (s *Messages) Get(ctx context.Context, messageID, actorID uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).First(&msg, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("message not found")
	}
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID && msg.ReceiverID != actorID {
		return nil, forbidden("you are not part of this conversation")
	}
	return &msg, nil
}

// MessagePayload is the event payload for new messages.
type MessagePayload struct {
	ID         uint   `json:"id"`
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
}
