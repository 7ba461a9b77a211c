package message

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("message not found")
	ErrReceiverUnknown = errors.New("receiver not found")
)

type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Content    string     `json:"content"`
	SentAt     time.Time  `json:"sentAt"`
	IsRead     bool       `json:"isRead"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
}

type SendRequest struct {
	SenderID   string `json:"-"`
	ReceiverID string `json:"receiverId" binding:"required,uuid"`
	Content    string `json:"content" binding:"required,min=1,max=1000"`
}

func NewFromSendRequest(req SendRequest) Message {
	return Message{
		ID:         uuid.NewString(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		SentAt:     time.Now().UTC(),
	}
}
