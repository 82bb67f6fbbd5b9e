package types

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are append-only; never mutated after creation.
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TripID      uuid.UUID `gorm:"type:uuid;not null;index" json:"trip_id"`
	Trip        *Trip     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Sender      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	Content     string    `gorm:"column:content;not null" json:"content"`
	MessageType string    `gorm:"column:message_type;not null;default:text" json:"message_type"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string { return "message" }
