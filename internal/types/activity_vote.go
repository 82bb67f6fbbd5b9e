package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ActivityVote holds at most one row per (activity, user); toggle semantics
// live in the collab service, not here.
type ActivityVote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_activity_vote" json:"activity_id"`
	Activity   *Activity `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_activity_vote" json:"user_id"`
	Vote       string    `gorm:"column:vote;not null" json:"vote"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (ActivityVote) TableName() string { return "activity_vote" }

func ValidVote(v string) bool {
	return v == VoteUp || v == VoteDown
}
