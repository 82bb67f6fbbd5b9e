package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TripStatusPlanning  = "planning"
	TripStatusBooked    = "booked"
	TripStatusOngoing   = "ongoing"
	TripStatusCompleted = "completed"
)

type Trip struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizerID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizerID;references:ID" json:"organizer,omitempty"`
	Destination string    `gorm:"column:destination;not null" json:"destination"`
	Country     string    `gorm:"column:country" json:"country"`
	StartDate   time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate     time.Time `gorm:"column:end_date;not null" json:"end_date"`
	BudgetTotal float64   `gorm:"column:budget_total;not null;default:0" json:"budget_total"`
	Status      string    `gorm:"column:status;not null;default:planning" json:"status"`

	// ActiveItineraryID is the authoritative version pointer, swung
	// transactionally whenever a new version is promoted. Superseded versions
	// stay around for the history API.
	ActiveItineraryID *uuid.UUID `gorm:"type:uuid;column:active_itinerary_id;index" json:"active_itinerary_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trip) TableName() string { return "trip" }

const (
	TripRoleOrganizer = "organizer"
	TripRoleMember    = "member"
)

type TripMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TripID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_trip_member" json:"trip_id"`
	Trip      *Trip     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_trip_member" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role      string    `gorm:"column:role;not null;default:member" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TripMember) TableName() string { return "trip_member" }
