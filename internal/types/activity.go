package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityStatusPending = "pending"
	ActivityStatusDone    = "done"
	ActivityStatusSkipped = "skipped"
)

const (
	CategoryFood          = "food"
	CategoryAttraction    = "attraction"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryAccommodation = "accommodation"
	CategoryOther         = "other"
)

type Activity struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ItineraryID uuid.UUID         `gorm:"type:uuid;not null;index" json:"itinerary_id"`
	Itinerary   *ItineraryVersion `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItineraryID;references:ID" json:"itinerary,omitempty"`

	Name         string   `gorm:"column:name;not null" json:"name"`
	Description  string   `gorm:"column:description" json:"description"`
	LocationName string   `gorm:"column:location_name" json:"location_name"`
	Lat          *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lng          *float64 `gorm:"column:lng" json:"lng,omitempty"`

	StartTime time.Time `gorm:"column:start_time;not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;not null" json:"end_time"`

	Category string  `gorm:"column:category;not null;default:other" json:"category"`
	Cost     float64 `gorm:"column:cost;not null;default:0" json:"cost"`
	Status   string  `gorm:"column:status;not null;default:pending" json:"status"`
	Notes    string  `gorm:"column:notes" json:"notes"`

	Priority       int      `gorm:"column:priority;not null;default:0" json:"priority"`
	ReviewScore    *float64 `gorm:"column:review_score" json:"review_score,omitempty"`
	EstimatedSteps int      `gorm:"column:estimated_steps;not null;default:0" json:"estimated_steps"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Activity) TableName() string { return "activity" }

func ValidCategory(c string) bool {
	switch c {
	case CategoryFood, CategoryAttraction, CategoryTransport, CategoryShopping, CategoryAccommodation, CategoryOther:
		return true
	}
	return false
}

func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusDone, ActivityStatusSkipped:
		return true
	}
	return false
}
