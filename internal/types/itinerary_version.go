package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	VariantBudget     = "budget"
	VariantBalanced   = "balanced"
	VariantExperience = "experience"
	VariantReplanned  = "replanned"
)

type ItineraryVersion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TripID    uuid.UUID `gorm:"type:uuid;not null;index" json:"trip_id"`
	Trip      *Trip     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	// Version is informational ordering within a trip; the trip's
	// active_itinerary_id pointer decides which version is authoritative.
	Version int `gorm:"column:version;not null;default:1" json:"version"`

	// Revision is the optimistic-concurrency token. Every activity replace
	// must present the revision it read; the write is rejected when the
	// stored value has advanced.
	Revision int64 `gorm:"column:revision;not null;default:0" json:"revision"`

	VariantID     string         `gorm:"column:variant_id" json:"variant_id"`
	RegretScore   *float64       `gorm:"column:regret_score" json:"regret_score,omitempty"`
	CostBreakdown datatypes.JSON `gorm:"column:cost_breakdown;type:jsonb" json:"cost_breakdown"`
	IsPublished   bool           `gorm:"column:is_published;not null;default:false" json:"is_published"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ItineraryVersion) TableName() string { return "itinerary_version" }
