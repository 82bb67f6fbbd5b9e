package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// DisruptionEvent is the append-only audit trail: one row per accepted replan.
type DisruptionEvent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TripID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"trip_id"`
	Trip         *Trip          `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`
	EventType    string         `gorm:"column:event_type;not null" json:"event_type"`
	Description  string         `gorm:"column:description" json:"description"`
	Severity     string         `gorm:"column:severity;not null;default:low" json:"severity"`
	ReplanApplied bool          `gorm:"column:replan_applied;not null;default:false" json:"replan_applied"`
	Resolved     bool           `gorm:"column:resolved;not null;default:false" json:"resolved"`
	OldItinerary datatypes.JSON `gorm:"column:old_itinerary;type:jsonb" json:"old_itinerary,omitempty"`
	NewItinerary datatypes.JSON `gorm:"column:new_itinerary;type:jsonb" json:"new_itinerary,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (DisruptionEvent) TableName() string { return "disruption_event" }

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
