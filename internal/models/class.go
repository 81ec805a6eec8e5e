package models

import "time"

type StatusOverride string

const (
	OverrideAuto      StatusOverride = "auto"
	OverrideAvailable StatusOverride = "available"
	OverrideFull      StatusOverride = "full"
)

func (o StatusOverride) Valid() bool {
	switch o {
	case OverrideAuto, OverrideAvailable, OverrideFull:
		return true
	}
	return false
}

// ClassOffering is one bookable class slot. ClassID is the stable,
// human-readable slug used everywhere outside the database.
type ClassOffering struct {
	ID             uint           `gorm:"primaryKey" json:"-"`
	ClassID        string         `gorm:"column:class_id;size:50;not null;uniqueIndex" json:"class_id"`
	Title          string         `gorm:"size:100;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	Price          float64        `gorm:"type:decimal(10,2);default:0" json:"price"`
	MaxSeats       int            `gorm:"default:14" json:"max_seats"`
	StatusOverride StatusOverride `gorm:"type:varchar(20);not null;default:'auto'" json:"status_override"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (ClassOffering) TableName() string { return "classes" }
