package domain

import (
	"time"
)

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// IllustrationRef names the illustration template the presentation
	// layer renders for this exercise.
	IllustrationRef string `gorm:"column:illustration_sequence;type:varchar(100)" json:"illustrationRef,omitempty"`

	// Timer marks exercises performed against a countdown rather than reps.
	Timer bool `gorm:"not null;default:false" json:"timer"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Exercise) TableName() string { return "exercises" }
