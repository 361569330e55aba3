package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AwarenessType string

const (
	AwarenessPolicy   AwarenessType = "policy"
	AwarenessHelpline AwarenessType = "helpline"
	AwarenessTip      AwarenessType = "tip"
)

func (t AwarenessType) Valid() bool {
	switch t {
	case AwarenessPolicy, AwarenessHelpline, AwarenessTip:
		return true
	}
	return false
}

// Awareness is a policy, helpline or safety tip shown in the awareness hub.
type Awareness struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	Title     string        `gorm:"not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Type      AwarenessType `gorm:"type:text;not null;default:tip" json:"type"`
	Link      string        `json:"link,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Awareness) TableName() string {
	return "awareness_items"
}

func (a *Awareness) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
