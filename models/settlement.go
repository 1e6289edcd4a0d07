package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Settlement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;index" json:"group_id"`
	PaidBy      uuid.UUID `gorm:"type:uuid" json:"paid_by"`
	Payer       User      `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
	PaidTo      uuid.UUID `gorm:"type:uuid" json:"paid_to"`
	Payee       User      `gorm:"foreignKey:PaidTo" json:"payee,omitempty"`
	AmountMinor int64     `gorm:"not null" json:"amount_minor"`
	Currency    string    `gorm:"default:USD;size:3" json:"currency"`
	SettledAt   time.Time `json:"settled_at"`
	Note        string    `gorm:"size:500" json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type CreateSettlementRequest struct {
	PaidBy      string `json:"paid_by" binding:"required"`
	PaidTo      string `json:"paid_to" binding:"required"`
	AmountMinor int64  `json:"amount_minor" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	SettledAt   string `json:"settled_at"` // YYYY-MM-DD
	Note        string `json:"note" binding:"omitempty,max=500"`
}
