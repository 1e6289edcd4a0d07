package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invite struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID    uuid.UUID  `gorm:"type:uuid;index" json:"group_id"`
	Group      Group      `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Token      string     `gorm:"uniqueIndex;not null;size:64" json:"token"`
	InvitedBy  uuid.UUID  `gorm:"type:uuid" json:"invited_by"`
	Inviter    User       `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	Email      string     `gorm:"size:255" json:"email,omitempty"`
	Role       string     `gorm:"default:member;size:20" json:"role"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedBy *uuid.UUID `gorm:"type:uuid" json:"accepted_by,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type CreateInviteRequest struct {
	Email          string `json:"email" binding:"omitempty,email"`
	Role           string `json:"role" binding:"omitempty,oneof=owner member"`
	ExpiresInHours int    `json:"expires_in_hours" binding:"omitempty,min=1,max=168"`
}

type InviteResponse struct {
	Invite     Invite `json:"invite"`
	InviteLink string `json:"invite_link"`
}
