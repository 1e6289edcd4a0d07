package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type Group struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"not null;size:80" json:"name"`
	BaseCurrency  string        `gorm:"default:USD;size:3" json:"base_currency"`
	IconURL       string        `json:"icon_url,omitempty"`
	CreatedBy     uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	Creator       User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	TripStartDate *time.Time    `gorm:"type:date" json:"trip_start_date,omitempty"`
	TripEndDate   *time.Time    `gorm:"type:date" json:"trip_end_date,omitempty"`
	Members       []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type GroupMember struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     string    `gorm:"default:member;size:20" json:"role"` // owner, member
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Request structs
type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required,max=80"`
	BaseCurrency string `json:"base_currency" binding:"omitempty,len=3"`
	IconURL      string `json:"icon_url"`
}

type UpdateGroupRequest struct {
	Name          string  `json:"name" binding:"omitempty,max=80"`
	BaseCurrency  string  `json:"base_currency" binding:"omitempty,len=3"`
	IconURL       string  `json:"icon_url"`
	TripStartDate *string `json:"trip_start_date"` // YYYY-MM-DD, empty clears
	TripEndDate   *string `json:"trip_end_date"`   // YYYY-MM-DD, empty clears
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=owner member"`
}

// Response structs
type GroupResponse struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	BaseCurrency  string                `json:"base_currency"`
	IconURL       string                `json:"icon_url,omitempty"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	TripStartDate *time.Time            `json:"trip_start_date,omitempty"`
	TripEndDate   *time.Time            `json:"trip_end_date,omitempty"`
	Members       []GroupMemberResponse `json:"members"`
	CreatedAt     time.Time             `json:"created_at"`
}

type GroupMemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
