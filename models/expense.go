package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Expense struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID      `gorm:"type:uuid;index" json:"group_id"`
	Group       Group          `gorm:"foreignKey:GroupID" json:"-"`
	PaidBy      uuid.UUID      `gorm:"type:uuid" json:"paid_by"`
	Payer       User           `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
	AmountMinor int64          `gorm:"not null" json:"amount_minor"`
	Currency    string         `gorm:"default:USD;size:3" json:"currency"`
	SplitType   string         `gorm:"not null;size:20" json:"split_type"` // EQUAL, CUSTOM_AMOUNT, PERCENTAGE
	Note        string         `gorm:"size:500" json:"note,omitempty"`
	ExpenseDate time.Time      `gorm:"type:date;default:CURRENT_DATE" json:"expense_date"`
	Splits      []ExpenseSplit `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"splits,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type ExpenseSplit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseID     uuid.UUID `gorm:"type:uuid;index" json:"expense_id"`
	UserID        uuid.UUID `gorm:"type:uuid" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AmountMinor   int64     `gorm:"not null" json:"amount_minor"`
	PercentageBps *int32    `json:"percentage_bps,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (es *ExpenseSplit) BeforeCreate(tx *gorm.DB) error {
	if es.ID == uuid.Nil {
		es.ID = uuid.New()
	}
	return nil
}

// Request structs
type ParticipantInput struct {
	UserID        string `json:"user_id" binding:"required"`
	AmountMinor   int64  `json:"amount_minor" binding:"omitempty,min=0"`
	PercentageBps int32  `json:"percentage_bps" binding:"omitempty,min=0,max=10000"`
}

type CreateExpenseRequest struct {
	PaidBy       string             `json:"paid_by" binding:"required"`
	AmountMinor  int64              `json:"amount_minor" binding:"required,gt=0"`
	Currency     string             `json:"currency" binding:"omitempty,len=3"`
	SplitType    string             `json:"split_type" binding:"required,oneof=EQUAL CUSTOM_AMOUNT PERCENTAGE"`
	Note         string             `json:"note" binding:"omitempty,max=500"`
	ExpenseDate  string             `json:"expense_date"` // YYYY-MM-DD
	Participants []ParticipantInput `json:"participants" binding:"required,min=1,dive"`
}

type BulkDeleteExpensesRequest struct {
	ExpenseIDs []string `json:"expense_ids" binding:"required,min=1"`
}

type ReplaceExpenseRow struct {
	PaidBy       string             `json:"paid_by" binding:"required"`
	AmountMinor  int64              `json:"amount_minor" binding:"required,gt=0"`
	Currency     string             `json:"currency" binding:"omitempty,len=3"`
	Note         string             `json:"note" binding:"omitempty,max=500"`
	ExpenseDate  string             `json:"expense_date"`
	Participants []ParticipantInput `json:"participants" binding:"required,min=1,dive"`
}

type ReplaceExpensesRequest struct {
	ReplaceExpenseIDs []string            `json:"replace_expense_ids" binding:"required,min=1"`
	Rows              []ReplaceExpenseRow `json:"rows" binding:"required,min=1,dive"`
}

// Response
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	GroupID     uuid.UUID       `json:"group_id"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	PayerName   string          `json:"payer_name"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	SplitType   string          `json:"split_type"`
	Note        string          `json:"note,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
	Splits      []SplitResponse `json:"splits"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SplitResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	AmountMinor   int64     `json:"amount_minor"`
	PercentageBps *int32    `json:"percentage_bps,omitempty"`
}
