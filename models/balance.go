package models

import "github.com/google/uuid"

// MemberBalanceEntry is one member's net position within a group.
// Positive = owed money, negative = owes money.
type MemberBalanceEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	NetMinor int64     `json:"net_minor"`
}

// PaymentSuggestion is a suggested payment that reduces From's debt
// and To's credit.
type PaymentSuggestion struct {
	From        uuid.UUID `json:"from"`
	FromName    string    `json:"from_name"`
	To          uuid.UUID `json:"to"`
	ToName      string    `json:"to_name"`
	AmountMinor int64     `json:"amount_minor"`
}

// GroupBalanceSummary is returned for GET /api/groups/:id/balances
type GroupBalanceSummary struct {
	GroupID         uuid.UUID            `json:"group_id"`
	GroupName       string               `json:"group_name"`
	Currency        string               `json:"currency"`
	Balances        []MemberBalanceEntry `json:"balances"`
	Payments        []PaymentSuggestion  `json:"payments"`
	TotalSpentMinor int64                `json:"total_spent_minor"`
}

// FriendBalance is the aggregate position with one other user across
// all shared groups.
type FriendBalance struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AmountMinor int64     `json:"amount_minor"` // positive = they owe you, negative = you owe them
	Currency    string    `json:"currency"`
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	TotalOwedMinor  int64           `json:"total_owed_minor"`  // total others owe you
	TotalOwingMinor int64           `json:"total_owing_minor"` // total you owe others
	Friends         []FriendBalance `json:"friends"`
}
