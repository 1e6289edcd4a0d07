package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SplitType selects how an expense total is divided among participants.
type SplitType string

const (
	SplitEqual        SplitType = "EQUAL"
	SplitCustomAmount SplitType = "CUSTOM_AMOUNT"
	SplitPercentage   SplitType = "PERCENTAGE"
)

// Validation failures surfaced verbatim to the caller when an expense is
// being created.
var (
	ErrCustomAmountMismatch = errors.New("custom split amounts must sum to total amount")
	ErrPercentageMismatch   = errors.New("percentage splits must sum to 100%")
)

// SplitInput is a new expense as submitted by a caller.
type SplitInput struct {
	PaidByID     uuid.UUID
	AmountMinor  int64
	CurrencyCode string
	SplitType    SplitType
	Participants []SplitParticipant
}

// SplitParticipant is one participant in a new expense. AmountMinor is
// read for CUSTOM_AMOUNT splits, PercentageBps (basis points, 10000 =
// 100%) for PERCENTAGE splits.
type SplitParticipant struct {
	UserID        uuid.UUID
	AmountMinor   int64
	PercentageBps int32
}

// SplitRow is one participant's computed share. PercentageBps is only set
// for percentage splits.
type SplitRow struct {
	UserID        uuid.UUID
	AmountMinor   int64
	PercentageBps int32
}

// BuildSplits turns an expense plus split type into per-participant owed
// amounts whose sum is exactly the expense total.
//
// EQUAL distributes the floor-division remainder one minor unit at a time
// in participant order (100 over 3 → 34, 33, 33). PERCENTAGE gives every
// participant but the last floor(amount*bps/10000) and the last whatever
// remains, so the last participant absorbs all rounding loss.
func BuildSplits(input SplitInput) ([]SplitRow, error) {
	participants := input.Participants
	if len(participants) == 0 {
		return nil, errors.New("at least one participant is required")
	}

	switch input.SplitType {
	case SplitEqual:
		base := input.AmountMinor / int64(len(participants))
		remainder := input.AmountMinor % int64(len(participants))

		rows := make([]SplitRow, 0, len(participants))
		for _, participant := range participants {
			amount := base
			if remainder > 0 {
				amount++
				remainder--
			}
			rows = append(rows, SplitRow{UserID: participant.UserID, AmountMinor: amount})
		}
		return rows, nil

	case SplitCustomAmount:
		var total int64
		for _, participant := range participants {
			total += participant.AmountMinor
		}
		if total != input.AmountMinor {
			return nil, ErrCustomAmountMismatch
		}

		rows := make([]SplitRow, 0, len(participants))
		for _, participant := range participants {
			rows = append(rows, SplitRow{UserID: participant.UserID, AmountMinor: participant.AmountMinor})
		}
		return rows, nil

	case SplitPercentage:
		var totalBps int64
		for _, participant := range participants {
			totalBps += int64(participant.PercentageBps)
		}
		if totalBps != 10000 {
			return nil, ErrPercentageMismatch
		}

		rows := make([]SplitRow, 0, len(participants))
		var assigned int64
		for index, participant := range participants {
			var amount int64
			if index == len(participants)-1 {
				amount = input.AmountMinor - assigned
			} else {
				amount = input.AmountMinor * int64(participant.PercentageBps) / 10000
			}
			assigned += amount
			rows = append(rows, SplitRow{
				UserID:        participant.UserID,
				AmountMinor:   amount,
				PercentageBps: participant.PercentageBps,
			})
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("invalid split type: %s", input.SplitType)
	}
}
