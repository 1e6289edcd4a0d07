package ledger

import (
	"errors"
	"testing"
)

func amounts(rows []SplitRow) []int64 {
	out := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = row.AmountMinor
	}
	return out
}

func equalInt64(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildSplits(t *testing.T) {
	tests := []struct {
		name        string
		input       SplitInput
		wantAmounts []int64
		wantErr     error
		wantSomeErr bool
	}{
		{
			name: "equal split distributes remainder in participant order",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitEqual,
				Participants: []SplitParticipant{{UserID: u1}, {UserID: u2}, {UserID: u3}},
			},
			wantAmounts: []int64{34, 33, 33},
		},
		{
			name: "equal split with no remainder",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  900,
				CurrencyCode: "USD",
				SplitType:    SplitEqual,
				Participants: []SplitParticipant{{UserID: u1}, {UserID: u2}, {UserID: u3}},
			},
			wantAmounts: []int64{300, 300, 300},
		},
		{
			name: "equal split remainder larger than one",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  1003,
				CurrencyCode: "EUR",
				SplitType:    SplitEqual,
				Participants: []SplitParticipant{{UserID: u1}, {UserID: u2}, {UserID: u3}, {UserID: u4}},
			},
			wantAmounts: []int64{251, 251, 251, 250},
		},
		{
			name: "equal split single participant",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  4200,
				CurrencyCode: "USD",
				SplitType:    SplitEqual,
				Participants: []SplitParticipant{{UserID: u1}},
			},
			wantAmounts: []int64{4200},
		},
		{
			name: "custom amounts that match the total",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitCustomAmount,
				Participants: []SplitParticipant{
					{UserID: u1, AmountMinor: 60},
					{UserID: u2, AmountMinor: 40},
				},
			},
			wantAmounts: []int64{60, 40},
		},
		{
			name: "custom amounts that do not match the total",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitCustomAmount,
				Participants: []SplitParticipant{
					{UserID: u1, AmountMinor: 60},
					{UserID: u2, AmountMinor: 10},
				},
			},
			wantErr: ErrCustomAmountMismatch,
		},
		{
			name: "percentages that do not reach 100%",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitPercentage,
				Participants: []SplitParticipant{
					{UserID: u1, PercentageBps: 4000},
					{UserID: u2, PercentageBps: 4000},
				},
			},
			wantErr: ErrPercentageMismatch,
		},
		{
			name: "last participant absorbs percentage rounding",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitPercentage,
				Participants: []SplitParticipant{
					{UserID: u1, PercentageBps: 3333},
					{UserID: u2, PercentageBps: 3333},
					{UserID: u3, PercentageBps: 3334},
				},
			},
			wantAmounts: []int64{33, 33, 34},
		},
		{
			name: "uneven percentages still sum exactly",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  999,
				CurrencyCode: "GBP",
				SplitType:    SplitPercentage,
				Participants: []SplitParticipant{
					{UserID: u1, PercentageBps: 2500},
					{UserID: u2, PercentageBps: 2500},
					{UserID: u3, PercentageBps: 5000},
				},
			},
			// floor(999*0.25)=249 twice, last takes 999-498=501
			wantAmounts: []int64{249, 249, 501},
		},
		{
			name: "unknown split type",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitType("SHARES"),
				Participants: []SplitParticipant{{UserID: u1}},
			},
			wantSomeErr: true,
		},
		{
			name: "no participants",
			input: SplitInput{
				PaidByID:     u1,
				AmountMinor:  100,
				CurrencyCode: "USD",
				SplitType:    SplitEqual,
			},
			wantSomeErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := BuildSplits(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantSomeErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := amounts(rows); !equalInt64(got, tt.wantAmounts) {
				t.Errorf("amounts = %v, want %v", got, tt.wantAmounts)
			}

			var sum int64
			for _, row := range rows {
				sum += row.AmountMinor
			}
			if sum != tt.input.AmountMinor {
				t.Errorf("splits sum to %d, want %d", sum, tt.input.AmountMinor)
			}

			for i, row := range rows {
				if row.UserID != tt.input.Participants[i].UserID {
					t.Errorf("row %d user = %s, want %s", i, row.UserID, tt.input.Participants[i].UserID)
				}
			}
		})
	}
}

func TestBuildSplitsKeepsPercentageBps(t *testing.T) {
	rows, err := BuildSplits(SplitInput{
		PaidByID:     u1,
		AmountMinor:  200,
		CurrencyCode: "USD",
		SplitType:    SplitPercentage,
		Participants: []SplitParticipant{
			{UserID: u1, PercentageBps: 7500},
			{UserID: u2, PercentageBps: 2500},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rows[0].PercentageBps != 7500 || rows[1].PercentageBps != 2500 {
		t.Errorf("bps = [%d %d], want [7500 2500]", rows[0].PercentageBps, rows[1].PercentageBps)
	}
	if rows[0].AmountMinor != 150 || rows[1].AmountMinor != 50 {
		t.Errorf("amounts = [%d %d], want [150 50]", rows[0].AmountMinor, rows[1].AmountMinor)
	}
}
