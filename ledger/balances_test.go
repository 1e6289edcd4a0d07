package ledger

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

var (
	u1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	u2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	u3 = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	u4 = uuid.MustParse("00000000-0000-0000-0000-000000000004")
)

func balanceSet(balances []MemberBalance) map[uuid.UUID]int64 {
	set := make(map[uuid.UUID]int64, len(balances))
	for _, b := range balances {
		set[b.MemberID] = b.NetMinor
	}
	return set
}

func TestCalculateNetBalances(t *testing.T) {
	tests := []struct {
		name        string
		memberIDs   []uuid.UUID
		expenses    []ExpenseForBalance
		settlements []SettlementForBalance
		want        map[uuid.UUID]int64
	}{
		{
			name:      "expenses and a settlement",
			memberIDs: []uuid.UUID{u1, u2, u3},
			expenses: []ExpenseForBalance{
				{
					PaidByID: u1,
					Splits: []SplitShare{
						{UserID: u1, AmountMinor: 3000},
						{UserID: u2, AmountMinor: 3000},
						{UserID: u3, AmountMinor: 3000},
					},
				},
			},
			settlements: []SettlementForBalance{
				{PayerID: u2, ReceiverID: u1, AmountMinor: 1000},
			},
			want: map[uuid.UUID]int64{u1: 5000, u2: -2000, u3: -3000},
		},
		{
			name:      "no records yields all zeros",
			memberIDs: []uuid.UUID{u1, u2},
			want:      map[uuid.UUID]int64{u1: 0, u2: 0},
		},
		{
			name:      "settlement reciprocity on otherwise empty ledger",
			memberIDs: []uuid.UUID{u1, u2},
			settlements: []SettlementForBalance{
				{PayerID: u1, ReceiverID: u2, AmountMinor: 750},
			},
			want: map[uuid.UUID]int64{u1: 750, u2: -750},
		},
		{
			name:      "historical payer not in member list is included",
			memberIDs: []uuid.UUID{u1, u2},
			expenses: []ExpenseForBalance{
				{
					PaidByID: u3,
					Splits: []SplitShare{
						{UserID: u1, AmountMinor: 500},
						{UserID: u2, AmountMinor: 500},
					},
				},
			},
			want: map[uuid.UUID]int64{u1: -500, u2: -500, u3: 1000},
		},
		{
			name:      "historical split member not in member list is included",
			memberIDs: []uuid.UUID{u1},
			expenses: []ExpenseForBalance{
				{
					PaidByID: u1,
					Splits: []SplitShare{
						{UserID: u1, AmountMinor: 200},
						{UserID: u4, AmountMinor: 300},
					},
				},
			},
			want: map[uuid.UUID]int64{u1: 300, u4: -300},
		},
		{
			name:      "payer own share cancels out",
			memberIDs: []uuid.UUID{u1, u2},
			expenses: []ExpenseForBalance{
				{
					PaidByID: u1,
					Splits: []SplitShare{
						{UserID: u1, AmountMinor: 50},
						{UserID: u2, AmountMinor: 50},
					},
				},
			},
			want: map[uuid.UUID]int64{u1: 50, u2: -50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateNetBalances(tt.memberIDs, tt.expenses, tt.settlements)

			if len(got) < len(tt.memberIDs) {
				t.Fatalf("got %d balances, want at least %d", len(got), len(tt.memberIDs))
			}
			if set := balanceSet(got); !reflect.DeepEqual(set, tt.want) {
				t.Errorf("balances = %v, want %v", set, tt.want)
			}

			var sum int64
			for _, b := range got {
				sum += b.NetMinor
			}
			if sum != 0 {
				t.Errorf("balances sum to %d, want 0", sum)
			}
		})
	}
}

func TestCalculateNetBalancesDeterministic(t *testing.T) {
	memberIDs := []uuid.UUID{u1, u2}
	expenses := []ExpenseForBalance{
		{PaidByID: u3, Splits: []SplitShare{{UserID: u1, AmountMinor: 100}, {UserID: u4, AmountMinor: 200}}},
	}
	settlements := []SettlementForBalance{{PayerID: u4, ReceiverID: u3, AmountMinor: 150}}

	first := CalculateNetBalances(memberIDs, expenses, settlements)
	for i := 0; i < 10; i++ {
		again := CalculateNetBalances(memberIDs, expenses, settlements)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}

func TestSimplifyPayments(t *testing.T) {
	tests := []struct {
		name     string
		balances []MemberBalance
		want     []PaymentEdge
	}{
		{
			name: "largest debtor pays the sole creditor first",
			balances: []MemberBalance{
				{MemberID: u1, NetMinor: 5000},
				{MemberID: u2, NetMinor: -2000},
				{MemberID: u3, NetMinor: -3000},
			},
			want: []PaymentEdge{
				{From: u3, To: u1, AmountMinor: 3000},
				{From: u2, To: u1, AmountMinor: 2000},
			},
		},
		{
			name: "all settled yields no payments",
			balances: []MemberBalance{
				{MemberID: u1, NetMinor: 0},
				{MemberID: u2, NetMinor: 0},
			},
			want: nil,
		},
		{
			name:     "empty input",
			balances: nil,
			want:     nil,
		},
		{
			name: "multiple creditors and debtors",
			balances: []MemberBalance{
				{MemberID: u1, NetMinor: 4000},
				{MemberID: u2, NetMinor: 1000},
				{MemberID: u3, NetMinor: -3500},
				{MemberID: u4, NetMinor: -1500},
			},
			want: []PaymentEdge{
				{From: u3, To: u1, AmountMinor: 3500},
				{From: u4, To: u1, AmountMinor: 500},
				{From: u4, To: u2, AmountMinor: 1000},
			},
		},
		{
			name: "ties keep input order",
			balances: []MemberBalance{
				{MemberID: u2, NetMinor: -500},
				{MemberID: u3, NetMinor: -500},
				{MemberID: u1, NetMinor: 1000},
			},
			want: []PaymentEdge{
				{From: u2, To: u1, AmountMinor: 500},
				{From: u3, To: u1, AmountMinor: 500},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyPayments(tt.balances)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("payments = %v, want %v", got, tt.want)
			}

			for _, edge := range got {
				if edge.AmountMinor <= 0 {
					t.Errorf("edge %v has non-positive amount", edge)
				}
				if edge.From == edge.To {
					t.Errorf("edge %v pays itself", edge)
				}
			}
		})
	}
}

func TestSimplifyPaymentsConservation(t *testing.T) {
	balances := []MemberBalance{
		{MemberID: u1, NetMinor: 2700},
		{MemberID: u2, NetMinor: 1300},
		{MemberID: u3, NetMinor: -900},
		{MemberID: u4, NetMinor: -3100},
	}

	inflow := make(map[uuid.UUID]int64)
	outflow := make(map[uuid.UUID]int64)
	for _, edge := range SimplifyPayments(balances) {
		inflow[edge.To] += edge.AmountMinor
		outflow[edge.From] += edge.AmountMinor
	}

	for _, balance := range balances {
		if balance.NetMinor > 0 && inflow[balance.MemberID] != balance.NetMinor {
			t.Errorf("creditor %s receives %d, want %d", balance.MemberID, inflow[balance.MemberID], balance.NetMinor)
		}
		if balance.NetMinor < 0 && outflow[balance.MemberID] != -balance.NetMinor {
			t.Errorf("debtor %s pays %d, want %d", balance.MemberID, outflow[balance.MemberID], -balance.NetMinor)
		}
	}
}

// Input that does not sum to zero is an upstream data defect; the loop
// stops when one side empties instead of inventing a counterparty.
func TestSimplifyPaymentsUnbalancedInput(t *testing.T) {
	got := SimplifyPayments([]MemberBalance{
		{MemberID: u1, NetMinor: 5000},
		{MemberID: u2, NetMinor: -2000},
	})

	want := []PaymentEdge{{From: u2, To: u1, AmountMinor: 2000}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payments = %v, want %v", got, want)
	}
}
