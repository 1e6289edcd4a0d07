// Package ledger holds the pure balance and split arithmetic for shared
// expenses. All amounts are integers in minor currency units (cents);
// floating point is never used, so splits always sum exactly to totals and
// repeated runs over the same records give identical results.
package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// ExpenseForBalance is an expense reduced to what balance computation needs.
type ExpenseForBalance struct {
	PaidByID uuid.UUID
	Splits   []SplitShare
}

// SplitShare is one member's owed share of a single expense.
type SplitShare struct {
	UserID      uuid.UUID
	AmountMinor int64
}

// SettlementForBalance is a direct transfer already made between two
// members: the payer gave money to the receiver.
type SettlementForBalance struct {
	PayerID     uuid.UUID
	ReceiverID  uuid.UUID
	AmountMinor int64
}

// MemberBalance is a member's net position. Positive = owed money,
// negative = owes money, zero = settled.
type MemberBalance struct {
	MemberID uuid.UUID
	NetMinor int64
}

// PaymentEdge is a suggested payment that reduces From's debt and To's
// credit.
type PaymentEdge struct {
	From        uuid.UUID
	To          uuid.UUID
	AmountMinor int64
}

// CalculateNetBalances folds expenses and settlements into one net balance
// per member. Members appearing only in historical records (e.g. someone
// who left the group) are added lazily, so the result can be longer than
// memberIDs. Under correct input the returned balances sum to zero.
//
// The result lists caller-supplied ids first, then historical ids in order
// of first encounter. That ordering is not a contract; callers should
// treat the result as a set.
func CalculateNetBalances(memberIDs []uuid.UUID, expenses []ExpenseForBalance, settlements []SettlementForBalance) []MemberBalance {
	net := make(map[uuid.UUID]int64, len(memberIDs))
	order := make([]uuid.UUID, 0, len(memberIDs))

	add := func(id uuid.UUID, delta int64) {
		if _, ok := net[id]; !ok {
			order = append(order, id)
		}
		net[id] += delta
	}

	for _, id := range memberIDs {
		add(id, 0)
	}

	for _, expense := range expenses {
		for _, split := range expense.Splits {
			add(split.UserID, -split.AmountMinor)
			add(expense.PaidByID, split.AmountMinor)
		}
	}

	for _, settlement := range settlements {
		add(settlement.PayerID, settlement.AmountMinor)
		add(settlement.ReceiverID, -settlement.AmountMinor)
	}

	balances := make([]MemberBalance, 0, len(order))
	for _, id := range order {
		balances = append(balances, MemberBalance{MemberID: id, NetMinor: net[id]})
	}
	return balances
}

// SimplifyPayments collapses net balances into at most
// len(non-zero balances) - 1 payment instructions using greedy
// largest-creditor/largest-debtor matching. The greedy result is not always
// the theoretical minimum edge count, but it is fast and deterministic and
// its exact output is what callers depend on.
//
// Every emitted edge has a strictly positive amount and zero-balance
// members never appear. If the input does not sum to zero (a data defect
// upstream), the loop stops when either side empties and the residual is
// simply not represented.
func SimplifyPayments(balances []MemberBalance) []PaymentEdge {
	var creditors, debtors []MemberBalance
	for _, balance := range balances {
		switch {
		case balance.NetMinor > 0:
			creditors = append(creditors, balance)
		case balance.NetMinor < 0:
			debtors = append(debtors, MemberBalance{MemberID: balance.MemberID, NetMinor: -balance.NetMinor})
		}
	}

	// Stable sort keeps ties in input order for reproducibility.
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].NetMinor > creditors[j].NetMinor
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetMinor > debtors[j].NetMinor
	})

	var edges []PaymentEdge
	i, j := 0, 0

	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.NetMinor
		if creditor.NetMinor < amount {
			amount = creditor.NetMinor
		}

		edges = append(edges, PaymentEdge{
			From:        debtor.MemberID,
			To:          creditor.MemberID,
			AmountMinor: amount,
		})

		debtor.NetMinor -= amount
		creditor.NetMinor -= amount

		if debtor.NetMinor == 0 {
			i++
		}
		if creditor.NetMinor == 0 {
			j++
		}
	}

	return edges
}
