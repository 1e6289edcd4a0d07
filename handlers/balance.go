package handlers

import (
	"net/http"

	"equalpay-backend/database"
	"equalpay-backend/ledger"
	"equalpay-backend/models"
	"equalpay-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GET /api/groups/:id/balances
func GetGroupBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	var group models.Group
	database.DB.First(&group, groupID)

	balances := ledger.CalculateNetBalances(loadLedgerRecords(groupID))
	payments := ledger.SimplifyPayments(balances)

	// Attach display names; the ledger only knows ids
	names := lookupNames(balanceMemberIDs(balances))

	entries := make([]models.MemberBalanceEntry, 0, len(balances))
	for _, balance := range balances {
		entries = append(entries, models.MemberBalanceEntry{
			UserID:   balance.MemberID,
			Name:     names[balance.MemberID],
			NetMinor: balance.NetMinor,
		})
	}

	suggestions := make([]models.PaymentSuggestion, 0, len(payments))
	for _, edge := range payments {
		suggestions = append(suggestions, models.PaymentSuggestion{
			From:        edge.From,
			FromName:    names[edge.From],
			To:          edge.To,
			ToName:      names[edge.To],
			AmountMinor: edge.AmountMinor,
		})
	}

	var totalSpent int64
	database.DB.Model(&models.Expense{}).Where("group_id = ?", groupID).
		Select("COALESCE(SUM(amount_minor), 0)").Scan(&totalSpent)

	summary := models.GroupBalanceSummary{
		GroupID:         groupID,
		GroupName:       group.Name,
		Currency:        group.BaseCurrency,
		Balances:        entries,
		Payments:        suggestions,
		TotalSpentMinor: totalSpent,
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/balances — overall balances across all groups for current user
func GetOverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var user models.User
	database.DB.First(&user, userID)

	var memberships []models.GroupMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	// Aggregate suggested payments involving the current user per friend
	friendTotals := make(map[uuid.UUID]int64)
	friendOrder := []uuid.UUID{}

	record := func(friendID uuid.UUID, delta int64) {
		if _, ok := friendTotals[friendID]; !ok {
			friendOrder = append(friendOrder, friendID)
		}
		friendTotals[friendID] += delta
	}

	for _, m := range memberships {
		balances := ledger.CalculateNetBalances(loadLedgerRecords(m.GroupID))
		for _, edge := range ledger.SimplifyPayments(balances) {
			if edge.From == userID {
				record(edge.To, -edge.AmountMinor) // I owe this person
			} else if edge.To == userID {
				record(edge.From, edge.AmountMinor) // this person owes me
			}
		}
	}

	var totalOwed, totalOwing int64
	friends := make([]models.FriendBalance, 0, len(friendOrder))
	for _, friendID := range friendOrder {
		amount := friendTotals[friendID]
		if amount == 0 {
			continue
		}

		var friend models.User
		database.DB.First(&friend, friendID)

		friends = append(friends, models.FriendBalance{
			UserID:      friendID,
			Name:        friend.Name,
			Email:       friend.Email,
			AmountMinor: amount,
			Currency:    user.DefaultCurrency,
		})

		if amount > 0 {
			totalOwed += amount
		} else {
			totalOwing += -amount
		}
	}

	summary := models.OverallBalanceSummary{
		TotalOwedMinor:  totalOwed,
		TotalOwingMinor: totalOwing,
		Friends:         friends,
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// Load a group's records in the shape the ledger consumes.
func loadLedgerRecords(groupID uuid.UUID) ([]uuid.UUID, []ledger.ExpenseForBalance, []ledger.SettlementForBalance) {
	var members []models.GroupMember
	database.DB.Where("group_id = ?", groupID).Order("joined_at").Find(&members)

	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	var expenses []models.Expense
	database.DB.Where("group_id = ?", groupID).Order("created_at").Preload("Splits").Find(&expenses)

	ledgerExpenses := make([]ledger.ExpenseForBalance, 0, len(expenses))
	for _, expense := range expenses {
		shares := make([]ledger.SplitShare, 0, len(expense.Splits))
		for _, split := range expense.Splits {
			shares = append(shares, ledger.SplitShare{
				UserID:      split.UserID,
				AmountMinor: split.AmountMinor,
			})
		}
		ledgerExpenses = append(ledgerExpenses, ledger.ExpenseForBalance{
			PaidByID: expense.PaidBy,
			Splits:   shares,
		})
	}

	var settlements []models.Settlement
	database.DB.Where("group_id = ?", groupID).Order("created_at").Find(&settlements)

	ledgerSettlements := make([]ledger.SettlementForBalance, 0, len(settlements))
	for _, settlement := range settlements {
		ledgerSettlements = append(ledgerSettlements, ledger.SettlementForBalance{
			PayerID:     settlement.PaidBy,
			ReceiverID:  settlement.PaidTo,
			AmountMinor: settlement.AmountMinor,
		})
	}

	return memberIDs, ledgerExpenses, ledgerSettlements
}

func balanceMemberIDs(balances []ledger.MemberBalance) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(balances))
	for _, balance := range balances {
		ids = append(ids, balance.MemberID)
	}
	return ids
}

func lookupNames(userIDs []uuid.UUID) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return names
	}

	var users []models.User
	database.DB.Where("id IN ?", userIDs).Find(&users)
	for _, user := range users {
		names[user.ID] = user.Name
	}
	// Fall back to the raw id for users that no longer exist
	for _, id := range userIDs {
		if _, ok := names[id]; !ok {
			names[id] = id.String()
		}
	}
	return names
}
