package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"equalpay-backend/database"
	"equalpay-backend/ledger"
	"equalpay-backend/models"
	"equalpay-backend/services"
	"equalpay-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// POST /api/groups/:id/expenses
func CreateExpense(c *gin.Context) {
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

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	paidBy, err := uuid.Parse(req.PaidBy)
	if err != nil {
		utils.BadRequest(c, "Invalid paid_by user ID")
		return
	}

	input, err := toSplitInput(paidBy, req.AmountMinor, req.Currency, req.SplitType, req.Participants)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Payer and every participant must be a group member
	memberIDs := append([]uuid.UUID{paidBy}, participantIDs(input.Participants)...)
	if !allMembers(groupID, memberIDs) {
		utils.BadRequest(c, "All users must be members of the group")
		return
	}

	splits, err := ledger.BuildSplits(input)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			utils.BadRequest(c, "Invalid expense_date")
			return
		}
		expenseDate = parsed
	}

	expense := models.Expense{
		GroupID:     groupID,
		PaidBy:      paidBy,
		AmountMinor: req.AmountMinor,
		Currency:    input.CurrencyCode,
		SplitType:   req.SplitType,
		Note:        req.Note,
		ExpenseDate: expenseDate,
	}

	var payer models.User
	database.DB.First(&payer, paidBy)

	// Expense, splits and activity row commit together or not at all
	var created []models.ExpenseSplit
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}

		for _, row := range splits {
			split := splitModel(expense.ID, req.SplitType, row)
			if err := tx.Create(&split).Error; err != nil {
				return err
			}
			created = append(created, split)
		}

		return tx.Create(&models.Activity{
			GroupID:     groupID,
			UserID:      userID,
			Type:        "expense_added",
			ReferenceID: expense.ID,
			Description: fmt.Sprintf("%s added an expense (%s)", payer.Name, utils.FormatMinor(expense.AmountMinor, expense.Currency)),
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to create expense")
		return
	}

	var group models.Group
	database.DB.First(&group, groupID)
	go services.GetNotificationService().NotifyExpenseAdded(expense, created, payer, group)

	response := buildExpenseResponse(expense.ID)
	utils.SuccessResponse(c, http.StatusCreated, "Expense added", response)
}

// GET /api/groups/:id/expenses
func GetGroupExpenses(c *gin.Context) {
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

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var expenses []models.Expense
	database.DB.Where("group_id = ?", groupID).
		Order("expense_date DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&expenses)

	var responses []models.ExpenseResponse
	for _, e := range expenses {
		responses = append(responses, buildExpenseResponse(e.ID))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/expenses/:id
func GetExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.GroupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", buildExpenseResponse(expenseID))
}

// DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.GroupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	var deleter models.User
	database.DB.First(&deleter, userID)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expenseID).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&expense).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			GroupID:     expense.GroupID,
			UserID:      userID,
			Type:        "expense_deleted",
			Description: fmt.Sprintf("%s deleted an expense (%s)", deleter.Name, utils.FormatMinor(expense.AmountMinor, expense.Currency)),
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to delete expense")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expense deleted", nil)
}

// DELETE /api/groups/:id/expenses/bulk
func BulkDeleteExpenses(c *gin.Context) {
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

	var req models.BulkDeleteExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expenseIDs, err := parseUUIDs(req.ExpenseIDs)
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID in list")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id IN ?", expenseIDs).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND id IN ?", groupID, expenseIDs).Delete(&models.Expense{}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to delete expenses")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expenses deleted", nil)
}

var errReplaceOriginalsMissing = errors.New("original expense record not found, refresh and try editing again")

// POST /api/groups/:id/expenses/replace
//
// Atomically swaps a set of expenses for a new set of custom-amount rows.
// Used when a client edits an itemized batch: the originals must still
// exist when the replacement lands, otherwise the whole operation rolls
// back.
func ReplaceExpenses(c *gin.Context) {
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

	var req models.ReplaceExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	replaceIDs, err := parseUUIDs(req.ReplaceExpenseIDs)
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID in list")
		return
	}

	// Validate every row up front so nothing is deleted on bad input
	type preparedRow struct {
		paidBy      uuid.UUID
		expenseDate time.Time
		currency    string
		splits      []ledger.SplitRow
	}
	prepared := make([]preparedRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		paidBy, err := uuid.Parse(row.PaidBy)
		if err != nil {
			utils.BadRequest(c, "Invalid paid_by user ID")
			return
		}

		input, err := toSplitInput(paidBy, row.AmountMinor, row.Currency, string(ledger.SplitCustomAmount), row.Participants)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}

		memberIDs := append([]uuid.UUID{paidBy}, participantIDs(input.Participants)...)
		if !allMembers(groupID, memberIDs) {
			utils.BadRequest(c, "All users must be members of the group")
			return
		}

		splits, err := ledger.BuildSplits(input)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}

		expenseDate := time.Now()
		if row.ExpenseDate != "" {
			parsed, err := time.Parse("2006-01-02", row.ExpenseDate)
			if err != nil {
				utils.BadRequest(c, "Invalid expense_date")
				return
			}
			expenseDate = parsed
		}

		prepared = append(prepared, preparedRow{
			paidBy:      paidBy,
			expenseDate: expenseDate,
			currency:    input.CurrencyCode,
			splits:      splits,
		})
	}

	var createdIDs []uuid.UUID
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var existingCount int64
		if err := tx.Model(&models.Expense{}).
			Where("group_id = ? AND id IN ?", groupID, replaceIDs).
			Count(&existingCount).Error; err != nil {
			return err
		}
		if existingCount != int64(len(replaceIDs)) {
			return errReplaceOriginalsMissing
		}

		if err := tx.Where("expense_id IN ?", replaceIDs).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ? AND id IN ?", groupID, replaceIDs).Delete(&models.Expense{}).Error; err != nil {
			return err
		}

		for i, row := range req.Rows {
			expense := models.Expense{
				GroupID:     groupID,
				PaidBy:      prepared[i].paidBy,
				AmountMinor: row.AmountMinor,
				Currency:    prepared[i].currency,
				SplitType:   string(ledger.SplitCustomAmount),
				Note:        row.Note,
				ExpenseDate: prepared[i].expenseDate,
			}
			if err := tx.Create(&expense).Error; err != nil {
				return err
			}

			for _, row := range prepared[i].splits {
				split := splitModel(expense.ID, string(ledger.SplitCustomAmount), row)
				if err := tx.Create(&split).Error; err != nil {
					return err
				}
			}

			if err := tx.Create(&models.Activity{
				GroupID:     groupID,
				UserID:      userID,
				Type:        "expense_added",
				ReferenceID: expense.ID,
				Description: fmt.Sprintf("Expense replaced (%s)", utils.FormatMinor(expense.AmountMinor, expense.Currency)),
			}).Error; err != nil {
				return err
			}

			createdIDs = append(createdIDs, expense.ID)
		}
		return nil
	})
	if err != nil {
		replaceExpensesError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expenses replaced", gin.H{"expense_ids": createdIDs})
}

// Only the missing-originals case is the caller's fault; anything else
// that escapes the transaction is a server-side failure.
func replaceExpensesError(c *gin.Context, err error) {
	if errors.Is(err, errReplaceOriginalsMissing) {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.InternalError(c, "Failed to replace expenses")
}

// splitModel builds the stored split row. PercentageBps is persisted only
// for percentage splits, so a zero-bps share stays distinguishable from a
// non-percentage split.
func splitModel(expenseID uuid.UUID, splitType string, row ledger.SplitRow) models.ExpenseSplit {
	split := models.ExpenseSplit{
		ExpenseID:   expenseID,
		UserID:      row.UserID,
		AmountMinor: row.AmountMinor,
	}
	if splitType == string(ledger.SplitPercentage) {
		bps := row.PercentageBps
		split.PercentageBps = &bps
	}
	return split
}

// Convert request participants into ledger input
func toSplitInput(paidBy uuid.UUID, amountMinor int64, currency, splitType string, participants []models.ParticipantInput) (ledger.SplitInput, error) {
	if currency == "" {
		currency = "USD"
	}

	ledgerParticipants := make([]ledger.SplitParticipant, 0, len(participants))
	for _, p := range participants {
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			return ledger.SplitInput{}, fmt.Errorf("invalid user ID: %s", p.UserID)
		}
		ledgerParticipants = append(ledgerParticipants, ledger.SplitParticipant{
			UserID:        uid,
			AmountMinor:   p.AmountMinor,
			PercentageBps: p.PercentageBps,
		})
	}

	return ledger.SplitInput{
		PaidByID:     paidBy,
		AmountMinor:  amountMinor,
		CurrencyCode: strings.ToUpper(currency),
		SplitType:    ledger.SplitType(splitType),
		Participants: ledgerParticipants,
	}, nil
}

func participantIDs(participants []ledger.SplitParticipant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Check that every id is a current member of the group
func allMembers(groupID uuid.UUID, userIDs []uuid.UUID) bool {
	unique := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		unique[id] = struct{}{}
	}
	distinct := make([]uuid.UUID, 0, len(unique))
	for id := range unique {
		distinct = append(distinct, id)
	}

	var count int64
	database.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id IN ?", groupID, distinct).
		Count(&count)
	return count == int64(len(distinct))
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Build expense response with payer name and split details
func buildExpenseResponse(expenseID uuid.UUID) models.ExpenseResponse {
	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		return models.ExpenseResponse{}
	}

	var payer models.User
	database.DB.First(&payer, expense.PaidBy)

	var dbSplits []models.ExpenseSplit
	database.DB.Where("expense_id = ?", expenseID).Find(&dbSplits)

	var splitResponses []models.SplitResponse
	for _, s := range dbSplits {
		var user models.User
		database.DB.First(&user, s.UserID)
		splitResponses = append(splitResponses, models.SplitResponse{
			UserID:        s.UserID,
			UserName:      user.Name,
			AmountMinor:   s.AmountMinor,
			PercentageBps: s.PercentageBps,
		})
	}

	return models.ExpenseResponse{
		ID:          expense.ID,
		GroupID:     expense.GroupID,
		PaidBy:      expense.PaidBy,
		PayerName:   payer.Name,
		AmountMinor: expense.AmountMinor,
		Currency:    expense.Currency,
		SplitType:   expense.SplitType,
		Note:        expense.Note,
		ExpenseDate: expense.ExpenseDate,
		Splits:      splitResponses,
		CreatedAt:   expense.CreatedAt,
	}
}
