package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"equalpay-backend/database"
	"equalpay-backend/models"
	"equalpay-backend/services"
	"equalpay-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// POST /api/groups/:id/settlements
func CreateSettlement(c *gin.Context) {
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

	var req models.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	paidBy, paidTo, settledAt, ok := validateSettlementRequest(c, groupID, &req)
	if !ok {
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	settlement := models.Settlement{
		GroupID:     groupID,
		PaidBy:      paidBy,
		PaidTo:      paidTo,
		AmountMinor: req.AmountMinor,
		Currency:    strings.ToUpper(currency),
		SettledAt:   settledAt,
		Note:        req.Note,
	}

	var payer, payee models.User
	database.DB.First(&payer, paidBy)
	database.DB.First(&payee, paidTo)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&settlement).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			GroupID:     groupID,
			UserID:      userID,
			Type:        "settlement",
			ReferenceID: settlement.ID,
			Description: fmt.Sprintf("%s paid %s %s", payer.Name, payee.Name, utils.FormatMinor(settlement.AmountMinor, settlement.Currency)),
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to create settlement")
		return
	}

	var group models.Group
	database.DB.First(&group, groupID)
	go services.GetNotificationService().NotifySettlement(settlement, payer, payee, group)

	utils.SuccessResponse(c, http.StatusCreated, "Settlement recorded", settlement)
}

// GET /api/groups/:id/settlements
func GetGroupSettlements(c *gin.Context) {
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

	var settlements []models.Settlement
	database.DB.Where("group_id = ?", groupID).
		Preload("Payer").Preload("Payee").
		Order("settled_at DESC").
		Find(&settlements)

	utils.SuccessResponse(c, http.StatusOK, "", settlements)
}

// PUT /api/groups/:id/settlements/:sid
func UpdateSettlement(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	settlementID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		utils.BadRequest(c, "Invalid settlement ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	var settlement models.Settlement
	if err := database.DB.First(&settlement, settlementID).Error; err != nil || settlement.GroupID != groupID {
		utils.NotFound(c, "Settlement not found")
		return
	}

	var req models.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	paidBy, paidTo, settledAt, ok := validateSettlementRequest(c, groupID, &req)
	if !ok {
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = settlement.Currency
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&settlement).Updates(map[string]interface{}{
			"paid_by":      paidBy,
			"paid_to":      paidTo,
			"amount_minor": req.AmountMinor,
			"currency":     strings.ToUpper(currency),
			"settled_at":   settledAt,
			"note":         req.Note,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			GroupID:     groupID,
			UserID:      userID,
			Type:        "settlement_updated",
			ReferenceID: settlement.ID,
			Description: fmt.Sprintf("Settlement updated (%s)", utils.FormatMinor(req.AmountMinor, strings.ToUpper(currency))),
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to update settlement")
		return
	}

	database.DB.First(&settlement, settlementID)
	utils.SuccessResponse(c, http.StatusOK, "Settlement updated", settlement)
}

// DELETE /api/groups/:id/settlements/:sid
func DeleteSettlement(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	settlementID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		utils.BadRequest(c, "Invalid settlement ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	var settlement models.Settlement
	if err := database.DB.First(&settlement, settlementID).Error; err != nil || settlement.GroupID != groupID {
		utils.NotFound(c, "Settlement not found")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&settlement).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			GroupID:     groupID,
			UserID:      userID,
			Type:        "settlement_deleted",
			ReferenceID: settlementID,
			Description: fmt.Sprintf("Settlement deleted (%s)", utils.FormatMinor(settlement.AmountMinor, settlement.Currency)),
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to delete settlement")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Settlement deleted", nil)
}

// Shared validation: payer and receiver must differ, both must be group
// members, and the settled-at date must parse. Writes the error response
// itself and reports ok=false when validation fails.
func validateSettlementRequest(c *gin.Context, groupID uuid.UUID, req *models.CreateSettlementRequest) (paidBy, paidTo uuid.UUID, settledAt time.Time, ok bool) {
	paidBy, err := uuid.Parse(req.PaidBy)
	if err != nil {
		utils.BadRequest(c, "Invalid paid_by user ID")
		return
	}
	paidTo, err = uuid.Parse(req.PaidTo)
	if err != nil {
		utils.BadRequest(c, "Invalid paid_to user ID")
		return
	}

	if paidBy == paidTo {
		utils.BadRequest(c, "Payer and receiver cannot be the same user")
		return
	}

	var memberCount int64
	database.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id IN ?", groupID, []uuid.UUID{paidBy, paidTo}).
		Count(&memberCount)
	if memberCount != 2 {
		utils.BadRequest(c, "Both users must be group members")
		return
	}

	settledAt = time.Now()
	if req.SettledAt != "" {
		parsed, err := time.Parse("2006-01-02", req.SettledAt)
		if err != nil {
			utils.BadRequest(c, "Invalid settled_at date")
			return
		}
		settledAt = parsed
	}

	ok = true
	return
}
