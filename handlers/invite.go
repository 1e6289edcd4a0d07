package handlers

import (
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

// POST /api/groups/:id/invites
func CreateInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	membership, ok := getMembership(groupID, userID)
	if !ok {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	var req models.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Regular members can hand out member invites only
	if membership.Role != models.RoleOwner && req.Role == models.RoleOwner {
		utils.Forbidden(c, "Members can only create member invites")
		return
	}

	invite, link, err := services.CreateInvite(groupID, userID, strings.ToLower(req.Email), req.Role, req.ExpiresInHours)
	if err != nil {
		utils.InternalError(c, "Failed to create invite")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Invite created", models.InviteResponse{
		Invite:     *invite,
		InviteLink: link,
	})
}

// POST /api/invites/:token/accept
func AcceptInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	token := c.Param("token")

	var invite models.Invite
	if err := database.DB.Where("token = ?", token).First(&invite).Error; err != nil {
		utils.NotFound(c, "Invite not found")
		return
	}

	if invite.AcceptedAt != nil {
		utils.BadRequest(c, "Invite already used")
		return
	}
	if invite.ExpiresAt.Before(time.Now()) {
		utils.BadRequest(c, "Invite expired")
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if invite.Email != "" && !strings.EqualFold(invite.Email, user.Email) {
		utils.Forbidden(c, "This invite is for a different email")
		return
	}

	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Accepting twice in a race is harmless: membership is an upsert
		var existing models.GroupMember
		if err := tx.Where("group_id = ? AND user_id = ?", invite.GroupID, userID).First(&existing).Error; err != nil {
			if err := tx.Create(&models.GroupMember{
				GroupID: invite.GroupID,
				UserID:  userID,
				Role:    invite.Role,
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&invite).Updates(map[string]interface{}{
			"accepted_by": userID,
			"accepted_at": now,
		}).Error; err != nil {
			return err
		}

		var group models.Group
		tx.First(&group, invite.GroupID)
		return tx.Create(&models.Activity{
			GroupID:     invite.GroupID,
			UserID:      userID,
			Type:        "invite_accepted",
			ReferenceID: invite.ID,
			Description: user.Name + " joined " + group.Name,
		}).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to accept invite")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invite accepted", gin.H{"group_id": invite.GroupID})
}
