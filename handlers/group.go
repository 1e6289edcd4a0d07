package handlers

import (
	"errors"
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
)

// POST /api/groups
func CreateGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	currency := req.BaseCurrency
	if currency == "" {
		currency = "USD"
	}

	group := models.Group{
		Name:         req.Name,
		BaseCurrency: strings.ToUpper(currency),
		IconURL:      req.IconURL,
		CreatedBy:    userID,
	}

	if err := database.DB.Create(&group).Error; err != nil {
		utils.InternalError(c, "Failed to create group")
		return
	}

	// Creator becomes the owner
	database.DB.Create(&models.GroupMember{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.RoleOwner,
	})

	// Log activity
	var creator models.User
	database.DB.First(&creator, userID)
	database.DB.Create(&models.Activity{
		GroupID:     group.ID,
		UserID:      userID,
		Type:        "group_created",
		ReferenceID: group.ID,
		Description: fmt.Sprintf("%s created group \"%s\"", creator.Name, group.Name),
	})

	response := buildGroupResponse(group.ID)
	utils.SuccessResponse(c, http.StatusCreated, "Group created", response)
}

// GET /api/groups
func GetGroups(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.GroupMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	var groupIDs []uuid.UUID
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
	}

	var groups []models.Group
	if len(groupIDs) > 0 {
		database.DB.Where("id IN ?", groupIDs).Order("created_at DESC").Find(&groups)
	}

	var responses []models.GroupResponse
	for _, g := range groups {
		responses = append(responses, buildGroupResponse(g.ID))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/groups/:id
func GetGroup(c *gin.Context) {
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

	response := buildGroupResponse(groupID)
	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// PUT /api/groups/:id
func UpdateGroup(c *gin.Context) {
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
	if membership.Role != models.RoleOwner {
		utils.Forbidden(c, "Only owners can update group settings")
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates, err := buildGroupUpdates(req)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	database.DB.Model(&models.Group{}).Where("id = ?", groupID).Updates(updates)

	response := buildGroupResponse(groupID)
	utils.SuccessResponse(c, http.StatusOK, "Group updated", response)
}

// DELETE /api/groups/:id
func DeleteGroup(c *gin.Context) {
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
	if membership.Role != models.RoleOwner {
		utils.Forbidden(c, "Only owners can delete a group")
		return
	}

	database.DB.Where("group_id = ?", groupID).Delete(&models.GroupMember{})
	database.DB.Where("group_id = ?", groupID).Delete(&models.Settlement{})
	database.DB.Where("expense_id IN (?)",
		database.DB.Model(&models.Expense{}).Select("id").Where("group_id = ?", groupID),
	).Delete(&models.ExpenseSplit{})
	database.DB.Where("group_id = ?", groupID).Delete(&models.Expense{})
	database.DB.Where("group_id = ?", groupID).Delete(&models.Activity{})
	database.DB.Where("group_id = ?", groupID).Delete(&models.Invite{})
	database.DB.Delete(&models.Group{}, groupID)

	utils.SuccessResponse(c, http.StatusOK, "Group deleted", nil)
}

// POST /api/groups/:id/members
func AddMember(c *gin.Context) {
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
	if membership.Role != models.RoleOwner {
		utils.Forbidden(c, "Only owners can add members")
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	var targetUser models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&targetUser).Error; err != nil {
		utils.NotFound(c, "No user found with that email")
		return
	}

	// Upsert: an existing membership just gets the new role
	var existing models.GroupMember
	if err := database.DB.Where("group_id = ? AND user_id = ?", groupID, targetUser.ID).First(&existing).Error; err == nil {
		database.DB.Model(&existing).Where("group_id = ? AND user_id = ?", groupID, targetUser.ID).Update("role", role)
		utils.SuccessResponse(c, http.StatusOK, "Member role updated", targetUser.ToResponse())
		return
	}

	database.DB.Create(&models.GroupMember{
		GroupID: groupID,
		UserID:  targetUser.ID,
		Role:    role,
	})

	var adder models.User
	database.DB.First(&adder, userID)
	var group models.Group
	database.DB.First(&group, groupID)

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      userID,
		Type:        "member_joined",
		Description: fmt.Sprintf("%s added %s to %s", adder.Name, targetUser.Name, group.Name),
	})

	go services.GetNotificationService().NotifyMemberAdded(group, adder, targetUser)

	utils.SuccessResponse(c, http.StatusCreated, "Member added", targetUser.ToResponse())
}

// DELETE /api/groups/:id/members/:uid
func RemoveMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	memberUID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		utils.BadRequest(c, "Invalid user ID")
		return
	}

	membership, ok := getMembership(groupID, userID)
	if !ok {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}
	if membership.Role != models.RoleOwner && userID != memberUID {
		utils.Forbidden(c, "Only owners can remove other members")
		return
	}

	var target models.GroupMember
	if err := database.DB.Where("group_id = ? AND user_id = ?", groupID, memberUID).First(&target).Error; err != nil {
		utils.NotFound(c, "Member not found")
		return
	}

	var totalMembers int64
	database.DB.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&totalMembers)
	if totalMembers <= 1 {
		utils.BadRequest(c, "Cannot remove the last member")
		return
	}

	if target.Role == models.RoleOwner {
		var ownerCount int64
		database.DB.Model(&models.GroupMember{}).Where("group_id = ? AND role = ?", groupID, models.RoleOwner).Count(&ownerCount)
		if ownerCount <= 1 {
			utils.BadRequest(c, "Cannot remove the only owner")
			return
		}
	}

	database.DB.Where("group_id = ? AND user_id = ?", groupID, memberUID).Delete(&models.GroupMember{})

	var removedUser models.User
	database.DB.First(&removedUser, memberUID)
	var group models.Group
	database.DB.First(&group, groupID)

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      userID,
		Type:        "member_left",
		Description: fmt.Sprintf("%s left %s", removedUser.Name, group.Name),
	})

	utils.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}

// Helper: turn an update request into a column map. Omitted trip dates
// are left alone; an empty string clears the stored date.
func buildGroupUpdates(req models.UpdateGroupRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.BaseCurrency != "" {
		updates["base_currency"] = strings.ToUpper(req.BaseCurrency)
	}
	if req.IconURL != "" {
		updates["icon_url"] = req.IconURL
	}

	var start, end *time.Time
	if req.TripStartDate != nil {
		if *req.TripStartDate == "" {
			updates["trip_start_date"] = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *req.TripStartDate)
			if err != nil {
				return nil, errors.New("Invalid trip_start_date")
			}
			start = &parsed
			updates["trip_start_date"] = parsed
		}
	}
	if req.TripEndDate != nil {
		if *req.TripEndDate == "" {
			updates["trip_end_date"] = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *req.TripEndDate)
			if err != nil {
				return nil, errors.New("Invalid trip_end_date")
			}
			end = &parsed
			updates["trip_end_date"] = parsed
		}
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, errors.New("Trip end date is invalid")
	}

	return updates, nil
}

// Helper: check group membership
func isMember(groupID, userID uuid.UUID) bool {
	var count int64
	database.DB.Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count)
	return count > 0
}

// Helper: fetch membership with role
func getMembership(groupID, userID uuid.UUID) (models.GroupMember, bool) {
	var membership models.GroupMember
	err := database.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&membership).Error
	return membership, err == nil
}

// Helper: build full group response with members
func buildGroupResponse(groupID uuid.UUID) models.GroupResponse {
	var group models.Group
	database.DB.First(&group, groupID)

	var members []models.GroupMember
	database.DB.Where("group_id = ?", groupID).Find(&members)

	var memberResponses []models.GroupMemberResponse
	for _, m := range members {
		var user models.User
		database.DB.First(&user, m.UserID)
		memberResponses = append(memberResponses, models.GroupMemberResponse{
			UserID:   user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}

	return models.GroupResponse{
		ID:            group.ID,
		Name:          group.Name,
		BaseCurrency:  group.BaseCurrency,
		IconURL:       group.IconURL,
		CreatedBy:     group.CreatedBy,
		TripStartDate: group.TripStartDate,
		TripEndDate:   group.TripEndDate,
		Members:       memberResponses,
		CreatedAt:     group.CreatedAt,
	}
}
