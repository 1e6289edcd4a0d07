package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"equalpay-backend/config"
	"equalpay-backend/database"
	"equalpay-backend/models"

	"github.com/google/uuid"
)

// CreateInvite creates a token invite for a group and emails the link when
// an address is given. Expiry is capped at 168 hours (one week).
func CreateInvite(groupID, invitedBy uuid.UUID, email, role string, expiresInHours int) (*models.Invite, string, error) {
	if role == "" {
		role = models.RoleMember
	}
	if expiresInHours <= 0 {
		expiresInHours = 72
	}
	if expiresInHours > 168 {
		expiresInHours = 168
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	token := hex.EncodeToString(raw)

	invite := models.Invite{
		GroupID:   groupID,
		Token:     token,
		InvitedBy: invitedBy,
		Email:     email,
		Role:      role,
		ExpiresAt: time.Now().Add(time.Duration(expiresInHours) * time.Hour),
	}

	if err := database.DB.Create(&invite).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      invitedBy,
		Type:        "invite_created",
		ReferenceID: invite.ID,
	})

	link := fmt.Sprintf("%s/invites/%s", config.AppConfig.AppURL, token)

	if email != "" {
		var inviter models.User
		database.DB.First(&inviter, invitedBy)
		var group models.Group
		database.DB.First(&group, groupID)

		go GetNotificationService().NotifyInvitation(email, inviter.Name, group.Name, link)
	}

	log.Printf("✅ Invite created for group %s (expires %s)", groupID, invite.ExpiresAt.Format(time.RFC3339))
	return &invite, link, nil
}
