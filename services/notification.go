package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"equalpay-backend/config"
	"equalpay-backend/database"
	"equalpay-backend/models"
	"equalpay-backend/utils"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
)

type NotificationService struct {
	messaging *messaging.Client
}

var (
	notifService *NotificationService
	notifOnce    sync.Once
)

func GetNotificationService() *NotificationService {
	notifOnce.Do(func() {
		notifService = &NotificationService{}
		notifService.initFirebase()
	})
	return notifService
}

func (ns *NotificationService) initFirebase() {
	credPath := config.AppConfig.FirebaseCredPath
	if _, err := os.Stat(credPath); err != nil {
		log.Println("⚠️  Firebase credentials not found, push notifications disabled")
		return
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credPath))
	if err != nil {
		log.Printf("⚠️  Firebase init failed, push notifications disabled: %v", err)
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("⚠️  Firebase messaging init failed, push notifications disabled: %v", err)
		return
	}

	ns.messaging = client
	log.Println("✅ Firebase messaging initialized")
}

// ============================================================
// PUSH NOTIFICATIONS via Firebase Cloud Messaging
// ============================================================

func (ns *NotificationService) sendPush(fcmToken, title, body string, data map[string]string) {
	if ns.messaging == nil || fcmToken == "" {
		return
	}

	_, err := ns.messaging.Send(context.Background(), &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		log.Printf("❌ FCM send error: %v", err)
		return
	}
}

// ============================================================
// EMAIL NOTIFICATIONS via SendGrid
// ============================================================

func (ns *NotificationService) sendEmail(toEmail, toName, subject, htmlBody string) {
	if config.AppConfig.SendGridAPIKey == "" {
		log.Printf("⚠️  SendGrid API key not set, skipping email to %s", toEmail)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("⚠️  SendGrid returned status %d for email to %s", resp.StatusCode, toEmail)
		return
	}
	log.Printf("✅ Email sent to %s", toEmail)
}

// NotifyInvitation emails a group invite link.
func (ns *NotificationService) NotifyInvitation(email, inviterName, groupName, link string) {
	subject := fmt.Sprintf("%s invited you to %s on %s", inviterName, groupName, config.AppConfig.AppName)
	body := fmt.Sprintf(
		`<p>%s invited you to the group <strong>%s</strong>.</p>
<p><a href="%s">Accept the invite</a> to start splitting expenses.</p>
<p>The link expires, so don't wait too long.</p>`,
		inviterName, groupName, link,
	)
	ns.sendEmail(email, "", subject, body)
}

// NotifyExpenseAdded pushes a summary of a new expense to everyone who owes
// a share, except the payer themselves.
func (ns *NotificationService) NotifyExpenseAdded(expense models.Expense, splits []models.ExpenseSplit, payer models.User, group models.Group) {
	for _, split := range splits {
		if split.UserID == expense.PaidBy {
			continue
		}

		var user models.User
		if err := database.DB.First(&user, split.UserID).Error; err != nil {
			continue
		}

		title := fmt.Sprintf("New expense in %s", group.Name)
		body := fmt.Sprintf("%s paid %s, your share is %s",
			payer.Name,
			utils.FormatMinor(expense.AmountMinor, expense.Currency),
			utils.FormatMinor(split.AmountMinor, expense.Currency),
		)
		ns.sendPush(user.FCMToken, title, body, map[string]string{
			"type":     "expense_added",
			"group_id": group.ID.String(),
		})
	}
}

// NotifySettlement pushes a confirmation to the member who got paid.
func (ns *NotificationService) NotifySettlement(settlement models.Settlement, payer, payee models.User, group models.Group) {
	title := fmt.Sprintf("Payment recorded in %s", group.Name)
	body := fmt.Sprintf("%s paid you %s", payer.Name, utils.FormatMinor(settlement.AmountMinor, settlement.Currency))
	ns.sendPush(payee.FCMToken, title, body, map[string]string{
		"type":     "settlement",
		"group_id": group.ID.String(),
	})
}

// NotifyMemberAdded pushes a heads-up to a user added directly to a group.
func (ns *NotificationService) NotifyMemberAdded(group models.Group, adder, target models.User) {
	title := fmt.Sprintf("Added to %s", group.Name)
	body := fmt.Sprintf("%s added you to the group %s", adder.Name, group.Name)
	ns.sendPush(target.FCMToken, title, body, map[string]string{
		"type":     "member_added",
		"group_id": group.ID.String(),
	})
}
