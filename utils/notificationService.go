package utils

import (
	"lms/config"
	"lms/database"
	"lms/models"
)

// NotifyUser records an in-app notification and pushes it over the socket hub.
// It runs in the caller's goroutine; use DispatchNotification from request
// handlers so the response path never waits on it.
func NotifyUser(userID uint, notifType, title, message string) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if err := database.Database.Db.Create(&notification).Error; err != nil {
		config.Log.Errorw("Failed to store notification", "user_id", userID, "type", notifType, "error", err)
	}

	PushToUser(userID, map[string]interface{}{
		"event":   "notification",
		"type":    notifType,
		"title":   title,
		"message": message,
	})

	SendWebhookEvent(notifType, map[string]interface{}{
		"user_id": userID,
		"title":   title,
		"message": message,
	})
}

// DispatchNotification fires NotifyUser without blocking the request
func DispatchNotification(userID uint, notifType, title, message string) {
	go NotifyUser(userID, notifType, title, message)
}

// DispatchEmail fires a templated email without blocking the request
func DispatchEmail(toName, toEmail, subject, htmlBody string) {
	go func() {
		_ = SendEmail(toName, toEmail, subject, htmlBody)
	}()
}
