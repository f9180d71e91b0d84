package notificationController

import (
	"fmt"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ListMyNotifications lists the user's notifications, unread first
func ListMyNotifications(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	page, limit, offset := utils.Paginate(c.QueryInt("page", 1), c.QueryInt("limit", 20))

	db := database.Database.Db

	var total, unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND is_deleted = ?", userID, false).Count(&total)
	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ? AND is_deleted = ?", userID, false, false).Count(&unread)

	var notifications []models.Notification
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("is_read asc, created_at desc").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch notifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", fiber.Map{
		"notifications": notifications,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
		"total":         total,
	})
}

// MarkNotificationRead marks one of the user's notifications as read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	notificationID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid notification id!", nil)
	}

	db := database.Database.Db

	var notification models.Notification
	if err := db.Where("id = ? AND user_id = ? AND is_deleted = ?", notificationID, userID, false).First(&notification).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found!", nil)
	}

	if !notification.IsRead {
		if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notification!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read!", notification)
}

// MarkAllNotificationsRead marks every unread notification of the user as read
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	result := database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_deleted = ?", userID, false, false).
		Update("is_read", true)
	if result.Error != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "All notifications marked as read!", fiber.Map{
		"updated": result.RowsAffected,
	})
}

// SocketAuthMiddleware authenticates the websocket upgrade. Browsers cannot set
// an Authorization header on a websocket handshake, so the JWT arrives as a
// query parameter instead.
func SocketAuthMiddleware(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing token!", nil)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token!", nil)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid token payload!", nil)
	}

	c.Locals("userId", uint(claims["userId"].(float64)))
	return c.Next()
}

// NotificationSocket holds the connection open and registers it with the hub
// so server-side pushes reach the user. Inbound messages are ignored; the read
// loop only detects the close.
var NotificationSocket = websocket.New(func(conn *websocket.Conn) {
	userID, ok := conn.Locals("userId").(uint)
	if !ok {
		conn.Close()
		return
	}

	utils.RegisterSocket(userID, conn)
	defer func() {
		utils.UnregisterSocket(userID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
})
