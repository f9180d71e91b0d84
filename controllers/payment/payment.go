package paymentController

import (
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateCheckout opens a payment for a PENDING_PAYMENT enrollment and returns
// the Snap token the client pays with. An open PENDING payment is reused so
// retrying checkout does not mint duplicate orders.
func CreateCheckout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}
	if course.Price <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "COURSE_IS_FREE", "This course does not require payment!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ENROLLMENT_NOT_FOUND", "Enroll in the course before paying!", nil)
	}
	if enrollment.Status != "PENDING_PAYMENT" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ALREADY_PAID", "This enrollment does not need payment!", nil)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	var payment models.Payment
	if err := db.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		userID, course.ID, "PENDING", false).First(&payment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout already open!", fiber.Map{
			"order_id":   payment.OrderID,
			"snap_token": payment.SnapToken,
			"amount":     payment.Amount,
		})
	}

	payment = models.Payment{
		UserID:   userID,
		CourseID: course.ID,
		OrderID:  uuid.NewString(),
		Amount:   course.Price,
	}

	token, redirectURL, err := GenerateSnapToken(payment.OrderID, payment.Amount, user.Name, user.Email)
	if err != nil {
		config.Log.Errorw("Failed to create snap transaction", "orderId", payment.OrderID, "error", err)
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "Failed to start payment!", nil)
	}
	payment.SnapToken = token

	if err := db.Create(&payment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checkout created!", fiber.Map{
		"order_id":     payment.OrderID,
		"snap_token":   payment.SnapToken,
		"redirect_url": redirectURL,
		"amount":       payment.Amount,
	})
}

// PaymentWebhook handles Midtrans payment notifications. The signature is
// sha512(order_id + status_code + gross_amount + server key); requests that
// fail the check are rejected before any state is touched. Replayed
// notifications for a settled order are acknowledged without side effects.
func PaymentWebhook(c *fiber.Ctx) error {
	var notification struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}
	if err := c.BodyParser(&notification); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid notification payload!", nil)
	}

	raw := sha512.Sum512([]byte(notification.OrderID + notification.StatusCode + notification.GrossAmount + config.AppConfig.MidtransServerKey))
	if hex.EncodeToString(raw[:]) != notification.SignatureKey {
		config.Log.Warnw("Webhook signature mismatch", "orderId", notification.OrderID)
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "INVALID_SIGNATURE", "Signature verification failed!", nil)
	}

	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("order_id = ? AND is_deleted = ?", notification.OrderID, false).First(&payment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "PAYMENT_NOT_FOUND", "Unknown order!", nil)
	}
	if payment.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification already processed!", nil)
	}

	switch notification.TransactionStatus {
	case "capture":
		if notification.FraudStatus == "accept" {
			return settlePayment(c, &payment)
		}
	case "settlement":
		return settlePayment(c, &payment)
	case "deny", "cancel":
		payment.Status = "FAILED"
	case "expire":
		payment.Status = "EXPIRED"
	default:
		// pending and unknown statuses leave the payment untouched
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification received!", nil)
	}

	if err := db.Save(&payment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification processed!", nil)
}

// settlePayment marks the payment paid and activates the enrollment
func settlePayment(c *fiber.Ctx, payment *models.Payment) error {
	db := database.Database.Db

	now := time.Now()
	payment.Status = "PAID"
	payment.PaidAt = &now
	if err := db.Save(payment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?",
		payment.UserID, payment.CourseID, false).First(&enrollment).Error; err == nil && enrollment.Status == "PENDING_PAYMENT" {
		enrollment.Status = "ENROLLED"
		if err := db.Save(&enrollment).Error; err != nil {
			config.Log.Errorw("Failed to activate enrollment after payment", "orderId", payment.OrderID, "error", err)
		}
	}

	var course courseModels.Course
	courseTitle := "your course"
	if db.Where("id = ?", payment.CourseID).First(&course).Error == nil {
		courseTitle = course.Title
	}

	utils.DispatchNotification(payment.UserID, "PAYMENT", "Payment received",
		"Your payment for \""+courseTitle+"\" was successful. You are now enrolled!")

	var user models.User
	if db.Where("id = ?", payment.UserID).First(&user).Error == nil {
		utils.DispatchEmail(user.Name, user.Email, "Payment receipt",
			"<p>Hi "+user.Name+",</p><p>We received your payment of "+strconv.FormatInt(payment.Amount, 10)+
				" for \""+courseTitle+"\" (order "+payment.OrderID+"). Happy learning!</p>")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment settled!", nil)
}

// GetMyPayments lists the student's payments, newest first
func GetMyPayments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	var payments []models.Payment
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Find(&payments).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", payments)
}
