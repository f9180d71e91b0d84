package paymentController_test

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	paymentRoutes "lms/routers/paymentRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testServerKey = "SB-test-server-key"

func setupPaymentTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:            "test-secret",
		MidtransServerKey: testServerKey,
		CacheTTL:          60,
	}
	config.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Notification{}, &models.SystemSetting{}, &models.Payment{},
		&courseModels.Course{}, &courseModels.Enrollment{},
	))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	app.Use(middleware.RequestMeta)
	paymentRoutes.SetupPaymentRoutes(app)
	return app, db
}

func seedPendingPayment(t *testing.T, db *gorm.DB) models.Payment {
	t.Helper()

	user := models.User{Name: "Student", Email: "student@test.io", Role: "STUDENT", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	course := courseModels.Course{Title: "Paid Course", Price: 150000, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	enrollment := courseModels.Enrollment{UserID: user.ID, CourseID: course.ID, Status: "PENDING_PAYMENT"}
	require.NoError(t, db.Create(&enrollment).Error)

	payment := models.Payment{UserID: user.ID, CourseID: course.ID, OrderID: "order-123", Amount: 150000}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func webhookSignature(orderID, statusCode, grossAmount string) string {
	raw := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(raw[:])
}

func postWebhook(t *testing.T, app *fiber.App, body fiber.Map) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest("POST", "/payment/webhook", &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func TestWebhookSettlementActivatesEnrollment(t *testing.T) {
	app, db := setupPaymentTest(t)
	payment := seedPendingPayment(t, db)

	status, _ := postWebhook(t, app, fiber.Map{
		"order_id":           payment.OrderID,
		"status_code":        "200",
		"gross_amount":       "150000.00",
		"signature_key":      webhookSignature(payment.OrderID, "200", "150000.00"),
		"transaction_status": "settlement",
	})
	require.Equal(t, fiber.StatusOK, status)

	var updated models.Payment
	require.NoError(t, db.Where("order_id = ?", payment.OrderID).First(&updated).Error)
	assert.Equal(t, "PAID", updated.Status)
	assert.NotNil(t, updated.PaidAt)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ?", payment.UserID).First(&enrollment).Error)
	assert.Equal(t, "ENROLLED", enrollment.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db := setupPaymentTest(t)
	payment := seedPendingPayment(t, db)

	status, envelope := postWebhook(t, app, fiber.Map{
		"order_id":           payment.OrderID,
		"status_code":        "200",
		"gross_amount":       "150000.00",
		"signature_key":      "forged",
		"transaction_status": "settlement",
	})
	require.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "INVALID_SIGNATURE", envelope["code"])

	// Nothing changed
	var updated models.Payment
	require.NoError(t, db.Where("order_id = ?", payment.OrderID).First(&updated).Error)
	assert.Equal(t, "PENDING", updated.Status)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	app, db := setupPaymentTest(t)
	payment := seedPendingPayment(t, db)

	body := fiber.Map{
		"order_id":           payment.OrderID,
		"status_code":        "200",
		"gross_amount":       "150000.00",
		"signature_key":      webhookSignature(payment.OrderID, "200", "150000.00"),
		"transaction_status": "settlement",
	}

	status, _ := postWebhook(t, app, body)
	require.Equal(t, fiber.StatusOK, status)

	var first models.Payment
	require.NoError(t, db.Where("order_id = ?", payment.OrderID).First(&first).Error)
	paidAt := first.PaidAt

	// Replay acknowledges without touching the row again
	status, _ = postWebhook(t, app, body)
	require.Equal(t, fiber.StatusOK, status)

	var second models.Payment
	require.NoError(t, db.Where("order_id = ?", payment.OrderID).First(&second).Error)
	assert.Equal(t, "PAID", second.Status)
	assert.Equal(t, paidAt, second.PaidAt)
}

func TestWebhookExpiry(t *testing.T) {
	app, db := setupPaymentTest(t)
	payment := seedPendingPayment(t, db)

	status, _ := postWebhook(t, app, fiber.Map{
		"order_id":           payment.OrderID,
		"status_code":        "407",
		"gross_amount":       "150000.00",
		"signature_key":      webhookSignature(payment.OrderID, "407", "150000.00"),
		"transaction_status": "expire",
	})
	require.Equal(t, fiber.StatusOK, status)

	var updated models.Payment
	require.NoError(t, db.Where("order_id = ?", payment.OrderID).First(&updated).Error)
	assert.Equal(t, "EXPIRED", updated.Status)

	// Enrollment stays pending
	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ?", payment.UserID).First(&enrollment).Error)
	assert.Equal(t, "PENDING_PAYMENT", enrollment.Status)
}
