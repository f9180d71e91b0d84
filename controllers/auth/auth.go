package authController

import (
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Signup registers a new user. Role defaults to STUDENT; admins are promoted
// out of band.
func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*models.User)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&models.User{}).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, "EMAIL_TAKEN", "Email is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		config.Log.Errorw("Failed to hash password", "error", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Password: string(hashedPassword),
		Role:     "STUDENT",
	}

	if err := db.Create(&newUser).Error; err != nil {
		config.Log.Errorw("Failed to create user", "email", reqData.Email, "error", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign up user!", nil)
	}

	utils.DispatchEmail(newUser.Name, newUser.Email, "Welcome to LearnSphere",
		"<p>Hi "+newUser.Name+",</p><p>Your LearnSphere account is ready. Browse the catalog and enroll in your first course!</p>")

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Signup successful!", newUser)
}

// Login verifies credentials and returns a JWT
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password!", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		config.Log.Errorw("Failed to sign JWT", "user_id", user.ID, "error", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	db.Save(&user)

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GetProfile returns the authenticated user
func GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}
