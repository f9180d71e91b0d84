package adminController

import (
	"context"
	"encoding/json"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

var settingCategories = map[string]bool{
	"GENERAL":       true,
	"NOTIFICATIONS": true,
	"PAYMENTS":      true,
	"WEBHOOKS":      true,
}

// GetSettings serves the settings snapshot of one category, read through the
// cache
func GetSettings(c *fiber.Ctx) error {
	category := c.Params("category")
	if !settingCategories[category] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "Unknown settings category!", nil)
	}

	ctx := context.Background()
	cacheKey := "settings:" + category

	var cached map[string]interface{}
	if utils.CacheGetJSON(ctx, cacheKey, &cached) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully!", fiber.Map{
			"category": category,
			"value":    cached,
		})
	}

	var setting models.SystemSetting
	if err := database.Database.Db.Where("category = ? AND is_deleted = ?", category, false).First(&setting).Error; err != nil {
		// Unset categories read as an empty snapshot
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully!", fiber.Map{
			"category": category,
			"value":    fiber.Map{},
			"version":  0,
		})
	}

	var value map[string]interface{}
	if err := json.Unmarshal(setting.Value, &value); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Stored settings are corrupt!", nil)
	}
	utils.CacheSetJSON(ctx, cacheKey, value, 0)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully!", fiber.Map{
		"category": category,
		"value":    value,
		"version":  setting.Version,
	})
}

// UpdateSettings replaces the snapshot of one category, bumps its version and
// invalidates the cached copy. Last writer wins within a category.
func UpdateSettings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	category := c.Params("category")
	if !settingCategories[category] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "Unknown settings category!", nil)
	}

	reqData, ok := c.Locals("validatedSettings").(*struct {
		Value map[string]interface{} `json:"value"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	raw, err := json.Marshal(reqData.Value)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Settings value is not valid JSON!", nil)
	}

	db := database.Database.Db

	var setting models.SystemSetting
	if err := db.Where("category = ? AND is_deleted = ?", category, false).First(&setting).Error; err != nil {
		setting = models.SystemSetting{
			Category:  category,
			Value:     datatypes.JSON(raw),
			UpdatedBy: userID,
		}
		if err := db.Create(&setting).Error; err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings!", nil)
		}
	} else {
		setting.Value = datatypes.JSON(raw)
		setting.Version++
		setting.UpdatedBy = userID
		if err := db.Save(&setting).Error; err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings!", nil)
		}
	}

	utils.CacheDelete(context.Background(), "settings:"+category)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings updated successfully!", setting)
}
