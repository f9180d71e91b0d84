package controllers

import (
	"context"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminDashboardStats serves platform-wide counters for the admin dashboard.
// The payload is cached for five minutes since the numbers are informational.
func AdminDashboardStats(c *fiber.Ctx) error {
	ctx := context.Background()
	cacheKey := "dashboard:stats"

	var cached fiber.Map
	if utils.CacheGetJSON(ctx, cacheKey, &cached) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", cached)
	}

	db := database.Database.Db

	var totalUsers, totalCourses, publishedCourses, totalEnrollments, activeEnrollments, completedEnrollments int64
	db.Model(&models.User{}).Where("is_deleted = ?", false).Count(&totalUsers)
	db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)
	db.Model(&courseModels.Course{}).Where("is_published = ? AND is_deleted = ?", true, false).Count(&publishedCourses)
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false).Count(&totalEnrollments)
	db.Model(&courseModels.Enrollment{}).Where("status IN ? AND is_deleted = ?", []string{"ENROLLED", "IN_PROGRESS"}, false).Count(&activeEnrollments)
	db.Model(&courseModels.Enrollment{}).Where("status = ? AND is_deleted = ?", "COMPLETED", false).Count(&completedEnrollments)

	var totalRevenue int64
	db.Model(&models.Payment{}).Where("status = ? AND is_deleted = ?", "PAID", false).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalRevenue)

	var pendingCertificates, pendingGrading int64
	db.Model(&courseModels.CertificateRequest{}).Where("status = ? AND is_deleted = ?", "PENDING", false).Count(&pendingCertificates)
	db.Model(&courseModels.QuizAttempt{}).Where("status = ? AND is_deleted = ?", courseModels.AttemptSubmitted, false).Count(&pendingGrading)

	var recentEnrollments []courseModels.Enrollment
	db.Where("is_deleted = ?", false).Order("created_at desc").Limit(10).Find(&recentEnrollments)

	payload := fiber.Map{
		"users": fiber.Map{
			"total": totalUsers,
		},
		"courses": fiber.Map{
			"total":     totalCourses,
			"published": publishedCourses,
		},
		"enrollments": fiber.Map{
			"total":     totalEnrollments,
			"active":    activeEnrollments,
			"completed": completedEnrollments,
			"recent":    recentEnrollments,
		},
		"revenue": fiber.Map{
			"total": totalRevenue,
		},
		"pending": fiber.Map{
			"certificate_requests": pendingCertificates,
			"quiz_grading":         pendingGrading,
		},
	}
	utils.CacheSetJSON(ctx, cacheKey, payload, 5*time.Minute)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", payload)
}
