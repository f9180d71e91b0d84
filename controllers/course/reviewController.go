package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// AddCourseReview stores one review per enrolled student and refreshes the
// course's average rating
func AddCourseReview(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	reqData, ok := c.Locals("validatedReview").(*struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "COURSE_NOT_FOUND", "Course not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ? AND status <> ?",
		userID, course.ID, false, "PENDING_PAYMENT").First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "NOT_ENROLLED", "Only enrolled students can review a course!", nil)
	}

	var existing courseModels.CourseReview
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).First(&existing).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, "REVIEW_EXISTS", "You have already reviewed this course!", nil)
	}

	review := courseModels.CourseReview{
		UserID:   userID,
		CourseID: course.ID,
		Rating:   reqData.Rating,
		Comment:  reqData.Comment,
	}
	if err := db.Create(&review).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review!", nil)
	}

	// Refresh the course rating from the aggregate
	var avg float64
	db.Model(&courseModels.CourseReview{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Select("COALESCE(AVG(rating), 0)").Scan(&avg)
	db.Model(&course).Update("rating", utils.Round2(avg))

	go utils.InvalidateCourseCache(course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review added successfully!", review)
}

// GetCourseReviews lists reviews of a course, paginated
func GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	page, limit, offset := utils.Paginate(c.QueryInt("page", 1), c.QueryInt("limit", 10))

	db := database.Database.Db

	var total int64
	db.Model(&courseModels.CourseReview{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&total)

	var reviews []courseModels.CourseReview
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews": reviews,
		"page":    page,
		"limit":   limit,
		"total":   total,
	})
}
