package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestCertificate opens a certificate request for a completed enrollment
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid course id!", nil)
	}

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "ENROLLMENT_NOT_FOUND", "Enrollment not found!", nil)
	}
	if enrollment.Status != "COMPLETED" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "COURSE_NOT_COMPLETED", "Complete the course before requesting a certificate!", fiber.Map{
			"progress": enrollment.Progress,
		})
	}

	var existing courseModels.CertificateRequest
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ? AND status <> ?",
		userID, courseID, false, "REJECTED").First(&existing).Error; err == nil {
		return middleware.ErrorResponse(c, fiber.StatusConflict, "REQUEST_EXISTS", "A certificate request already exists!", existing)
	}

	request := courseModels.CertificateRequest{
		UserID:       userID,
		CourseID:     uint(courseID),
		EnrollmentID: enrollment.ID,
		RequestedAt:  time.Now(),
	}
	if err := db.Create(&request).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create certificate request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested successfully!", request)
}

// AdminApproveCertificate issues the certificate for a pending request
func AdminApproveCertificate(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	requestID, err := c.ParamsInt("request_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid request id!", nil)
	}

	db := database.Database.Db

	var request courseModels.CertificateRequest
	if err := db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "REQUEST_NOT_FOUND", "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "REQUEST_NOT_PENDING", "Certificate request has already been processed!", nil)
	}

	now := time.Now()
	request.Status = "APPROVED"
	request.ApprovedAt = &now
	request.ApprovedBy = &user.ID

	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: uuid.NewString(),
		IssuedAt:          now,
	}

	if err := db.Save(&request).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to approve request!", nil)
	}
	if err := db.Create(&certificate).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue certificate!", nil)
	}

	utils.DispatchNotification(request.UserID, "CERTIFICATE", "Certificate issued",
		"Your course certificate is ready. Certificate number: "+certificate.CertificateNumber)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved and issued!", certificate)
}

// AdminRejectCertificate rejects a pending request with a reason
func AdminRejectCertificate(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	requestID, err := c.ParamsInt("request_id")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_ID", "Invalid request id!", nil)
	}

	reqData, ok := c.Locals("validatedRejection").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request data!", nil)
	}

	db := database.Database.Db

	var request courseModels.CertificateRequest
	if err := db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "REQUEST_NOT_FOUND", "Certificate request not found!", nil)
	}
	if request.Status != "PENDING" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "REQUEST_NOT_PENDING", "Certificate request has already been processed!", nil)
	}

	request.Status = "REJECTED"
	request.RejectionReason = reqData.Reason
	if err := db.Save(&request).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reject request!", nil)
	}

	utils.DispatchNotification(request.UserID, "CERTIFICATE", "Certificate request rejected", reqData.Reason)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
}

// AdminGetPendingCertificates lists unprocessed certificate requests
func AdminGetPendingCertificates(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized!", nil)
	}

	var requests []courseModels.CertificateRequest
	if err := database.Database.Db.
		Where("status = ? AND is_deleted = ?", "PENDING", false).
		Order("requested_at asc").Find(&requests).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending requests fetched successfully!", requests)
}
