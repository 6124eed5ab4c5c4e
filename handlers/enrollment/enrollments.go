package enrollment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
)

// EnrollmentHandler handles course purchase and enrollment requests
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	access      *services.AccessService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService, access *services.AccessService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		access:      access,
	}
}

// EnrollRequest represents a course purchase request
type EnrollRequest struct {
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method"`
}

// UpdateEnrollmentRequest represents a partial enrollment update
type UpdateEnrollmentRequest struct {
	Status         *string    `json:"status,omitempty"`
	Progress       *int       `json:"progress,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return response.Conflict(c, "Already enrolled in this course")
	case errors.Is(err, services.ErrInvalidPayment):
		return response.BadRequest(c, "Transaction ID is required")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You do not have access to this course")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// Enroll purchases a course for the authenticated user
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.enrollments.Enroll(c.Context(), user, uint(courseID), services.PaymentDetails{
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, result)
}

// MyEnrolledCourses lists the authenticated user's enrolled courses
// with their per-course progress.
func (h *EnrollmentHandler) MyEnrolledCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courses, err := h.enrollments.ListEnrolledCourses(c.Context(), user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, courses)
}

// CourseEnrollments lists all enrollments of one course. Restricted to
// the course instructor and admins.
func (h *EnrollmentHandler) CourseEnrollments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	if !user.IsAdmin() {
		access, err := h.access.CheckCourse(c.Context(), user.ID, uint(courseID))
		if err != nil {
			return serviceError(c, err)
		}
		if !access.IsInstructor {
			return response.Forbidden(c, "Only the course instructor can view enrollments")
		}
	}

	enrollments, err := h.enrollments.ListCourseEnrollments(c.Context(), uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, enrollments)
}

// UpdateEnrollment patches the caller's own enrollment (progress,
// status, completion date).
func (h *EnrollmentHandler) UpdateEnrollment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return response.BadRequest(c, "Progress must be between 0 and 100")
	}
	if req.Status != nil {
		switch *req.Status {
		case "active", "completed", "dropped":
		default:
			return response.BadRequest(c, "Invalid enrollment status")
		}
	}

	enrollment, err := h.enrollments.UpdateEnrollment(c.Context(), uint(courseID), user.ID, services.UpdateEnrollmentInput{
		Status:         req.Status,
		Progress:       req.Progress,
		CompletionDate: req.CompletionDate,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Enrollment not found")
		}
		return serviceError(c, err)
	}

	return response.Success(c, enrollment)
}

// EnrollmentStatus reports whether the caller is enrolled in or
// teaches the course.
func (h *EnrollmentHandler) EnrollmentStatus(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	access, err := h.access.CheckCourse(c.Context(), user.ID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, access)
}
