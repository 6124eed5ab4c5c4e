package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
)

// AdminHandler handles the course review workflow and platform stats.
// All routes are behind the admin role middleware.
type AdminHandler struct {
	courses *services.CourseService
	stats   *services.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(courses *services.CourseService, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{
		courses: courses,
		stats:   stats,
	}
}

// RejectCourseRequest carries the mandatory rejection reason
type RejectCourseRequest struct {
	Reason string `json:"reason"`
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrNotPending):
		return response.BadRequest(c, "Course is not pending review")
	case errors.Is(err, services.ErrMissingReason):
		return response.BadRequest(c, "Rejection reason is required")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// PendingCourses lists courses awaiting review
func (h *AdminHandler) PendingCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListPending(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, courses)
}

// AllCourses lists every course regardless of approval state
func (h *AdminHandler) AllCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListAll(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, courses)
}

// ApproveCourse transitions a pending course to approved and published
func (h *AdminHandler) ApproveCourse(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.courses.Approve(c.Context(), admin.ID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, course)
}

// RejectCourse transitions a pending course to rejected with a reason
// and notifies the instructor.
func (h *AdminHandler) RejectCourse(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req RejectCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	course, err := h.courses.Reject(c.Context(), admin.ID, uint(courseID), req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, course)
}

// PlatformStats returns the admin dashboard aggregates
func (h *AdminHandler) PlatformStats(c *fiber.Ctx) error {
	stats, err := h.stats.PlatformStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute platform stats")
	}
	return response.Success(c, stats)
}
