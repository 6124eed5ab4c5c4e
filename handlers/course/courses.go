package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
	"github.com/learnhubhq/learnhub-api/utils/validation"
)

// CourseHandler handles course catalog and lifecycle requests
type CourseHandler struct {
	courses   *services.CourseService
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{
		courses:   courses,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Description  string  `json:"description" validate:"required,min=10"`
	Category     string  `json:"category" validate:"required"`
	Level        string  `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price        float64 `json:"price" validate:"gte=0"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,min=10"`
	Category     *string  `json:"category,omitempty"`
	Level        *string  `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
}

// serviceError maps service sentinel errors onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You do not have access to this course")
	case errors.Is(err, services.ErrNotPending):
		return response.BadRequest(c, "Course is not pending review")
	case errors.Is(err, services.ErrMissingReason):
		return response.BadRequest(c, "Rejection reason is required")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// ListCourses returns the public catalog: approved and published
// courses, optionally filtered by search, category and level.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	filter := services.CatalogFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Level:    c.Query("level"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
	}

	courses, total, err := h.courses.ListPublic(c.Context(), filter)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Paginated(c, courses, response.CalculatePagination(filter.Page, filter.Limit, total))
}

// GetCourse returns one course. Unapproved or unpublished courses are
// visible only to their instructor and admins; everyone else gets 404,
// not 403, so drafts don't leak their existence.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.courses.GetByID(c.Context(), uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	if !course.PubliclyVisible() {
		user, ok := middleware.GetUser(c)
		if !ok || (course.InstructorID != user.ID && !user.IsAdmin()) {
			return response.NotFound(c, "Course not found")
		}
	}

	return response.Success(c, course)
}

// CreateCourse registers a new course for the authenticated instructor
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.courses.Create(c.Context(), user.ID, services.CreateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, course)
}

// UpdateCourse applies a partial update to a course owned by the caller
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.courses.Update(c.Context(), user.ID, uint(courseID), services.UpdateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, course)
}

// DeleteCourse removes a course owned by the caller
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.courses.Delete(c.Context(), user.ID, uint(courseID)); err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, fiber.Map{
		"message": "Course deleted successfully",
	})
}

// MyCourses lists every course owned by the authenticated instructor,
// whatever its approval state.
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courses, err := h.courses.ListByInstructor(c.Context(), user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, courses)
}
