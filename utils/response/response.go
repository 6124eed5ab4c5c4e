package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the uniform JSON envelope every endpoint replies with.
// Exactly one of Data or Error is set; Pagination only appears on
// paginated listings.
type Response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       interface{}     `json:"data,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// ErrorDetail carries the machine-readable code alongside the
// human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta describes the window a paginated listing covers.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// Success replies 200 with the given payload.
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

// Created replies 201 with the stored resource.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Resource created successfully",
		Data:    data,
	})
}

// Paginated replies 200 with a listing window and its metadata.
func Paginated(c *fiber.Ctx, data interface{}, pagination PaginationMeta) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

// Error replies with a failure envelope for the given status.
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return ErrorWithDetails(c, statusCode, message, code, "")
}

// ErrorWithDetails is Error with an extra free-form details string,
// used for validation feedback.
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message string, code string, details string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func fail(c *fiber.Ctx, statusCode int, code, message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return Error(c, statusCode, message, code)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, "BAD_REQUEST", message, "Bad request")
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message, "Unauthorized access")
}

func Forbidden(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusForbidden, "FORBIDDEN", message, "Access forbidden")
}

func NotFound(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusNotFound, "NOT_FOUND", message, "Resource not found")
}

func Conflict(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusConflict, "CONFLICT", message, "Conflict")
}

func TooManyRequests(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS", message, "Too many requests")
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, "Internal server error")
}

func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, "Service unavailable")
}

// ValidationError replies 422 with the validator's field report in the
// details slot.
func ValidationError(c *fiber.Ctx, err error) error {
	return ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
		"Validation failed", "VALIDATION_ERROR", err.Error())
}

// CalculatePagination normalizes page/limit inputs and derives the
// page count. Limits are clamped to 1..100; page floors at 1.
func CalculatePagination(page, limit int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  totalPages,
	}
}
