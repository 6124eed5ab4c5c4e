package rating

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
)

// RatingHandler handles course rating requests
type RatingHandler struct {
	ratings *services.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// RateRequest represents a rating submission
type RateRequest struct {
	Rating int `json:"rating"`
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "Instructors cannot rate their own course")
	case errors.Is(err, services.ErrNotEnrolled):
		return response.Forbidden(c, "Only enrolled students can rate a course")
	case errors.Is(err, services.ErrInvalidRating):
		return response.BadRequest(c, "Rating must be between 1 and 5")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// RateCourse records or replaces the caller's rating for a course and
// returns the updated aggregate.
func (h *RatingHandler) RateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req RateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	summary, err := h.ratings.Rate(c.Context(), user.ID, uint(courseID), req.Rating)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, fiber.Map{
		"rating":  req.Rating,
		"average": summary.Average,
		"count":   summary.Count,
	})
}

// MyRating returns the caller's rating for a course. An unrated course
// yields rating 0 with rated=false.
func (h *RatingHandler) MyRating(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	rating, err := h.ratings.GetUserRating(c.Context(), user.ID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	if rating == nil {
		return response.Success(c, fiber.Map{
			"rated":  false,
			"rating": 0,
		})
	}

	return response.Success(c, fiber.Map{
		"rated":  true,
		"rating": rating.Value,
	})
}

// CourseRatings lists all ratings of a course with rater profiles.
func (h *RatingHandler) CourseRatings(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	ratings, err := h.ratings.ListForCourse(c.Context(), uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, ratings)
}
