package upload

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/services/storage"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
)

// maxImageSize caps uploads at 5MB.
const maxImageSize = 5 * 1024 * 1024

// UploadHandler handles image uploads (course thumbnails, avatars)
type UploadHandler struct {
	spaces *storage.SpacesClient // nil when object storage is not configured
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(spaces *storage.SpacesClient) *UploadHandler {
	return &UploadHandler{spaces: spaces}
}

// UploadImage accepts a multipart image and stores it in Spaces,
// returning the public URL. Images only, 5MB cap.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	if _, ok := middleware.GetUserID(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if h.spaces == nil {
		return response.ServiceUnavailable(c, "File storage is not configured")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "Image file is required")
	}

	if file.Size > maxImageSize {
		return response.BadRequest(c, "Image must be smaller than 5MB")
	}

	contentType := storage.ImageContentType(file.Filename)
	if contentType == "" {
		return response.BadRequest(c, "Only JPEG, PNG, GIF and WebP images are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	key := storage.GenerateKey("images", file.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, src, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to store image")
	}

	return response.Created(c, fiber.Map{
		"url": url,
		"key": key,
	})
}
