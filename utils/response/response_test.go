package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, handler fiber.Handler) (int, Response) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope Response
	require.NoError(t, json.Unmarshal(body, &envelope))
	return resp.StatusCode, envelope
}

func TestSuccessEnvelope(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Success(c, fiber.Map{"id": 7})
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Error)
	assert.Nil(t, envelope.Pagination)
}

func TestErrorEnvelopeCarriesCode(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return NotFound(c, "")
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "Resource not found", envelope.Error.Message)
}

func TestPaginatedEnvelope(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Paginated(c, []int{1, 2, 3}, CalculatePagination(2, 3, 7))
	})

	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.CurrentPage)
	assert.Equal(t, 3, envelope.Pagination.TotalPages)
}

func TestCalculatePaginationClampsInputs(t *testing.T) {
	meta := CalculatePagination(0, 0, 25)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, 3, meta.TotalPages)

	meta = CalculatePagination(1, 500, 25)
	assert.Equal(t, 100, meta.PerPage)
	assert.Equal(t, 1, meta.TotalPages)

	meta = CalculatePagination(1, 10, 0)
	assert.Zero(t, meta.TotalPages)
}
