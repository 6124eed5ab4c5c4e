package chat

import (
	"context"
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/services"
	"github.com/learnhubhq/learnhub-api/services/realtime"
	"github.com/learnhubhq/learnhub-api/utils/middleware"
	"github.com/learnhubhq/learnhub-api/utils/response"
)

// ChatHandler handles course chat: REST history/posting plus the live
// websocket channel.
type ChatHandler struct {
	chat   *services.ChatService
	hub    *realtime.Hub
	access *services.AccessService
	authMW *middleware.AuthMiddleware
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService, hub *realtime.Hub, access *services.AccessService, authMW *middleware.AuthMiddleware) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		hub:    hub,
		access: access,
		authMW: authMW,
	}
}

// PostMessageRequest represents a chat message submission
type PostMessageRequest struct {
	CourseID uint   `json:"course_id"`
	Text     string `json:"text"`
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You are not enrolled in this course")
	case errors.Is(err, services.ErrEmptyMessage):
		return response.BadRequest(c, "Message text cannot be empty")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// History returns the last messages of a course room in chronological
// order. Participants only.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	messages, err := h.chat.History(c.Context(), user.ID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	return response.Success(c, messages)
}

// PostMessage stores a chat message and fans it out to live room
// subscribers. REST clients and websocket clients see the same stream.
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	// Persist and fan out under the room's publish lock so live
	// subscribers see REST-posted messages in persistence order too.
	var message *model.MessageResponse
	err := h.hub.Publish(req.CourseID, func() (realtime.Event, error) {
		posted, err := h.chat.Post(c.Context(), user.ID, req.CourseID, req.Text)
		if err != nil {
			return realtime.Event{}, err
		}
		message = posted
		return realtime.Event{
			Event:    realtime.EventNewMessage,
			CourseID: req.CourseID,
			Data:     posted,
		}, nil
	})
	if err != nil {
		return serviceError(c, err)
	}

	return response.Created(c, message)
}

// UpgradeWebsocket gates the websocket endpoint: the request must be an
// upgrade and must carry a valid access token in the "token" query
// parameter. Identity is resolved once here; room membership is still
// re-checked per join and per message.
func (h *ChatHandler) UpgradeWebsocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return response.Unauthorized(c, "Missing token")
	}

	user, _, authErr := h.authMW.ResolveToken(c, token)
	if authErr != nil {
		return response.Unauthorized(c, "Invalid or expired token")
	}

	c.Locals("ws_user", user)
	return c.Next()
}

// Websocket is the live chat connection handler. It runs the client
// read loop until the connection closes.
func (h *ChatHandler) Websocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals("ws_user").(*model.User)
		if !ok {
			conn.Close()
			return
		}

		client := realtime.NewClient(conn, user, h.hub, h.chat, h.access)
		client.Run(context.Background())
	})
}
