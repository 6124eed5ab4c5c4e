package realtime

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/services"
)

// Inbound frame vocabulary.
const (
	EventJoinCourse  = "join-course"
	EventSendMessage = "send-message"
	EventLeaveCourse = "leave-course"
)

// Outbound frame vocabulary.
const (
	EventJoinedCourse = "joined-course"
	EventLeftCourse   = "left-course"
	EventNewMessage   = "new-message"
	EventError        = "error"
)

// inboundFrame is what connected clients send over the socket.
type inboundFrame struct {
	Event    string `json:"event"`
	CourseID uint   `json:"course_id"`
	Text     string `json:"text"`
}

// Client is one authenticated websocket connection. It subscribes to
// course rooms through the hub and persists messages through the chat
// service before fan-out. The identity is fixed at connect time but
// room membership is re-checked against the store on every join and
// send.
type Client struct {
	conn   *websocket.Conn
	user   *model.User
	hub    *Hub
	chat   *services.ChatService
	access *services.AccessService

	writeMu sync.Mutex
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn, user *model.User, hub *Hub, chat *services.ChatService, access *services.AccessService) *Client {
	return &Client{
		conn:   conn,
		user:   user,
		hub:    hub,
		chat:   chat,
		access: access,
	}
}

// Send implements Subscriber. Writes are serialized; websocket
// connections do not allow concurrent writers.
func (c *Client) Send(event Event) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteJSON(event); err != nil {
		log.Printf("websocket write to user %d failed: %v", c.user.ID, err)
	}
}

// Run reads frames until the connection closes, then detaches the
// client from every room. Blocks for the lifetime of the connection.
func (c *Client) Run(ctx context.Context) {
	defer c.hub.LeaveAll(c)

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read from user %d failed: %v", c.user.ID, err)
			}
			return
		}

		c.handleFrame(ctx, frame)
	}
}

func (c *Client) handleFrame(ctx context.Context, frame inboundFrame) {
	switch frame.Event {
	case EventJoinCourse:
		c.handleJoin(ctx, frame.CourseID)
	case EventSendMessage:
		c.handleSend(ctx, frame.CourseID, frame.Text)
	case EventLeaveCourse:
		c.hub.Leave(frame.CourseID, c)
		c.Send(Event{Event: EventLeftCourse, CourseID: frame.CourseID})
	default:
		c.sendError(frame.CourseID, "unknown event: "+frame.Event)
	}
}

func (c *Client) handleJoin(ctx context.Context, courseID uint) {
	if _, err := c.access.RequireParticipant(ctx, c.user.ID, courseID); err != nil {
		c.sendError(courseID, joinErrorMessage(err))
		return
	}

	c.hub.Join(courseID, c)
	c.Send(Event{
		Event:    EventJoinedCourse,
		CourseID: courseID,
		Data: map[string]interface{}{
			"online": c.hub.RoomSize(courseID),
		},
	})
}

func (c *Client) handleSend(ctx context.Context, courseID uint, text string) {
	// Persist and fan out under the room's publish lock so subscribers
	// see messages in persistence order.
	err := c.hub.Publish(courseID, func() (Event, error) {
		message, err := c.chat.Post(ctx, c.user.ID, courseID, text)
		if err != nil {
			return Event{}, err
		}
		return Event{
			Event:    EventNewMessage,
			CourseID: courseID,
			Data:     message,
		}, nil
	})
	if err != nil {
		c.sendError(courseID, joinErrorMessage(err))
	}
}

func (c *Client) sendError(courseID uint, message string) {
	c.Send(Event{
		Event:    EventError,
		CourseID: courseID,
		Data:     map[string]string{"message": message},
	})
}

// joinErrorMessage maps service errors to client-facing text without
// leaking internals.
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "course not found"
	case errors.Is(err, services.ErrForbidden):
		return "you are not enrolled in this course"
	case errors.Is(err, services.ErrEmptyMessage):
		return "message text cannot be empty"
	default:
		msg := err.Error()
		if strings.Contains(msg, "failed to") {
			return "internal error"
		}
		return msg
	}
}
