package realtime

import "sync"

// Event is the outbound frame pushed to room subscribers.
type Event struct {
	Event    string      `json:"event"`
	CourseID uint        `json:"course_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Subscriber is one live connection attached to the hub. Send must not
// block indefinitely; slow consumers are the connection's problem, not
// the hub's.
type Subscriber interface {
	Send(event Event)
}

// Hub is the in-process room table mapping course ids to live
// subscribers. It holds no durable state: membership is re-derived from
// the store on every join, and messages are persisted before fan-out.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[Subscriber]struct{}

	pubMu    sync.Mutex
	pubLocks map[uint]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[uint]map[Subscriber]struct{}),
		pubLocks: make(map[uint]*sync.Mutex),
	}
}

// Publish runs persist under the course room's publish lock and fans
// the resulting event out before the next publisher of the same room
// may persist. Delivery order to subscribers therefore matches
// persistence order within a room; different rooms publish
// independently. A persist error is returned without any fan-out.
func (h *Hub) Publish(courseID uint, persist func() (Event, error)) error {
	lock := h.publishLock(courseID)
	lock.Lock()
	defer lock.Unlock()

	event, err := persist()
	if err != nil {
		return err
	}
	h.Broadcast(courseID, event)
	return nil
}

func (h *Hub) publishLock(courseID uint) *sync.Mutex {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	lock, ok := h.pubLocks[courseID]
	if !ok {
		lock = &sync.Mutex{}
		h.pubLocks[courseID] = lock
	}
	return lock
}

// Join adds the subscriber to a course room. Joining twice is a no-op.
func (h *Hub) Join(courseID uint, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[courseID]
	if !ok {
		room = make(map[Subscriber]struct{})
		h.rooms[courseID] = room
	}
	room[sub] = struct{}{}
}

// Leave removes the subscriber from one course room. Empty rooms are
// dropped from the table.
func (h *Hub) Leave(courseID uint, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[courseID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, courseID)
	}
}

// LeaveAll removes the subscriber from every room. Called when the
// connection closes.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for courseID, room := range h.rooms {
		delete(room, sub)
		if len(room) == 0 {
			delete(h.rooms, courseID)
		}
	}
}

// Broadcast delivers the event to every subscriber of a course room,
// including the sender's own connection.
func (h *Hub) Broadcast(courseID uint, event Event) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.rooms[courseID]))
	for sub := range h.rooms[courseID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Send(event)
	}
}

// RoomSize reports how many live subscribers a course room has.
func (h *Hub) RoomSize(courseID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[courseID])
}
