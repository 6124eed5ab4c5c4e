package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscriber records delivered events.
type fakeSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeSubscriber) Send(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeSubscriber) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	inRoom := &fakeSubscriber{}
	alsoInRoom := &fakeSubscriber{}
	elsewhere := &fakeSubscriber{}

	hub.Join(1, inRoom)
	hub.Join(1, alsoInRoom)
	hub.Join(2, elsewhere)

	hub.Broadcast(1, Event{Event: EventNewMessage, CourseID: 1})

	assert.Len(t, inRoom.received(), 1)
	assert.Len(t, alsoInRoom.received(), 1)
	assert.Empty(t, elsewhere.received())
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Join(1, sub)
	hub.Join(1, sub)
	assert.Equal(t, 1, hub.RoomSize(1))

	hub.Broadcast(1, Event{Event: EventNewMessage, CourseID: 1})
	assert.Len(t, sub.received(), 1)
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Join(1, sub)
	hub.Leave(1, sub)

	hub.Broadcast(1, Event{Event: EventNewMessage, CourseID: 1})
	assert.Empty(t, sub.received())
	assert.Zero(t, hub.RoomSize(1))

	// Leaving a room never joined is a no-op.
	hub.Leave(7, sub)
}

func TestLeaveAllDetachesEveryRoom(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	stays := &fakeSubscriber{}

	hub.Join(1, sub)
	hub.Join(2, sub)
	hub.Join(1, stays)

	hub.LeaveAll(sub)

	hub.Broadcast(1, Event{Event: EventNewMessage, CourseID: 1})
	hub.Broadcast(2, Event{Event: EventNewMessage, CourseID: 2})

	assert.Empty(t, sub.received())
	assert.Len(t, stays.received(), 1)
	assert.Equal(t, 1, hub.RoomSize(1))
	assert.Zero(t, hub.RoomSize(2))
}

func TestPublishDeliversInPersistOrder(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Join(1, sub)

	// Concurrent publishers: whatever order persistence lands in, the
	// fan-out must deliver in that same order.
	var persistMu sync.Mutex
	var persisted []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := hub.Publish(1, func() (Event, error) {
				persistMu.Lock()
				seq := len(persisted)
				persisted = append(persisted, seq)
				persistMu.Unlock()
				return Event{Event: EventNewMessage, CourseID: 1, Data: seq}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	events := sub.received()
	require.Len(t, events, 50)
	for i, event := range events {
		assert.Equal(t, i, event.Data)
	}
}

func TestPublishSkipsFanOutOnPersistError(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Join(1, sub)

	persistErr := errors.New("store rejected the message")
	err := hub.Publish(1, func() (Event, error) {
		return Event{}, persistErr
	})
	assert.ErrorIs(t, err, persistErr)
	assert.Empty(t, sub.received())
}

func TestConcurrentJoinBroadcastLeave(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &fakeSubscriber{}
			hub.Join(1, sub)
			hub.Broadcast(1, Event{Event: EventNewMessage, CourseID: 1})
			hub.LeaveAll(sub)
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.RoomSize(1))
}
