package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type sent struct {
	Event   core.EventName
	Payload any
}

type fakeConn struct {
	id domain.ConnectionID

	mu     sync.Mutex
	events []sent
	closed bool
	err    error
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: domain.ConnectionID(id)} }

func (c *fakeConn) ID() domain.ConnectionID { return c.id }

func (c *fakeConn) Send(event core.EventName, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, sent{Event: event, Payload: payload})
	return nil
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) received() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

type fakeFabric struct {
	mu     sync.Mutex
	groups map[domain.RoomName]map[domain.ConnectionID]struct{}
}

func newFakeFabric() *fakeFabric {
	return &fakeFabric{groups: make(map[domain.RoomName]map[domain.ConnectionID]struct{})}
}

func (f *fakeFabric) JoinGroup(room domain.RoomName, id domain.ConnectionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups[room] == nil {
		f.groups[room] = make(map[domain.ConnectionID]struct{})
	}
	f.groups[room][id] = struct{}{}
}

// LeaveGroup keeps the empty group around, like a lagging transport would.
func (f *fakeFabric) LeaveGroup(room domain.RoomName, id domain.ConnectionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups[room], id)
}

func (f *fakeFabric) DeleteGroup(room domain.RoomName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups, room)
}

func (f *fakeFabric) Groups() []domain.RoomName {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.RoomName, 0, len(f.groups))
	for g := range f.groups {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

func (f *fakeFabric) has(room domain.RoomName) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.groups[room]
	return ok
}
