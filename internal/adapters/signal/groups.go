package signal

import (
	"slices"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// Groups is the transport-side room bookkeeping. Leaving never deletes a
// group; that is left to the reaper.
type Groups struct {
	mu     sync.RWMutex
	groups map[domain.RoomName]map[domain.ConnectionID]struct{}
}

var _ core.GroupFabric = (*Groups)(nil)

func NewGroups() *Groups {
	return &Groups{groups: make(map[domain.RoomName]map[domain.ConnectionID]struct{})}
}

func (g *Groups) JoinGroup(room domain.RoomName, id domain.ConnectionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.groups[room]
	if !ok {
		set = make(map[domain.ConnectionID]struct{})
		g.groups[room] = set
	}
	set[id] = struct{}{}
}

func (g *Groups) LeaveGroup(room domain.RoomName, id domain.ConnectionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if set, ok := g.groups[room]; ok {
		delete(set, id)
	}
}

func (g *Groups) DeleteGroup(room domain.RoomName) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.groups, room)
}

func (g *Groups) Groups() []domain.RoomName {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.RoomName, 0, len(g.groups))
	for room := range g.groups {
		out = append(out, room)
	}
	slices.Sort(out)
	return out
}

// Size returns the member count of a group, or -1 when the group does not exist.
func (g *Groups) Size(room domain.RoomName) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set, ok := g.groups[room]
	if !ok {
		return -1
	}
	return len(set)
}
