package app

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Member domain.Membership
	Conn   core.Connection
}

// roomEntry is the incrementally maintained index for one room.
type roomEntry struct {
	order []domain.ConnectionID
	names map[string]domain.ConnectionID // folded display name -> holder
}

// Registry is the authoritative map of connection -> membership, with the
// room index kept in step on every mutation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]*sessionEntry
	rooms    map[domain.RoomName]*roomEntry
	seq      uint64
}

var _ core.RoomIndex = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnectionID]*sessionEntry),
		rooms:    make(map[domain.RoomName]*roomEntry),
	}
}

// Join validates and stores a membership. On any error the registry is unchanged.
func (r *Registry) Join(
	id domain.ConnectionID,
	room domain.RoomName,
	rawName string,
	conn core.Connection,
) (domain.Membership, error) {
	if strings.TrimSpace(string(room)) == "" {
		return domain.Membership{}, ErrInvalidRoom
	}
	name, err := domain.NormalizeName(rawName)
	if err != nil {
		return domain.Membership{}, err
	}
	key := domain.FoldName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		return domain.Membership{}, ErrAlreadyJoined
	}
	re, ok := r.rooms[room]
	if ok {
		if _, taken := re.names[key]; taken {
			return domain.Membership{}, ErrNameTaken
		}
	} else {
		re = &roomEntry{names: make(map[string]domain.ConnectionID)}
		r.rooms[room] = re
	}

	r.seq++
	m := domain.NewMembership(id, room, name, r.seq)
	r.sessions[id] = &sessionEntry{Member: m, Conn: conn}
	re.order = append(re.order, id)
	re.names[key] = id
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("room", string(room)).Str("name", name).Msg("joined")
	return m, nil
}

func (r *Registry) Find(id domain.ConnectionID) (domain.Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Member, true
	}
	return domain.Membership{}, false
}

// Leave removes the membership holding displayName in room. Removing
// something that is not there is a no-op.
func (r *Registry) Leave(room domain.RoomName, displayName string) (domain.Membership, bool) {
	name := strings.TrimSpace(displayName)
	r.mu.Lock()
	defer r.mu.Unlock()
	re, ok := r.rooms[room]
	if !ok {
		return domain.Membership{}, false
	}
	for _, id := range re.order {
		if e := r.sessions[id]; e != nil && e.Member.DisplayName == name {
			return r.removeLocked(id)
		}
	}
	return domain.Membership{}, false
}

func (r *Registry) RemoveByConnection(id domain.ConnectionID) (domain.Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

func (r *Registry) removeLocked(id domain.ConnectionID) (domain.Membership, bool) {
	e, ok := r.sessions[id]
	if !ok {
		return domain.Membership{}, false
	}
	delete(r.sessions, id)
	m := e.Member
	if re, ok := r.rooms[m.Room]; ok {
		if i := slices.Index(re.order, id); i >= 0 {
			re.order = slices.Delete(re.order, i, i+1)
		}
		key := domain.FoldName(m.DisplayName)
		if re.names[key] == id {
			delete(re.names, key)
		}
		if len(re.order) == 0 {
			delete(r.rooms, m.Room)
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("room", string(m.Room)).Str("name", m.DisplayName).Msg("removed")
	return m, true
}

// AllDisplayNames is a snapshot across every room, in global join order.
func (r *Registry) AllDisplayNames() []string {
	r.mu.RLock()
	members := make([]domain.Membership, 0, len(r.sessions))
	for _, e := range r.sessions {
		members = append(members, e.Member)
	}
	r.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool { return members[i].Seq < members[j].Seq })
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.DisplayName)
	}
	return out
}

func (r *Registry) ParticipantsOf(room domain.RoomName) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	re, ok := r.rooms[room]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(re.order))
	for _, id := range re.order {
		out = append(out, r.sessions[id].Member.DisplayName)
	}
	return out
}

func (r *Registry) IsEmpty(room domain.RoomName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	re, ok := r.rooms[room]
	return !ok || len(re.order) == 0
}

func (r *Registry) LiveRooms() []domain.RoomName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomName, 0, len(r.rooms))
	for name := range r.rooms {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Members returns the delivery snapshot for a room in join order.
func (r *Registry) Members(room domain.RoomName) []core.MemberSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	re, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]core.MemberSnapshot, 0, len(re.order))
	for _, id := range re.order {
		e := r.sessions[id]
		out = append(out, core.MemberSnapshot{Membership: e.Member, Conn: e.Conn})
	}
	return out
}

// Disconnected lists memberships whose connection no longer reports itself connected.
func (r *Registry) Disconnected() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ConnectionID
	for id, e := range r.sessions {
		if e.Conn == nil || !e.Conn.Connected() {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for name, re := range r.rooms {
		names := make([]string, 0, len(re.order))
		for _, id := range re.order {
			names = append(names, r.sessions[id].Member.DisplayName)
		}
		out = append(out, core.RoomInfo{Name: name, MemberCount: len(names), Participants: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports live memberships and live rooms.
func (r *Registry) Len() (members, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.rooms)
}
