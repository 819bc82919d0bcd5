package app

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Reaper keeps the transport's group bookkeeping free of empty rooms.
type Reaper struct {
	rooms  core.RoomIndex
	fabric core.GroupFabric
}

func NewReaper(rooms core.RoomIndex, fabric core.GroupFabric) *Reaper {
	return &Reaper{rooms: rooms, fabric: fabric}
}

// Reclaim runs right after a membership removal. It reports whether the
// room was empty and therefore purged.
func (r *Reaper) Reclaim(room domain.RoomName) bool {
	if !r.rooms.IsEmpty(room) {
		return false
	}
	if r.fabric != nil {
		r.fabric.DeleteGroup(room)
	}
	metrics.RoomsReaped.WithLabelValues("eager").Inc()
	log.Info().Str("module", "app.reaper").Str("room", string(room)).Msg("room reclaimed")
	return true
}

// PurgeOrphans deletes every transport group that no membership refers to.
func (r *Reaper) PurgeOrphans() []domain.RoomName {
	if r.fabric == nil {
		return nil
	}
	live := make(map[domain.RoomName]struct{})
	for _, room := range r.rooms.LiveRooms() {
		live[room] = struct{}{}
	}
	var purged []domain.RoomName
	for _, group := range r.fabric.Groups() {
		if _, ok := live[group]; ok {
			continue
		}
		r.fabric.DeleteGroup(group)
		purged = append(purged, group)
		metrics.RoomsReaped.WithLabelValues("sweep").Inc()
	}
	if len(purged) > 0 {
		log.Info().Str("module", "app.reaper").Int("purged", len(purged)).Msg("orphan groups purged")
	}
	return purged
}
