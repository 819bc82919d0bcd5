package domain

// RoomName is an exact, case-sensitive key. Rooms are never created
// explicitly; a name is live while at least one membership points to it.
type RoomName string

// ConnectionID identifies a transport connection for its whole lifetime.
type ConnectionID string
