package domain

import "context"

// Room is a bookable room within a building.
type Room struct {
	ID       string `json:"id"`
	Building string `json:"building"`
	Name     string `json:"name"`
}

// DisplayName renders the room as shown to users, e.g. "Maxwell Dworkin 119".
func (r *Room) DisplayName() string {
	return r.Building + " " + r.Name
}

// RoomRepository defines read access to rooms.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*Room, error)
}
