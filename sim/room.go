package sim

import (
	"fmt"
	"strings"
)

// RoomType determines which stage may claim a room.
type RoomType string

const (
	RoomShock     RoomType = "ShockRoom"
	RoomBox       RoomType = "BoxRoom"
	RoomBloodTest RoomType = "BloodTestRoom"
	RoomXRay      RoomType = "XRayRoom"
	RoomMRI       RoomType = "MRIRoom"
)

// RoomTypes lists every room type in declaration order.
var RoomTypes = []RoomType{RoomShock, RoomBox, RoomBloodTest, RoomXRay, RoomMRI}

// ParseRoomType resolves a room type name, case-insensitively.
func ParseRoomType(name string) (RoomType, error) {
	for _, rt := range RoomTypes {
		if strings.EqualFold(name, string(rt)) {
			return rt, nil
		}
	}
	return "", fmt.Errorf("room type %q does not exist: %w", name, ErrInvalidType)
}

// testRoomType maps a diagnostic test name ("BloodTest", "XRay", "MRI") to its room type.
func testRoomType(test string) (RoomType, bool) {
	rt := RoomType(test + "Room")
	switch rt {
	case RoomBloodTest, RoomXRay, RoomMRI:
		return rt, true
	}
	return "", false
}

// Room holds up to Capacity patients at once.
type Room struct {
	ID        int
	Name      string
	Type      RoomType
	Capacity  int
	occupants []*Patient
}

// Available reports whether another patient fits in the room.
func (r *Room) Available() bool {
	return len(r.occupants) < r.Capacity
}

// Occupancy returns the number of patients in the room.
func (r *Room) Occupancy() int {
	return len(r.occupants)
}

// Occupants returns the patients currently in the room.
func (r *Room) Occupants() []*Patient {
	return append([]*Patient(nil), r.occupants...)
}

func (r *Room) String() string {
	return fmt.Sprintf("%s{ID: %d, Name: %s, %d/%d}", r.Type, r.ID, r.Name, len(r.occupants), r.Capacity)
}
