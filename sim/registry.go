package sim

import "fmt"

// Registry tracks staff and rooms and hands them out first-found in
// registration order. There is no fairness beyond the FIFO order of each
// stage's waiting queue.
type Registry struct {
	staff []*Staff
	rooms []*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddStaff registers an idle staff member. Empty names are generated as
// "<Role>" / "<id>".
func (r *Registry) AddStaff(role Role, name, surname string) *Staff {
	id := len(r.staff) + 1
	if name == "" && surname == "" {
		name, surname = string(role), fmt.Sprint(id)
	}
	s := &Staff{ID: id, Name: name, Surname: surname, Role: role, State: StaffIdle}
	r.staff = append(r.staff, s)
	return s
}

// AddRoom registers an empty room.
func (r *Registry) AddRoom(rt RoomType, name string, capacity int) *Room {
	room := &Room{ID: len(r.rooms) + 1, Name: name, Type: rt, Capacity: capacity}
	r.rooms = append(r.rooms, room)
	return room
}

// FindIdleStaff returns the first idle staff member with the given role, or nil.
func (r *Registry) FindIdleStaff(role Role) *Staff {
	for _, s := range r.staff {
		if s.Role == role && s.Idle() {
			return s
		}
	}
	return nil
}

// FindAvailableRoom returns the first room of the given type below capacity, or nil.
func (r *Registry) FindAvailableRoom(rt RoomType) *Room {
	for _, room := range r.rooms {
		if room.Type == rt && room.Available() {
			return room
		}
	}
	return nil
}

// ReserveStaff marks s occupied by one service. Reserving a busy staff
// member is a broken admission check and panics.
func (r *Registry) ReserveStaff(s *Staff) {
	if !s.Idle() {
		panic(fmt.Sprintf("ReserveStaff: %v is not idle", s))
	}
	s.load = 1
	s.State = StaffOccupied
}

// ShareStaff adds one more service to s, idle or not. It is reserved for a
// physician consulting a patient already under their care.
func (r *Registry) ShareStaff(s *Staff) {
	if s.Role != RolePhysician {
		panic(fmt.Sprintf("ShareStaff: %v is not a physician", s))
	}
	s.load++
	s.State = StaffOccupied
}

// ReleaseStaff ends one service held by s. The staff member becomes idle
// when no service holds it any more. Releasing an idle staff member panics.
func (r *Registry) ReleaseStaff(s *Staff) {
	if s.load == 0 {
		panic(fmt.Sprintf("ReleaseStaff: %v is already idle", s))
	}
	s.load--
	if s.load == 0 {
		s.State = StaffIdle
	}
}

// ReserveRoom places p in room. Overfilling a room panics.
func (r *Registry) ReserveRoom(room *Room, p *Patient) {
	if !room.Available() {
		panic(fmt.Sprintf("ReserveRoom: %v is full", room))
	}
	room.occupants = append(room.occupants, p)
	p.Location = room
}

// ReleaseRoom removes p from room. Releasing a patient who is not in the room panics.
func (r *Registry) ReleaseRoom(room *Room, p *Patient) {
	for i, q := range room.occupants {
		if q == p {
			room.occupants = append(room.occupants[:i], room.occupants[i+1:]...)
			if p.Location == room {
				p.Location = nil
			}
			return
		}
	}
	panic(fmt.Sprintf("ReleaseRoom: patient %d is not in %v", p.ID, room))
}

// Staff returns the registered staff in registration order.
func (r *Registry) Staff() []*Staff {
	return append([]*Staff(nil), r.staff...)
}

// Rooms returns the registered rooms in registration order.
func (r *Registry) Rooms() []*Room {
	return append([]*Room(nil), r.rooms...)
}
