package sim

import (
	"fmt"
	"strings"
)

// Role is a staff specialty.
type Role string

const (
	RoleNurse       Role = "Nurse"
	RolePhysician   Role = "Physician"
	RoleTransporter Role = "Transporter"
)

// ParseRole resolves a role name, case-insensitively.
func ParseRole(name string) (Role, error) {
	for _, r := range []Role{RoleNurse, RolePhysician, RoleTransporter} {
		if strings.EqualFold(name, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("role %q must be Nurse, Physician or Transporter: %w", name, ErrInvalidRole)
}

// StaffState is the occupancy of a staff member.
type StaffState string

const (
	StaffIdle     StaffState = "idle"
	StaffOccupied StaffState = "occupied"
)

// Staff is a nurse, physician or transporter.
type Staff struct {
	ID      int
	Name    string
	Surname string
	Role    Role
	State   StaffState
	History History

	load int // services currently holding this staff member

	// Physician only
	overseen []*Patient
	treated  []*Patient
}

// Idle reports whether the staff member can be reserved.
func (s *Staff) Idle() bool {
	return s.State == StaffIdle
}

// Load returns the number of services currently holding the staff member.
// Only a physician consulting several of their own patients exceeds one.
func (s *Staff) Load() int {
	return s.load
}

// oversee puts p under this physician's care.
func (s *Staff) oversee(p *Patient) {
	s.overseen = append(s.overseen, p)
}

// treat moves p from the overseen set to the treated set.
func (s *Staff) treat(p *Patient) {
	for i, q := range s.overseen {
		if q == p {
			s.overseen = append(s.overseen[:i], s.overseen[i+1:]...)
			break
		}
	}
	s.treated = append(s.treated, p)
}

// Overseen returns the patients currently under this physician's care.
func (s *Staff) Overseen() []*Patient {
	return append([]*Patient(nil), s.overseen...)
}

// Treated returns the patients this physician has released.
func (s *Staff) Treated() []*Patient {
	return append([]*Patient(nil), s.treated...)
}

func (s *Staff) String() string {
	return fmt.Sprintf("%s{ID: %d, Name: %s %s, State: %s}", s.Role, s.ID, s.Name, s.Surname, s.State)
}
