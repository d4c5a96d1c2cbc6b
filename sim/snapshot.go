package sim

import (
	"fmt"
	"sort"
)

// PatientSnapshot is a read-only copy of one patient's state.
type PatientSnapshot struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Surname     string       `json:"surname"`
	Severity    int          `json:"severity"`
	Insurance   Insurance    `json:"insurance"`
	ArrivalTime float64      `json:"arrival_time"`
	State       PatientState `json:"state"`
	Location    string       `json:"location,omitempty"`
	Physician   string       `json:"physician,omitempty"`
	Charges     float64      `json:"charges"`
	History     []Event      `json:"history"`
}

// StaffSnapshot is a read-only copy of one staff member's state.
type StaffSnapshot struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
	Role     Role       `json:"role"`
	State    StaffState `json:"state"`
	Load     int        `json:"load"`
	Overseen []int      `json:"overseen,omitempty"`
	Treated  []int      `json:"treated,omitempty"`
	History  []Event    `json:"history"`
}

// RoomSnapshot is a read-only copy of one room's occupancy.
type RoomSnapshot struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      RoomType `json:"type"`
	Capacity  int      `json:"capacity"`
	Occupants []int    `json:"occupants"`
}

// StageSnapshot describes a stage's configuration and waiting queue.
type StageSnapshot struct {
	Name     string  `json:"name"`
	Duration string  `json:"duration"`
	Cost     float64 `json:"cost"`
	Waiting  []int   `json:"waiting"`
}

// DepartmentSnapshot is a read-only dump of a department for reporting.
type DepartmentSnapshot struct {
	Name         string            `json:"name"`
	RunID        string            `json:"run_id"`
	Time         float64           `json:"time"`
	PendingTasks int               `json:"pending_tasks"`
	Arrivals     map[string]string `json:"arrivals"`
	Stages       []StageSnapshot   `json:"stages"`
	Staff        []StaffSnapshot   `json:"staff"`
	Rooms        []RoomSnapshot    `json:"rooms"`
	Patients     []PatientSnapshot `json:"patients"`
	Discharged   int               `json:"discharged"`
}

// Snapshot copies the department's current state. Later simulation steps
// do not affect the returned value.
func (d *Department) Snapshot() DepartmentSnapshot {
	snap := DepartmentSnapshot{
		Name:         d.Name,
		RunID:        d.RunID.String(),
		Time:         d.Time(),
		PendingTasks: d.scheduler.Len(),
		Arrivals:     make(map[string]string, MaxSeverity),
	}
	for level := MinSeverity; level <= MaxSeverity; level++ {
		snap.Arrivals[fmt.Sprintf("L%d", level)] = describeDistribution(d.arrivals[level].Distribution)
	}
	for _, s := range d.stages {
		snap.Stages = append(snap.Stages, StageSnapshot{
			Name:     s.Name,
			Duration: describeDistribution(s.Duration),
			Cost:     s.Cost,
			Waiting:  patientIDs(s.Queue.Items()),
		})
	}
	for _, s := range d.registry.Staff() {
		snap.Staff = append(snap.Staff, snapshotStaff(s))
	}
	for _, r := range d.registry.Rooms() {
		snap.Rooms = append(snap.Rooms, RoomSnapshot{
			ID:        r.ID,
			Name:      r.Name,
			Type:      r.Type,
			Capacity:  r.Capacity,
			Occupants: patientIDs(r.Occupants()),
		})
	}
	for _, p := range d.patients {
		snap.Patients = append(snap.Patients, snapshotPatient(p))
		if p.Discharged() {
			snap.Discharged++
		}
	}
	return snap
}

// PatientSnapshot copies the state of one patient, discharged or not.
func (d *Department) PatientSnapshot(id int) (PatientSnapshot, error) {
	p, err := d.Patient(id)
	if err != nil {
		return PatientSnapshot{}, err
	}
	return snapshotPatient(p), nil
}

func snapshotPatient(p *Patient) PatientSnapshot {
	ps := PatientSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Surname:     p.Surname,
		Severity:    p.Severity,
		Insurance:   p.Insurance,
		ArrivalTime: p.ArrivalTime,
		State:       p.State,
		Charges:     p.Charges,
		History:     p.History.Events(),
	}
	if p.Location != nil {
		ps.Location = p.Location.Name
	}
	if p.Physician != nil {
		ps.Physician = p.Physician.Name + " " + p.Physician.Surname
	}
	return ps
}

func snapshotStaff(s *Staff) StaffSnapshot {
	return StaffSnapshot{
		ID:       s.ID,
		Name:     s.Name,
		Surname:  s.Surname,
		Role:     s.Role,
		State:    s.State,
		Load:     s.load,
		Overseen: patientIDs(s.Overseen()),
		Treated:  patientIDs(s.Treated()),
		History:  s.History.Events(),
	}
}

func patientIDs(ps []*Patient) []int {
	ids := make([]int, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

// SortedArrivalLevels returns the snapshot's arrival keys in level order.
func (s DepartmentSnapshot) SortedArrivalLevels() []string {
	keys := make([]string, 0, len(s.Arrivals))
	for k := range s.Arrivals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
