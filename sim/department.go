package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PatientObserver is notified of every event appended to any patient's history.
type PatientObserver func(patientID int, ev Event)

// Department is one emergency department: its resources, stages, patients
// and the scheduler that owns its virtual clock. All simulation state lives
// here; a Department is not safe for concurrent use.
type Department struct {
	Name  string
	RunID uuid.UUID // derived from name and seed, stable across replays

	scheduler *Scheduler
	registry  *Registry
	rng       *PartitionedRNG

	stages []*Stage // insertion order
	byName map[string]*Stage
	byKind map[StageKind]*Stage

	arrivals    [MaxSeverity + 1]*ArrivalGenerator // index 0 unused
	examination Distribution

	patients      []*Patient       // every patient that arrived, in arrival order
	roster        map[int]*Patient // patients not yet discharged
	nextPatientID int

	log       History
	observers []PatientObserver
	logger    *logrus.Entry
}

// Default stage durations used until SetStageDuration overrides them.
var defaultStageDurations = map[StageKind]DistSpec{
	StageTriage:         {Type: DistUniform, Params: []float64{1, 5}},
	StageInstallation:   {Type: DistUniform, Params: []float64{2, 5}},
	StageConsultation:   {Type: DistUniform, Params: []float64{5, 20}},
	StageTransportation: {Type: DistDeterministic, Params: []float64{TransportDuration}},
	StageBloodTest:      {Type: DistUniform, Params: []float64{10, 20}},
	StageXRay:           {Type: DistUniform, Params: []float64{10, 20}},
	StageMRI:            {Type: DistUniform, Params: []float64{20, 40}},
}

// NewDepartment creates an empty department at virtual time 0. Every random
// stream of the department is derived from seed.
func NewDepartment(name string, seed int64) *Department {
	d := &Department{
		Name:      name,
		RunID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("simergy/%s/%d", name, seed))),
		scheduler: NewScheduler(),
		registry:  NewRegistry(),
		rng:       NewPartitionedRNG(NewSimulationKey(seed)),
		byName:    make(map[string]*Stage),
		byKind:    make(map[StageKind]*Stage),
		roster:    make(map[int]*Patient),
	}
	d.logger = logrus.WithFields(logrus.Fields{
		"department": name,
		"run":        d.RunID.String(),
		"seed":       int64(d.rng.Key()),
	})

	for _, kind := range StageKinds {
		spec := defaultStageDurations[kind]
		dist, err := spec.Build(d.rng.Source(SubsystemStage(kind.String())))
		if err != nil {
			panic(fmt.Sprintf("default duration for %s: %v", kind, err))
		}
		s := newStage(kind, dist)
		d.stages = append(d.stages, s)
		d.byName[s.Name] = s
		d.byKind[kind] = s
	}
	for level := MinSeverity; level <= MaxSeverity; level++ {
		d.arrivals[level] = &ArrivalGenerator{Level: level}
	}
	exam, err := NewUniform(0, 1, d.rng.Source(SubsystemExamination))
	if err != nil {
		panic(fmt.Sprintf("examination distribution: %v", err))
	}
	d.examination = exam
	return d
}

// Time returns the current virtual time.
func (d *Department) Time() float64 {
	return d.scheduler.Clock()
}

// Registry returns the department's staff and room registry.
func (d *Department) Registry() *Registry {
	return d.registry
}

// PendingTasks returns the number of scheduled tasks.
func (d *Department) PendingTasks() int {
	return d.scheduler.Len()
}

// Stages returns the stages in insertion order.
func (d *Department) Stages() []*Stage {
	return append([]*Stage(nil), d.stages...)
}

// Stage looks a stage up by name, case-insensitively.
func (d *Department) Stage(name string) (*Stage, error) {
	if s, ok := d.byName[name]; ok {
		return s, nil
	}
	for _, s := range d.stages {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stage %q: %w", name, ErrUnknownStage)
}

// Arrivals returns the arrival generator of a severity level.
func (d *Department) Arrivals(level int) (*ArrivalGenerator, error) {
	if level < MinSeverity || level > MaxSeverity {
		return nil, fmt.Errorf("level %d must be between %d and %d: %w", level, MinSeverity, MaxSeverity, ErrUnknownLevel)
	}
	return d.arrivals[level], nil
}

// AddRoom registers a room of the named type.
func (d *Department) AddRoom(roomType, name string, capacity int) (*Room, error) {
	rt, err := ParseRoomType(roomType)
	if err != nil {
		return nil, err
	}
	if capacity < 1 {
		return nil, fmt.Errorf("capacity %d must be at least 1: %w", capacity, ErrInvalidCapacity)
	}
	room := d.registry.AddRoom(rt, name, capacity)
	d.wakeStages()
	return room, nil
}

// AddStaff registers a staff member with a generated name.
func (d *Department) AddStaff(role string) (*Staff, error) {
	return d.AddNamedStaff(role, "", "")
}

// AddNamedStaff registers a named staff member.
func (d *Department) AddNamedStaff(role, name, surname string) (*Staff, error) {
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	s := d.registry.AddStaff(r, name, surname)
	d.wakeStages()
	return s, nil
}

// SetArrivalDistribution sets the inter-arrival law of a severity level and
// arms the level's generator if it has no pending arrival. An already
// scheduled arrival keeps its timestamp.
func (d *Department) SetArrivalDistribution(level int, kind string, params ...float64) error {
	gen, err := d.Arrivals(level)
	if err != nil {
		return err
	}
	dist, err := NewDistribution(kind, params, d.rng.Source(SubsystemArrival(level)))
	if err != nil {
		return err
	}
	// A zero mean would keep scheduling arrivals at the same instant forever.
	if dist.Mean() <= 0 {
		return fmt.Errorf("inter-arrival mean must be positive: %w", ErrInvalidParams)
	}
	gen.Distribution = dist
	d.armArrival(level)
	return nil
}

// SetStageDuration replaces the service-time law of a stage.
func (d *Department) SetStageDuration(stage, kind string, params ...float64) error {
	s, err := d.Stage(stage)
	if err != nil {
		return err
	}
	dist, err := NewDistribution(kind, params, d.rng.Source(SubsystemStage(s.Name)))
	if err != nil {
		return err
	}
	s.Duration = dist
	return nil
}

// SetStageCost sets the amount charged each time a stage's service ends.
func (d *Department) SetStageCost(stage string, cost float64) error {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return fmt.Errorf("cost %v must be a non-negative number: %w", cost, ErrInvalidCost)
	}
	s, err := d.Stage(stage)
	if err != nil {
		return err
	}
	s.Cost = cost
	return nil
}

// SetExaminationDistribution replaces the source of the consultation branch
// draw. Draws are mapped onto [0, 1]: below 0.40 releases the patient, then
// blood test up to 0.75, X-ray up to 0.95 and MRI above.
func (d *Department) SetExaminationDistribution(dist Distribution) {
	if dist == nil {
		panic("SetExaminationDistribution: dist must not be nil")
	}
	d.examination = dist
}

// AdmitPatient forces the next arrival of a severity level to happen now,
// with the given identity. Level 0 picks the level whose arrival is due
// first. When the level has no pending arrival the patient is created
// directly. Returns the new patient's ID.
func (d *Department) AdmitPatient(name, surname, insurance string, level int) (int, error) {
	ins, err := ParseInsurance(insurance)
	if err != nil {
		return 0, err
	}
	if level == 0 {
		next := d.nextPendingArrival()
		if next == nil {
			return 0, fmt.Errorf("no severity level given and no arrival scheduled: %w", ErrNoPendingArrival)
		}
		level = next.Level
	}
	gen, err := d.Arrivals(level)
	if err != nil {
		return 0, err
	}

	t := gen.pending
	if t == nil || !d.scheduler.Expedite(t) {
		t = newArrivalTask(d.Time(), level)
	}
	t.name, t.surname, t.insurance = name, surname, ins
	p := d.arrive(t)
	return p.ID, nil
}

// nextPendingArrival returns the earliest outstanding arrival across levels.
func (d *Department) nextPendingArrival() *ArrivalTask {
	var next *ArrivalTask
	for level := MinSeverity; level <= MaxSeverity; level++ {
		t := d.arrivals[level].pending
		if t == nil {
			continue
		}
		if next == nil || t.Timestamp() < next.Timestamp() ||
			(t.Timestamp() == next.Timestamp() && t.Seq() < next.Seq()) {
			next = t
		}
	}
	return next
}

// ExecuteNext runs the earliest pending task. Returns ErrNoTasks when idle.
func (d *Department) ExecuteNext() error {
	return d.scheduler.ExecuteNext(d)
}

// RunFor simulates at most duration time units and returns the new time.
func (d *Department) RunFor(duration float64) float64 {
	return d.scheduler.RunFor(d, duration)
}

// Subscribe registers fn to receive every patient event, in append order.
func (d *Department) Subscribe(fn PatientObserver) {
	if fn == nil {
		panic("Subscribe: fn must not be nil")
	}
	d.observers = append(d.observers, fn)
}

func (d *Department) notify(patientID int, ev Event) {
	d.log.Record(fmt.Sprintf("Patient %d: %s", patientID, ev.Label), ev.Timestamp)
	for _, fn := range d.observers {
		fn(patientID, ev)
	}
}

// Log returns the department-wide event log.
func (d *Department) Log() []Event {
	return d.log.Events()
}

// Patients returns every patient that arrived, discharged or not.
func (d *Department) Patients() []*Patient {
	return append([]*Patient(nil), d.patients...)
}

// ActivePatients returns the patients still in the department, in arrival order.
func (d *Department) ActivePatients() []*Patient {
	active := make([]*Patient, 0, len(d.roster))
	for _, p := range d.patients {
		if _, ok := d.roster[p.ID]; ok {
			active = append(active, p)
		}
	}
	return active
}

// Patient looks a patient up by ID, discharged patients included.
func (d *Department) Patient(id int) (*Patient, error) {
	if id < 1 || id > len(d.patients) {
		return nil, fmt.Errorf("patient %d: %w", id, ErrUnknownPatient)
	}
	return d.patients[id-1], nil
}

// FindPatient looks a patient up by name and surname. The latest match wins.
func (d *Department) FindPatient(name, surname string) (*Patient, error) {
	for i := len(d.patients) - 1; i >= 0; i-- {
		if p := d.patients[i]; p.Name == name && p.Surname == surname {
			return p, nil
		}
	}
	return nil, fmt.Errorf("patient %s %s: %w", name, surname, ErrUnknownPatient)
}

func (d *Department) removeFromRoster(p *Patient) {
	delete(d.roster, p.ID)
}
