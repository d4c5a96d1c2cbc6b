package sim

import (
	"fmt"
)

// StageKind is the closed set of workflow stages. Each kind carries its own
// admission test, service state and routing; the behaviour lives in the
// switch statements below rather than behind an interface.
type StageKind int

const (
	StageTriage StageKind = iota
	StageInstallation
	StageConsultation
	StageTransportation
	StageBloodTest
	StageXRay
	StageMRI
)

// StageKinds lists every stage kind in the department's insertion order.
var StageKinds = []StageKind{
	StageTriage, StageInstallation, StageConsultation, StageTransportation,
	StageBloodTest, StageXRay, StageMRI,
}

var stageNames = map[StageKind]string{
	StageTriage:         "Triage",
	StageInstallation:   "Installation",
	StageConsultation:   "Consultation",
	StageTransportation: "Transportation",
	StageBloodTest:      "BloodTest",
	StageXRay:           "XRay",
	StageMRI:            "MRI",
}

func (k StageKind) String() string {
	if name, ok := stageNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StageKind(%d)", int(k))
}

// serviceState is the patient state while being served by a stage of this kind.
func (k StageKind) serviceState() PatientState {
	switch k {
	case StageTriage:
		return PatientRegistering
	case StageInstallation:
		return PatientInstalling
	case StageConsultation:
		return PatientVisiting
	case StageTransportation:
		return PatientTransported
	default:
		return PatientTested
	}
}

// testStageFor maps a diagnostic room type to the test stage using it.
func testStageFor(rt RoomType) (StageKind, bool) {
	switch rt {
	case RoomBloodTest:
		return StageBloodTest, true
	case RoomXRay:
		return StageXRay, true
	case RoomMRI:
		return StageMRI, true
	}
	return 0, false
}

// installationRoomType picks the room an arriving patient is installed in.
// Levels 1 and 2 go to a shock room, the rest to a box.
func installationRoomType(severity int) RoomType {
	if severity < 3 {
		return RoomShock
	}
	return RoomBox
}

// TransportDuration is the fixed time between the "Transport beginning" and
// "Transport ending" events recorded when a transport starts.
const TransportDuration = 5.0

// Examination branch rates drawn at the end of every consultation.
const (
	noExamRate    = 0.40
	bloodTestRate = 0.35
	xRayRate      = 0.20
)

// Examination outcomes.
const (
	ExamRelease   = "Release"
	ExamBloodTest = "BloodTest"
	ExamXRay      = "XRay"
	ExamMRI       = "MRI"
)

// examinationFor maps a draw in [0, 1] to a consultation outcome.
func examinationFor(draw float64) string {
	switch {
	case draw < noExamRate:
		return ExamRelease
	case draw < noExamRate+bloodTestRate:
		return ExamBloodTest
	case draw < noExamRate+bloodTestRate+xRayRate:
		return ExamXRay
	default:
		return ExamMRI
	}
}

// Stage is one workflow step with its own FIFO queue, duration law and cost.
type Stage struct {
	Name     string
	Kind     StageKind
	Duration Distribution
	Cost     float64
	Queue    WaitQueue
}

func newStage(kind StageKind, duration Distribution) *Stage {
	return &Stage{Name: kind.String(), Kind: kind, Duration: duration}
}

// reservation holds the resources a stage took for one patient,
// from start of service until the matching end-of-service task releases them.
type reservation struct {
	staff  *Staff
	room   *Room
	shared bool // staff is the patient's own physician, busy or not
}

// match finds the resources needed to start serving p now. It does not
// mutate anything; ok is false when any required resource is missing.
func (s *Stage) match(reg *Registry, p *Patient) (res reservation, ok bool) {
	switch s.Kind {
	case StageTriage:
		res.staff = reg.FindIdleStaff(RoleNurse)
		return res, res.staff != nil

	case StageInstallation:
		res.staff = reg.FindIdleStaff(RoleNurse)
		res.room = reg.FindAvailableRoom(installationRoomType(p.Severity))
		return res, res.staff != nil && res.room != nil

	case StageConsultation:
		// A patient keeps the physician of the first consultation, who sees
		// them even while consulting other patients of their own.
		if p.Physician != nil {
			res.staff, res.shared = p.Physician, true
			return res, true
		}
		res.staff = reg.FindIdleStaff(RolePhysician)
		return res, res.staff != nil

	case StageTransportation:
		test, found := p.lastPrescription()
		if !found {
			return res, false
		}
		rt, known := testRoomType(test)
		if !known {
			return res, false
		}
		res.staff = reg.FindIdleStaff(RoleTransporter)
		res.room = reg.FindAvailableRoom(rt)
		return res, res.staff != nil && res.room != nil

	case StageBloodTest:
		res.room = reg.FindAvailableRoom(RoomBloodTest)
		return res, res.room != nil
	case StageXRay:
		res.room = reg.FindAvailableRoom(RoomXRay)
		return res, res.room != nil
	case StageMRI:
		res.room = reg.FindAvailableRoom(RoomMRI)
		return res, res.room != nil
	}
	return res, false
}

// CanTreatPatient reports whether every resource the stage needs for p is
// available right now.
func (s *Stage) CanTreatPatient(reg *Registry, p *Patient) bool {
	if p == nil {
		return false
	}
	_, ok := s.match(reg, p)
	return ok
}

// EndServiceTask releases a stage's reservation and routes the patient onward.
type EndServiceTask struct {
	baseTask
	Stage   *Stage
	Patient *Patient
	res     reservation
}

func newEndServiceTask(timestamp float64, s *Stage, p *Patient, res reservation) *EndServiceTask {
	return &EndServiceTask{
		baseTask: newBaseTask(timestamp, TaskTypeEndService),
		Stage:    s,
		Patient:  p,
		res:      res,
	}
}

func (t *EndServiceTask) Execute(d *Department) {
	d.endService(t)
}

// admit appends p to the stage's queue and immediately tries to serve it.
func (d *Department) admit(s *Stage, p *Patient) {
	p.State = PatientWaiting
	s.Queue.Enqueue(p)
	d.tryAdvance(s)
}

// tryAdvance serves queue heads while the head can be treated. Head-of-line
// blocking is intended: a later patient never overtakes the head.
func (d *Department) tryAdvance(s *Stage) {
	for s.Queue.Len() > 0 {
		p := s.Queue.Peek()
		res, ok := s.match(d.registry, p)
		if !ok {
			return
		}
		s.Queue.Dequeue()
		d.startService(s, p, res)
	}
}

func (d *Department) startService(s *Stage, p *Patient, res reservation) {
	now := d.Time()
	label := stageEventLabel(s.Name, LabelBeginning)

	switch {
	case res.shared:
		d.registry.ShareStaff(res.staff)
	case res.staff != nil:
		d.registry.ReserveStaff(res.staff)
	}
	if res.staff != nil {
		res.staff.History.Record(label, now)
	}
	if res.room != nil {
		d.registry.ReserveRoom(res.room, p)
	}
	if s.Kind == StageConsultation && p.Physician == nil {
		p.Physician = res.staff
		res.staff.oversee(p)
	}

	p.record(label, now)
	p.State = s.Kind.serviceState()

	if s.Kind == StageTransportation {
		begin := Event{Label: LabelTransportBegin, Timestamp: now}
		end := Event{Label: LabelTransportEnd, Timestamp: now + TransportDuration}
		p.History.Append(begin)
		p.History.Append(end)
		res.staff.History.Append(begin)
		res.staff.History.Append(end)
	}

	endAt := now + s.Duration.Sample()
	d.logger.Debugf("[t=%10.3f] %s begins for patient %d, ends at %g", now, s.Name, p.ID, endAt)
	if err := d.scheduler.Schedule(newEndServiceTask(endAt, s, p, res)); err != nil {
		// Durations are non-negative, so the end task can never precede now.
		panic(fmt.Sprintf("startService: %v", err))
	}
}

func (d *Department) endService(t *EndServiceTask) {
	s, p, res := t.Stage, t.Patient, t.res
	now := d.Time()
	label := stageEventLabel(s.Name, LabelEnding)

	if res.staff != nil {
		d.registry.ReleaseStaff(res.staff)
		res.staff.History.Record(label, now)
	}
	if res.room != nil {
		d.registry.ReleaseRoom(res.room, p)
	}
	p.record(label, now)
	p.Charges += s.Cost
	p.State = PatientWaiting
	d.logger.Debugf("[t=%10.3f] %s ends for patient %d", now, s.Name, p.ID)

	if next := d.route(s, p, res); next != nil {
		d.admit(next, p)
	}
	// The freed resources may unblock any stage, the finishing one included.
	d.wakeStages()
}

// route decides where p goes after s. A nil stage means p was discharged.
func (d *Department) route(s *Stage, p *Patient, res reservation) *Stage {
	switch s.Kind {
	case StageTriage:
		return d.byKind[StageInstallation]
	case StageInstallation:
		return d.byKind[StageConsultation]
	case StageConsultation:
		exam := examinationFor(d.examination.Sample())
		if exam == ExamRelease {
			d.discharge(p)
			return nil
		}
		p.record(exam+" "+LabelPrescribed, d.Time())
		return d.byKind[StageTransportation]
	case StageTransportation:
		kind, ok := testStageFor(res.room.Type)
		if !ok {
			panic(fmt.Sprintf("route: transport reserved non-test room %v", res.room))
		}
		return d.byKind[kind]
	default:
		return d.byKind[StageConsultation]
	}
}

// wakeStages re-runs admission on every stage in insertion order.
func (d *Department) wakeStages() {
	for _, s := range d.stages {
		d.tryAdvance(s)
	}
}

// discharge releases p from the department. It is terminal.
func (d *Department) discharge(p *Patient) {
	p.record(LabelDischarged, d.Time())
	if p.Physician != nil {
		p.Physician.treat(p)
	}
	p.State = PatientDischarged
	d.removeFromRoster(p)
	d.logger.Debugf("[t=%10.3f] patient %d discharged, charges %.2f", d.Time(), p.ID, p.Charges)
}
