package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExaminationFor_BranchBoundaries(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0, ExamRelease},
		{0.39, ExamRelease},
		{0.40, ExamBloodTest},
		{0.74, ExamBloodTest},
		{0.75, ExamXRay},
		{0.94, ExamXRay},
		{0.95, ExamMRI},
		{1, ExamMRI},
	}
	for _, tt := range tests {
		if got := examinationFor(tt.draw); got != tt.want {
			t.Errorf("examinationFor(%v) = %s, want %s", tt.draw, got, tt.want)
		}
	}
}

func TestInstallation_RoomDependsOnSeverity(t *testing.T) {
	// GIVEN one nurse, one shock room and one box room
	reg := NewRegistry()
	reg.AddStaff(RoleNurse, "", "")
	shock := reg.AddRoom(RoomShock, "S", 1)
	box := reg.AddRoom(RoomBox, "B", 1)
	stage := newStage(StageInstallation, nil)

	for severity := MinSeverity; severity <= MaxSeverity; severity++ {
		res, ok := stage.match(reg, &Patient{ID: severity, Severity: severity})
		require.True(t, ok)
		if severity < 3 {
			assert.Same(t, shock, res.room, "L%d goes to a shock room", severity)
		} else {
			assert.Same(t, box, res.room, "L%d goes to a box room", severity)
		}
	}
}

func TestConsultation_ReturningPatient_SeenByBusyPhysician(t *testing.T) {
	// GIVEN a patient whose assigned physician is busy while another is idle
	reg := NewRegistry()
	house := reg.AddStaff(RolePhysician, "Gregory", "House")
	reg.AddStaff(RolePhysician, "", "")
	reg.ReserveStaff(house)
	p := &Patient{ID: 1, Physician: house}
	stage := newStage(StageConsultation, nil)

	// THEN the consultation can start with the assigned physician
	assert.True(t, stage.CanTreatPatient(reg, p))
	res, ok := stage.match(reg, p)
	assert.True(t, ok)
	assert.Same(t, house, res.staff)
	assert.True(t, res.shared)

	// AND a new patient still needs an idle physician
	res, ok = stage.match(reg, &Patient{ID: 2})
	assert.True(t, ok)
	assert.NotSame(t, house, res.staff)
	assert.False(t, res.shared)
}

func TestDepartment_ReturningPatient_DoesNotStallConsultationQueue(t *testing.T) {
	// GIVEN two physicians and consultations lasting 10
	d := NewDepartment("test", 42)
	house := mustAddNamedStaff(t, d, "Physician", "Gregory", "House")
	wilson := mustAddNamedStaff(t, d, "Physician", "James", "Wilson")
	require.NoError(t, d.SetStageDuration("Consultation", "deterministic", 10))
	d.SetExaminationDistribution(newSequence(0))
	consultation := d.byKind[StageConsultation]

	// AND House consulting a new patient
	first := newPatient(1, 0, 3)
	d.admit(consultation, first)
	require.Same(t, house, first.Physician)

	// WHEN one of House's patients returns, followed by a new patient
	returning := newPatient(2, 0, 3)
	returning.Physician = house
	house.oversee(returning)
	d.admit(consultation, returning)
	newcomer := newPatient(3, 0, 3)
	d.admit(consultation, newcomer)

	// THEN House sees both of his patients and Wilson takes the newcomer
	assert.Equal(t, 0, consultation.Queue.Len())
	assert.Equal(t, PatientVisiting, returning.State)
	assert.Equal(t, 2, house.Load())
	assert.Same(t, wilson, newcomer.Physician)
	assert.Equal(t, 1, wilson.Load())

	// WHEN the consultations end
	drain(t, d, 10)

	// THEN every reservation was released exactly once
	assert.True(t, house.Idle())
	assert.Equal(t, 0, house.Load())
	assert.True(t, wilson.Idle())
	assert.Equal(t, []*Patient{first, returning}, house.Treated())
	assert.Empty(t, house.Overseen())
}

func TestTransportation_RequiresPrescription(t *testing.T) {
	reg := NewRegistry()
	reg.AddStaff(RoleTransporter, "", "")
	xray := reg.AddRoom(RoomXRay, "X", 1)
	stage := newStage(StageTransportation, nil)
	p := &Patient{ID: 1}

	assert.False(t, stage.CanTreatPatient(reg, p), "no prescription yet")

	p.History.Record("XRay prescribed", 0)
	res, ok := stage.match(reg, p)
	assert.True(t, ok)
	assert.Same(t, xray, res.room)
	assert.False(t, stage.CanTreatPatient(reg, nil))
}

func TestTestStages_NeedOnlyTheirRoom(t *testing.T) {
	reg := NewRegistry()
	reg.AddRoom(RoomMRI, "M", 1)
	p := &Patient{ID: 1}
	assert.True(t, newStage(StageMRI, nil).CanTreatPatient(reg, p))
	assert.False(t, newStage(StageBloodTest, nil).CanTreatPatient(reg, p))
	assert.False(t, newStage(StageXRay, nil).CanTreatPatient(reg, p))
}

// Full path through a blood test and back to consultation, with every
// duration zero and the consultation branch forced.
func TestDepartment_BloodTestRoundTrip_Scenario(t *testing.T) {
	// GIVEN one nurse, one physician, one transporter, a shock room and a blood test room
	d := newZeroDurationDepartment(t)
	mustAddStaff(t, d, "Nurse", "Physician", "Transporter")
	shock := mustAddRoom(t, d, "ShockRoom", "Shock-1", 1)
	lab := mustAddRoom(t, d, "BloodTestRoom", "Lab-1", 1)
	costs := map[string]float64{"Triage": 1, "Installation": 2, "Consultation": 4, "Transportation": 8, "BloodTest": 16}
	for stage, cost := range costs {
		require.NoError(t, d.SetStageCost(stage, cost))
	}
	// First consultation prescribes a blood test, the second releases
	d.SetExaminationDistribution(newSequence(0.5, 0.1))

	// WHEN one severity-1 patient is admitted and the department runs to completion
	id, err := d.AdmitPatient("Ada", "Lovelace", "gold", 1)
	require.NoError(t, err)
	drain(t, d, 100)

	// THEN the history follows the full path in order
	p, err := d.Patient(id)
	require.NoError(t, err)
	want := []string{
		"Arrival",
		"Triage beginning", "Triage ending",
		"Installation beginning", "Installation ending",
		"Consultation beginning", "Consultation ending",
		"BloodTest prescribed",
		"Transportation beginning", LabelTransportBegin, LabelTransportEnd, "Transportation ending",
		"BloodTest beginning", "BloodTest ending",
		"Consultation beginning", "Consultation ending",
		"Discharged",
	}
	assert.Equal(t, want, eventLabels(p.History.Events()))

	// THEN charges add every stage once, consultation twice, transport once
	assert.Equal(t, 1.0+2+4+8+16+4, p.Charges)

	// THEN the transport sub-events span the fixed transport duration
	transportEnd, _ := p.History.First(LabelTransportEnd)
	assert.Equal(t, TransportDuration, transportEnd.Timestamp)

	// THEN the patient is discharged, released everywhere and treated by its physician
	assert.True(t, p.Discharged())
	assert.Nil(t, p.Location)
	assert.Equal(t, 0, shock.Occupancy())
	assert.Equal(t, 0, lab.Occupancy())
	for _, s := range d.Registry().Staff() {
		assert.True(t, s.Idle(), "%v must be idle", s)
	}
	require.NotNil(t, p.Physician)
	assert.Equal(t, []*Patient{p}, p.Physician.Treated())
	assert.Empty(t, p.Physician.Overseen())
	assert.Empty(t, d.ActivePatients())
	assert.Equal(t, InsuranceGold, p.Insurance)
}

func TestDepartment_TwoPatientsSameInstant_FIFO(t *testing.T) {
	// GIVEN one nurse and no installation room, triage lasting 1
	d := newZeroDurationDepartment(t)
	mustAddStaff(t, d, "Nurse")
	require.NoError(t, d.SetStageDuration("Triage", DistDeterministic, 1))

	// WHEN three patients are admitted at the same instant
	var ids []int
	for _, name := range []string{"A", "B", "C"} {
		id, err := d.AdmitPatient(name, "Test", "none", 4)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	drain(t, d, 100)

	// THEN they are triaged in admission order, one after another
	for i, id := range ids {
		p, err := d.Patient(id)
		require.NoError(t, err)
		begin, ok := p.History.First("Triage beginning")
		require.True(t, ok, "patient %d was never triaged", id)
		assert.Equal(t, float64(i), begin.Timestamp, "patient %s", p.Name)
	}

	// THEN with no box room all three wait for installation in arrival order
	installation, err := d.Stage("Installation")
	require.NoError(t, err)
	assert.Equal(t, ids, patientIDs(installation.Queue.Items()))
	for _, id := range ids {
		p, _ := d.Patient(id)
		assert.Equal(t, PatientWaiting, p.State)
	}
}

func TestDepartment_AddingStaff_WakesBlockedStage(t *testing.T) {
	// GIVEN a patient waiting for triage with no nurse
	d := newZeroDurationDepartment(t)
	id, err := d.AdmitPatient("", "", "", 3)
	require.NoError(t, err)
	p, _ := d.Patient(id)
	require.Equal(t, PatientWaiting, p.State)

	// WHEN a nurse is hired
	mustAddStaff(t, d, "Nurse")

	// THEN triage starts at once
	assert.Equal(t, PatientRegistering, p.State)
	assert.Equal(t, "Patient", p.Name)
	assert.Equal(t, "1", p.Surname)
}

func TestDepartment_RoutingWakesFinishingStage(t *testing.T) {
	// GIVEN one nurse, triage lasting 1, two patients; patient 1 blocks in installation
	d := newZeroDurationDepartment(t)
	mustAddStaff(t, d, "Nurse")
	require.NoError(t, d.SetStageDuration("Triage", DistDeterministic, 1))
	_, err := d.AdmitPatient("A", "", "", 5)
	require.NoError(t, err)
	id2, err := d.AdmitPatient("B", "", "", 5)
	require.NoError(t, err)

	// WHEN patient 1's triage ends
	require.NoError(t, d.ExecuteNext())

	// THEN the released nurse immediately takes patient 2 in triage
	p2, _ := d.Patient(id2)
	assert.Equal(t, PatientRegistering, p2.State)
	assert.Equal(t, 1.0, d.Time())
}
