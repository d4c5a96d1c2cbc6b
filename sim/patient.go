package sim

import (
	"fmt"
	"strings"
)

// Severity levels: 1 is the most urgent, 5 the least.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// PatientState is the coarse state of a patient in the department.
type PatientState string

const (
	PatientWaiting     PatientState = "waiting"
	PatientRegistering PatientState = "being-registered"
	PatientInstalling  PatientState = "being-installed"
	PatientVisiting    PatientState = "being-visited"
	PatientTransported PatientState = "being-transported"
	PatientTested      PatientState = "being-tested"
	PatientDischarged  PatientState = "discharged"
)

// Insurance is the health-insurance tier of a patient. It is carried for
// reporting and does not change the charges accrued by stages.
type Insurance string

const (
	InsuranceNone   Insurance = "none"
	InsuranceSilver Insurance = "silver"
	InsuranceGold   Insurance = "gold"
)

// ParseInsurance resolves a tier name, case-insensitively. Empty means none.
func ParseInsurance(name string) (Insurance, error) {
	switch Insurance(strings.ToLower(name)) {
	case "", InsuranceNone:
		return InsuranceNone, nil
	case InsuranceSilver:
		return InsuranceSilver, nil
	case InsuranceGold:
		return InsuranceGold, nil
	default:
		return "", fmt.Errorf("insurance %q must be gold, silver or none: %w", name, ErrInvalidInsurance)
	}
}

// Patient models one person's path through the department.
type Patient struct {
	ID          int
	Name        string
	Surname     string
	ArrivalTime float64
	Severity    int
	Insurance   Insurance

	State     PatientState
	Location  *Room  // room currently holding the patient, nil between stages
	Physician *Staff // assigned at first consultation, kept across repeat consultations

	History History
	Charges float64
}

func newPatient(id int, arrival float64, severity int) *Patient {
	return &Patient{
		ID:          id,
		Name:        "Patient",
		Surname:     fmt.Sprint(id),
		ArrivalTime: arrival,
		Severity:    severity,
		Insurance:   InsuranceNone,
		State:       PatientWaiting,
	}
}

// Discharged reports whether the patient has left the department.
func (p *Patient) Discharged() bool {
	return p.State == PatientDischarged
}

// record appends an event to the patient's history. Discharge is terminal:
// nothing is recorded after it.
func (p *Patient) record(label string, timestamp float64) {
	if p.Discharged() {
		panic(fmt.Sprintf("patient %d: event %q after discharge", p.ID, label))
	}
	p.History.Record(label, timestamp)
}

// lastPrescription returns the test named by the most recent "<Test> prescribed" event.
func (p *Patient) lastPrescription() (string, bool) {
	ev, ok := p.History.LastMatching(func(ev Event) bool {
		return strings.HasSuffix(ev.Label, " "+LabelPrescribed)
	})
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(ev.Label, " "+LabelPrescribed), true
}

func (p *Patient) String() string {
	return fmt.Sprintf("Patient{ID: %d, Name: %s %s, L%d, State: %s}", p.ID, p.Name, p.Surname, p.Severity, p.State)
}
