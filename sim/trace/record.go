// Package trace provides patient-event trace recording for post-run analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventRecord captures one event appended to a patient's history.
type EventRecord struct {
	PatientID int     `json:"patient_id"`
	Label     string  `json:"label"`
	Clock     float64 `json:"clock"`
}

// DischargeLabel is the label that closes a patient's history.
const DischargeLabel = "Discharged"
