package sim

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// KPI names accepted by ComputeKPI. Each has a long and a short form.
const (
	KPILengthOfStay       = "length-of-stay"
	KPILengthOfStayShort  = "los"
	KPIDoorToDoctor       = "door-to-doctor-time"
	KPIDoorToDoctorShort  = "dtdt"
	consultationBeginning = "Consultation beginning"
)

// ComputeKPI returns the mean of the named KPI over the department's patients.
// Returns ErrUnknownKPI for any other name and ErrNoData when no patient
// contributes a sample.
func (d *Department) ComputeKPI(kind string) (float64, error) {
	samples, err := d.kpiSamples(kind)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("%s: %w", kind, ErrNoData)
	}
	return stat.Mean(samples, nil), nil
}

func (d *Department) kpiSamples(kind string) ([]float64, error) {
	switch strings.ToLower(kind) {
	case KPILengthOfStay, KPILengthOfStayShort:
		return lengthsOfStay(d.patients), nil
	case KPIDoorToDoctor, KPIDoorToDoctorShort:
		return doorToDoctorTimes(d.patients), nil
	default:
		return nil, fmt.Errorf("KPI %q must be %s or %s: %w", kind, KPILengthOfStay, KPIDoorToDoctor, ErrUnknownKPI)
	}
}

// lengthsOfStay is the time between arrival and the latest history event,
// for discharged and current patients alike.
func lengthsOfStay(patients []*Patient) []float64 {
	out := make([]float64, 0, len(patients))
	for _, p := range patients {
		last, ok := p.History.Last()
		if !ok {
			continue
		}
		out = append(out, last.Timestamp-p.ArrivalTime)
	}
	return out
}

// doorToDoctorTimes is the time between arrival and the first consultation,
// for patients who have been seen by a physician.
func doorToDoctorTimes(patients []*Patient) []float64 {
	out := make([]float64, 0, len(patients))
	for _, p := range patients {
		ev, ok := p.History.First(consultationBeginning)
		if !ok {
			continue
		}
		out = append(out, ev.Timestamp-p.ArrivalTime)
	}
	return out
}

// KPIStats describes the distribution of one KPI over the patient population.
type KPIStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
}

// KPISummary holds both KPIs, nil when no patient contributes.
type KPISummary struct {
	LengthOfStay *KPIStats `json:"length_of_stay,omitempty"`
	DoorToDoctor *KPIStats `json:"door_to_doctor_time,omitempty"`
}

// Summary computes count, mean and percentiles of every KPI.
func (d *Department) Summary() KPISummary {
	return KPISummary{
		LengthOfStay: newKPIStats(lengthsOfStay(d.patients)),
		DoorToDoctor: newKPIStats(doorToDoctorTimes(d.patients)),
	}
}

func newKPIStats(samples []float64) *KPIStats {
	if len(samples) == 0 {
		return nil
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return &KPIStats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}
