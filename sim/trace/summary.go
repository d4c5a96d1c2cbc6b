package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents       int            `json:"total_events"`
	UniquePatients    int            `json:"unique_patients"`
	DischargedCount   int            `json:"discharged"`
	LastClock         float64        `json:"last_clock"`
	LabelDistribution map[string]int `json:"labels"` // event label → occurrences
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LabelDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	patients := make(map[int]bool)
	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		patients[e.PatientID] = true
		summary.LabelDistribution[e.Label]++
		if e.Label == DischargeLabel {
			summary.DischargedCount++
		}
		if e.Clock > summary.LastClock {
			summary.LastClock = e.Clock
		}
	}
	summary.UniquePatients = len(patients)

	return summary
}
