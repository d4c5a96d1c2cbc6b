package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simergy/simergy/sim"
	"github.com/simergy/simergy/sim/trace"
)

func testScenario(t *testing.T) *sim.Scenario {
	t.Helper()
	sc, err := sim.ParseScenario([]byte(`
name: Ward
seed: 11
staff:
  - {role: Nurse, count: 2}
  - {role: Physician, count: 2}
  - {role: Transporter, count: 1}
rooms:
  - {type: ShockRoom, name: S1, capacity: 1}
  - {type: BoxRoom, name: B1, capacity: 3}
  - {type: BloodTestRoom, name: L1, capacity: 1}
  - {type: XRayRoom, name: X1, capacity: 1}
  - {type: MRIRoom, name: M1, capacity: 1}
arrivals:
  2: {type: exponential, params: [0.05]}
  5: {type: uniform, params: [5, 15]}
stages:
  Consultation: {cost: 25}
`))
	require.NoError(t, err)
	return sc
}

func TestRunScenario_TraceDisabled(t *testing.T) {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelNone})
	report, err := runScenario(testScenario(t), 300, st)
	require.NoError(t, err)

	assert.Equal(t, "Ward", report.Department)
	assert.Equal(t, int64(11), report.Seed)
	assert.LessOrEqual(t, report.Time, 300.0)
	assert.Positive(t, report.Patients)
	assert.LessOrEqual(t, report.Discharged, report.Patients)
	assert.Nil(t, report.Trace)
	assert.Empty(t, st.Events)
}

func TestRunScenario_SameSeedSameReport(t *testing.T) {
	// GIVEN two runs of the same scenario
	a, err := runScenario(testScenario(t), 500, nil)
	require.NoError(t, err)
	b, err := runScenario(testScenario(t), 500, nil)
	require.NoError(t, err)

	// THEN the reports are identical
	assert.Equal(t, a, b)
}

func TestRunScenario_TraceEvents(t *testing.T) {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
	report, err := runScenario(testScenario(t), 300, st)
	require.NoError(t, err)

	require.NotNil(t, report.Trace)
	assert.Equal(t, len(st.Events), report.Trace.TotalEvents)
	assert.Equal(t, report.Patients, report.Trace.UniquePatients)
	assert.Equal(t, report.Discharged, report.Trace.DischargedCount)
	assert.Equal(t, report.Patients, report.Trace.LabelDistribution[sim.LabelArrival])

	// WHEN the report is written
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, st))

	// THEN it is valid JSON carrying the events
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Ward", doc["department"])
	events, ok := doc["events"].([]any)
	require.True(t, ok)
	assert.Len(t, events, len(st.Events))
}

func TestRunScenario_InvalidScenario(t *testing.T) {
	sc := testScenario(t)
	sc.Rooms[0].Capacity = 0
	_, err := runScenario(sc, 10, nil)
	assert.ErrorIs(t, err, sim.ErrInvalidCapacity)
}
