package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"list", []string{"list"}},
		{"addRoom  ED\tBoxRoom B1 2", []string{"addRoom", "ED", "BoxRoom", "B1", "2"}},
		{`addPatient ED "Jean Paul" Sartre gold`, []string{"addPatient", "ED", "Jean Paul", "Sartre", "gold"}},
		{`createED ""`, []string{"createED", ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitFields(tt.line), "line %q", tt.line)
	}
}

func TestParseServiceCommand(t *testing.T) {
	stage, ok := parseServiceCommand("setRegistrationCost", "Cost")
	assert.True(t, ok)
	assert.Equal(t, "Triage", stage, "Registration is an alias of Triage")

	stage, ok = parseServiceCommand("setMRIDuration", "Duration")
	assert.True(t, ok)
	assert.Equal(t, "MRI", stage)

	_, ok = parseServiceCommand("setDuration", "Duration")
	assert.False(t, ok)

	level, ok := parseArrivalCommand("setL3arrivalDist")
	assert.True(t, ok)
	assert.Equal(t, 3, level)

	_, ok = parseArrivalCommand("setLxarrivalDist")
	assert.False(t, ok)
}

// run feeds every line to a fresh console and returns its output.
func run(t *testing.T, lines ...string) (*Console, string) {
	t.Helper()
	var out bytes.Buffer
	c := NewConsole(&out, 42)
	for _, line := range lines {
		if c.Execute(line) {
			break
		}
	}
	return c, out.String()
}

func TestConsole_DoorToDoctorFlow(t *testing.T) {
	// GIVEN a department with deterministic triage and installation
	c, out := run(t,
		"createED ED 1",
		"addNurse ED",
		"addPhysician ED Gregory House",
		"addRoom ED BoxRoom B1 1",
		"setRegistrationDuration ED deterministic 2",
		"setInstallationDuration ED deterministic 3",
		"addPatient ED Ada Lovelace gold 4",
		// WHEN triage and installation complete
		"executeEvents ED 2",
		"kpi ED dtdt",
	)

	// THEN the patient reaches the physician at t=5
	assert.Contains(t, out, "Emergency Department ED created")
	assert.Contains(t, out, "Physician Gregory House successfully added to ED")
	assert.Contains(t, out, "Patient Ada Lovelace with ID 1 successfully arrived to ED")
	assert.Contains(t, out, "Hospital ED is now at time 5")
	assert.Contains(t, out, "Door-to-doctor-time for hospital ED is 5")
	assert.NotContains(t, out, "Error:")

	d := c.Department("ED")
	require.NotNil(t, d)
	p, err := d.FindPatient("Ada", "Lovelace")
	require.NoError(t, err)
	require.NotNil(t, p.Physician)
	assert.Equal(t, "House", p.Physician.Surname)
}

func TestConsole_ErrorsDoNotStopTheSession(t *testing.T) {
	_, out := run(t,
		"frobnicate",
		"addRoom Nowhere BoxRoom B1 1",
		"createED ED",
		"addRoom ED Kitchen K1 1",
		"addRoom ED BoxRoom B1 zero",
		"setL9arrivalDist ED exponential 0.1",
		"kpi ED los",
		"kpi ED happiness",
		"executeEvent ED",
		"list",
	)

	assert.Contains(t, out, "the command frobnicate doesn't exist")
	assert.Contains(t, out, "there is no Emergency Department called Nowhere")
	assert.Contains(t, out, "invalid room type")
	assert.Contains(t, out, "4th argument <capacity> must be an integer")
	assert.Contains(t, out, "unknown severity level")
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "unknown KPI")
	assert.Contains(t, out, "No more events to execute in ED")
	assert.Contains(t, out, "- ED")
}

func TestConsole_Stop(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, 1)
	err := c.Run(strings.NewReader("createED A\nstop\ncreateED B\n"), false)
	require.NoError(t, err)
	assert.NotNil(t, c.Department("A"))
	assert.Nil(t, c.Department("B"), "commands after stop must not run")
	assert.Contains(t, out.String(), "Stopping")
}

func TestConsole_Display(t *testing.T) {
	_, out := run(t,
		"createED ED",
		"addNurse ED",
		"addPatient ED Ada Lovelace silver 2",
		"display ED Ada Lovelace",
		"display ED Alan Turing",
	)
	assert.Contains(t, out, `"surname": "Lovelace"`)
	assert.Contains(t, out, `"insurance": "silver"`)
	assert.Contains(t, out, "unknown patient")
}

func TestConsole_RunTest(t *testing.T) {
	// GIVEN a command file that builds and simulates a department
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.txt")
	script := strings.Join([]string{
		"createED Night 3",
		"addNurse Night",
		"addPhysician Night",
		"addTransporter Night",
		"addRoom Night ShockRoom S1 1",
		"addRoom Night BoxRoom B1 2",
		"setL1arrivalDist Night exponential 0.05",
		"setL4arrivalDist Night uniform 5 15",
		"simulate Night 120",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	// WHEN the console runs it
	c, out := run(t, "runtest "+path)

	// THEN the department advanced without errors
	assert.NotContains(t, out, "Error:")
	d := c.Department("Night")
	require.NotNil(t, d)
	assert.LessOrEqual(t, d.Time(), 120.0)
	assert.NotEmpty(t, d.Patients(), "level 4 arrives at least every 15 time units")
}

func TestConsole_RunTest_MissingFile(t *testing.T) {
	_, out := run(t, "runtest "+filepath.Join(t.TempDir(), "missing.txt"))
	assert.Contains(t, out, "opening command file")
}
