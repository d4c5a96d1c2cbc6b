package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/simergy/simergy/sim"
)

// Console interprets the line-oriented command language. It owns the map of
// departments by name; the sim package keeps no global state.
type Console struct {
	out         io.Writer
	seed        int64
	departments map[string]*sim.Department
}

// NewConsole creates a console writing to out. Departments created without an
// explicit seed use seed.
func NewConsole(out io.Writer, seed int64) *Console {
	return &Console{out: out, seed: seed, departments: make(map[string]*sim.Department)}
}

// Department returns a department created by createED, or nil.
func (c *Console) Department(name string) *sim.Department {
	return c.departments[name]
}

// Run reads commands from in until "stop" or end of input.
func (c *Console) Run(in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(c.out, ">> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if c.Execute(scanner.Text()) {
			return nil
		}
	}
}

// RunFile executes every line of a command file. A "stop" line ends the file early.
func (c *Console) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening command file: %w", err)
	}
	defer f.Close()
	return c.Run(f, false)
}

// Execute runs one command line and reports whether the console should stop.
// Errors are printed, never returned: a bad line does not end a session.
func (c *Console) Execute(line string) (stop bool) {
	args := splitFields(line)
	if len(args) == 0 {
		return false
	}
	name, args := args[0], args[1:]
	if name == "stop" {
		fmt.Fprintln(c.out, "---- Stopping the SimErgy terminal ----")
		return true
	}
	if err := c.dispatch(name, args); err != nil {
		logrus.Debugf("command %q failed: %v", line, err)
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return false
}

// Legacy service names used by set<Service>Duration / set<Service>Cost.
var serviceAliases = map[string]string{"Registration": "Triage"}

func (c *Console) dispatch(name string, args []string) error {
	switch name {
	case "createED":
		return c.createED(args)
	case "addRoom":
		return c.addRoom(args)
	case "addNurse":
		return c.addStaff(sim.RoleNurse, args)
	case "addPhysician":
		return c.addStaff(sim.RolePhysician, args)
	case "addTransporter":
		return c.addStaff(sim.RoleTransporter, args)
	case "addPatient":
		return c.addPatient(args)
	case "executeEvent":
		return c.executeEvents(args, 1)
	case "executeEvents":
		return c.executeEvents(args, -1)
	case "simulate":
		return c.simulate(args)
	case "kpi":
		return c.kpi(args)
	case "display":
		return c.display(args)
	case "list":
		return c.list()
	case "runtest":
		if len(args) != 1 {
			return fmt.Errorf("runtest requires exactly 1 argument <Filename>")
		}
		return c.RunFile(args[0])
	case "help":
		fmt.Fprint(c.out, helpText)
		return nil
	}

	if level, ok := parseArrivalCommand(name); ok {
		return c.setArrival(level, args)
	}
	if stage, ok := parseServiceCommand(name, "Duration"); ok {
		return c.setDuration(stage, args)
	}
	if stage, ok := parseServiceCommand(name, "Cost"); ok {
		return c.setCost(stage, args)
	}
	return fmt.Errorf("the command %s doesn't exist, type help to see the list of possible commands", name)
}

// parseArrivalCommand matches setL<n>arrivalDist.
func parseArrivalCommand(name string) (int, bool) {
	if !strings.HasPrefix(name, "setL") || !strings.HasSuffix(name, "arrivalDist") {
		return 0, false
	}
	level, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "setL"), "arrivalDist"))
	if err != nil {
		return 0, false
	}
	return level, true
}

// parseServiceCommand matches set<Service><suffix>.
func parseServiceCommand(name, suffix string) (string, bool) {
	if !strings.HasPrefix(name, "set") || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	stage := strings.TrimSuffix(strings.TrimPrefix(name, "set"), suffix)
	if stage == "" {
		return "", false
	}
	if alias, ok := serviceAliases[stage]; ok {
		stage = alias
	}
	return stage, true
}

func (c *Console) lookup(args []string, usage string, minArgs int) (*sim.Department, error) {
	if len(args) < minArgs {
		return nil, fmt.Errorf("%s", usage)
	}
	d, ok := c.departments[args[0]]
	if !ok {
		return nil, fmt.Errorf("there is no Emergency Department called %s, you can create it with createED %s", args[0], args[0])
	}
	return d, nil
}

func (c *Console) createED(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("createED requires argument <EDname>")
	}
	seed := c.seed
	if len(args) > 1 {
		s, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("2nd argument <seed> must be an integer")
		}
		seed = s
	}
	c.departments[args[0]] = sim.NewDepartment(args[0], seed)
	fmt.Fprintf(c.out, "Emergency Department %s created\n", args[0])
	return nil
}

func (c *Console) addRoom(args []string) error {
	d, err := c.lookup(args, "addRoom requires 4 arguments <EDname, RoomType, RoomName, RoomCapacity>", 4)
	if err != nil {
		return err
	}
	capacity, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("4th argument <capacity> must be an integer")
	}
	if _, err := d.AddRoom(args[1], args[2], capacity); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s of capacity %d successfully added to %s\n", args[1], args[2], capacity, args[0])
	return nil
}

func (c *Console) addStaff(role sim.Role, args []string) error {
	d, err := c.lookup(args, "argument <EDname> compulsory but not found", 1)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		if _, err := d.AddStaff(string(role)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s successfully added to %s\n", role, args[0])
		return nil
	}
	if _, err := d.AddNamedStaff(string(role), args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s %s successfully added to %s\n", role, args[1], args[2], args[0])
	return nil
}

func parseParams(raw []string) ([]float64, error) {
	params := make([]float64, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return nil, fmt.Errorf("argument(s) <DistParam> must be number(s), got %q", r)
		}
		params = append(params, v)
	}
	return params, nil
}

func (c *Console) setArrival(level int, args []string) error {
	d, err := c.lookup(args, "setL*arrivalDist requires 3 arguments <EDname, DistType, DistParams>", 3)
	if err != nil {
		return err
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}
	if err := d.SetArrivalDistribution(level, args[1], params...); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Probability distribution of patient with severity level %d successfully set for %s\n", level, args[0])
	return nil
}

func (c *Console) setDuration(stage string, args []string) error {
	d, err := c.lookup(args, "set<ServiceName>Duration requires 3 arguments <EDname, DistType, DistParams>", 3)
	if err != nil {
		return err
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}
	if err := d.SetStageDuration(stage, args[1], params...); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Duration probability distribution of %s successfully set for %s\n", stage, args[0])
	return nil
}

func (c *Console) setCost(stage string, args []string) error {
	d, err := c.lookup(args, "set<ServiceName>Cost requires 2 arguments <EDname, Cost>", 2)
	if err != nil {
		return err
	}
	cost, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("argument <Cost> must be a number")
	}
	if err := d.SetStageCost(stage, cost); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cost of %s successfully set to %g for %s\n", stage, cost, args[0])
	return nil
}

func (c *Console) addPatient(args []string) error {
	d, err := c.lookup(args, "addPatient requires 4 arguments <EDname, PatientName, PatientSurname, HealthInsurance> [<SeverityLevel>]", 4)
	if err != nil {
		return err
	}
	level := 0
	if len(args) > 4 {
		level, err = strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("5th argument <SeverityLevel> must be an integer between %d and %d", sim.MinSeverity, sim.MaxSeverity)
		}
	}
	id, err := d.AdmitPatient(args[1], args[2], args[3], level)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Patient %s %s with ID %d successfully arrived to %s\n", args[1], args[2], id, args[0])
	return nil
}

// executeEvents runs n tasks, or the count given as 2nd argument when n < 0.
func (c *Console) executeEvents(args []string, n int) error {
	usage := "executeEvents requires 2 arguments <EDname, NumberOfEvents>"
	minArgs := 2
	if n > 0 {
		usage, minArgs = "argument <EDname> compulsory but not found", 1
	}
	d, err := c.lookup(args, usage, minArgs)
	if err != nil {
		return err
	}
	if n < 0 {
		n, err = strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("2nd argument <NumberOfEvents> must be a non-negative integer")
		}
	}
	for i := 0; i < n; i++ {
		if err := d.ExecuteNext(); err != nil {
			if errors.Is(err, sim.ErrNoTasks) {
				fmt.Fprintf(c.out, "No more events to execute in %s\n", args[0])
				return nil
			}
			return err
		}
	}
	fmt.Fprintf(c.out, "Hospital %s is now at time %g\n", args[0], d.Time())
	return nil
}

func (c *Console) simulate(args []string) error {
	d, err := c.lookup(args, "simulate requires 2 arguments <EDname, DurationToSimulate>", 2)
	if err != nil {
		return err
	}
	duration, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("2nd argument <DurationToSimulate> must be a number")
	}
	fmt.Fprintf(c.out, "Hospital %s is now at time %g\n", args[0], d.RunFor(duration))
	return nil
}

var kpiTitles = map[string]string{
	sim.KPILengthOfStayShort: "Length-of-stay",
	sim.KPILengthOfStay:      "Length-of-stay",
	sim.KPIDoorToDoctorShort: "Door-to-doctor-time",
	sim.KPIDoorToDoctor:      "Door-to-doctor-time",
}

func (c *Console) kpi(args []string) error {
	d, err := c.lookup(args, "kpi requires 2 arguments <EDname, KPIname>", 2)
	if err != nil {
		return err
	}
	value, err := d.ComputeKPI(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s for hospital %s is %g\n", kpiTitles[strings.ToLower(args[1])], args[0], value)
	return nil
}

func (c *Console) display(args []string) error {
	d, err := c.lookup(args, "argument <EDname> compulsory but not found", 1)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return c.printJSON(d.Snapshot())
	}
	p, err := d.FindPatient(args[1], args[2])
	if err != nil {
		return err
	}
	snap, err := d.PatientSnapshot(p.ID)
	if err != nil {
		return err
	}
	return c.printJSON(snap)
}

func (c *Console) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

func (c *Console) list() error {
	if len(c.departments) == 0 {
		fmt.Fprintln(c.out, "There is no emergency department created. You can create one with createED <EDname>")
		return nil
	}
	names := make([]string, 0, len(c.departments))
	for name := range c.departments {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(c.out, "The existing emergency departments are:")
	for _, name := range names {
		fmt.Fprintf(c.out, "- %s\n", name)
	}
	return nil
}

// splitFields splits a command line on spaces, keeping double-quoted
// sections together and dropping the quotes.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes, started := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields
}

const helpText = `The list of possible commands is:
	stop: to quit this program
	list: to display the list of emergency departments
	createED <EDname> [<seed>]: to create an emergency department
	addRoom <EDname> <RoomType> <RoomName> <RoomCapacity>: to add a room to an ED
	addNurse|addPhysician|addTransporter <EDname> [<Name> <Surname>]: to add staff to an ED
	addPatient <EDname> <PatientName> <PatientSurname> <HealthInsurance> [<SeverityLevel>]: to admit a patient now
	setL[1-5]arrivalDist <EDname> <DistType> <DistParam1> [<DistParam2>]: to set the arrival distribution of a severity level
	set<Service>Duration <EDname> <DistType> <DistParam1> [<DistParam2>]: to set the duration distribution of a service
	set<Service>Cost <EDname> <Cost>: to set the cost of a service
	executeEvent <EDname>: to execute the next event of an ED
	executeEvents <EDname> <NumberOfEvents>: to execute the next events of an ED
	simulate <EDname> <time>: to simulate up to time units; stops before the first event past currentTime + time
	kpi <EDname> <KPIname>: to compute a KPI (los: length-of-stay, dtdt: door-to-doctor-time)
	display <EDname> [<PatientName> <PatientSurname>]: to display an ED or one of its patients
	runtest <Filename>: to execute every command of a file
`
