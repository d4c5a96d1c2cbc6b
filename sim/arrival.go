package sim

import "fmt"

// ArrivalTask brings one patient of a given severity level into the department.
// Name, surname and insurance may be filled in by AdmitPatient before the
// task is forced to run; otherwise the patient gets generated defaults.
type ArrivalTask struct {
	baseTask
	Level     int
	name      string
	surname   string
	insurance Insurance
}

func newArrivalTask(timestamp float64, level int) *ArrivalTask {
	return &ArrivalTask{
		baseTask:  newBaseTask(timestamp, TaskTypeArrival),
		Level:     level,
		insurance: InsuranceNone,
	}
}

func (t *ArrivalTask) Execute(d *Department) {
	d.arrive(t)
}

// ArrivalGenerator keeps exactly one pending arrival for its severity level
// once a distribution is configured.
type ArrivalGenerator struct {
	Level        int
	Distribution Distribution // inter-arrival time; nil disables automatic arrivals
	pending      *ArrivalTask
}

// Pending returns the outstanding arrival task, or nil.
func (g *ArrivalGenerator) Pending() *ArrivalTask {
	return g.pending
}

// armArrival schedules the next arrival for level if none is outstanding.
func (d *Department) armArrival(level int) {
	gen := d.arrivals[level]
	if gen.Distribution == nil || gen.pending != nil {
		return
	}
	t := newArrivalTask(d.Time()+gen.Distribution.Sample(), level)
	if err := d.scheduler.Schedule(t); err != nil {
		panic(fmt.Sprintf("armArrival: %v", err))
	}
	gen.pending = t
}

// arrive creates the patient of t, admits it to triage and re-arms the generator.
func (d *Department) arrive(t *ArrivalTask) *Patient {
	now := d.Time()
	d.nextPatientID++
	p := newPatient(d.nextPatientID, now, t.Level)
	if t.name != "" || t.surname != "" {
		p.Name, p.Surname = t.name, t.surname
	}
	p.Insurance = t.insurance

	id := p.ID
	p.History.Subscribe(func(ev Event) {
		d.notify(id, ev)
	})
	d.patients = append(d.patients, p)
	d.roster[id] = p

	p.record(LabelArrival, now)
	d.logger.Debugf("[t=%10.3f] << Arrival: patient %d, L%d", now, id, t.Level)
	d.admit(d.byKind[StageTriage], p)

	if gen := d.arrivals[t.Level]; gen.pending == t {
		gen.pending = nil
		d.armArrival(t.Level)
	}
	return p
}
