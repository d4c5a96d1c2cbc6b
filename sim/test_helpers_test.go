package sim

import (
	"errors"
	"testing"
)

// sequenceDistribution replays fixed values in order and then keeps
// returning the last one. Used to force consultation branches and durations.
type sequenceDistribution struct {
	values []float64
	next   int
}

func newSequence(values ...float64) *sequenceDistribution {
	return &sequenceDistribution{values: values}
}

func (s *sequenceDistribution) Sample() float64 {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

func (s *sequenceDistribution) Mean() float64 {
	sum := 0.0
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

// funcTask runs fn when executed. Lets scheduler tests observe ordering
// without a full department.
type funcTask struct {
	baseTask
	fn func()
}

func newFuncTask(timestamp float64, fn func()) *funcTask {
	return &funcTask{baseTask: newBaseTask(timestamp, TaskTypeArrival), fn: fn}
}

func (t *funcTask) Execute(*Department) {
	if t.fn != nil {
		t.fn()
	}
}

// newZeroDurationDepartment returns a department whose stages all take no time.
func newZeroDurationDepartment(t *testing.T) *Department {
	t.Helper()
	d := NewDepartment("test", 42)
	for _, kind := range StageKinds {
		if err := d.SetStageDuration(kind.String(), DistDeterministic, 0); err != nil {
			t.Fatalf("SetStageDuration(%s): %v", kind, err)
		}
	}
	return d
}

// drain executes tasks until none remain, failing after limit steps.
func drain(t *testing.T, d *Department, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		err := d.ExecuteNext()
		if errors.Is(err, ErrNoTasks) {
			return
		}
		if err != nil {
			t.Fatalf("ExecuteNext: %v", err)
		}
	}
	t.Fatalf("department still has %d pending tasks after %d steps", d.PendingTasks(), limit)
}

func eventLabels(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Label
	}
	return out
}

func mustAddStaff(t *testing.T, d *Department, roles ...string) {
	t.Helper()
	for _, role := range roles {
		if _, err := d.AddStaff(role); err != nil {
			t.Fatalf("AddStaff(%s): %v", role, err)
		}
	}
}

func mustAddNamedStaff(t *testing.T, d *Department, role, name, surname string) *Staff {
	t.Helper()
	s, err := d.AddNamedStaff(role, name, surname)
	if err != nil {
		t.Fatalf("AddNamedStaff(%s): %v", role, err)
	}
	return s
}

func mustAddRoom(t *testing.T, d *Department, roomType, name string, capacity int) *Room {
	t.Helper()
	room, err := d.AddRoom(roomType, name, capacity)
	if err != nil {
		t.Fatalf("AddRoom(%s): %v", roomType, err)
	}
	return room
}
