package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scheduler owns the virtual clock and the pending tasks.
// Time only moves forward, and only when a task is executed.
type Scheduler struct {
	clock   float64
	queue   *TaskHeap
	nextSeq uint64 // per-scheduler counter, makes equal-timestamp ordering replayable
}

// NewScheduler creates a scheduler at virtual time 0 with no tasks.
func NewScheduler() *Scheduler {
	return &Scheduler{queue: NewTaskHeap()}
}

// Clock returns the current virtual time.
func (s *Scheduler) Clock() float64 {
	return s.clock
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Peek returns the next task to run without removing it, or nil.
func (s *Scheduler) Peek() Task {
	return s.queue.Peek()
}

// Schedule inserts a task. Scheduling before the current clock is rejected
// with ErrTimeTravel and leaves the queue untouched.
func (s *Scheduler) Schedule(t Task) error {
	if t.Timestamp() < s.clock {
		return fmt.Errorf("%s at %g, clock is %g: %w", t.Type(), t.Timestamp(), s.clock, ErrTimeTravel)
	}
	if t.base().pending() {
		panic(fmt.Sprintf("Schedule: %s task already pending", t.Type()))
	}
	s.nextSeq++
	t.base().seq = s.nextSeq
	heap.Push(s.queue, t)
	return nil
}

// ExecuteNext pops the earliest task, advances the clock to its timestamp and
// runs it against d. Returns ErrNoTasks, with no state change, when nothing is pending.
func (s *Scheduler) ExecuteNext(d *Department) error {
	if s.queue.Len() == 0 {
		return ErrNoTasks
	}
	t := heap.Pop(s.queue).(Task)

	// Clock monotonicity
	if t.Timestamp() < s.clock {
		panic(fmt.Sprintf("Clock went backwards: %g < %g", t.Timestamp(), s.clock))
	}
	s.clock = t.Timestamp()
	logrus.Debugf("[t=%10.3f] Executing %s task #%d", s.clock, t.Type(), t.Seq())
	t.Execute(d)
	return nil
}

// RunFor executes every task whose timestamp lies within duration of the
// call's start time, tasks scheduled meanwhile included. An instant at the
// window's end is applied as a whole, so RunFor(0) finishes the current
// instant. It stops before the first task beyond start+duration, leaving it
// pending. Returns the new clock.
func (s *Scheduler) RunFor(d *Department, duration float64) float64 {
	start := s.clock
	for {
		next := s.queue.Peek()
		if next == nil || next.Timestamp()-start > duration {
			break
		}
		if err := s.ExecuteNext(d); err != nil {
			break
		}
	}
	return s.clock
}

// Expedite rewrites a pending task's timestamp to the current clock and
// removes it from the queue so the caller can run it immediately.
// This is the only mutation allowed on a scheduled task.
func (s *Scheduler) Expedite(t Task) bool {
	b := t.base()
	if !b.pending() {
		return false
	}
	heap.Remove(s.queue, b.index)
	b.timestamp = s.clock
	return true
}
