package sim

import "fmt"

// Event labels shared by stages, arrivals and KPIs.
const (
	LabelArrival        = "Arrival"
	LabelDischarged     = "Discharged"
	LabelPrescribed     = "prescribed"
	LabelBeginning      = "beginning"
	LabelEnding         = "ending"
	LabelTransportBegin = "Transport beginning"
	LabelTransportEnd   = "Transport ending"
)

// Event is an immutable (label, timestamp) pair, the atomic unit of every
// history and the sole input to KPI computation.
type Event struct {
	Label     string  `json:"label"`
	Timestamp float64 `json:"timestamp"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s @ %g", e.Label, e.Timestamp)
}

// stageEventLabel builds "<Stage> beginning" / "<Stage> ending" labels.
func stageEventLabel(stage, phase string) string {
	return stage + " " + phase
}

// Subscriber is notified synchronously with every event appended to a History.
// Subscribers capture a lookup key (patient or staff ID), never the owner itself.
type Subscriber func(Event)

// History is an append-only record of events attached to an actor
// (patient, staff member) or to the department itself.
type History struct {
	events      []Event
	subscribers []Subscriber
}

// Append records ev and notifies subscribers in subscription order.
func (h *History) Append(ev Event) {
	h.events = append(h.events, ev)
	for _, fn := range h.subscribers {
		fn(ev)
	}
}

// Record is shorthand for Append(Event{label, timestamp}).
func (h *History) Record(label string, timestamp float64) {
	h.Append(Event{Label: label, Timestamp: timestamp})
}

// Subscribe registers fn to be called on every future Append.
func (h *History) Subscribe(fn Subscriber) {
	if fn == nil {
		panic("Subscribe: fn must not be nil")
	}
	h.subscribers = append(h.subscribers, fn)
}

// Len returns the number of recorded events.
func (h *History) Len() int {
	return len(h.events)
}

// Last returns the most recent event, or false when the history is empty.
func (h *History) Last() (Event, bool) {
	if len(h.events) == 0 {
		return Event{}, false
	}
	return h.events[len(h.events)-1], true
}

// First returns the earliest event carrying label, or false if none does.
func (h *History) First(label string) (Event, bool) {
	for _, ev := range h.events {
		if ev.Label == label {
			return ev, true
		}
	}
	return Event{}, false
}

// LastMatching returns the most recent event for which match returns true.
func (h *History) LastMatching(match func(Event) bool) (Event, bool) {
	for i := len(h.events) - 1; i >= 0; i-- {
		if match(h.events[i]) {
			return h.events[i], true
		}
	}
	return Event{}, false
}

// Events returns a copy of the recorded events in append order.
func (h *History) Events() []Event {
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}
