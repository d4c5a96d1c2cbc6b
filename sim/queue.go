// Implements the WaitQueue, which holds the patients waiting for a stage.
// Patients are enqueued when routed to the stage and leave from the front only.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue represents a FIFO queue of patients waiting to be admitted to a stage.
type WaitQueue struct {
	queue []*Patient
}

// Enqueue adds a patient to the back of the wait queue.
func (wq *WaitQueue) Enqueue(p *Patient) {
	wq.queue = append(wq.queue, p)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range wq.queue {
		sb.WriteString(fmt.Sprint(p.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of patients in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the patient at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Patient {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Dequeue removes and returns the patient at the front of the queue, or nil.
func (wq *WaitQueue) Dequeue() *Patient {
	if len(wq.queue) == 0 {
		return nil
	}
	p := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return p
}

// Contains reports whether p is waiting in the queue.
func (wq *WaitQueue) Contains(p *Patient) bool {
	for _, q := range wq.queue {
		if q == p {
			return true
		}
	}
	return false
}

// Items returns a copy of the queue contents, front first.
func (wq *WaitQueue) Items() []*Patient {
	return append([]*Patient(nil), wq.queue...)
}
