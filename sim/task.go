package sim

import "container/heap"

// TaskType names the deferred action carried by a task.
type TaskType string

const (
	TaskTypeArrival    TaskType = "Arrival"
	TaskTypeEndService TaskType = "EndService"
)

// Task is a deferred action scheduled at a virtual timestamp.
// Tasks are immutable once scheduled, except for the forced re-timestamp of
// a pending arrival (see Scheduler.Expedite).
type Task interface {
	Timestamp() float64
	// Seq is the insertion sequence number assigned by the scheduler.
	// Equal timestamps run in Seq order.
	Seq() uint64
	Type() TaskType
	Execute(d *Department)
	base() *baseTask
}

// baseTask provides the fields every task carries.
type baseTask struct {
	timestamp float64
	seq       uint64
	index     int // position in the heap, -1 when not queued
	taskType  TaskType
}

func newBaseTask(timestamp float64, taskType TaskType) baseTask {
	return baseTask{timestamp: timestamp, index: -1, taskType: taskType}
}

func (t *baseTask) Timestamp() float64 { return t.timestamp }
func (t *baseTask) Seq() uint64        { return t.seq }
func (t *baseTask) Type() TaskType     { return t.taskType }
func (t *baseTask) base() *baseTask    { return t }

// pending reports whether the task currently sits in a scheduler queue.
func (t *baseTask) pending() bool { return t.index >= 0 }

// TaskHeap implements a priority queue with deterministic ordering.
// Ordering: timestamp → insertion sequence.
type TaskHeap struct {
	tasks []Task
}

// NewTaskHeap creates an empty task heap.
func NewTaskHeap() *TaskHeap {
	h := &TaskHeap{tasks: make([]Task, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *TaskHeap) Len() int {
	return len(h.tasks)
}

// Less implements heap.Interface with deterministic ordering
func (h *TaskHeap) Less(i, j int) bool {
	ti, tj := h.tasks[i], h.tasks[j]
	if ti.Timestamp() != tj.Timestamp() {
		return ti.Timestamp() < tj.Timestamp()
	}
	return ti.Seq() < tj.Seq()
}

// Swap implements heap.Interface
func (h *TaskHeap) Swap(i, j int) {
	h.tasks[i], h.tasks[j] = h.tasks[j], h.tasks[i]
	h.tasks[i].base().index = i
	h.tasks[j].base().index = j
}

// Push implements heap.Interface
func (h *TaskHeap) Push(x any) {
	t := x.(Task)
	t.base().index = len(h.tasks)
	h.tasks = append(h.tasks, t)
}

// Pop implements heap.Interface
func (h *TaskHeap) Pop() any {
	old := h.tasks
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.tasks = old[0 : n-1]
	item.base().index = -1
	return item
}

// Peek returns the next task without removing it
func (h *TaskHeap) Peek() Task {
	if h.Len() == 0 {
		return nil
	}
	return h.tasks[0]
}
