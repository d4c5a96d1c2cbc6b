package sim

import "errors"

// Configuration errors. Returned by setters before any state is touched.
var (
	ErrInvalidParams    = errors.New("invalid distribution parameters")
	ErrInvalidType      = errors.New("invalid room type")
	ErrInvalidCapacity  = errors.New("invalid room capacity")
	ErrInvalidCost      = errors.New("invalid cost")
	ErrInvalidRole      = errors.New("invalid staff role")
	ErrInvalidInsurance = errors.New("invalid health insurance")
)

// Lookup errors.
var (
	ErrUnknownStage     = errors.New("unknown stage")
	ErrUnknownLevel     = errors.New("unknown severity level")
	ErrUnknownPatient   = errors.New("unknown patient")
	ErrNoPendingArrival = errors.New("no pending arrival")
)

// Scheduling errors. Both are benign: the scheduler state is unchanged.
var (
	ErrTimeTravel = errors.New("task scheduled before current time")
	ErrNoTasks    = errors.New("no pending tasks")
)

// KPI errors.
var (
	ErrUnknownKPI = errors.New("unknown KPI")
	ErrNoData     = errors.New("no data")
)
