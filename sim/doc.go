// Package sim provides the discrete-event engine of an emergency department.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - patient.go: Patient lifecycle (waiting → being serviced → discharged)
//   - stage.go: the workflow stages, their admission test and routing
//   - scheduler.go: the virtual clock and the (timestamp, sequence) task queue
//
// # Architecture
//
// A Department owns everything: the Registry of staff and rooms, the seven
// stages in insertion order, one ArrivalGenerator per severity level and the
// Scheduler. Tasks run to completion; admissions triggered by a task
// (tryAdvance on the routed-into stage, then on every stage) run inline
// before the next task is popped.
//
// Randomness comes from a PartitionedRNG: each arrival level, each stage and
// the consultation branch draw from their own PCG stream derived from the
// department seed, so a seed fully determines a run.
//
// Sub-packages:
//   - sim/trace/: patient-event trace recording
//
// # Key Interfaces
//
//   - Distribution: samples non-negative durations (deterministic, uniform, exponential)
//   - Task: a deferred action (ArrivalTask, EndServiceTask)
package sim
