// Package parallel provides the worker pool that spreads escape-time work
// over CPU cores.
//
// Rendering work is data parallel: every cell of a tile depends only on its
// own plane coordinate. Callers split a phase into index ranges with Range
// (or hand ExecuteAll a slice of closures); each work item writes a disjoint
// part of the output, so no locking is needed inside a phase. Range and
// ExecuteAll return only after every item finished, which is the barrier
// between phases.
//
// Work items must not call back into the same pool: a worker blocked in
// ExecuteAll can starve the queues it is waiting on.
package parallel
