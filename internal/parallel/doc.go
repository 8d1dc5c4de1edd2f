// Package parallel fans independent work units out over a bounded pool of
// goroutines and reassembles their results by index.
//
// Work is described as a task list of (row, column) pairs; results are written
// to the slot named by the pair, never in completion order, so the output is
// identical for any degree of parallelism.
package parallel
