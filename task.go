package buildscript

import "context"

type TaskInterface[State any] interface {
	// Dependencies reference dependency tasks by names.
	Dependencies(context.Context) []string

	// Run is called in parallel (respecting dependencies) for each resolved
	// task. Once any task fails, tasks that have not started yet are skipped.
	Run(context.Context, *State) error

	// Cleanup is called for each resolved task after the run stage, in
	// reverse dependency order, even if the task (or another one) failed.
	Cleanup(context.Context, *State) error
}

// Task is an embeddable no-op base: embed it and override the methods the
// task actually needs.
type Task[State any] struct {
	TaskInterface[State]
}

type Tasks[State any] map[string]TaskInterface[State]

var _ TaskInterface[any] = (*Task[any])(nil)

func (*Task[State]) Dependencies(context.Context) []string {
	return nil
}

func (*Task[State]) Run(context.Context, *State) error {
	return nil
}

func (*Task[State]) Cleanup(context.Context, *State) error {
	return nil
}
