package buildscript

import "context"

// NoopTask is a pure grouping node: it does nothing itself and only pulls in
// its dependencies.
type NoopTask[State any] struct {
	Task[State]

	DependsOn []string
}

func (t *NoopTask[State]) Dependencies(context.Context) []string {
	return t.DependsOn
}
