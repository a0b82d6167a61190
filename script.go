package buildscript

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Script is a set of named build tasks with declared dependencies.
type Script[State any] struct {
	Name   string
	Logger Logger
	Tasks  Tasks[State]
}

func NewScript[State any](name string, tasks Tasks[State], opts ...ScriptOption[State]) *Script[State] {
	s := &Script[State]{
		Name:  name,
		Tasks: tasks,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the requested tasks and everything they depend on. Tasks run
// in parallel, each gated on its dependencies; after the run stage every
// resolved task is cleaned up in reverse dependency order, failed runs
// included.
func (s *Script[State]) Run(ctx context.Context, state *State, tasks ...string) error {
	ctx = scriptContext(ctx, s.Name)

	topology, err := s.BuildTopology(ctx, tasks...)
	if err != nil {
		return fmt.Errorf("building topology: %q: %s: %w", s.Name, tasks, err)
	}

	var ae AggregatedError

	s.runStage(ctx, topology, &ae, state)
	s.cleanupStage(ctx, topology, &ae, state)

	return ae.Join()
}

// Main is a convenience wrapper around Run for package main: it cancels on
// SIGINT/SIGTERM and exits non-zero on failure.
func (s *Script[State]) Main(state *State, tasks ...string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx, state, tasks...); err != nil {
		s.getLogger().Log(
			zapcore.ErrorLevel,
			"script failed",
			zap.String("buildscript.script", s.Name),
			zap.Error(err),
		)
		os.Exit(1)
	}
}

func (s *Script[State]) getLogger() Logger {
	if s.Logger == nil {
		return zap.L()
	}
	return s.Logger
}

func (s *Script[State]) runStage(ctx context.Context, t *Topology[State], ae *AggregatedError, state *State) {
	log := s.getLogger()

	zf := []zap.Field{
		zap.String("buildscript.script", s.Name),
	}

	semaphores := make(map[string]*Semaphore)
	for _, n := range t.OrderedTaskNames {
		semaphores[n] = NewSemaphore()
	}

	wg := sync.WaitGroup{}
	for _, name := range t.OrderedTaskNames {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer semaphores[name].Release()

			tf := append(zf, zap.String("buildscript.task", name))

			log.Log(
				zapcore.DebugLevel,
				fmt.Sprintf("running task: waiting for dependencies: %s", t.FullDependencies[name]),
				tf...,
			)

			// wait for dependencies
			for _, d := range t.FullDependencies[name] {
				semaphores[d].Wait()
			}

			// some dependency failed
			if !ae.Empty() {
				return
			}

			log.Log(zapcore.InfoLevel, "running task", tf...)
			if err := s.Tasks[name].Run(taskContext(ctx, name), state); err != nil {
				log.Log(zapcore.WarnLevel, "task failed to run", append(tf, zap.Error(err))...)
				ae.Errorf("running task: %q.%q: %w", s.Name, name, err)
			}
		}()
	}
	wg.Wait()
}

func (s *Script[State]) cleanupStage(ctx context.Context, t *Topology[State], ae *AggregatedError, state *State) {
	log := s.getLogger()

	zf := []zap.Field{
		zap.String("buildscript.script", s.Name),
	}

	for _, name := range t.ReverseOrderedTaskNames {
		tf := append(zf, zap.String("buildscript.task", name))

		log.Log(zapcore.DebugLevel, "cleaning up task", tf...)
		if err := s.Tasks[name].Cleanup(taskContext(ctx, name), state); err != nil {
			log.Log(zapcore.WarnLevel, "task failed to clean up", append(tf, zap.Error(err))...)
			ae.Errorf("cleaning up task: %q.%q: %w", s.Name, name, err)
		}
	}
}
