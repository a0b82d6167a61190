package buildscript

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stevenle/topsort/v2"
)

type Topology[State any] struct {
	RequestedTaskNames      []string
	Graph                   *topsort.Graph[string]
	OrderedTaskNames        []string
	ReverseOrderedTaskNames []string
	DirectDependencies      map[string][]string
	FullDependencies        map[string][]string
}

func (s *Script[State]) BuildTopology(ctx context.Context, requested ...string) (*Topology[State], error) {
	t := &Topology[State]{
		RequestedTaskNames: requested,
		Graph:              topsort.NewGraph[string](),
		DirectDependencies: make(map[string][]string),
		FullDependencies:   make(map[string][]string),
	}

	// all tasks that are required to run `requested`
	resolved := make([]string, 0, len(requested))
	resolved = append(resolved, requested...)

	var finished bool
	for !finished {
		finished = true

		for _, name := range resolved {
			if _, ok := t.DirectDependencies[name]; ok {
				continue
			}

			task, ok := s.Tasks[name]
			if !ok {
				return nil, fmt.Errorf("task not registered: %q", name)
			}

			t.DirectDependencies[name] = task.Dependencies(ctx)
			for _, d := range t.DirectDependencies[name] {
				if _, ok := t.DirectDependencies[d]; ok {
					continue
				}

				finished = false
				resolved = append(resolved, d)
			}
		}
	}

	resolved = mapset.NewSet(resolved...).ToSlice()
	slices.Sort(resolved)

	for m, deps := range t.DirectDependencies {
		for _, d := range deps {
			t.Graph.AddEdge(m, d)
		}
	}

	t.OrderedTaskNames = make([]string, 0, len(resolved))
	accounted := mapset.NewSetWithSize[string](len(resolved))

	for _, root := range resolved {
		deps, err := t.Graph.TopSort(root)
		if err != nil {
			return nil, fmt.Errorf("sorting dependencies of %q: %w", root, err)
		}

		// TopSort returns root last, so everything before it is the full
		// transitive dependency set in execution order.
		t.FullDependencies[root] = deps[:len(deps)-1]

		for _, d := range deps {
			if !accounted.Contains(d) {
				t.OrderedTaskNames = append(t.OrderedTaskNames, d)
				accounted.Add(d)
			}
		}
	}

	t.ReverseOrderedTaskNames = make([]string, len(t.OrderedTaskNames))
	copy(t.ReverseOrderedTaskNames, t.OrderedTaskNames)
	slices.Reverse(t.ReverseOrderedTaskNames)

	return t, nil
}
