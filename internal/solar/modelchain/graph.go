package modelchain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidGraph indicates a malformed step graph definition.
	ErrInvalidGraph = errors.New("invalid step graph")
	// ErrCycleFound indicates the step dependencies contain a cycle.
	ErrCycleFound = errors.New("cycle detected")
)

// step is one named stage of the simulation pipeline. Its run function
// reads the outputs of its dependencies from the shared state and writes
// its own.
type step struct {
	name string
	deps []string
	run  func(*runState) error
}

// stepGraph is a validated DAG of pipeline steps with a deterministic
// topological order.
type stepGraph struct {
	steps map[string]*step
	order []string
}

// newStepGraph validates the step set and computes a deterministic
// execution order. It rejects duplicate or empty step names, dependencies
// on unknown steps, and cycles.
func newStepGraph(steps []*step) (*stepGraph, error) {
	byName := make(map[string]*step, len(steps))
	for _, s := range steps {
		if s.name == "" {
			return nil, fmt.Errorf("%w: step name is required", ErrInvalidGraph)
		}
		if _, exists := byName[s.name]; exists {
			return nil, fmt.Errorf("%w: duplicate step name %q", ErrInvalidGraph, s.name)
		}
		byName[s.name] = s
	}

	indeg := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for _, s := range steps {
		if _, ok := indeg[s.name]; !ok {
			indeg[s.name] = 0
		}
		for _, dep := range s.deps {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("%w: step %q depends on unknown step %q", ErrInvalidGraph, s.name, dep)
			}
			if dep == s.name {
				return nil, fmt.Errorf("%w: step %q depends on itself", ErrInvalidGraph, s.name)
			}
			indeg[s.name]++
			dependents[dep] = append(dependents[dep], s.name)
		}
	}

	// Kahn's algorithm with a sorted ready list so the order is stable
	// across runs.
	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(steps))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, dep := range next {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
				sort.Strings(ready)
			}
		}
	}

	if len(order) != len(steps) {
		var stuck []string
		for name, d := range indeg {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: involving %s", ErrCycleFound, strings.Join(stuck, ", "))
	}

	return &stepGraph{steps: byName, order: order}, nil
}

// Order returns the step names in execution order.
func (g *stepGraph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g *stepGraph) execute(state *runState) error {
	for _, name := range g.order {
		if err := state.ctx.Err(); err != nil {
			return err
		}
		if err := g.steps[name].run(state); err != nil {
			return fmt.Errorf("step %s: %w", name, err)
		}
	}
	return nil
}
