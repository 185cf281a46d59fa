package detect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/chazu/jointscan/pkg/model"
)

var (
	// ErrEmptyInput is returned when there are no components to compare.
	ErrEmptyInput = errors.New("detect: empty or nil component list")

	// ErrNilComponent is returned when the component list contains nil.
	ErrNilComponent = errors.New("detect: nil component")
)

// Detector runs the pairwise sweep with a fixed set of options.
type Detector struct {
	opts Options
}

// New returns a Detector. Unset options take their defaults.
func New(opts Options) *Detector {
	return &Detector{opts: opts}
}

// Detect compares every pair of components with DefaultOptions and appends
// the resulting joints to them.
func Detect(components []*model.Component) (*Report, error) {
	return New(DefaultOptions()).DetectComponents(context.Background(), components)
}

// Detect runs the sweep over asm's components.
func (d *Detector) Detect(ctx context.Context, asm *model.Assembly) (*Report, error) {
	if asm == nil {
		return nil, ErrEmptyInput
	}
	return d.DetectComponents(ctx, asm.Components)
}

// pairStep identifies the pair at one step of the sweep.
type pairStep struct{ i, j int }

// DetectComponents compares each unordered pair (i < j) in ascending order.
// Pairs are classified first, optionally in parallel; joints, merge groups
// and OnPair callbacks are then applied in sweep order. If ctx is cancelled
// before classification finishes the components are left untouched.
func (d *Detector) DetectComponents(ctx context.Context, components []*model.Component) (*Report, error) {
	if len(components) == 0 {
		return nil, ErrEmptyInput
	}
	for i, c := range components {
		if c == nil {
			return nil, fmt.Errorf("detect: component #%d: %w", i, ErrNilComponent)
		}
	}
	opts := d.opts.normalized()
	log := opts.Logger

	n := len(components)
	shapes := make([]shape, n)
	for i, c := range components {
		shapes[i] = newShape(c)
	}

	steps := make([]pairStep, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			steps = append(steps, pairStep{i, j})
		}
	}
	results := make([]pairResult, len(steps))

	classify := func(k int) {
		s := steps[k]
		results[k] = classifyPair(components[s.i], components[s.j], shapes[s.i], shapes[s.j], opts.Tolerance)
	}

	if opts.Workers > 1 && len(steps) > 1 {
		pool := newWorkerPool(opts.Workers)
		work := make([]func(), len(steps))
		for k := range steps {
			work[k] = func() {
				if ctx.Err() == nil {
					classify(k)
				}
			}
		}
		pool.executeAll(work)
		pool.close()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	} else {
		for k := range steps {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			classify(k)
		}
	}

	report := newReport(n, len(steps))
	groups := newUnionFind(n)
	for k, s := range steps {
		a, b := components[s.i], components[s.j]
		r := results[k]

		log.Debug("comparing pair", "step", k+1, "a", a.ID, "b", b.ID, "relation", r.relation)
		report.Relations[r.relation]++

		switch r.relation {
		case RelationCoplanar:
			groups.union(s.i, s.j)
		case RelationDegenerate:
			log.Debug("degenerate pair skipped", "a", a.ID, "b", b.ID, "err", r.err)
		case RelationIntersecting:
			for _, j := range r.jointsA {
				a.AddJoint(j)
				report.Joints[j.Type]++
			}
			for _, j := range r.jointsB {
				b.AddJoint(j)
				report.Joints[j.Type]++
			}
		}

		if r.anomalous() {
			report.Anomalies = append(report.Anomalies, Anomaly{
				A: a.ID, B: b.ID, SegmentsA: r.clippedA, SegmentsB: r.clippedB, Unmatched: r.unmatched,
			})
			log.Warn("clipped segment count mismatch", "a", a.ID, "b", b.ID,
				"segments_a", r.clippedA, "segments_b", r.clippedB, "unmatched", r.unmatched)
		}

		if opts.OnPair != nil {
			opts.OnPair(PairEvent{
				Step:     k + 1,
				Total:    len(steps),
				A:        a.ID,
				B:        b.ID,
				Relation: r.relation,
				JointsA:  slices.Clone(r.jointsA),
				JointsB:  slices.Clone(r.jointsB),
				Contacts: slices.Clone(r.contacts),
				Err:      r.err,
			})
		}
	}

	for _, g := range groups.groups() {
		ids := make([]int, len(g))
		for k, idx := range g {
			ids[k] = components[idx].ID
		}
		sort.Ints(ids)
		report.CoplanarGroups = append(report.CoplanarGroups, ids)
	}

	log.Info("detection complete",
		"components", n,
		"pairs", len(steps),
		"fingers", report.Joints[model.JointFinger],
		"holes", report.Joints[model.JointHole],
		"slots", report.Joints[model.JointSlot],
		"coplanar_groups", len(report.CoplanarGroups),
		"anomalies", len(report.Anomalies))
	return report, nil
}
