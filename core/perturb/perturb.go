// core/perturb/perturb.go
// Override builder: applies a single perturbation target to a cloned solver
// input. The input must be a per-target working copy; Apply mutates only
// that copy and returns the realized step for the derivative denominator.

package perturb

import (
	"fmt"
	"math"

	"co2sys-core/quantity"
	"co2sys-core/solver"
	"co2sys-core/stepsize"
)

// Apply perturbs target t inside in, seeding the override value from the
// baseline result set when the caller supplied no override for it.
//
// Linear targets get values+dx. Cologarithm targets get 10^-(pK+dx) with
// pK = -log10(value): a "+dx" in log space is multiplicative in linear
// space, and the derivative computed from the returned step is
// d(output)/d(pK).
func Apply(t quantity.Target, base solver.Result, in *solver.Input, spec stepsize.Spec) (float64, error) {
	group, err := overrideGroup(t, in)
	if err != nil {
		return 0, err
	}

	// Seed from baseline if the caller supplied no override for this key.
	// Pre-existing overrides for other keys are left untouched, so
	// perturbing one constant never drops unrelated caller overrides.
	if *group == nil {
		*group = make(map[string][]float64, 1)
	}
	if _, ok := (*group)[t.Base]; !ok {
		bv, ok := base[t.BaselineKey()]
		if !ok {
			return 0, fmt.Errorf("perturb: baseline result has no %q to seed override %q", t.BaselineKey(), t.Base)
		}
		seed := make([]float64, len(bv))
		copy(seed, bv)
		(*group)[t.Base] = seed
	}

	values := (*group)[t.Base]
	if t.Colog {
		pk := make([]float64, len(values))
		for i, v := range values {
			pk[i] = -math.Log10(v)
		}
		dx, err := spec.Step(pk)
		if err != nil {
			return 0, err
		}
		for i := range values {
			values[i] = math.Pow(10, -(pk[i] + dx))
		}
		return dx, nil
	}

	dx, err := spec.Step(values)
	if err != nil {
		return 0, err
	}
	for i := range values {
		values[i] += dx
	}
	return dx, nil
}

func overrideGroup(t quantity.Target, in *solver.Input) (*map[string][]float64, error) {
	switch t.Kind {
	case quantity.Total:
		return &in.Totals, nil
	case quantity.EquilibriumIn:
		return &in.EquilibriaIn, nil
	case quantity.EquilibriumOut:
		return &in.EquilibriaOut, nil
	}
	return nil, fmt.Errorf("perturb: %q is not an override target", t.Name)
}
