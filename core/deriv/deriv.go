// core/deriv/deriv.go
// Forward finite-difference differentiator. Each requested input target is
// perturbed on its own deep copy of the solver arguments and costs exactly
// one solver re-invocation; all other arguments are held at baseline.
//
// The differences are one-sided, (f(x+dx)-f(x))/dx, so accuracy is O(dx);
// the default median scaling keeps dx small relative to each variable's own
// magnitude.

package deriv

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"co2sys-core/perturb"
	"co2sys-core/quantity"
	"co2sys-core/solver"
	"co2sys-core/stepsize"
)

// Table maps output name -> input name -> derivative values, one per sample.
type Table map[string]map[string][]float64

// DefaultDx is the unscaled forward-difference step.
const DefaultDx = 1e-6

// Options configures a differentiation batch.
type Options struct {
	Dx      float64                 // 0 means DefaultDx
	Scaling stepsize.Scaling        // default Median
	Func    func([]float64) float64 // custom scaling function
	Workers int                     // parallel solver invocations; <=1 is serial
}

func (o Options) spec() stepsize.Spec {
	dx := o.Dx
	if dx == 0 {
		dx = DefaultDx
	}
	return stepsize.Spec{Dx: dx, Scaling: o.Scaling, Func: o.Func}
}

// Forward computes forward-difference derivatives of the requested outputs
// with respect to the requested inputs. It returns the derivative table and
// the realized step per input. Validation failures and solver failures leave
// no partial table behind.
func Forward(
	solve solver.Func,
	reg *quantity.Registry,
	in solver.Input,
	base solver.Result,
	of []string,
	wrt []string,
	opts Options,
) (Table, map[string]float64, error) {
	outs, err := reg.ValidateOutputs(of...)
	if err != nil {
		return nil, nil, err
	}
	targets, err := reg.ValidateInputs(wrt...)
	if err != nil {
		return nil, nil, err
	}
	spec := opts.spec()
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	for _, o := range outs {
		if _, ok := base[o]; !ok {
			return nil, nil, fmt.Errorf("deriv: baseline result has no output %q", o)
		}
	}

	type column struct {
		dx     float64
		derivs map[string][]float64 // per output
	}
	cols := make([]column, len(targets))

	one := func(i int) error {
		t := targets[i]
		work := in.Clone()
		var dx float64
		var err error
		if t.Kind == quantity.Measurement {
			dx, err = perturbMeasurement(t, &work, spec)
		} else {
			dx, err = perturb.Apply(t, base, &work, spec)
		}
		if err != nil {
			return err
		}
		plus, err := solve(work)
		if err != nil {
			return &SolverError{Wrt: t.Name, Err: err}
		}
		derivs := make(map[string][]float64, len(outs))
		for _, o := range outs {
			pv, ok := plus[o]
			if !ok {
				return fmt.Errorf("deriv: perturbed result has no output %q", o)
			}
			bv := base[o]
			if len(pv) != len(bv) {
				return fmt.Errorf("deriv: output %q changed length under perturbation (%d != %d)", o, len(pv), len(bv))
			}
			d := make([]float64, len(bv))
			for k := range bv {
				d[k] = (pv[k] - bv[k]) / dx
			}
			derivs[o] = d
		}
		cols[i] = column{dx: dx, derivs: derivs}
		return nil
	}

	if opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := range targets {
			i := i
			g.Go(func() error { return one(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i := range targets {
			if err := one(i); err != nil {
				return nil, nil, err
			}
		}
	}

	table := make(Table, len(outs))
	for _, o := range outs {
		table[o] = make(map[string][]float64, len(targets))
	}
	dxs := make(map[string]float64, len(targets))
	for i, t := range targets {
		dxs[t.Name] = cols[i].dx
		for _, o := range outs {
			if _, dup := table[o][t.Name]; dup {
				continue // never overwrite an already-stored derivative
			}
			table[o][t.Name] = cols[i].derivs[o]
		}
	}
	return table, dxs, nil
}

// perturbMeasurement perturbs a plain solver argument in place, scaling the
// step from the argument's own baseline values.
func perturbMeasurement(t quantity.Target, in *solver.Input, spec stepsize.Spec) (float64, error) {
	values, ok := in.Measurements[t.Base]
	if !ok {
		return 0, fmt.Errorf("deriv: solver input has no measurement %q", t.Base)
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
