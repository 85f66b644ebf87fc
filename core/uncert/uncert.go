// core/uncert/uncert.go
// Law-of-error-propagation aggregation on top of the forward differentiator.
// All uncertainty sources are assumed statistically independent; there are
// no covariance terms. This is a documented simplification, not a derived
// property.

package uncert

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"co2sys-core/deriv"
	"co2sys-core/quantity"
	"co2sys-core/solver"
)

// Components maps output name -> source name -> absolute uncertainty
// contribution (|derivative| * source magnitude), one value per sample.
type Components map[string]map[string][]float64

// Propagate combines forward-difference derivatives with 1-sigma input
// uncertainty magnitudes. For each output the total is the elementwise
// root-sum-of-squares over sources, so it is always >= any single component.
//
// Magnitudes may be scalars (length 1) or per-sample arrays; for cologarithm
// sources the magnitude is in pK units.
func Propagate(
	solve solver.Func,
	reg *quantity.Registry,
	in solver.Input,
	base solver.Result,
	into []string,
	from map[string][]float64,
	opts deriv.Options,
) (map[string][]float64, Components, error) {
	sources := make([]string, 0, len(from))
	for s := range from {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	table, _, err := deriv.Forward(solve, reg, in, base, into, sources, opts)
	if err != nil {
		return nil, nil, err
	}

	components := make(Components, len(table))
	totals := make(map[string][]float64, len(table))
	for o, row := range table {
		n := 0
		for _, d := range row {
			n = len(d)
			break
		}
		perSource := make(map[string][]float64, len(sources))
		acc := make([]float64, n)
		for _, s := range sources {
			mag, err := solver.Broadcast(from[s], n)
			if err != nil {
				return nil, nil, fmt.Errorf("uncert: magnitude for %q: %w", s, err)
			}
			c := make([]float64, n)
			for i, d := range row[s] {
				c[i] = math.Abs(d)
			}
			floats.Mul(c, mag)
			for i, v := range c {
				acc[i] += v * v
			}
			perSource[s] = c
		}
		for i := range acc {
			acc[i] = math.Sqrt(acc[i])
		}
		components[o] = perSource
		totals[o] = acc
	}
	return totals, components, nil
}
