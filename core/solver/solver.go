// core/solver/solver.go
// Boundary types for the external speciation solver. The uncertainty engine
// treats the solver as a pure, deterministic, possibly-failing function of
// its named arguments; everything it needs to know about a concrete solver
// is carried by the Vocabulary it declares.

package solver

import "fmt"

// Result maps a named result quantity to its values, one per sample point.
// It is produced once by the solver and read-only to the engine.
type Result map[string][]float64

// Input holds the named arguments of a solver invocation.
//
// Measurements are the perturbable scalar/array arguments (e.g. par1,
// salinity). Options are integer switches held fixed across perturbations.
// The three override maps force internally-computed quantities to specific
// values, keyed by bare name (e.g. "K1", not "K1input").
type Input struct {
	Measurements map[string][]float64
	Options      map[string]int

	Totals        map[string][]float64
	EquilibriaIn  map[string][]float64
	EquilibriaOut map[string][]float64
}

// Func is the external solver boundary.
type Func func(Input) (Result, error)

// Vocabulary declares a solver's capability lists: which arguments may be
// perturbed and which outputs may be differentiated.
type Vocabulary struct {
	Measurements []string // perturbable named arguments
	Totals       []string // total salt concentration override names
	Constants    []string // equilibrium constants; get input/output and pK variants
	Factors      []string // non-logarithmic constants (RGas etc); input/output only
	Gradables    []string // result keys derivatives may target
}

// Clone returns a deep copy of the input. Perturbations operate on clones so
// a perturbed target never leaks into the caller's arguments or into other
// targets in the same batch.
func (in Input) Clone() Input {
	out := Input{
		Measurements:  cloneVectors(in.Measurements),
		Totals:        cloneVectors(in.Totals),
		EquilibriaIn:  cloneVectors(in.EquilibriaIn),
		EquilibriaOut: cloneVectors(in.EquilibriaOut),
	}
	if in.Options != nil {
		out.Options = make(map[string]int, len(in.Options))
		for k, v := range in.Options {
			out.Options[k] = v
		}
	}
	return out
}

func cloneVectors(m map[string][]float64) map[string][]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string][]float64, len(m))
	for k, v := range m {
		cv := make([]float64, len(v))
		copy(cv, v)
		out[k] = cv
	}
	return out
}

// Broadcast conditions v to n sample points: a length-1 vector is repeated,
// a length-n vector is copied. Anything else is a shape error.
func Broadcast(v []float64, n int) ([]float64, error) {
	switch len(v) {
	case n:
		out := make([]float64, n)
		copy(out, v)
		return out, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("solver: cannot broadcast length %d to %d samples", len(v), n)
	}
}
