package deriv

import "fmt"

// SolverError wraps a solver failure during a perturbed re-invocation. The
// whole batch is aborted: a partial derivative table could silently be
// mistaken for a complete one.
type SolverError struct {
	Wrt string // the target under perturbation when the solver failed
	Err error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver failed while perturbing %q: %v", e.Wrt, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }
