// core/stepsize/stepsize.go
// Finite-difference step policy. The realized step for a target is a single
// scalar computed from the target's baseline values; with median scaling the
// base step is relative to the variable's own magnitude, which keeps the
// one-sided difference truncation error comparable across variables spanning
// many orders of magnitude.

package stepsize

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrBadConfig is the sentinel wrapped by all step configuration failures.
var ErrBadConfig = errors.New("invalid step configuration")

// ConfigError reports an unusable step specification.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid step configuration: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return ErrBadConfig }

func badConfigf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// Scaling selects how the base step is scaled per variable.
type Scaling int

const (
	Median Scaling = iota // Dx * |median(values)|, NaN-ignoring; the default
	None                  // use Dx unchanged
	Custom                // Func(values)
)

func (s Scaling) String() string {
	switch s {
	case None:
		return "none"
	case Median:
		return "median"
	case Custom:
		return "custom"
	}
	return "unknown"
}

// ParseScaling maps the textual mode names to a Scaling.
func ParseScaling(s string) (Scaling, error) {
	switch s {
	case "none":
		return None, nil
	case "median":
		return Median, nil
	case "custom":
		return Custom, nil
	}
	return 0, badConfigf("dx_scaling must be none, median or custom, got %q", s)
}

// Spec is a step-size specification.
type Spec struct {
	Dx      float64
	Scaling Scaling
	Func    func([]float64) float64 // required iff Scaling == Custom
}

// Validate rejects specs that could never produce a usable step. Callers
// validate before any solver work so a bad spec fails the whole batch fast.
func (s Spec) Validate() error {
	if s.Dx <= 0 {
		return badConfigf("dx must be positive, got %g", s.Dx)
	}
	switch s.Scaling {
	case Median, None:
	case Custom:
		if s.Func == nil {
			return badConfigf("custom dx_scaling requires a scaling function")
		}
	default:
		return badConfigf("unknown dx_scaling mode %d", s.Scaling)
	}
	return nil
}

// Step computes the realized step for a variable with the given baseline
// values. A zero (or undefined) median falls back to the unscaled Dx; this
// is the only silent substitution in the derivative path.
func (s Spec) Step(values []float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	switch s.Scaling {
	case None:
		return s.Dx, nil
	case Median:
		m := nanMedian(values)
		if m == 0 || math.IsNaN(m) {
			return s.Dx, nil
		}
		return s.Dx * math.Abs(m), nil
	default:
		return s.Func(values), nil
	}
}

// nanMedian returns the median of the non-NaN entries (midpoint of the two
// central values for even counts), or NaN if there are none.
func nanMedian(values []float64) float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	sort.Float64s(kept)
	mid := len(kept) / 2
	if len(kept)%2 == 1 {
		return kept[mid]
	}
	return (kept[mid-1] + kept[mid]) / 2
}
