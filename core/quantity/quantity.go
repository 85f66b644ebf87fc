// core/quantity/quantity.go
// Closed registry of the quantities the uncertainty engine may work with.
// Input targets are parsed once into structured Targets (kind, bare storage
// key, cologarithm flag) so the rest of the engine never re-parses names.

package quantity

// Kind classifies a perturbation target by where it lives in the solver's
// argument set.
type Kind int

const (
	Measurement Kind = iota
	Total
	EquilibriumIn
	EquilibriumOut
)

func (k Kind) String() string {
	switch k {
	case Measurement:
		return "measurement"
	case Total:
		return "total"
	case EquilibriumIn:
		return "equilibrium_in"
	case EquilibriumOut:
		return "equilibrium_out"
	}
	return "unknown"
}

// Target is a validated perturbation target.
//
// Name is the full requested name (e.g. "pK1input"). Base is the bare key
// used in the solver's override maps (e.g. "K1"). Colog marks cologarithm
// targets: perturbing one is log-additive, value = 10^-(pK+dx), so the
// resulting derivative is d(output)/d(pK), not d(output)/d(K).
type Target struct {
	Name  string
	Base  string
	Kind  Kind
	Colog bool
}

// Group keywords accepted in place of explicit input names.
const (
	GroupAll           = "all"
	GroupMeasurements  = "measurements"
	GroupTotals        = "totals"
	GroupEquilibriaIn  = "equilibria_in"
	GroupEquilibriaOut = "equilibria_out"
)

const (
	cologPrefix  = "p"
	inputSuffix  = "input"
	outputSuffix = "output"
)

// deriveTargets builds the full input vocabulary from the bare constant
// names: K -> Kinput, Koutput, pKinput, pKoutput; factors get the in/out
// variants but no cologarithm form.
func deriveTargets(constants, factors []string) (targets []Target) {
	for _, k := range constants {
		targets = append(targets,
			Target{Name: k + inputSuffix, Base: k, Kind: EquilibriumIn},
			Target{Name: k + outputSuffix, Base: k, Kind: EquilibriumOut},
		)
	}
	for _, f := range factors {
		targets = append(targets,
			Target{Name: f + inputSuffix, Base: f, Kind: EquilibriumIn},
			Target{Name: f + outputSuffix, Base: f, Kind: EquilibriumOut},
		)
	}
	for _, k := range constants {
		targets = append(targets,
			Target{Name: cologPrefix + k + inputSuffix, Base: k, Kind: EquilibriumIn, Colog: true},
			Target{Name: cologPrefix + k + outputSuffix, Base: k, Kind: EquilibriumOut, Colog: true},
		)
	}
	return targets
}

// BaselineKey returns the key under which the target's unperturbed values
// appear in the baseline result set: bare name for measurements and totals,
// conditional name (e.g. "K1input") for equilibrium overrides.
func (t Target) BaselineKey() string {
	switch t.Kind {
	case EquilibriumIn:
		return t.Base + inputSuffix
	case EquilibriumOut:
		return t.Base + outputSuffix
	}
	return t.Base
}
