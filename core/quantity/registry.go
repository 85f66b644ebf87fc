// core/quantity/registry.go
package quantity

import "co2sys-core/solver"

// Registry holds the closed vocabulary of gradable outputs and perturbable
// inputs declared by a solver. Validation and group expansion are pure; no
// registry lookup can ever reach the solver.
type Registry struct {
	gradables    map[string]struct{}
	gradableList []string

	targets map[string]Target

	// Expansion lists for group keywords, in declared order.
	measurements  []string
	totals        []string
	equilibriaIn  []string
	equilibriaOut []string
	all           []string
}

// NewRegistry builds a registry from a solver's declared vocabulary.
func NewRegistry(v solver.Vocabulary) *Registry {
	r := &Registry{
		gradables: make(map[string]struct{}, len(v.Gradables)),
		targets:   make(map[string]Target),
	}
	r.gradableList = append(r.gradableList, v.Gradables...)
	for _, g := range v.Gradables {
		r.gradables[g] = struct{}{}
	}
	for _, m := range v.Measurements {
		r.add(Target{Name: m, Base: m, Kind: Measurement})
		r.measurements = append(r.measurements, m)
	}
	for _, tt := range v.Totals {
		r.add(Target{Name: tt, Base: tt, Kind: Total})
		r.totals = append(r.totals, tt)
	}
	for _, t := range deriveTargets(v.Constants, v.Factors) {
		r.add(t)
		switch t.Kind {
		case EquilibriumIn:
			if !t.Colog {
				r.equilibriaIn = append(r.equilibriaIn, t.Name)
			}
		case EquilibriumOut:
			if !t.Colog {
				r.equilibriaOut = append(r.equilibriaOut, t.Name)
			}
		}
	}
	return r
}

func (r *Registry) add(t Target) {
	if _, dup := r.targets[t.Name]; dup {
		return
	}
	r.targets[t.Name] = t
	r.all = append(r.all, t.Name)
}

// ValidateOutputs expands and checks requested output names. The only group
// keyword is "all", which expands to the solver's declared gradable list.
func (r *Registry) ValidateOutputs(names ...string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == GroupAll {
			for _, g := range r.gradableList {
				if _, dup := seen[g]; dup {
					continue
				}
				seen[g] = struct{}{}
				out = append(out, g)
			}
			continue
		}
		if _, ok := r.gradables[name]; !ok {
			return nil, &QuantityError{Name: name, Role: "output"}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// ValidateInputs expands group keywords and checks requested input names,
// returning structured targets. Duplicates are dropped, first occurrence
// wins, so every returned target is perturbed exactly once.
func (r *Registry) ValidateInputs(names ...string) ([]Target, error) {
	var out []Target
	seen := make(map[string]struct{}, len(names))
	push := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, r.targets[name])
	}
	for _, name := range names {
		switch name {
		case GroupAll:
			for _, n := range r.all {
				push(n)
			}
		case GroupMeasurements:
			for _, n := range r.measurements {
				push(n)
			}
		case GroupTotals:
			for _, n := range r.totals {
				push(n)
			}
		case GroupEquilibriaIn:
			for _, n := range r.equilibriaIn {
				push(n)
			}
		case GroupEquilibriaOut:
			for _, n := range r.equilibriaOut {
				push(n)
			}
		default:
			if _, ok := r.targets[name]; !ok {
				return nil, &QuantityError{Name: name, Role: "input"}
			}
			push(name)
		}
	}
	return out, nil
}

// Gradables returns the declared gradable output names, in order.
func (r *Registry) Gradables() []string {
	out := make([]string, len(r.gradableList))
	copy(out, r.gradableList)
	return out
}

// Inputs returns every valid input target name, in expansion order.
func (r *Registry) Inputs() []string {
	out := make([]string, len(r.all))
	copy(out, r.all)
	return out
}
