// internal/scenario/scenario.go
// YAML scenario files: one document describing the baseline solver input
// plus the derivative or propagation request to run against it.

package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"co2sys-core/deriv"
	"co2sys-core/solver"
	"co2sys-core/stepsize"
)

// Values accepts either a YAML scalar or a sequence of numbers, so scenario
// authors can write `salinity: 35` and `par1: [1950, 2000, 2050]` alike.
type Values []float64

func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Values{f}
		return nil
	case yaml.SequenceNode:
		var fs []float64
		if err := node.Decode(&fs); err != nil {
			return err
		}
		*v = Values(fs)
		return nil
	}
	return fmt.Errorf("scenario: line %d: expected a number or a list of numbers", node.Line)
}

// Overrides carries caller-forced totals and equilibrium constants, exactly
// as they were passed when the baseline was computed.
type Overrides struct {
	Totals        map[string]Values `yaml:"totals"`
	EquilibriaIn  map[string]Values `yaml:"equilibria_in"`
	EquilibriaOut map[string]Values `yaml:"equilibria_out"`
}

// Request selects what to compute.
type Request struct {
	Outputs   []string          `yaml:"outputs"`
	Inputs    []string          `yaml:"inputs"`  // forward: derivative targets
	Sources   map[string]Values `yaml:"sources"` // propagate: 1-sigma magnitudes
	Dx        float64           `yaml:"dx"`
	DxScaling string            `yaml:"dx_scaling"`
	Workers   int               `yaml:"workers"`
}

// Scenario is one scenario file.
type Scenario struct {
	Measurements map[string]Values `yaml:"measurements"`
	Options      map[string]int    `yaml:"options"`
	Overrides    Overrides         `yaml:"overrides"`
	Request      Request           `yaml:"request"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return Parse(data)
}

// Parse parses scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if len(s.Measurements) == 0 {
		return nil, fmt.Errorf("scenario: measurements are required")
	}
	if len(s.Request.Outputs) == 0 {
		return nil, fmt.Errorf("scenario: request.outputs is required")
	}
	return &s, nil
}

// Input assembles the baseline solver arguments.
func (s *Scenario) Input() solver.Input {
	return solver.Input{
		Measurements:  toVectors(s.Measurements),
		Options:       s.Options,
		Totals:        toVectors(s.Overrides.Totals),
		EquilibriaIn:  toVectors(s.Overrides.EquilibriaIn),
		EquilibriaOut: toVectors(s.Overrides.EquilibriaOut),
	}
}

// DerivOptions maps the request onto differentiator options. An empty
// dx_scaling means the median default.
func (s *Scenario) DerivOptions() (deriv.Options, error) {
	opts := deriv.Options{Dx: s.Request.Dx, Workers: s.Request.Workers}
	if s.Request.DxScaling != "" {
		scaling, err := stepsize.ParseScaling(s.Request.DxScaling)
		if err != nil {
			return opts, err
		}
		opts.Scaling = scaling
	}
	return opts, nil
}

// SourceMagnitudes returns the propagation sources as plain vectors.
func (s *Scenario) SourceMagnitudes() map[string][]float64 {
	return toVectors(s.Request.Sources)
}

func toVectors(m map[string]Values) map[string][]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string][]float64, len(m))
	for k, v := range m {
		out[k] = []float64(v)
	}
	return out
}
