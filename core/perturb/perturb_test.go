package perturb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"co2sys-core/quantity"
	"co2sys-core/solver"
	"co2sys-core/stepsize"
)

func testRegistry(t *testing.T) *quantity.Registry {
	t.Helper()
	return quantity.NewRegistry(solver.Vocabulary{
		Measurements: []string{"X"},
		Totals:       []string{"TX"},
		Constants:    []string{"K", "L"},
		Gradables:    []string{"A"},
	})
}

func target(t *testing.T, name string) quantity.Target {
	t.Helper()
	ts, err := testRegistry(t).ValidateInputs(name)
	require.NoError(t, err)
	return ts[0]
}

func noScale(dx float64) stepsize.Spec {
	return stepsize.Spec{Dx: dx, Scaling: stepsize.None}
}

func TestApplyLinearSeedsFromBaseline(t *testing.T) {
	base := solver.Result{"Kinput": {2.0, 4.0}}
	in := solver.Input{}

	dx, err := Apply(target(t, "Kinput"), base, &in, noScale(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, dx)
	assert.Equal(t, []float64{2.5, 4.5}, in.EquilibriaIn["K"])
	// Baseline itself must stay untouched.
	assert.Equal(t, []float64{2.0, 4.0}, base["Kinput"])
}

func TestApplyUsesCallerOverrideAsSeed(t *testing.T) {
	base := solver.Result{"Kinput": {2.0}}
	in := solver.Input{EquilibriaIn: map[string][]float64{"K": {3.0}}}

	dx, err := Apply(target(t, "Kinput"), base, &in, noScale(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, dx)
	assert.Equal(t, []float64{3.5}, in.EquilibriaIn["K"])
}

func TestApplyKeepsUnrelatedOverrides(t *testing.T) {
	base := solver.Result{"Koutput": {2.0}}
	in := solver.Input{EquilibriaOut: map[string][]float64{"L": {7.0}}}

	_, err := Apply(target(t, "Koutput"), base, &in, noScale(0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{7.0}, in.EquilibriaOut["L"])
	assert.Equal(t, []float64{2.5}, in.EquilibriaOut["K"])
}

func TestApplyTotal(t *testing.T) {
	base := solver.Result{"TX": {10.0}}
	in := solver.Input{}

	_, err := Apply(target(t, "TX"), base, &in, noScale(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{11.0}, in.Totals["TX"])
}

func TestApplyCologIsLogAdditive(t *testing.T) {
	v := 1e-6
	base := solver.Result{"Kinput": {v}}
	in := solver.Input{}

	dx, err := Apply(target(t, "pKinput"), base, &in, noScale(0.01))
	require.NoError(t, err)
	assert.Equal(t, 0.01, dx)
	want := math.Pow(10, -(-math.Log10(v) + 0.01))
	assert.InEpsilon(t, want, in.EquilibriaIn["K"][0], 1e-12)
	// Log-additive, so nowhere near v+dx.
	assert.Greater(t, math.Abs(in.EquilibriaIn["K"][0]-(v+dx)), 1e-3)
}

func TestApplyCologStepScalesWithPK(t *testing.T) {
	// Median scaling of a pK target works on cologarithm values, not on K.
	base := solver.Result{"Kinput": {1e-6, 1e-8}}
	in := solver.Input{}

	dx, err := Apply(target(t, "pKinput"), base, &in, stepsize.Spec{Dx: 1e-3, Scaling: stepsize.Median})
	require.NoError(t, err)
	// median(pK) = median(6, 8) = 7
	assert.InDelta(t, 7e-3, dx, 1e-12)
}

func TestApplyMissingBaseline(t *testing.T) {
	in := solver.Input{}
	_, err := Apply(target(t, "Kinput"), solver.Result{}, &in, noScale(0.5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Kinput")
}

func TestApplyRejectsMeasurement(t *testing.T) {
	in := solver.Input{}
	_, err := Apply(target(t, "X"), solver.Result{"X": {1}}, &in, noScale(0.5))
	require.Error(t, err)
}

func TestApplyBadStepSurfacesConfigError(t *testing.T) {
	base := solver.Result{"Kinput": {2.0}}
	in := solver.Input{}
	_, err := Apply(target(t, "Kinput"), base, &in, stepsize.Spec{Dx: -1, Scaling: stepsize.None})
	assert.ErrorIs(t, err, stepsize.ErrBadConfig)
}
