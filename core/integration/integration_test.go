// core/integration/integration_test.go
// End-to-end: the finite-difference engine driving the carbonate solver.
package integration

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"co2sys-core/carbonate"
	"co2sys-core/deriv"
	"co2sys-core/quantity"
	"co2sys-core/solver"
	"co2sys-core/uncert"
)

func setup(t *testing.T) (solver.Func, *quantity.Registry, solver.Input, solver.Result) {
	t.Helper()
	eng := carbonate.New(carbonate.Config{})
	in := solver.Input{
		Measurements: map[string][]float64{
			"par1":            {1950, 2000, 2050},
			"par2":            {2300},
			"salinity":        {35},
			"temperature_in":  {25},
			"temperature_out": {10},
			"pressure_in":     {0},
			"pressure_out":    {1000},
		},
	}
	base, err := eng.Solve(in)
	require.NoError(t, err)
	return eng.Func(), quantity.NewRegistry(carbonate.Vocabulary()), in, base
}

func TestForwardSigns(t *testing.T) {
	solve, reg, in, base := setup(t)

	table, dxs, err := deriv.Forward(solve, reg, in, base,
		[]string{"pH_in", "pco2_in"},
		[]string{"par1", "temperature_in", "pK1input", "TB"},
		deriv.Options{})
	require.NoError(t, err)

	for wrt, dx := range dxs {
		assert.Greater(t, dx, 0.0, wrt)
	}
	for i := 0; i < 3; i++ {
		// More DIC at fixed alkalinity acidifies and raises pCO2.
		assert.Less(t, table["pH_in"]["par1"][i], 0.0)
		assert.Greater(t, table["pco2_in"]["par1"][i], 0.0)
		// Warming raises pCO2.
		assert.Greater(t, table["pco2_in"]["temperature_in"][i], 0.0)
		// Weaker first dissociation (higher pK1) leaves more CO2(aq).
		assert.Greater(t, table["pco2_in"]["pK1input"][i], 0.0)
		// More borate alkalinity at fixed TA leaves less carbonate alkalinity.
		assert.Greater(t, table["pco2_in"]["TB"][i], 0.0)
	}
}

func TestForwardGroupKeyword(t *testing.T) {
	solve, reg, in, base := setup(t)

	table, _, err := deriv.Forward(solve, reg, in, base,
		[]string{"pH_in"}, []string{"equilibria_in"}, deriv.Options{})
	require.NoError(t, err)

	row := table["pH_in"]
	require.Len(t, row, 9) // 7 constants + RGas + FugFac
	for wrt, d := range row {
		for i, v := range d {
			assert.False(t, math.IsNaN(v), "d pH_in / d %s sample %d", wrt, i)
		}
	}
}

func TestForwardOutputConditionOverride(t *testing.T) {
	solve, reg, in, base := setup(t)

	table, _, err := deriv.Forward(solve, reg, in, base,
		[]string{"pH_in", "pH_out"}, []string{"K1output"}, deriv.Options{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		// Output-condition constants must not move input-condition results.
		assert.Zero(t, table["pH_in"]["K1output"][i])
		assert.NotZero(t, table["pH_out"]["K1output"][i])
	}
}

func TestForwardParallelMatchesSerial(t *testing.T) {
	solve, reg, in, base := setup(t)

	of := []string{"pH_in", "pco2_in", "co3_out"}
	wrt := []string{"measurements", "pK1input", "pK2input"}
	serial, _, err := deriv.Forward(solve, reg, in, base, of, wrt, deriv.Options{})
	require.NoError(t, err)
	parallel, _, err := deriv.Forward(solve, reg, in, base, of, wrt, deriv.Options{Workers: 4})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(serial, parallel))
}

func TestPropagateWithDefaultPKUncertainties(t *testing.T) {
	solve, reg, in, base := setup(t)

	sources := map[string][]float64{"par1": {2.0}, "par2": {2.0}}
	for k, v := range carbonate.DefaultPKUncertainties {
		sources[k] = v
	}

	totals, components, err := uncert.Propagate(solve, reg, in, base,
		[]string{"pH_in", "pco2_in"}, sources, deriv.Options{})
	require.NoError(t, err)

	for _, of := range []string{"pH_in", "pco2_in"} {
		require.Len(t, totals[of], 3)
		for i, u := range totals[of] {
			assert.Greater(t, u, 0.0, "%s sample %d", of, i)
			for src, comp := range components[of] {
				assert.GreaterOrEqual(t, u+1e-15, comp[i], "%s from %s", of, src)
			}
		}
	}
	// A couple of umol/kg on the measured pair dominates surface pH error.
	assert.Less(t, totals["pH_in"][1], 0.05)
}
