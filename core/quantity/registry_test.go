package quantity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"co2sys-core/solver"
)

func testVocab() solver.Vocabulary {
	return solver.Vocabulary{
		Measurements: []string{"X", "Y"},
		Totals:       []string{"TX"},
		Constants:    []string{"K", "L"},
		Factors:      []string{"F"},
		Gradables:    []string{"A", "B"},
	}
}

func names(ts []Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestValidateInputsGroups(t *testing.T) {
	r := NewRegistry(testVocab())

	got, err := r.ValidateInputs("measurements")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, names(got))

	got, err = r.ValidateInputs("totals")
	require.NoError(t, err)
	assert.Equal(t, []string{"TX"}, names(got))

	got, err = r.ValidateInputs("equilibria_in")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kinput", "Linput", "Finput"}, names(got))

	got, err = r.ValidateInputs("equilibria_out")
	require.NoError(t, err)
	assert.Equal(t, []string{"Koutput", "Loutput", "Foutput"}, names(got))
}

func TestValidateInputsAll(t *testing.T) {
	r := NewRegistry(testVocab())
	got, err := r.ValidateInputs("all")
	require.NoError(t, err)
	// Measurements, totals, linear constant/factor variants, then pK forms.
	assert.Equal(t, []string{
		"X", "Y", "TX",
		"Kinput", "Koutput", "Linput", "Loutput", "Finput", "Foutput",
		"pKinput", "pKoutput", "pLinput", "pLoutput",
	}, names(got))
}

func TestValidateInputsStructure(t *testing.T) {
	r := NewRegistry(testVocab())

	got, err := r.ValidateInputs("pKoutput")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Target{Name: "pKoutput", Base: "K", Kind: EquilibriumOut, Colog: true}, got[0])
	assert.Equal(t, "Koutput", got[0].BaselineKey())

	got, err = r.ValidateInputs("TX")
	require.NoError(t, err)
	assert.Equal(t, Target{Name: "TX", Base: "TX", Kind: Total}, got[0])
	assert.Equal(t, "TX", got[0].BaselineKey())
}

func TestValidateInputsRejectsUnknown(t *testing.T) {
	r := NewRegistry(testVocab())
	for _, bad := range []string{"Z", "Kin", "pFinput", "pK", "Kinputoutput"} {
		_, err := r.ValidateInputs(bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, ErrUnknownQuantity, bad)
		var qe *QuantityError
		require.True(t, errors.As(err, &qe), bad)
		assert.Equal(t, bad, qe.Name)
	}
}

func TestValidateInputsDeduplicates(t *testing.T) {
	r := NewRegistry(testVocab())
	got, err := r.ValidateInputs("X", "measurements", "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, names(got))
}

func TestValidateOutputs(t *testing.T) {
	r := NewRegistry(testVocab())

	got, err := r.ValidateOutputs("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got)

	got, err = r.ValidateOutputs("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	_, err = r.ValidateOutputs("X")
	assert.ErrorIs(t, err, ErrUnknownQuantity)
}
