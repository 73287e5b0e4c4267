package poly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLinearForwardAndInverse(t *testing.T) {
	fwd, inv := LinearPair(0, 2)

	assert.Equal(t, 2.0, fwd.Eval(1))
	assert.Equal(t, 1.0, inv.Eval(2.0))
}

func TestInverseRoundTrip(t *testing.T) {
	fwd, inv := LinearPair(3.9, 0.99)
	for _, x := range []float64{-1, 0, 0.25, 1, 10} {
		assert.InDelta(t, x, inv.Eval(fwd.Eval(x)), 1e-12)
	}
}

func TestZeroSlopeInverseIsZero(t *testing.T) {
	_, inv := LinearPair(5, 0)
	for _, v := range []float64{-100, 0, 5, 1e9} {
		assert.Equal(t, 0.0, inv.Eval(v))
	}
	assert.Equal(t, []float64{0, 0}, inv.Coefficients)
}

func TestInverseRequiresDegreeOne(t *testing.T) {
	_, err := Polynomial1D{Coefficients: []float64{1, 2, 3}}.Inverse()
	assert.Error(t, err)

	inv, err := Linear(-4, 2).Inverse()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0.5}, inv.Coefficients)
}

func TestEvalHigherDegree(t *testing.T) {
	p := Polynomial1D{Coefficients: []float64{1, 0, 3}}
	assert.Equal(t, 13.0, p.Eval(2))
	assert.Equal(t, 0.0, Polynomial1D{}.Eval(4))
}

func TestPolynomialYAMLTag(t *testing.T) {
	out, err := yaml.Marshal(map[string]Polynomial1D{"displ": Linear(1.5, -2)})
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.Contains(text, Tag), text)
	assert.Contains(t, text, "degree: 1")

	var back map[string]Polynomial1D
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, []float64{1.5, -2}, back["displ"].Coefficients)
}

func TestPolynomialYAMLDegreeMismatch(t *testing.T) {
	var p Polynomial1D
	err := yaml.Unmarshal([]byte("coefficients: [1, 2]\ndegree: 3\n"), &p)
	assert.Error(t, err)
}
