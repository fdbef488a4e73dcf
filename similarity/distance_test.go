package similarity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rushteam/big5rec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVector(r *rand.Rand) core.PersonalityVector {
	return core.PersonalityVector{
		Openness:          1 + 4*r.Float64(),
		Conscientiousness: 1 + 4*r.Float64(),
		Extraversion:      1 + 4*r.Float64(),
		Agreeableness:     1 + 4*r.Float64(),
		Neuroticism:       1 + 4*r.Float64(),
	}
}

func TestCosineDistance_SelfIsZero(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		v := randomVector(r)
		d, err := CosineDistance(v, v)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d, "vector %v", v)
	}
	d, err := CosineDistance(core.PersonalityVector{4, 3, 2, 5, 1}, core.PersonalityVector{4, 3, 2, 5, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestCosineDistance_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		a, b := randomVector(r), randomVector(r)
		ab, err := CosineDistance(a, b)
		require.NoError(t, err)
		ba, err := CosineDistance(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 2.0)
	}
}

func TestCosineDistance_ScaleInvariant(t *testing.T) {
	a := core.PersonalityVector{1, 2, 3, 4, 5}
	b := core.PersonalityVector{2, 4, 6, 8, 10}
	d, err := CosineDistance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-12)

	opposite := core.PersonalityVector{-1, -2, -3, -4, -5}
	d, err = CosineDistance(a, opposite)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)
}

func TestCosineDistance_Degenerate(t *testing.T) {
	zero := core.PersonalityVector{}
	v := core.PersonalityVector{4, 3, 2, 5, 1}

	d, err := CosineDistance(zero, v)
	assert.Equal(t, DegenerateDistance, d)
	assert.True(t, core.IsDegenerateVector(err))

	d, err = CosineDistance(v, zero)
	assert.Equal(t, DegenerateDistance, d)
	assert.True(t, core.IsDegenerateVector(err))

	nan := core.PersonalityVector{math.NaN(), 1, 1, 1, 1}
	d, err = CosineDistance(nan, v)
	assert.Equal(t, DegenerateDistance, d)
	assert.Error(t, err)

	assert.Equal(t, DegenerateDistance, Distance(zero, zero))
}

func TestCosineDistance_ExtremeMagnitudes(t *testing.T) {
	ones := core.PersonalityVector{1, 1, 1, 1, 1}
	huge := core.PersonalityVector{1e200, 1e200, 1e200, 1e200, 1e200}
	tiny := core.PersonalityVector{1e-170, 1e-170, 1e-170, 1e-170, 1e-170}
	biggest := core.PersonalityVector{math.MaxFloat64, 1, 1, 1, 1}

	for _, v := range []core.PersonalityVector{huge, tiny} {
		d, err := CosineDistance(v, ones)
		require.NoError(t, err, "vector %v", v)
		assert.Equal(t, 0.0, d)
		d, err = CosineDistance(v, v)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	}

	d, err := CosineDistance(biggest, core.PersonalityVector{1, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-12)

	a := core.PersonalityVector{5e200, 1e200, 1e200, 1e200, 1e200}
	b := core.PersonalityVector{5, 1, 1, 1, 1}
	d, err = CosineDistance(a, ones)
	require.NoError(t, err)
	want, err := CosineDistance(b, ones)
	require.NoError(t, err)
	assert.InDelta(t, want, d, 1e-12)
	assert.Greater(t, d, 0.0)
}

func TestEuclideanDistance(t *testing.T) {
	d, err := EuclideanDistance(core.PersonalityVector{0, 0, 0, 0, 0}, core.PersonalityVector{3, 4, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	_, err = EuclideanDistance(core.PersonalityVector{Openness: math.Inf(1)}, core.PersonalityVector{})
	assert.True(t, core.IsDegenerateVector(err))
}

func TestLookup(t *testing.T) {
	m, err := Lookup("")
	require.NoError(t, err)
	d, _ := m(core.PersonalityVector{1, 1, 1, 1, 1}, core.PersonalityVector{1, 1, 1, 1, 1})
	assert.Equal(t, 0.0, d)

	_, err = Lookup("EUCLIDEAN")
	assert.NoError(t, err)

	_, err = Lookup("manhattan")
	assert.True(t, core.IsNotSupported(err))

	assert.Contains(t, Names(), MetricCosine)
}
