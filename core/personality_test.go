package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalityVector_Slice(t *testing.T) {
	v := PersonalityVector{1, 2, 3, 4, 5}
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, v.Slice())
	for i, tr := range Traits {
		assert.Equal(t, float64(i+1), v.Get(tr))
	}
	assert.Equal(t, map[string]float64{"ope": 1, "con": 2, "ext": 3, "agr": 4, "neu": 5}, v.ShortMap())
}

func TestPersonalityVector_Validate(t *testing.T) {
	tests := []struct {
		name string
		v    PersonalityVector
		code string
	}{
		{"ok", PersonalityVector{4, 3, 2, 5, 1}, ""},
		{"out of range is accepted", PersonalityVector{-3, 9, 0, 0, 0}, ""},
		{"zero", PersonalityVector{}, ErrorCodeDegenerateVector},
		{"nan", PersonalityVector{math.NaN(), 1, 1, 1, 1}, ErrorCodeInvalidInput},
		{"inf", PersonalityVector{1, 1, math.Inf(1), 1, 1}, ErrorCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, GetDomainError(err).Code)
		})
	}
}

func TestPersonalityVector_ExtremeMagnitudes(t *testing.T) {
	tiny := PersonalityVector{1e-170, 1e-170, 1e-170, 1e-170, 1e-170}
	assert.NoError(t, tiny.Validate())
	assert.Greater(t, tiny.Magnitude(), 0.0)
	assert.InDelta(t, 1e-170*math.Sqrt(5), tiny.Magnitude(), 1e-180)

	huge := PersonalityVector{1e200, 1e200, 1e200, 1e200, 1e200}
	assert.NoError(t, huge.Validate())
	assert.InDelta(t, 1e200*math.Sqrt(5), huge.Magnitude(), 1e188)

	assert.NoError(t, PersonalityVector{Openness: 5e-324}.Validate())
	assert.Equal(t, 5.0, PersonalityVector{3, 4, 0, 0, 0}.Magnitude())
	assert.Equal(t, 0.0, PersonalityVector{}.Magnitude())
}

func TestPersonalityFromMap(t *testing.T) {
	v, err := PersonalityFromMap(map[string]any{
		"ope": 4.5, "CON": "3.2", "extraversion": 2, "agr": int64(4), "Neu": float32(1.5),
	})
	require.NoError(t, err)
	assert.Equal(t, PersonalityVector{4.5, 3.2, 2, 4, 1.5}, v)

	_, err = PersonalityFromMap(map[string]any{"ope": 1, "con": 2, "ext": 3, "agr": 4})
	assert.True(t, IsInvalidInput(err))

	_, err = PersonalityFromMap(map[string]any{"ope": "x", "con": 2, "ext": 3, "agr": 4, "neu": 5})
	assert.True(t, IsInvalidInput(err))

	_, err = PersonalityFromMap(nil)
	assert.True(t, IsInvalidInput(err))
}
