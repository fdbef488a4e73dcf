package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/utils"
)

func TestCompile(t *testing.T) {
	_, err := Compile(`trait.ope > 3.5`)
	require.NoError(t, err)

	_, err = Compile(`trait.ope +`)
	assert.Error(t, err)

	_, err = Compile(`trait.ope + 1.0`)
	assert.Error(t, err, "double output must be rejected")
}

func TestEvalTraits(t *testing.T) {
	p := MustCompile(`trait.ope > 3.5 && trait.ext > 3.5`)

	ok, err := p.EvalTraits(core.PersonalityVector{Openness: 4, Extraversion: 4.2})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.EvalTraits(core.PersonalityVector{Openness: 4, Extraversion: 2})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalItem(t *testing.T) {
	it := core.NewItem("s1")
	it.Score = 0.8
	it.Meta["Genre"] = "Rock"
	it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})

	v := core.PersonalityVector{Openness: 4.5, Conscientiousness: 3, Extraversion: 3, Agreeableness: 3, Neuroticism: 3}
	rctx := &core.RecommendContext{UserID: "u1", Personality: &v}

	cases := []struct {
		expr string
		want bool
	}{
		{`item.meta.Genre == "Rock"`, true},
		{`item.meta.Genre != "Rock"`, false},
		{`label.recall_source == "content" && item.score > 0.5`, true},
		{`trait.ope > 4.0`, true},
		{`rctx.user_id == "u2"`, false},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			p, err := Compile(c.expr)
			require.NoError(t, err)
			got, err := p.EvalItem(it, rctx)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestEvaluate(t *testing.T) {
	it := core.NewItem("s1")
	it.Meta["Title"] = "Song A"

	ok, err := Evaluate("", it, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Evaluate(`item.id == "s1"`, it, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// 动态类型在编译期放行，求值时才发现不是 bool
	_, err = Evaluate(`item.meta.Title`, it, nil)
	assert.Error(t, err)

	// 缺失的 key
	_, err = Evaluate(`item.meta.Artist == "x"`, it, nil)
	assert.Error(t, err)
}
