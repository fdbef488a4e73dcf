package recall

import (
	"context"
	"testing"

	"github.com/rushteam/big5rec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesRecall_Default(t *testing.T) {
	r, err := NewRulesRecall(nil)
	require.NoError(t, err)

	q := vec(4.2, 2, 2, 2, 4)
	items, err := r.Recall(context.Background(), &core.RecommendContext{Personality: &q})
	require.NoError(t, err)
	require.Len(t, items, 8)
	assert.Equal(t, "Radiohead - Paranoid Android", items[0].ID)
	assert.Equal(t, "Adele - Someone Like You", items[4].ID)

	lbl, _ := items[0].GetLabel("rule")
	assert.Equal(t, "high_openness", lbl.Value)
	assert.NotEmpty(t, items[0].MetaString("explain"))
}

func TestRulesRecall_PadsWithDefaults(t *testing.T) {
	r, err := NewRulesRecall(nil)
	require.NoError(t, err)

	// 只有情绪稳定一条规则命中
	q := vec(3, 3, 3, 3, 2)
	items, err := r.Recall(context.Background(), &core.RecommendContext{Personality: &q})
	require.NoError(t, err)
	require.Len(t, items, 8)
	assert.Equal(t, "Bob Marley - Don't Worry Be Happy", items[0].ID)
	// "Good Vibrations - The Beach Boys" 与规则中的 "The Beach Boys - Good Vibrations" 是不同 ID
	assert.Equal(t, "Bohemian Rhapsody - Queen", items[4].ID)

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}

func TestRulesRecall_NoPersonality(t *testing.T) {
	r, err := NewRulesRecall(nil)
	require.NoError(t, err)
	items, err := r.Recall(context.Background(), &core.RecommendContext{})
	require.NoError(t, err)
	require.Len(t, items, 8)
	assert.Equal(t, "Bohemian Rhapsody - Queen", items[0].ID)
}

func TestRulesRecall_FromYAML(t *testing.T) {
	rs, err := ParseRulesYAML([]byte(`
limit: 3
rules:
  - name: calm
    when: "trait.neu < 2.5 && trait.ext < 3"
    items: [a, b]
  - name: any
    when: "true"
    items: [b, c, d]
defaults: [z]
`))
	require.NoError(t, err)
	r, err := NewRulesRecall(rs)
	require.NoError(t, err)

	q := vec(3, 3, 2, 3, 2)
	items, err := r.Recall(context.Background(), &core.RecommendContext{Personality: &q})
	require.NoError(t, err)
	ids := []string{}
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestNewRulesRecall_BadExpression(t *testing.T) {
	_, err := NewRulesRecall(&RuleSet{Rules: []TraitRule{{Name: "bad", When: "trait.ope >"}}})
	assert.Error(t, err)
}
