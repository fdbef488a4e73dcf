package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceTable_DefensiveCopy(t *testing.T) {
	cols := []string{"Title", "Artist"}
	rows := []ReferenceRow{
		{ID: "u1", Vector: PersonalityVector{1, 1, 1, 1, 1}, Payload: map[string]string{"Title": "A"}},
	}
	tbl := NewReferenceTable(cols, rows)

	cols[0] = "changed"
	rows[0].Payload["Title"] = "changed"
	rows[0].ID = "changed"

	assert.Equal(t, []string{"Title", "Artist"}, tbl.Columns())
	assert.Equal(t, "u1", tbl.Row(0).ID)
	title, ok := tbl.Row(0).Field("Title")
	assert.True(t, ok)
	assert.Equal(t, "A", title)

	out := tbl.Columns()
	out[0] = "x"
	assert.Equal(t, "Title", tbl.Columns()[0])
}

func TestReferenceTable_HasColumns(t *testing.T) {
	tbl := NewReferenceTable([]string{"Title", "Artist"}, nil)
	assert.Empty(t, tbl.HasColumns("Title", "Artist"))
	assert.Equal(t, []string{"Genre"}, tbl.HasColumns("Title", "Genre"))

	var nilTbl *ReferenceTable
	assert.Equal(t, 0, nilTbl.Len())
	assert.Equal(t, []string{"Title"}, nilTbl.HasColumns("Title"))
}

func TestReferenceRow_Rating(t *testing.T) {
	r := ReferenceRow{Payload: map[string]string{"s1": "5", "s2": "", "s3": "n/a"}}
	v, ok := r.Rating("s1")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
	_, ok = r.Rating("s2")
	assert.False(t, ok)
	_, ok = r.Rating("s3")
	assert.False(t, ok)
	_, ok = r.Rating("missing")
	assert.False(t, ok)
}
