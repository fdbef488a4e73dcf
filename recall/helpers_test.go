package recall

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/big5rec/core"
)

func vec(o, c, e, a, n float64) core.PersonalityVector {
	return core.PersonalityVector{Openness: o, Conscientiousness: c, Extraversion: e, Agreeableness: a, Neuroticism: n}
}

func songTable(n int, seed int64) *core.ReferenceTable {
	r := rand.New(rand.NewSource(seed))
	rows := make([]core.ReferenceRow, n)
	for i := range rows {
		rows[i] = core.ReferenceRow{
			ID:     fmt.Sprintf("s%d", i),
			Vector: vec(1+4*r.Float64(), 1+4*r.Float64(), 1+4*r.Float64(), 1+4*r.Float64(), 1+4*r.Float64()),
			Payload: map[string]string{
				"Title":  fmt.Sprintf("Title %d", i),
				"Artist": fmt.Sprintf("Artist %d", i),
				"Genre":  "Rock",
			},
		}
	}
	return core.NewReferenceTable([]string{"Title", "Artist", "Genre"}, rows)
}
