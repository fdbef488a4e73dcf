package bfi

import "github.com/rushteam/big5rec/core"

// Level 是单个维度的高低水平。
type Level string

const (
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
)

// 高低分界。
const (
	HighThreshold = 3.5
	LowThreshold  = 2.5
)

// TraitReading 是单个维度的解读。
type TraitReading struct {
	Trait       core.Trait `json:"trait"`
	Score       float64    `json:"score"`
	Level       Level      `json:"level"`
	Description string     `json:"description"`
}

var descriptions = map[core.Trait]map[Level]string{
	core.TraitOpenness: {
		LevelHigh:     "Drawn to complex, experimental and artistic music.",
		LevelModerate: "Balances the familiar with the occasional adventurous pick.",
		LevelLow:      "Prefers familiar, conventional music.",
	},
	core.TraitConscientiousness: {
		LevelHigh:     "Appreciates structured, classical, well-crafted music.",
		LevelModerate: "Enjoys both polished and loose, spontaneous styles.",
		LevelLow:      "Open to loose, improvised and unpolished styles.",
	},
	core.TraitExtraversion: {
		LevelHigh:     "Likes upbeat, energetic, social music.",
		LevelModerate: "Switches between lively and quiet listening.",
		LevelLow:      "Prefers calmer, more introspective music.",
	},
	core.TraitAgreeableness: {
		LevelHigh:     "Enjoys positive, harmonious, feel-good music.",
		LevelModerate: "Comfortable with both warm and edgy moods.",
		LevelLow:      "Tolerates aggressive or confrontational sounds.",
	},
	core.TraitNeuroticism: {
		LevelHigh:     "Connects with emotionally expressive or cathartic music.",
		LevelModerate: "Moves between reflective and upbeat moods.",
		LevelLow:      "Gravitates to uplifting, positive music.",
	},
}

// LevelOf 按分界把分数映射为水平：> 3.5 为高，< 2.5 为低，其余为中。
func LevelOf(score float64) Level {
	switch {
	case score > HighThreshold:
		return LevelHigh
	case score < LowThreshold:
		return LevelLow
	default:
		return LevelModerate
	}
}

// Interpret 按 O, C, E, A, N 顺序解读人格向量。
func Interpret(v core.PersonalityVector) []TraitReading {
	out := make([]TraitReading, 0, len(core.Traits))
	for _, t := range core.Traits {
		s := v.Get(t)
		lvl := LevelOf(s)
		out = append(out, TraitReading{Trait: t, Score: s, Level: lvl, Description: descriptions[t][lvl]})
	}
	return out
}
