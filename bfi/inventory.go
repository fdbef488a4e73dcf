// Package bfi 实现 15 题简版大五人格量表（BFI-S）的计分与解读。
package bfi

import (
	"math"
	"sort"

	"github.com/rushteam/big5rec/core"
)

// Question 是量表中的一题。
type Question struct {
	ID      int        `json:"id"`
	Text    string     `json:"text"`
	Trait   core.Trait `json:"trait"`
	Reverse bool       `json:"reverse"`
}

// 作答取值范围（Likert 1-5）。
const (
	MinAnswer = 1
	MaxAnswer = 5
	// NeutralScore 是没有作答的维度的默认分
	NeutralScore = 3.0
)

var questions = []Question{
	{0, "I see myself as someone who is reserved.", core.TraitExtraversion, true},
	{1, "I see myself as someone who is generally trusting.", core.TraitAgreeableness, false},
	{2, "I see myself as someone who tends to be lazy.", core.TraitConscientiousness, true},
	{3, "I see myself as someone who is relaxed, handles stress well.", core.TraitNeuroticism, true},
	{4, "I see myself as someone who has few artistic interests.", core.TraitOpenness, true},
	{5, "I see myself as someone who is outgoing, sociable.", core.TraitExtraversion, false},
	{6, "I see myself as someone who tends to find fault with others.", core.TraitAgreeableness, true},
	{7, "I see myself as someone who does a thorough job.", core.TraitConscientiousness, false},
	{8, "I see myself as someone who gets nervous easily.", core.TraitNeuroticism, false},
	{9, "I see myself as someone who has an active imagination.", core.TraitOpenness, false},
	{10, "I see myself as someone who is sometimes shy, inhibited.", core.TraitExtraversion, true},
	{11, "I see myself as someone who is helpful and unselfish with others.", core.TraitAgreeableness, false},
	{12, "I see myself as someone who can be somewhat careless.", core.TraitConscientiousness, true},
	{13, "I see myself as someone who is calm, emotionally stable.", core.TraitNeuroticism, true},
	{14, "I see myself as someone who is curious about many different things.", core.TraitOpenness, false},
}

// Questions 返回全部题目（拷贝）。
func Questions() []Question {
	return append([]Question(nil), questions...)
}

// Score 把作答（题号 -> 1..5）换算成人格向量。
//
// 反向题按 6 - x 计分；每个维度取平均并保留两位小数；
// 某维度一题都没答时取 NeutralScore。未知题号或越界作答返回 INVALID_INPUT。
func Score(answers map[int]int) (core.PersonalityVector, error) {
	var v core.PersonalityVector
	sums := make(map[core.Trait]float64, len(core.Traits))
	counts := make(map[core.Trait]int, len(core.Traits))

	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if id < 0 || id >= len(questions) {
			return v, core.Errorf(core.ModuleCore, core.ErrorCodeInvalidInput, "bfi: unknown question %d", id)
		}
		a := answers[id]
		if a < MinAnswer || a > MaxAnswer {
			return v, core.Errorf(core.ModuleCore, core.ErrorCodeInvalidInput, "bfi: answer %d to question %d out of range", a, id)
		}
		q := questions[id]
		score := a
		if q.Reverse {
			score = MaxAnswer + MinAnswer - a
		}
		sums[q.Trait] += float64(score)
		counts[q.Trait]++
	}

	for _, t := range core.Traits {
		if counts[t] == 0 {
			v.Set(t, NeutralScore)
			continue
		}
		v.Set(t, round2(sums[t]/float64(counts[t])))
	}
	return v, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
