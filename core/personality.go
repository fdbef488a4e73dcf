package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/rushteam/big5rec/pkg/conv"
)

// Trait 是 Big Five 的一个维度。
type Trait string

const (
	TraitOpenness          Trait = "openness"
	TraitConscientiousness Trait = "conscientiousness"
	TraitExtraversion      Trait = "extraversion"
	TraitAgreeableness     Trait = "agreeableness"
	TraitNeuroticism       Trait = "neuroticism"
)

// Traits 是固定的维度顺序（O, C, E, A, N），所有向量运算都按这个顺序展开。
var Traits = []Trait{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

// ShortName 返回数据文件里使用的三字母列名（ope / con / ext / agr / neu）。
func (t Trait) ShortName() string {
	return string(t)[:3]
}

// PersonalityVector 是 Big Five 人格向量，通常取值 1.0-5.0。
// 类型本身不做范围约束，调用方可以传任意 float；校验见 Validate。
type PersonalityVector struct {
	Openness          float64 `json:"openness" yaml:"openness"`
	Conscientiousness float64 `json:"conscientiousness" yaml:"conscientiousness"`
	Extraversion      float64 `json:"extraversion" yaml:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism" yaml:"neuroticism"`
}

// Slice 按 O, C, E, A, N 顺序展开。
func (v PersonalityVector) Slice() []float64 {
	return []float64{v.Openness, v.Conscientiousness, v.Extraversion, v.Agreeableness, v.Neuroticism}
}

// Get 按维度取值。
func (v PersonalityVector) Get(t Trait) float64 {
	switch t {
	case TraitOpenness:
		return v.Openness
	case TraitConscientiousness:
		return v.Conscientiousness
	case TraitExtraversion:
		return v.Extraversion
	case TraitAgreeableness:
		return v.Agreeableness
	case TraitNeuroticism:
		return v.Neuroticism
	}
	return 0
}

// Set 按维度写值（仅用于构造阶段）。
func (v *PersonalityVector) Set(t Trait, val float64) {
	switch t {
	case TraitOpenness:
		v.Openness = val
	case TraitConscientiousness:
		v.Conscientiousness = val
	case TraitExtraversion:
		v.Extraversion = val
	case TraitAgreeableness:
		v.Agreeableness = val
	case TraitNeuroticism:
		v.Neuroticism = val
	}
}

// ShortMap 以三字母 key 输出，供规则表达式使用。
func (v PersonalityVector) ShortMap() map[string]float64 {
	out := make(map[string]float64, len(Traits))
	for _, t := range Traits {
		out[t.ShortName()] = v.Get(t)
	}
	return out
}

// Magnitude 返回 L2 范数。
// 先按最大绝对分量缩放再求平方和，极小的非零向量不会下溢成 0；
// 结果本身超出 float64 范围时为 +Inf。
func (v PersonalityVector) Magnitude() float64 {
	var m float64
	for _, x := range v.Slice() {
		if math.IsNaN(x) {
			return math.NaN()
		}
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	if m == 0 || math.IsInf(m, 0) {
		return m
	}
	var sum float64
	for _, x := range v.Slice() {
		r := x / m
		sum += r * r
	}
	return m * math.Sqrt(sum)
}

// Validate 校验查询向量：非有限值为 INVALID_INPUT，零向量为 DEGENERATE_VECTOR。
func (v PersonalityVector) Validate() error {
	for _, t := range Traits {
		x := v.Get(t)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Errorf(ModuleCore, ErrorCodeInvalidInput, "personality: %s is not a finite number", t)
		}
	}
	if v.Magnitude() == 0 {
		return NewDomainError(ModuleCore, ErrorCodeDegenerateVector, "personality: zero-magnitude vector")
	}
	return nil
}

func (v PersonalityVector) String() string {
	return fmt.Sprintf("{ope:%.2f con:%.2f ext:%.2f agr:%.2f neu:%.2f}",
		v.Openness, v.Conscientiousness, v.Extraversion, v.Agreeableness, v.Neuroticism)
}

// PersonalityFromMap 从 map 构造向量，支持三字母 key 与全称 key（大小写不敏感）。
// 缺任意一个维度即为 INVALID_INPUT（向量不完整）。
func PersonalityFromMap(m map[string]any) (PersonalityVector, error) {
	var v PersonalityVector
	if len(m) == 0 {
		return v, NewDomainError(ModuleCore, ErrorCodeInvalidInput, "personality: empty input")
	}
	lower := make(map[string]any, len(m))
	for k, val := range m {
		lower[strings.ToLower(strings.TrimSpace(k))] = val
	}
	for _, t := range Traits {
		raw, ok := lower[t.ShortName()]
		if !ok {
			raw, ok = lower[string(t)]
		}
		if !ok {
			return v, Errorf(ModuleCore, ErrorCodeInvalidInput, "personality: missing %s", t)
		}
		f, ok := conv.ToFloat64(raw)
		if !ok {
			return v, Errorf(ModuleCore, ErrorCodeInvalidInput, "personality: %s is not numeric", t)
		}
		v.Set(t, f)
	}
	return v, nil
}
