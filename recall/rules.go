package recall

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pipeline"
	"github.com/rushteam/big5rec/pkg/dsl"
	"github.com/rushteam/big5rec/pkg/utils"
)

// TraitRule 是一条人格规则：When 为真时推荐 Items。
// When 是 CEL 表达式，变量 trait.ope / trait.con / trait.ext / trait.agr / trait.neu。
type TraitRule struct {
	Name    string   `yaml:"name" json:"name"`
	When    string   `yaml:"when" json:"when"`
	Items   []string `yaml:"items" json:"items"`
	Explain string   `yaml:"explain,omitempty" json:"explain,omitempty"`

	prg *dsl.Program
}

// RuleSet 是规则文件的结构。
type RuleSet struct {
	Rules    []TraitRule `yaml:"rules" json:"rules"`
	Defaults []string    `yaml:"defaults" json:"defaults"`
	Limit    int         `yaml:"limit" json:"limit"`
}

// LoadRulesFromYAML 读取规则文件。
func LoadRulesFromYAML(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRulesYAML(data)
}

// ParseRulesYAML 解析规则 YAML。
func ParseRulesYAML(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	return &rs, nil
}

// DefaultRules 返回内置的人格-曲目规则（高于 3.5 视为高分）。
func DefaultRules() *RuleSet {
	return &RuleSet{
		Limit: 8,
		Rules: []TraitRule{
			{
				Name:    "high_openness",
				When:    "trait.ope > 3.5",
				Explain: "High Openness: complex, experimental and artistic music",
				Items: []string{
					"Radiohead - Paranoid Android",
					"Pink Floyd - Comfortably Numb",
					"The Beatles - A Day in the Life",
					"Miles Davis - So What",
				},
			},
			{
				Name:    "high_extraversion",
				When:    "trait.ext > 3.5",
				Explain: "High Extraversion: upbeat, energetic, social music",
				Items: []string{
					"Daft Punk - Get Lucky",
					"Bruno Mars - Uptown Funk",
					"Pharrell Williams - Happy",
					"Justin Timberlake - Can't Stop the Feeling",
				},
			},
			{
				Name:    "high_conscientiousness",
				When:    "trait.con > 3.5",
				Explain: "High Conscientiousness: structured, classical, well-crafted music",
				Items: []string{
					"Bach - Brandenburg Concerto No. 3",
					"Mozart - Symphony No. 40",
					"The Beatles - Here Comes the Sun",
					"Simon & Garfunkel - The Sound of Silence",
				},
			},
			{
				Name:    "high_agreeableness",
				When:    "trait.agr > 3.5",
				Explain: "High Agreeableness: positive, harmonious, feel-good music",
				Items: []string{
					"The Beatles - All You Need Is Love",
					"Bob Marley - Three Little Birds",
					"Jack Johnson - Better Together",
					"John Mayer - Waiting on the World to Change",
				},
			},
			{
				Name:    "high_neuroticism",
				When:    "trait.neu > 3.5",
				Explain: "High Neuroticism: emotionally expressive or cathartic music",
				Items: []string{
					"Adele - Someone Like You",
					"Johnny Cash - Hurt",
					"Radiohead - Creep",
					"The Smiths - How Soon Is Now?",
				},
			},
			{
				Name:    "emotional_stability",
				When:    "trait.neu <= 3.5",
				Explain: "Low Neuroticism: uplifting, positive music",
				Items: []string{
					"Bob Marley - Don't Worry Be Happy",
					"The Beach Boys - Good Vibrations",
					"Earth Wind & Fire - September",
					"Stevie Wonder - Superstition",
				},
			},
		},
		Defaults: []string{
			"Bohemian Rhapsody - Queen",
			"Hotel California - Eagles",
			"Imagine - John Lennon",
			"Stairway to Heaven - Led Zeppelin",
			"What's Going On - Marvin Gaye",
			"Like a Rolling Stone - Bob Dylan",
			"Smells Like Teen Spirit - Nirvana",
			"Billie Jean - Michael Jackson",
			"Purple Haze - Jimi Hendrix",
			"Good Vibrations - The Beach Boys",
		},
	}
}

// RulesRecall 是基于人格规则的兜底召回源。
//
// 命中规则的曲目按规则顺序拼接并去重，不足 Limit 时用 Defaults 补齐，最终截断到 Limit。
// 规则在 NewRulesRecall 时一次性编译。
type RulesRecall struct {
	rules    []TraitRule
	defaults []string
	limit    int
}

// NewRulesRecall 编译规则集；rs 为 nil 时使用 DefaultRules。
func NewRulesRecall(rs *RuleSet) (*RulesRecall, error) {
	if rs == nil {
		rs = DefaultRules()
	}
	r := &RulesRecall{
		rules:    make([]TraitRule, 0, len(rs.Rules)),
		defaults: append([]string(nil), rs.Defaults...),
		limit:    rs.Limit,
	}
	if r.limit <= 0 {
		r.limit = 8
	}
	for i, rule := range rs.Rules {
		prg, err := dsl.Compile(rule.When)
		if err != nil {
			return nil, fmt.Errorf("rule #%d %s: %w", i, rule.Name, err)
		}
		rule.prg = prg
		rule.Items = append([]string(nil), rule.Items...)
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

func (r *RulesRecall) Name() string        { return "recall.rules" }
func (r *RulesRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *RulesRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Match 返回命中的规则（按定义顺序）。
func (r *RulesRecall) Match(v core.PersonalityVector) ([]TraitRule, error) {
	var matched []TraitRule
	for _, rule := range r.rules {
		ok, err := rule.prg.EvalTraits(v)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		if ok {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

func (r *RulesRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	var matched []TraitRule
	if rctx != nil && rctx.Personality != nil {
		var err error
		matched, err = r.Match(*rctx.Personality)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{})
	out := make([]*core.Item, 0, r.limit)
	add := func(id, rule, explain string) bool {
		if _, dup := seen[id]; dup {
			return len(out) < r.limit
		}
		seen[id] = struct{}{}
		it := core.NewItem(id)
		putSourceLabel(it, "rules")
		it.PutLabel("rule", utils.Label{Value: rule, Source: "recall"})
		if explain != "" {
			it.Meta["explain"] = explain
		}
		out = append(out, it)
		return len(out) < r.limit
	}

loop:
	for _, rule := range matched {
		for _, id := range rule.Items {
			if !add(id, rule.Name, rule.Explain) {
				break loop
			}
		}
	}
	if len(out) < r.limit {
		for _, id := range r.defaults {
			if !add(id, "default", "") {
				break
			}
		}
	}
	for i, it := range out {
		it.Score = 1 - float64(i)/float64(len(out))
	}
	return out, nil
}
