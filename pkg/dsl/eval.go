// Package dsl 是基于 CEL (Common Expression Language) 的表达式求值器。
//
// 可用变量：
//   - trait: 人格向量，trait.ope / trait.con / trait.ext / trait.agr / trait.neu
//   - item:  item.id / item.score / item.meta / item.features
//   - label: item 的 label value，label.recall_source == "content"
//   - rctx:  rctx.user_id / rctx.scene / rctx.params
//
// 示例：
//   - `trait.ope > 3.5 && trait.ext > 3.5`
//   - `item.meta.Genre != "Metal"`
//   - `label.recall_source == "i2i" && item.score > 0.5`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/big5rec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	programs sync.Map // expr -> *Program
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("trait", cel.MapType(cel.StringType, cel.DoubleType)),
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，可并发求值。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，要求结果类型为 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// MustCompile 编译失败时 panic，用于内置规则。
func MustCompile(expr string) *Program {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// cached 返回缓存的编译结果。
func cached(expr string) (*Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(*Program), nil
	}
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	actual, _ := programs.LoadOrStore(expr, p)
	return actual.(*Program), nil
}

func (p *Program) String() string { return p.expr }

// EvalTraits 以人格向量为输入求值。
func (p *Program) EvalTraits(v core.PersonalityVector) (bool, error) {
	return p.eval(map[string]any{
		"trait": v.ShortMap(),
		"item":  map[string]any{},
		"label": map[string]any{},
		"rctx":  map[string]any{},
	})
}

// EvalItem 以 item + 请求上下文为输入求值；rctx 带人格向量时 trait 同样可用。
func (p *Program) EvalItem(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	return p.eval(buildInput(item, rctx))
}

func (p *Program) eval(input map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(input)
	if err != nil {
		// 访问不存在的 key 会报错，表达式里应先用 has() 检查
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译（带缓存）并对 item 求值；空表达式视为 true。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := cached(expr)
	if err != nil {
		return false, err
	}
	return p.EvalItem(item, rctx)
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}
	item := map[string]any{
		"id":       it.ID,
		"score":    it.Score,
		"features": it.Features,
		"meta":     it.Meta,
	}

	trait := map[string]float64{}
	r := map[string]any{}
	if rctx != nil {
		if rctx.Personality != nil {
			trait = rctx.Personality.ShortMap()
		}
		r["user_id"] = rctx.UserID
		r["scene"] = rctx.Scene
		r["params"] = rctx.Params
	}
	return map[string]any{
		"trait": trait,
		"item":  item,
		"label": labels,
		"rctx":  r,
	}
}
