package core

import "github.com/rushteam/big5rec/pkg/utils"

// Item 是推荐链路中的统一承载结构：歌曲或近邻用户。
// Score 用于排序；Meta 放描述字段（Title/Artist/Genre 等）；Labels 记录来源与解释。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// MetaString 读取字符串类型的 Meta 字段。
func (it *Item) MetaString(key string) string {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// Clone 深拷贝 Item，供缓存与多路合并时避免共享 map。
func (it *Item) Clone() *Item {
	out := &Item{
		ID:       it.ID,
		Score:    it.Score,
		Features: make(map[string]float64, len(it.Features)),
		Meta:     make(map[string]any, len(it.Meta)),
		Labels:   make(map[string]utils.Label, len(it.Labels)),
	}
	for k, v := range it.Features {
		out.Features[k] = v
	}
	for k, v := range it.Meta {
		out.Meta[k] = v
	}
	for k, v := range it.Labels {
		out.Labels[k] = v
	}
	return out
}
