package core

// Neighbor 是排序结果中的一项：参考行、它在原表中的位置、与查询向量的距离。
type Neighbor struct {
	Row      ReferenceRow
	Index    int
	Distance float64
}

// RankedResult 是按距离升序排列的近邻结果（距离相同保持原表顺序）。
// Columns 是来源参考表的负载 schema，供下游抽取器做列校验。
type RankedResult struct {
	Columns   []string
	Neighbors []Neighbor
}

// Len 返回近邻数。
func (r RankedResult) Len() int {
	return len(r.Neighbors)
}

// Head 返回前 k 个近邻；k <= 0 或超出长度时返回全部。
func (r RankedResult) Head(k int) []Neighbor {
	if k <= 0 || k >= len(r.Neighbors) {
		return r.Neighbors
	}
	return r.Neighbors[:k]
}

// HasColumns 返回 schema 中缺失的列。
func (r RankedResult) HasColumns(names ...string) (missing []string) {
	set := make(map[string]struct{}, len(r.Columns))
	for _, c := range r.Columns {
		set[c] = struct{}{}
	}
	for _, n := range names {
		if _, ok := set[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// Record 是内容型抽取的一条结果：行 ID、距离、按请求列投影出的描述字段。
type Record struct {
	ID       string            `json:"id"`
	Distance float64           `json:"distance"`
	Fields   map[string]string `json:"fields"`
}

// Tuple 按给定列顺序输出描述字段（如 Title, Artist, Genre）。
func (r Record) Tuple(columns ...string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Fields[c]
	}
	return out
}
