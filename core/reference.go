package core

import "github.com/rushteam/big5rec/pkg/conv"

// ReferenceRow 是参考表中的一行：用户或歌曲 ID + 人格向量 + 负载列（描述文本或评分）。
// 行在加载后只读。
type ReferenceRow struct {
	ID      string
	Vector  PersonalityVector
	Payload map[string]string
}

// Field 读取负载列；值为空串视为缺失。
func (r ReferenceRow) Field(name string) (string, bool) {
	if r.Payload == nil {
		return "", false
	}
	v, ok := r.Payload[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Rating 将负载列解析为数值评分。
func (r ReferenceRow) Rating(name string) (float64, bool) {
	v, ok := r.Field(name)
	if !ok {
		return 0, false
	}
	return conv.ParseFloat(v)
}

// ReferenceTable 是进程级只读参考表。
//
// 构造时做防御性拷贝，之后不提供任何写方法；
// 并发请求共享同一张表无需加锁，每个请求的距离等派生数据放在私有结构里。
type ReferenceTable struct {
	columns []string
	colSet  map[string]struct{}
	rows    []ReferenceRow
}

// NewReferenceTable 创建参考表。columns 是负载列的 schema（加载顺序）。
func NewReferenceTable(columns []string, rows []ReferenceRow) *ReferenceTable {
	t := &ReferenceTable{
		columns: append([]string(nil), columns...),
		colSet:  make(map[string]struct{}, len(columns)),
		rows:    make([]ReferenceRow, len(rows)),
	}
	for _, c := range columns {
		t.colSet[c] = struct{}{}
	}
	for i, r := range rows {
		payload := make(map[string]string, len(r.Payload))
		for k, v := range r.Payload {
			payload[k] = v
		}
		t.rows[i] = ReferenceRow{ID: r.ID, Vector: r.Vector, Payload: payload}
	}
	return t
}

// Len 返回行数；nil 表视为空表。
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row 返回第 i 行（值拷贝，Payload map 只读）。
func (t *ReferenceTable) Row(i int) ReferenceRow {
	return t.rows[i]
}

// Rows 返回行切片的拷贝。
func (t *ReferenceTable) Rows() []ReferenceRow {
	if t == nil {
		return nil
	}
	return append([]ReferenceRow(nil), t.rows...)
}

// Columns 返回负载列 schema 的拷贝。
func (t *ReferenceTable) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// HasColumns 检查所有列都在 schema 中，返回缺失的列。
func (t *ReferenceTable) HasColumns(names ...string) (missing []string) {
	for _, n := range names {
		if t == nil {
			missing = append(missing, n)
			continue
		}
		if _, ok := t.colSet[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
