package core

import "fmt"

// SimilarityMatrix 是预计算的物品-物品相似度表，行列都以物品 ID 为 key。
// 默认假定对称；请求期间只读。
type SimilarityMatrix struct {
	rowIDs   []string
	colIDs   []string
	rowIndex map[string]int
	colIndex map[string]int
	values   [][]float64 // values[row][col]
}

// NewSimilarityMatrix 创建矩阵（可以是长方形），values 的维度必须与 rowIDs × colIDs 一致。
func NewSimilarityMatrix(rowIDs, colIDs []string, values [][]float64) (*SimilarityMatrix, error) {
	if len(values) != len(rowIDs) {
		return nil, Errorf(ModuleCore, ErrorCodeInvalidInput, "matrix: %d rows for %d row ids", len(values), len(rowIDs))
	}
	m := &SimilarityMatrix{
		rowIDs:   append([]string(nil), rowIDs...),
		colIDs:   append([]string(nil), colIDs...),
		rowIndex: make(map[string]int, len(rowIDs)),
		colIndex: make(map[string]int, len(colIDs)),
		values:   make([][]float64, len(values)),
	}
	for i, id := range rowIDs {
		if _, dup := m.rowIndex[id]; dup {
			return nil, Errorf(ModuleCore, ErrorCodeInvalidInput, "matrix: duplicate row id %q", id)
		}
		m.rowIndex[id] = i
	}
	for j, id := range colIDs {
		if _, dup := m.colIndex[id]; dup {
			return nil, Errorf(ModuleCore, ErrorCodeInvalidInput, "matrix: duplicate column id %q", id)
		}
		m.colIndex[id] = j
	}
	for i, row := range values {
		if len(row) != len(colIDs) {
			return nil, Errorf(ModuleCore, ErrorCodeInvalidInput, "matrix: row %d has %d values, want %d", i, len(row), len(colIDs))
		}
		m.values[i] = append([]float64(nil), row...)
	}
	return m, nil
}

// NewSquareSimilarityMatrix 创建行列 ID 相同的方阵。
func NewSquareSimilarityMatrix(ids []string, values [][]float64) (*SimilarityMatrix, error) {
	return NewSimilarityMatrix(ids, ids, values)
}

// RowIDs 返回行 ID（拷贝）。
func (m *SimilarityMatrix) RowIDs() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.rowIDs...)
}

// ColumnIDs 返回列 ID（拷贝）。
func (m *SimilarityMatrix) ColumnIDs() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.colIDs...)
}

// RowID 返回第 i 行的物品 ID。
func (m *SimilarityMatrix) RowID(i int) string {
	return m.rowIDs[i]
}

// RowIndex 查找行 ID 的位置。
func (m *SimilarityMatrix) RowIndex(id string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.rowIndex[id]
	return i, ok
}

// HasColumn 检查列是否存在。
func (m *SimilarityMatrix) HasColumn(id string) bool {
	if m == nil {
		return false
	}
	_, ok := m.colIndex[id]
	return ok
}

// Column 返回某物品列的拷贝（按行顺序）；不存在时返回 KEY_NOT_FOUND。
func (m *SimilarityMatrix) Column(id string) ([]float64, error) {
	if m == nil {
		return nil, Errorf(ModuleCore, ErrorCodeKeyNotFound, "matrix: no column %q", id)
	}
	j, ok := m.colIndex[id]
	if !ok {
		return nil, Errorf(ModuleCore, ErrorCodeKeyNotFound, "matrix: no column %q", id)
	}
	col := make([]float64, len(m.values))
	for i := range m.values {
		col[i] = m.values[i][j]
	}
	return col, nil
}

// Score 返回 (row, col) 的相似度。
func (m *SimilarityMatrix) Score(rowID, colID string) (float64, error) {
	i, ok := m.RowIndex(rowID)
	if !ok {
		return 0, Errorf(ModuleCore, ErrorCodeKeyNotFound, "matrix: no row %q", rowID)
	}
	j, ok := m.colIndex[colID]
	if !ok {
		return 0, Errorf(ModuleCore, ErrorCodeKeyNotFound, "matrix: no column %q", colID)
	}
	return m.values[i][j], nil
}

// Dims 返回 (rows, cols)。
func (m *SimilarityMatrix) Dims() (int, int) {
	if m == nil {
		return 0, 0
	}
	return len(m.rowIDs), len(m.colIDs)
}

func (m *SimilarityMatrix) String() string {
	r, c := m.Dims()
	return fmt.Sprintf("SimilarityMatrix(%dx%d)", r, c)
}
