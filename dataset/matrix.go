package dataset

import (
	"context"
	"io"
	"os"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/conv"
	"github.com/rushteam/big5rec/pkg/logging"
)

// LoadSimilarityMatrix 从 CSV 加载物品相似度矩阵。
//
// 表头是列物品 ID。首列表头为空（或 Unnamed: 0）时，该列是行物品 ID；
// 否则行 ID 与列 ID 按顺序一一对应（方阵）。无法解析的单元格按 0 处理并记日志。
func LoadSimilarityMatrix(ctx context.Context, r io.Reader) (*core.SimilarityMatrix, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: matrix has no columns")
	}

	withIndex := isIndexColumn(header[0])
	colIDs := header
	if withIndex {
		colIDs = header[1:]
	}
	if !withIndex && len(rows) != len(colIDs) {
		return nil, core.Errorf(core.ModuleDataset, core.ErrorCodeSchemaMismatch,
			"dataset: matrix without row ids must be square, got %d rows for %d columns", len(rows), len(colIDs))
	}

	log := logging.Ctx(ctx)
	rowIDs := make([]string, len(rows))
	values := make([][]float64, len(rows))
	bad := 0
	for i, rec := range rows {
		offset := 0
		if withIndex {
			rowIDs[i] = cell(rec, 0)
			offset = 1
		} else {
			rowIDs[i] = colIDs[i]
		}
		vals := make([]float64, len(colIDs))
		for j := range colIDs {
			f, ok := conv.ParseFloat(cell(rec, j+offset))
			if !ok {
				bad++
				continue
			}
			vals[j] = f
		}
		values[i] = vals
	}
	if bad > 0 {
		log.Warn().Int("cells", bad).Msg("unparsable similarity cells treated as 0")
	}

	m, err := core.NewSimilarityMatrix(rowIDs, colIDs, values)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: invalid matrix", err)
	}
	r0, c0 := m.Dims()
	log.Debug().Int("rows", r0).Int("columns", c0).Msg("similarity matrix loaded")
	return m, nil
}

// LoadSimilarityMatrixFile 从文件加载相似度矩阵。
func LoadSimilarityMatrixFile(ctx context.Context, path string) (*core.SimilarityMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeNotFound, "dataset: open "+path, err)
	}
	defer f.Close()
	return LoadSimilarityMatrix(ctx, f)
}
