package dataset

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/conv"
	"github.com/rushteam/big5rec/pkg/logging"
)

// DefaultTraitColumns 是 O, C, E, A, N 对应的列名。
var DefaultTraitColumns = []string{"ope", "con", "ext", "agr", "neu"}

// TableSchema 描述参考表的列布局。
type TableSchema struct {
	// IDColumn 为空时使用行号（从 0 开始）作为 ID
	IDColumn string
	// TraitColumns 按 O, C, E, A, N 顺序给出人格列名，为空时取 DefaultTraitColumns
	TraitColumns []string
	// Ignore 不进入负载的列（如 country_of_residence）
	Ignore []string
}

func (s TableSchema) traitColumns() []string {
	if len(s.TraitColumns) == len(core.Traits) {
		return s.TraitColumns
	}
	return DefaultTraitColumns
}

// LoadReferenceTable 从 CSV 加载人格参考表。
//
// 缺少 ID 列或任一人格列返回 SCHEMA_MISMATCH；人格单元格不是有限数字的行跳过并记日志。
// 除 ID、人格列与 Ignore 外的列按文件顺序成为负载列。
func LoadReferenceTable(ctx context.Context, r io.Reader, schema TableSchema) (*core.ReferenceTable, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	idx := columnIndex(header)

	idCol := -1
	if schema.IDColumn != "" {
		i, ok := idx[strings.ToLower(schema.IDColumn)]
		if !ok {
			return nil, core.Errorf(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: missing id column %q", schema.IDColumn)
		}
		idCol = i
	}

	traitCols := schema.traitColumns()
	traitIdx := make([]int, len(traitCols))
	var missing []string
	for i, c := range traitCols {
		j, ok := idx[strings.ToLower(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		traitIdx[i] = j
	}
	if len(missing) > 0 {
		return nil, core.Errorf(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: missing trait columns %v", missing)
	}

	reserved := make(map[int]struct{}, len(traitIdx)+1)
	for _, j := range traitIdx {
		reserved[j] = struct{}{}
	}
	if idCol >= 0 {
		reserved[idCol] = struct{}{}
	}
	for _, c := range schema.Ignore {
		if j, ok := idx[strings.ToLower(c)]; ok {
			reserved[j] = struct{}{}
		}
	}
	if idCol < 0 && len(header) > 0 && isIndexColumn(header[0]) {
		reserved[0] = struct{}{}
	}
	var payloadIdx []int
	var columns []string
	for j, h := range header {
		if _, skip := reserved[j]; skip {
			continue
		}
		payloadIdx = append(payloadIdx, j)
		columns = append(columns, h)
	}

	log := logging.Ctx(ctx)
	out := make([]core.ReferenceRow, 0, len(rows))
	skipped := 0
	for n, rec := range rows {
		var v core.PersonalityVector
		valid := true
		for i, t := range core.Traits {
			f, ok := conv.ParseFloat(cell(rec, traitIdx[i]))
			if !ok {
				log.Warn().Int("line", n+2).Str("column", traitCols[i]).Msg("invalid trait value, row skipped")
				valid = false
				break
			}
			v.Set(t, f)
		}
		if !valid {
			skipped++
			continue
		}

		id := strconv.Itoa(n)
		if idCol >= 0 {
			id = cell(rec, idCol)
		}
		payload := make(map[string]string, len(payloadIdx))
		for k, j := range payloadIdx {
			if val := cell(rec, j); val != "" {
				payload[columns[k]] = val
			}
		}
		out = append(out, core.ReferenceRow{ID: id, Vector: v, Payload: payload})
	}

	log.Debug().Int("rows", len(out)).Int("skipped", skipped).Int("columns", len(columns)).Msg("reference table loaded")
	return core.NewReferenceTable(columns, out), nil
}

// LoadReferenceTableFile 从文件加载参考表。
func LoadReferenceTableFile(ctx context.Context, path string, schema TableSchema) (*core.ReferenceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeNotFound, "dataset: open "+path, err)
	}
	defer f.Close()
	return LoadReferenceTable(ctx, f, schema)
}
