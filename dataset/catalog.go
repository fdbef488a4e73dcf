package dataset

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/logging"
)

// Catalog 是歌曲目录：ID -> 描述字段。加载后只读。
type Catalog struct {
	columns []string
	ids     []string
	entries map[string]map[string]string
}

// NewCatalog 由内存数据构建目录（测试或内置数据）。
func NewCatalog(columns []string, entries map[string]map[string]string, order []string) *Catalog {
	c := &Catalog{
		columns: append([]string(nil), columns...),
		entries: make(map[string]map[string]string, len(entries)),
	}
	for _, id := range order {
		if d, ok := entries[id]; ok {
			c.add(id, d)
		}
	}
	for id, d := range entries {
		if _, seen := c.entries[id]; !seen {
			c.add(id, d)
		}
	}
	return c
}

func (c *Catalog) add(id string, desc map[string]string) {
	cp := make(map[string]string, len(desc))
	for k, v := range desc {
		cp[k] = v
	}
	c.entries[id] = cp
	c.ids = append(c.ids, id)
}

// Lookup 返回描述字段的拷贝。
func (c *Catalog) Lookup(id string) (map[string]string, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	cp := make(map[string]string, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp, true
}

// Len 返回歌曲数。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// IDs 按加载顺序返回歌曲 ID。
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.ids...)
}

// Columns 返回描述列。
func (c *Catalog) Columns() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.columns...)
}

// LoadCatalog 从 CSV 加载歌曲目录；idColumn 为空时用行号作 ID（与相似度矩阵的行号对应）。
// 重复 ID 保留第一次出现的行。
func LoadCatalog(ctx context.Context, r io.Reader, idColumn string) (*Catalog, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	idx := columnIndex(header)
	idCol := -1
	if idColumn != "" {
		i, ok := idx[strings.ToLower(idColumn)]
		if !ok {
			return nil, core.Errorf(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: catalog missing id column %q", idColumn)
		}
		idCol = i
	}

	var columns []string
	var colIdx []int
	for j, h := range header {
		if j == idCol || (idCol < 0 && j == 0 && isIndexColumn(h)) {
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, j)
	}

	c := &Catalog{columns: columns, entries: make(map[string]map[string]string, len(rows))}
	dups := 0
	for n, rec := range rows {
		id := strconv.Itoa(n)
		if idCol >= 0 {
			id = cell(rec, idCol)
		}
		if _, dup := c.entries[id]; dup || id == "" {
			dups++
			continue
		}
		desc := make(map[string]string, len(columns))
		for k, j := range colIdx {
			if v := cell(rec, j); v != "" {
				desc[columns[k]] = v
			}
		}
		c.entries[id] = desc
		c.ids = append(c.ids, id)
	}
	if dups > 0 {
		logging.Ctx(ctx).Warn().Int("rows", dups).Msg("catalog rows with duplicate or empty id skipped")
	}
	return c, nil
}

// LoadCatalogFile 从文件加载歌曲目录。
func LoadCatalogFile(ctx context.Context, path, idColumn string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeNotFound, "dataset: open "+path, err)
	}
	defer f.Close()
	return LoadCatalog(ctx, f, idColumn)
}
