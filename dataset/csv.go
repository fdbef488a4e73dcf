// Package dataset 从 CSV 文件加载进程级只读参考数据：
// 人格参考表（歌曲或用户）、物品相似度矩阵、歌曲目录。
//
// 单元格解析失败的行跳过并记日志；缺少必需列返回 SCHEMA_MISMATCH。
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rushteam/big5rec/core"
)

// readCSV 读取表头与所有数据行，允许行长度不一致（由调用方按行处理）。
func readCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaMismatch, "dataset: empty file")
	}
	if err != nil {
		return nil, nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: read header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: read row", err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// columnIndex 建立列名到下标的映射；大小写不敏感。
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// isIndexColumn 判断首列是否是导出时带出的行号列（表头为空或 Unnamed: 0）。
func isIndexColumn(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "" || strings.HasPrefix(n, "unnamed")
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
