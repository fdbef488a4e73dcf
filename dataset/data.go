package dataset

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/pkg/logging"
)

// Paths 是参考数据文件路径；空串表示不加载。
type Paths struct {
	// Songs 是歌曲人格表（含 Title/Artist/Genre），内容召回使用
	Songs string `koanf:"songs"`
	// Users 是用户人格 + 歌曲评分表，近邻与"近邻喜欢的歌"使用
	Users string `koanf:"users"`
	// Matrix 是歌曲相似度矩阵，物品协同使用
	Matrix string `koanf:"matrix"`
	// Catalog 是歌曲目录
	Catalog string `koanf:"catalog"`
}

// LoadOptions 是各文件的列布局。
type LoadOptions struct {
	Songs          TableSchema
	Users          TableSchema
	CatalogIDField string
}

// ReferenceData 汇总进程级只读参考数据，缺失的部分为 nil。
type ReferenceData struct {
	Songs   *core.ReferenceTable
	Users   *core.ReferenceTable
	Matrix  *core.SimilarityMatrix
	Catalog *Catalog
}

// Empty 判断是否一份数据都没有。
func (d *ReferenceData) Empty() bool {
	return d == nil || (d.Songs.Len() == 0 && d.Users.Len() == 0 && d.Matrix == nil && d.Catalog.Len() == 0)
}

// LoadReferenceData 依次加载所有配置的文件。
//
// 文件不存在只记日志，对应字段留空，服务以降级模式启动；
// 文件存在但格式错误（缺列等）返回错误。
func LoadReferenceData(ctx context.Context, paths Paths, opts LoadOptions) (*ReferenceData, error) {
	log := logging.Ctx(ctx)
	data := &ReferenceData{}

	if paths.Songs != "" {
		t, err := LoadReferenceTableFile(ctx, paths.Songs, opts.Songs)
		if err := tolerateMissing(err, "songs", paths.Songs); err != nil {
			return nil, err
		}
		data.Songs = t
	}
	if paths.Users != "" {
		t, err := LoadReferenceTableFile(ctx, paths.Users, opts.Users)
		if err := tolerateMissing(err, "users", paths.Users); err != nil {
			return nil, err
		}
		data.Users = t
	}
	if paths.Matrix != "" {
		m, err := LoadSimilarityMatrixFile(ctx, paths.Matrix)
		if err := tolerateMissing(err, "matrix", paths.Matrix); err != nil {
			return nil, err
		}
		data.Matrix = m
	}
	if paths.Catalog != "" {
		c, err := LoadCatalogFile(ctx, paths.Catalog, opts.CatalogIDField)
		if err := tolerateMissing(err, "catalog", paths.Catalog); err != nil {
			return nil, err
		}
		data.Catalog = c
	}

	log.Info().
		Int("songs", data.Songs.Len()).
		Int("users", data.Users.Len()).
		Bool("matrix", data.Matrix != nil).
		Int("catalog", data.Catalog.Len()).
		Msg("reference data loaded")
	return data, nil
}

func tolerateMissing(err error, name, path string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Str("dataset", name).Str("path", path).Msg("data file not found, skipped")
		return nil
	}
	return err
}
