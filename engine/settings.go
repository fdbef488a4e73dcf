package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/big5rec/core"
	"github.com/rushteam/big5rec/dataset"
	"github.com/rushteam/big5rec/pkg/logging"
)

// EnvPrefix 是环境变量前缀；嵌套字段用双下划线分隔，
// 例如 BIG5REC_CACHE__BACKEND=redis -> cache.backend。
const EnvPrefix = "BIG5REC_"

// ConfigPathEnvVar 指定配置文件路径的环境变量。
const ConfigPathEnvVar = "BIG5REC_CONFIG"

// Settings 是进程级配置。
type Settings struct {
	Data   dataset.Paths  `koanf:"data"`
	Schema SchemaSettings `koanf:"schema"`
	Recall RecallSettings `koanf:"recall"`
	// RulesFile 是人格规则 YAML，为空时使用内置规则
	RulesFile string `koanf:"rules_file"`
	// PipelineFile 是按人格推荐的自定义 Pipeline，为空时使用内置编排
	PipelineFile string         `koanf:"pipeline_file"`
	Cache        CacheSettings  `koanf:"cache"`
	Server       ServerSettings `koanf:"server"`
	Log          logging.Config `koanf:"log"`
}

// SchemaSettings 是参考数据文件的列布局。
type SchemaSettings struct {
	// SongID 为空时用行号作为歌曲 ID
	SongID string `koanf:"song_id"`
	// UserID 为空时用行号作为用户 ID
	UserID string `koanf:"user_id"`
	// CatalogID 为空时用行号作为目录 ID，与相似度矩阵的行号对齐
	CatalogID    string   `koanf:"catalog_id"`
	TraitColumns []string `koanf:"trait_columns" validate:"omitempty,len=5,dive,required"`
	// UserIgnore 是用户表中既不是人格也不是评分的列
	UserIgnore []string `koanf:"user_ignore"`
}

// RecallSettings 是召回默认值，实现 core.RecallConfig。
type RecallSettings struct {
	TopK              int           `koanf:"top_k" validate:"gte=1,lte=1000"`
	Neighbors         int           `koanf:"neighbors" validate:"gte=1,lte=1000"`
	PerItemLimit      int           `koanf:"per_item_limit" validate:"gte=1,lte=1000"`
	LikedThreshold    float64       `koanf:"liked_threshold" validate:"gte=0"`
	LikedPerNeighbor  int           `koanf:"liked_per_neighbor" validate:"gte=1"`
	MaxResults        int           `koanf:"max_results" validate:"gte=1,lte=1000"`
	Metric            string        `koanf:"metric" validate:"oneof=cosine euclidean"`
	DescriptorColumns []string      `koanf:"descriptor_columns" validate:"min=1,dive,required"`
	Blacklist         []string      `koanf:"blacklist"`
	SourceTimeout     time.Duration `koanf:"source_timeout"`
	// Diversity 为 true 时同一流派最多保留一首
	Diversity bool `koanf:"diversity"`
}

func (r RecallSettings) DefaultTopK() int               { return r.TopK }
func (r RecallSettings) DefaultNeighbors() int          { return r.Neighbors }
func (r RecallSettings) DefaultPerItemLimit() int       { return r.PerItemLimit }
func (r RecallSettings) DefaultLikedThreshold() float64 { return r.LikedThreshold }
func (r RecallSettings) DefaultLikedPerNeighbor() int   { return r.LikedPerNeighbor }
func (r RecallSettings) DefaultMaxResults() int         { return r.MaxResults }

var _ core.RecallConfig = RecallSettings{}

// CacheSettings 是推荐结果缓存配置。
type CacheSettings struct {
	Backend   string        `koanf:"backend" validate:"oneof=none memory redis"`
	TTL       time.Duration `koanf:"ttl"`
	RedisAddr string        `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `koanf:"redis_db" validate:"gte=0"`
	// RedisPassword 不写日志
	RedisPassword string `koanf:"redis_password"`
	KeyPrefix     string `koanf:"key_prefix"`
	// BreakerFailures 连续失败多少次后熔断
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// ServerSettings 是 HTTP 服务配置。
type ServerSettings struct {
	Listen          string        `koanf:"listen" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RequestTimeout 单次推荐的超时
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DefaultSettings 返回默认配置。
func DefaultSettings() *Settings {
	d := &core.DefaultRecallConfig{}
	return &Settings{
		Data: dataset.Paths{
			Songs:   "data/songs_personality.csv",
			Users:   "data/users_personality_ratings.csv",
			Matrix:  "data/song_similarity.csv",
			Catalog: "data/songs.csv",
		},
		Schema: SchemaSettings{
			UserIgnore: []string{"userid", "country_of_residence"},
		},
		Recall: RecallSettings{
			TopK:              d.DefaultTopK(),
			Neighbors:         d.DefaultNeighbors(),
			PerItemLimit:      d.DefaultPerItemLimit(),
			LikedThreshold:    d.DefaultLikedThreshold(),
			LikedPerNeighbor:  d.DefaultLikedPerNeighbor(),
			MaxResults:        d.DefaultMaxResults(),
			Metric:            "cosine",
			DescriptorColumns: []string{"Title", "Artist", "Genre"},
			SourceTimeout:     2 * time.Second,
		},
		Cache: CacheSettings{
			Backend:         "memory",
			TTL:             10 * time.Minute,
			KeyPrefix:       "big5rec:",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Server: ServerSettings{
			Listen:          ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// sliceSettingPaths 是环境变量里以逗号分隔的列表字段。
var sliceSettingPaths = []string{
	"schema.trait_columns",
	"schema.user_ignore",
	"recall.descriptor_columns",
	"recall.blacklist",
}

// LoadSettings 分层加载配置：默认值 -> YAML 文件 -> 环境变量，最后校验。
// path 为空时读取 BIG5REC_CONFIG；仍为空则跳过文件层。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return s, nil
}

func envTransform(key string) string {
	if key == ConfigPathEnvVar {
		return ""
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceSettingPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New()

// Validate 校验配置。
func (s *Settings) Validate() error {
	return validate.Struct(s)
}

// LoadOptions 把列布局换成 dataset.LoadOptions。
func (s *Settings) LoadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		Songs:          dataset.TableSchema{IDColumn: s.Schema.SongID, TraitColumns: s.Schema.TraitColumns},
		Users:          dataset.TableSchema{IDColumn: s.Schema.UserID, TraitColumns: s.Schema.TraitColumns, Ignore: s.Schema.UserIgnore},
		CatalogIDField: s.Schema.CatalogID,
	}
}
