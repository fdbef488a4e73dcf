package config

import (
	"fmt"

	"github.com/rushteam/big5rec/pipeline"
)

// LoadPipeline 读取 pipeline 配置文件（YAML/JSON），校验类型后用 DefaultFactory 构建。
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	return BuildPipeline(cfg)
}

// BuildPipeline 校验并构建已解析的配置。
func BuildPipeline(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil pipeline config")
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory())
}
