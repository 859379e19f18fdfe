// Package command 提供命令行子命令共享的默认值与加载逻辑。
package command

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/config"
	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/cfgm"
	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evalfile"
)

const (
	// AppName 应用名称，决定默认配置文件路径 (.evaldict.yaml 等)。
	AppName = "evaldict"
	// EnvPrefix 环境变量前缀，例如 EVALDICT_DICT_FILE。
	EnvPrefix = "EVALDICT_"
	// Version 应用版本。
	Version = "0.1.0"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// LoadConfig 按 默认值 → 配置文件 → 环境变量 → CLI flags 加载配置。
func LoadConfig(cmd *cli.Command) (*config.Config, error) {
	return cfgm.LoadCmd(cmd, config.DefaultConfig(), AppName, cfgm.WithEnvPrefix(EnvPrefix))
}

// NewDict 按配置创建 Dict，dict.file 非空时载入其中的条目。
func NewDict(cfg *config.Config) (*evaldict.Dict, error) {
	policy, err := evaldict.ParseInvalidation(cfg.Dict.Invalidation)
	if err != nil {
		return nil, err
	}

	d := evaldict.New(
		evaldict.WithInvalidation(policy),
		evaldict.WithLogger(slog.Default()),
	)
	if cfg.Dict.File == "" {
		return d, nil
	}
	if err := evalfile.Load(cfg.Dict.File, d); err != nil {
		return nil, err
	}

	return d, nil
}

// DictFlags 返回 dict.* 配置对应的 flags。
func DictFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dict-file",
			Aliases: []string{"f"},
			Value:   Defaults.Dict.File,
			Usage:   "条目文件路径 (.yaml/.yml/.json/.hcl)",
		},
		&cli.StringFlag{
			Name:  "dict-invalidation",
			Value: Defaults.Dict.Invalidation,
			Usage: "缓存失效策略: dependents 或 all",
		},
	}
}
