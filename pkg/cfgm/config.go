package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evalfile"
)

// DefaultPaths 返回默认配置文件的搜索顺序，先命中的文件生效。
//
// 提供 appName 时依次加入 ./.appname.yaml、~/.appname.yaml、
// /etc/appname/config.yaml，最后是 config.yaml 与 config/config.yaml。
func DefaultPaths(appName ...string) []string {
	var paths []string
	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		paths = append(paths, "."+name+".yaml")
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		paths = append(paths, filepath.Join("/etc", name, "config.yaml"))
	}

	return append(paths, "config.yaml", filepath.Join("config", "config.yaml"))
}

// Load 读取配置并按优先级合并。
//
// 优先级 (从低到高)：
//  1. 默认值 - defaultConfig
//  2. 配置文件 - [WithConfigPaths] / [WithAppName]，支持 YAML、JSON、HCL
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]
//
// 合并完成后，字符串值中的 {key} 引用按 [evaldict] 语法展开，
// key 为 json tag 拼接的点号路径。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.configPaths) == 0 {
		o.configPaths = DefaultPaths(o.appName)
	}

	configMap := structToMap(defaultConfig)

	if err := mergeFirstFile(configMap, o.configPaths); err != nil {
		return nil, err
	}

	if o.envPrefix != "" {
		applyEnv(configMap, o.envPrefix, collectConfigKeys(reflect.TypeOf(defaultConfig), ""))
	}

	if o.cmd != nil {
		applyCLIFlags(o.cmd, configMap, reflect.TypeOf(defaultConfig), "")
	}

	if !o.noExpansion {
		if err := expandReferences(configMap); err != nil {
			return nil, err
		}
	}

	var cfg T
	if err := decodeConfigMap(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// LoadCmd 等价于 Load 加上 [WithCommand]，appName 非空时再加 [WithAppName]。
//
//	cfg, err := cfgm.LoadCmd(cmd, config.DefaultConfig(), "evaldict",
//	    cfgm.WithEnvPrefix("EVALDICT_"),
//	)
func LoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) (*T, error) {
	return Load(defaultConfig, cmdOptions(cmd, appName, opts)...)
}

// MustLoad 调用 [Load]，失败时 panic。
func MustLoad[T any](defaultConfig T, opts ...Option) *T {
	cfg, err := Load(defaultConfig, opts...)
	if err != nil {
		panic(fmt.Sprintf("cfgm: failed to load config: %v", err))
	}

	return cfg
}

// MustLoadCmd 调用 [LoadCmd]，失败时 panic。
func MustLoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) *T {
	return MustLoad(defaultConfig, cmdOptions(cmd, appName, opts)...)
}

func cmdOptions(cmd *cli.Command, appName string, opts []Option) []Option {
	base := []Option{WithCommand(cmd)}
	if appName != "" {
		base = append(base, WithAppName(appName))
	}

	return append(base, opts...)
}

// mergeFirstFile 合并首个可读的配置文件，全部缺失时保持默认值。
func mergeFirstFile(configMap map[string]any, paths []string) error {
	for _, path := range paths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			continue
		}

		entries, err := evalfile.Parse(path, content)
		if err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		for _, e := range entries {
			setByPath(configMap, e.Key, e.Value)
		}
		slog.Debug("Loaded config from file", "path", path, "entries", len(entries))

		return nil
	}
	slog.Debug("No config file found, using defaults", "paths", paths)

	return nil
}

// applyEnv 按前缀读取环境变量，空值视为未设置。
func applyEnv(configMap map[string]any, prefix string, keys []string) {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	for _, key := range keys {
		env := prefix + strings.ToUpper(replacer.Replace(key))
		if val := os.Getenv(env); val != "" {
			setByPath(configMap, key, val)
			slog.Debug("Loaded env binding", "env", env, "path", key)
		}
	}
}

// expandReferences 把合并后的叶子写入 Dict，再逐个求值字符串叶子。
//
// 非字符串叶子作为普通值参与引用，例如 {server.timeout} 渲染为 "30s"。
func expandReferences(configMap map[string]any) error {
	d := evaldict.New()
	var templates []string
	walkLeaves(configMap, "", func(key string, val any) {
		d.Set(key, val)
		if _, ok := val.(string); ok {
			templates = append(templates, key)
		}
	})

	for _, key := range templates {
		val, err := d.Get(key)
		if err != nil {
			return fmt.Errorf("expand %s: %w", key, err)
		}
		setByPath(configMap, key, val)
	}

	return nil
}
