package cfgm

import "github.com/urfave/cli/v3"

// options 配置加载选项。
type options struct {
	appName     string
	cmd         *cli.Command
	configPaths []string
	envPrefix   string
	noExpansion bool // 保留 {key} 引用原文
}

// Option 配置加载选项函数。
type Option func(*options)

// WithCommand 绑定 CLI 命令，显式设置的 flags 覆盖其余来源。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithAppName 设置应用名称，未指定 [WithConfigPaths] 时用于生成 [DefaultPaths]。
func WithAppName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithConfigPaths 设置配置文件搜索路径，命中首个可读文件即停止。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithEnvPrefix 启用环境变量覆盖。
//
// 变量名为前缀加大写 key，点号与连字符转为下划线：
//   - EVALDICT_DICT_FILE → dict.file
//   - EVALDICT_SERVER_ADDR → server.addr
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutTemplateExpansion 关闭字符串值之间的 {key} 引用展开。
func WithoutTemplateExpansion() Option {
	return func(o *options) {
		o.noExpansion = true
	}
}
