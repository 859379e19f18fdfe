// Package cfgm 提供分层配置加载。
//
// 默认值、配置文件、环境变量、CLI flags 逐层覆盖，配置 key 由 json tag
// 定义。配置文件按扩展名解析：.hcl 使用 HCL，其余使用 YAML（JSON 是其子集）。
//
// # 加载优先级 (从低到高)
//
//  1. 默认值 - defaultConfig 参数
//  2. 配置文件 - [WithConfigPaths] 或 [WithAppName]
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]
//
// # 快速开始
//
//	type Config struct {
//	    Name    string        `json:"name"    desc:"应用名称"`
//	    Timeout time.Duration `json:"timeout" desc:"超时时间"`
//	}
//
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "evaldict",
//	    cfgm.WithEnvPrefix("EVALDICT_"),
//	)
//
// # 配置引用
//
// 合并完成后，字符串值可以引用其他配置项，语法与 [evaldict] 相同：
//
//	# config.yaml
//	server:
//	  addr: ":40117"
//	client:
//	  url: "http://localhost{server.addr}"
//
// 引用链可任意嵌套，循环引用与缺失的 key 会使 [Load] 返回错误。
// 字面量花括号写作 {{ 与 }}。使用 [WithoutTemplateExpansion] 保留原文。
//
// # CLI Flag 映射
//
// 点号替换为连字符：server.addr → --server-addr。
package cfgm
