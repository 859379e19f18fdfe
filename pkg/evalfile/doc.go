// Package evalfile 从 YAML/JSON/HCL 文件加载 [evaldict.Dict] 条目。
//
// 文件顺序即 Store 顺序；嵌套映射展开为点号路径，模板可直接引用：
//
//	# entries.yaml
//	server:
//	  host: localhost
//	  port: 40117
//	url: "http://{server.host}:{server.port}"
//
// 字符串作为模板保存，整数、浮点数、布尔值保持原类型，序列保存为 []any。
//
// HCL 文件读取顶层属性，对象同样展开为点号路径：
//
//	server = { host = "localhost", port = 40117 }
//	url    = "http://{server.host}:{server.port}"
package evalfile
