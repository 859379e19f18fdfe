// Package eval 提供在命令行中求值条目文件的命令。
package eval

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command"
)

// Command 求值命令
var Command = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "求值条目文件中的 key",
		UsageText: "evaldict eval -f entries.yaml [key ...]\n" +
			"evaldict eval -f entries.yaml -k keys   # 与子命令同名的 key 需用 --key 指定",
		ArgsUsage: "[key ...]",
		Description: "位置参数 keys、vars、demo 会被解析为子命令，\n" +
			"求值同名条目时使用 --key/-k。",
		Flags: append(command.DictFlags(),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "输出未求值的原始值",
			},
			&cli.StringSliceFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "要求值的 key，可重复；用于与子命令同名的 key",
			},
		),
		Action: action,
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "按文件顺序列出全部 key",
				Action: keysAction,
			},
			{
				Name:      "vars",
				Usage:     "列出 key 直接引用的变量",
				ArgsUsage: "<key>",
				Action:    varsAction,
			},
			{
				Name:   "demo",
				Usage:  "运行嵌套格式说明的示例",
				Action: demoAction,
			},
		},
	}
}
