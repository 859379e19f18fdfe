// Package client 提供访问模板字典服务器的 HTTP 客户端命令。
package client

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command"
)

// Command 客户端命令
var Command = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "模板字典 HTTP 客户端",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "client-url",
				Aliases: []string{"s"},
				Value:   command.Defaults.Client.URL,
				Usage:   "服务器地址，可引用其他配置项，例如 http://localhost{server.addr}",
			},
			&cli.DurationFlag{
				Name:  "client-timeout",
				Value: command.Defaults.Client.Timeout,
				Usage: "请求超时时间",
			},
			&cli.IntFlag{
				Name:  "client-retries",
				Value: command.Defaults.Client.Retries,
				Usage: "重试次数",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "检查服务器健康状态",
				Action: healthAction,
			},
			{
				Name:   "keys",
				Usage:  "列出全部 key",
				Action: keysAction,
			},
			{
				Name:      "get",
				Usage:     "读取 key 的求值结果",
				ArgsUsage: "<key>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "raw", Usage: "读取未求值的原始值"},
				},
				Action: getAction,
			},
			{
				Name:      "set",
				Usage:     "写入 key 的原始模板",
				ArgsUsage: "<key> <template>",
				Action:    setAction,
			},
			{
				Name:      "delete",
				Usage:     "删除 key",
				ArgsUsage: "<key>",
				Action:    deleteAction,
			},
			{
				Name:   "stats",
				Usage:  "查看缓存统计",
				Action: statsAction,
			},
		},
	}
}
