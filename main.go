package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command"
	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command/client"
	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command/eval"
	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command/server"
)

func main() {
	app := &cli.Command{
		Name:    command.AppName,
		Usage:   "可相互引用的模板字典",
		Version: command.Version,
		Commands: []*cli.Command{
			eval.Command,
			client.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
