package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command"
	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func loadDict(cmd *cli.Command) (*evaldict.Dict, error) {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Dict.File == "" {
		return nil, errors.New("no entries file, use --dict-file")
	}

	return command.NewDict(cfg)
}

func action(_ context.Context, cmd *cli.Command) error {
	d, err := loadDict(cmd)
	if err != nil {
		return err
	}

	keys := append(cmd.StringSlice("key"), cmd.Args().Slice()...)
	if len(keys) == 0 {
		keys = slices.Collect(d.Keys())
	}

	w := writer(cmd)
	for _, key := range keys {
		var val any
		if cmd.Bool("raw") {
			val, err = d.GetRaw(key)
		} else {
			val, err = d.Get(key)
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s=%v\n", key, val)
	}

	return nil
}

func keysAction(_ context.Context, cmd *cli.Command) error {
	d, err := loadDict(cmd)
	if err != nil {
		return err
	}

	w := writer(cmd)
	for key := range d.Keys() {
		_, _ = fmt.Fprintln(w, key)
	}

	return nil
}

func varsAction(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.New("missing key argument")
	}

	d, err := loadDict(cmd)
	if err != nil {
		return err
	}
	raw, err := d.GetRaw(key)
	if err != nil {
		return err
	}
	vars, err := d.UsedVariables(raw)
	if err != nil {
		return err
	}

	w := writer(cmd)
	for _, name := range vars.Sorted() {
		_, _ = fmt.Fprintln(w, name)
	}

	return nil
}

// demoAction 演示格式说明本身由其他条目拼出。
func demoAction(_ context.Context, cmd *cli.Command) error {
	d := evaldict.New()
	d.Set("fill", " ")
	d.Set("align", ">")
	d.Set("pad", "20")
	d.Set("message", "Hello World!")
	d.Set("val", "{message:{fill}{align}{pad}}")

	val, err := d.Get("val")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(writer(cmd), val)

	return nil
}
