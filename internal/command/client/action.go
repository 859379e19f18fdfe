package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-evaldict/internal/command"
)

// retryDelay 第 n 次重试前等待 n*retryDelay。
const retryDelay = 50 * time.Millisecond

// StatusError 服务器返回非 2xx 状态。
type StatusError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

type client struct {
	baseURL string
	retries int
	http    *http.Client
}

func newClient(cmd *cli.Command) (*client, error) {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &client{
		baseURL: strings.TrimRight(cfg.Client.URL, "/"),
		retries: max(cfg.Client.Retries, 0),
		http:    &http.Client{Timeout: cfg.Client.Timeout},
	}, nil
}

// do 发送请求，网络错误与 5xx 按配置重试。
func (c *client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := range c.retries + 1 {
		if attempt > 0 {
			slog.Debug("Retrying request", "method", method, "path", path, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryDelay):
			}
		}

		data, err := c.once(ctx, method, path, body)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code < http.StatusInternalServerError {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *client) once(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	return data, nil
}

func entryPath(key string) string {
	return "/v1/entries/" + url.PathEscape(key)
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// requireArgs 返回前 n 个位置参数，缺少时报错。
func requireArgs(cmd *cli.Command, n int) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}

	return args[:n], nil
}

func healthAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprintln(writer(cmd), resp.Status)

	return nil
}

func keysAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodGet, "/v1/entries", nil)
	if err != nil {
		return err
	}

	var resp struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	w := writer(cmd)
	for _, key := range resp.Keys {
		_, _ = fmt.Fprintln(w, key)
	}

	return nil
}

func getAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	path := entryPath(args[0])
	if cmd.Bool("raw") {
		path += "?raw=1"
	}
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	var resp struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprintln(writer(cmd), resp.Value)

	return nil
}

func setAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return err
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, entryPath(args[0]), []byte(args[1]))

	return err
}

func deleteAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodDelete, entryPath(args[0]), nil)

	return err
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodGet, "/v1/stats", nil)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	_, _ = fmt.Fprint(writer(cmd), out.String())

	return nil
}
