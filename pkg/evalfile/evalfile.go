package evalfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

// Entry 文件中的一个条目。Key 为点号连接的完整路径。
type Entry struct {
	Key   string
	Value any
}

// Load 读取文件并按文件顺序写入 d。
//
// 按扩展名选择解析器：.hcl 使用 HCL，其余（.yaml/.yml/.json）使用 YAML。
func Load(path string, d *evaldict.Dict) error {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("evalfile: read %s: %w", path, err)
	}

	if err := LoadBytes(path, content, d); err != nil {
		return err
	}
	slog.Debug("Loaded entries from file", "path", path, "entries", d.Len())

	return nil
}

// LoadBytes 解析 content 并写入 d，name 仅用于选择解析器与错误信息。
func LoadBytes(name string, content []byte, d *evaldict.Dict) error {
	entries, err := Parse(name, content)
	if err != nil {
		return err
	}
	for _, e := range entries {
		d.Set(e.Key, e.Value)
	}

	return nil
}

// Parse 解析 content，返回按文件顺序排列的条目。
//
// 嵌套映射展开为点号路径：server: {addr: x} → server.addr。
func Parse(name string, content []byte) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	if isHCLPath(name) {
		entries, err = parseHCL(name, content)
	} else {
		entries, err = parseYAML(content)
	}
	if err != nil {
		return nil, fmt.Errorf("evalfile: parse %s: %w", name, err)
	}

	return entries, nil
}

func isHCLPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hcl")
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}
