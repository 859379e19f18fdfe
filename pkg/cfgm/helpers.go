package cfgm

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/urfave/cli/v3"
)

var durationType = reflect.TypeFor[time.Duration]()

// configTagName 返回 json tag 中的名称，"-" 与空名称表示忽略该字段。
func configTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || !field.IsExported() {
		return ""
	}

	return name
}

func derefType(typ reflect.Type) reflect.Type {
	if typ.Kind() == reflect.Pointer {
		return typ.Elem()
	}

	return typ
}

func isStructType(typ reflect.Type) bool {
	typ = derefType(typ)
	return typ.Kind() == reflect.Struct && typ != durationType
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// structToMap 以 json tag 为 key 把配置结构体展开为嵌套 map。
func structToMap(cfg any) map[string]any {
	out, _ := toAny(reflect.ValueOf(cfg)).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	return out
}

func toAny(val reflect.Value) any {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch {
	case isStructType(val.Type()):
		out := make(map[string]any)
		typ := val.Type()
		for i := range typ.NumField() {
			if key := configTagName(typ.Field(i)); key != "" {
				out[key] = toAny(val.Field(i))
			}
		}
		return out
	case val.Kind() == reflect.Slice && !val.IsNil():
		out := make([]any, val.Len())
		for i := range val.Len() {
			out[i] = toAny(val.Index(i))
		}
		return out
	case val.Kind() == reflect.Map && !val.IsNil():
		out := make(map[string]any, val.Len())
		for it := val.MapRange(); it.Next(); {
			out[fmt.Sprint(it.Key().Interface())] = toAny(it.Value())
		}
		return out
	default:
		return val.Interface()
	}
}

// collectConfigKeys 返回结构体所有叶子字段的点号路径。
func collectConfigKeys(typ reflect.Type, prefix string) []string {
	typ = derefType(typ)
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}
		full := joinPath(prefix, key)
		if isStructType(field.Type) {
			keys = append(keys, collectConfigKeys(field.Type, full)...)
			continue
		}
		keys = append(keys, full)
	}

	return keys
}

// applyCLIFlags 写入用户显式设置的 flags，flag 名为点号换成连字符的 key：
// dict.file → --dict-file。
func applyCLIFlags(cmd *cli.Command, configMap map[string]any, typ reflect.Type, prefix string) {
	typ = derefType(typ)
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}
		full := joinPath(prefix, key)
		if isStructType(field.Type) {
			applyCLIFlags(cmd, configMap, field.Type, full)
			continue
		}

		name := strings.ReplaceAll(full, ".", "-")
		if !cmd.IsSet(name) {
			continue
		}
		if val, ok := flagValue(cmd, name, field.Type); ok {
			setByPath(configMap, full, val)
		}
	}
}

func flagValue(cmd *cli.Command, name string, typ reflect.Type) (any, bool) {
	if typ == durationType {
		return cmd.Duration(name), true
	}

	switch typ.Kind() {
	case reflect.String:
		return cmd.String(name), true
	case reflect.Bool:
		return cmd.Bool(name), true
	case reflect.Int:
		return cmd.Int(name), true
	case reflect.Int64:
		return cmd.Int64(name), true
	case reflect.Float64:
		return cmd.Float64(name), true
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.String {
			return cmd.StringSlice(name), true
		}
	}

	return nil, false
}

// setByPath 按点号路径写入值，缺失的中间层自动创建。
func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// walkLeaves 按 key 排序遍历叶子，空 map 本身算作叶子。
func walkLeaves(data map[string]any, prefix string, fn func(key string, val any)) {
	for _, key := range slices.Sorted(maps.Keys(data)) {
		full := joinPath(prefix, key)
		if child, ok := data[key].(map[string]any); ok && len(child) > 0 {
			walkLeaves(child, full, fn)
			continue
		}
		fn(full, data[key])
	}
}

func decodeConfigMap(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
