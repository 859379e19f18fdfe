package evalfile

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// parseHCL 读取顶层属性，按源码位置排序。
//
// 属性必须是字面量；HCL 自身的 ${...} 插值在此处没有变量可用，会报错。
func parseHCL(name string, content []byte) ([]Entry, error) {
	file, diags := hclparse.NewParser().ParseHCL(content, name)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	slices.SortFunc(ordered, func(a, b *hcl.Attribute) int {
		return cmp.Compare(a.Range.Start.Byte, b.Range.Start.Byte)
	})

	var entries []Entry
	for _, attr := range ordered {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if err := appendCty(attr.Name, val, &entries); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// appendCty 对象与 map 展开为点号路径，其余值转为 Go 值。
func appendCty(key string, val cty.Value, entries *[]Entry) error {
	if val.IsKnown() && !val.IsNull() && (val.Type().IsObjectType() || val.Type().IsMapType()) {
		n := 0
		for it := val.ElementIterator(); it.Next(); n++ {
			k, v := it.Element()
			if err := appendCty(joinKey(key, k.AsString()), v, entries); err != nil {
				return err
			}
		}
		if n > 0 {
			return nil
		}
	}

	v, err := ctyToGo(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*entries = append(*entries, Entry{Key: key, Value: v})

	return nil
}

func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == big.Exact {
				return n, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", ty.FriendlyName())
	}
}
