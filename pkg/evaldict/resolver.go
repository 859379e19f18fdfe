package evaldict

// UsedVariables 返回模板直接或经由嵌套 format_spec 引用的变量集合。
//
// seen 为当前解析路径上已出现的变量；任一字段贡献的变量与 seen 相交即返回
// [CyclicDependencyError]。检测发生在遍历过程中，自引用的嵌套 format_spec
// 因此不会无限递归。嵌套递归使用 seen 追加当前字段后的副本，兄弟字段之间互不影响。
//
// 不含字段的模板返回空集合。
func UsedVariables(template string, f Formatter, seen Set) (Set, error) {
	directives, err := f.Parse(template)
	if err != nil {
		return nil, err
	}

	used := NewSet()
	for _, d := range directives {
		if !d.HasField {
			continue
		}

		vars := NewSet(d.FieldName)
		if d.FormatSpec != "" {
			nested, err := UsedVariables(d.FormatSpec, f, seen.With(d.FieldName))
			if err != nil {
				return nil, err
			}
			vars.AddAll(nested)
		}

		if cyclic := vars.Intersect(seen); cyclic.Len() > 0 {
			return nil, &CyclicDependencyError{Vars: cyclic.Sorted()}
		}
		used.AddAll(vars)
	}

	return used, nil
}
