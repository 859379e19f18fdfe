package evaldict

import (
	"iter"
	"log/slog"
)

// Dict 值可以引用其他条目的映射容器。
//
// 读取时递归代入被引用条目的求值结果，并以模板文本为键缓存。
// Set/Delete 会按失效策略清理缓存。Dict 不是并发安全的。
type Dict struct {
	store     *Store
	formatter Formatter
	memo      *memo
	logger    *slog.Logger
}

// New 创建空 Dict。
func New(opts ...Option) *Dict {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Dict{
		store:     NewStore(),
		formatter: o.formatter,
		memo:      newMemo(o.invalidation),
		logger:    o.logger,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 修改
// ═══════════════════════════════════════════════════════════════════════════

// Set 写入原始值并使依赖它的缓存失效。
//
// 字符串与 [Formattable] 按模板求值，其他值原样返回。
func (d *Dict) Set(key string, value any) {
	d.store.Set(key, value)
	d.invalidate(key)
}

// Delete 删除 key 并使依赖它的缓存失效。
func (d *Dict) Delete(key string) error {
	if err := d.store.Delete(key); err != nil {
		return err
	}
	d.invalidate(key)

	return nil
}

func (d *Dict) invalidate(key string) {
	if dropped := d.memo.invalidate(key); dropped > 0 {
		d.logger.Debug("Invalidated cached templates", "key", key, "dropped", dropped, "policy", d.memo.policy)
	}
}

// SetFormatter 替换容器级格式化器。
//
// 仅修改格式化器不会使缓存失效，已缓存的结果保持不变；需要时调用 [Dict.Reset]。
func (d *Dict) SetFormatter(f Formatter) {
	d.formatter = f
}

// Reset 清空求值缓存，不影响条目。
func (d *Dict) Reset() {
	d.memo.reset()
}

// ═══════════════════════════════════════════════════════════════════════════
// 读取
// ═══════════════════════════════════════════════════════════════════════════

// Get 返回 key 求值后的字符串。
func (d *Dict) Get(key string) (string, error) {
	val, err := d.Value(key)
	if err != nil {
		return "", err
	}

	return render(val)
}

// Eval 等同于 [Dict.Get]。
func (d *Dict) Eval(key string) (string, error) {
	return d.Get(key)
}

// Value 返回 key 求值后的值：模板得到字符串，其他值原样返回。
func (d *Dict) Value(key string) (any, error) {
	val, _, err := d.evalKey(key, nil)
	return val, err
}

// EvalExpr 对任意表达式求值，表达式中的字段引用本容器的条目。
func (d *Dict) EvalExpr(expr any) (string, error) {
	val, _, err := d.evalValue(expr, nil)
	if err != nil {
		return "", err
	}

	return render(val)
}

// GetRaw 返回未求值的原始值。
func (d *Dict) GetRaw(key string) (any, error) {
	return d.store.Get(key)
}

// Contains 判断 key 是否存在，不触发求值。
func (d *Dict) Contains(key string) bool {
	return d.store.Contains(key)
}

// Len 条目数量。
func (d *Dict) Len() int {
	return d.store.Len()
}

// Keys 按插入顺序遍历 key。
func (d *Dict) Keys() iter.Seq[string] {
	return d.store.Keys()
}

// Stats 返回缓存统计快照。
func (d *Dict) Stats() CacheStats {
	return d.memo.snapshot()
}

// Formatter 返回用于 value 的格式化器：值级 → 容器级 → 默认。
func (d *Dict) Formatter(value any) Formatter {
	if f, ok := value.(Formattable); ok && f.Formatter() != nil {
		return f.Formatter()
	}
	if d.formatter != nil {
		return d.formatter
	}

	return DefaultFormatter{}
}

// UsedVariables 返回表达式引用的变量，非模板值返回空集合。
func (d *Dict) UsedVariables(expr any) (Set, error) {
	text, ok := templateText(expr)
	if !ok {
		return NewSet(), nil
	}

	return UsedVariables(text, d.Formatter(expr), nil)
}

// ═══════════════════════════════════════════════════════════════════════════
// 求值
// ═══════════════════════════════════════════════════════════════════════════

// evalKey 求值 key，返回值与其传递依赖（含 key 本身）。
//
// path 为当前求值路径上的 key，作为解析器的 seen 集合，自引用与互相引用都会被拒绝。
func (d *Dict) evalKey(key string, path Set) (any, Set, error) {
	raw, err := d.store.Get(key)
	if err != nil {
		return nil, nil, err
	}

	val, deps, err := d.evalValue(raw, path.With(key))
	if err != nil {
		return nil, nil, err
	}
	deps = deps.With(key)

	return val, deps, nil
}

func (d *Dict) evalValue(raw any, path Set) (any, Set, error) {
	text, ok := templateText(raw)
	if !ok {
		return raw, nil, nil
	}

	// 值级格式化器的结果不进入缓存：缓存键只有模板文本
	f := d.Formatter(raw)
	own, ok := raw.(Formattable)
	memoize := !ok || own.Formatter() == nil

	if memoize {
		if entry, hit := d.memo.lookup(text); hit {
			return entry.value, entry.deps, nil
		}
	}

	vars, err := UsedVariables(text, f, path)
	if err != nil {
		return nil, nil, err
	}

	values := make(map[string]any, vars.Len())
	deps := NewSet()
	for _, name := range vars.Sorted() {
		val, varDeps, err := d.evalKey(name, path)
		if err != nil {
			return nil, nil, err
		}
		values[name] = val
		deps.AddAll(varDeps)
	}

	out, err := f.Format(text, values)
	if err != nil {
		return nil, nil, err
	}
	if memoize {
		d.memo.store(text, out, deps)
	}

	return out, deps, nil
}

func templateText(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case Formattable:
		return v.Template(), true
	default:
		return "", false
	}
}

func render(val any) (string, error) {
	if s, ok := val.(string); ok {
		return s, nil
	}

	return FormatValue(val, "")
}
