// Package evaldict 提供值可以相互引用的映射容器。
//
// 条目的值是字符串模板，模板中的字段按名字引用其他条目；读取时递归代入被引用条目的
// 求值结果，结果以模板文本为键缓存，条目被修改后相关缓存失效。
//
// # 模板语法
//
//   - 字面量与 {name} 字段交替出现，"{{" 与 "}}" 表示花括号本身
//   - 字段写作 {name!conversion:format_spec}，conversion 为 s、r 或 a
//   - format_spec 可嵌套字段，深度不限：{message:{fill}{align}{pad}}
//   - 名字是 '!' 或 ':' 之前的全部文本，"server.addr" 这类点号路径可以直接引用
//
// # 快速开始
//
//	d := evaldict.New()
//	d.Set("fill", " ")
//	d.Set("align", ">")
//	d.Set("pad", "20")
//	d.Set("message", "Hello World!")
//	d.Set("val", "{message:{fill}{align}{pad}}")
//	s, err := d.Get("val") // "        Hello World!"
//
// # 值与模板
//
// 字符串与 [Formattable] 是模板；其他值（数字、布尔等）不做替换，[Dict.Value] 原样返回，
// 被引用时按 format_spec 渲染，例如 {ratio:.2%}。
//
// # 格式化器
//
// 查找顺序：值级（[Expr] 的 Fmt）→ 容器级（[WithFormatter]）→ [DefaultFormatter]。
// 携带值级格式化器的模板每次重新求值，不进入缓存。
//
// # 错误
//
// 使用 errors.Is 判断类别：
//   - [ErrKeyNotFound] - key 不存在
//   - [ErrCyclicDependency] - 变量展开需要其自身
//   - [ErrMalformedTemplate] - 模板语法或 format_spec 错误
//
// 自定义 [Formatter] 与 [SpecFormatter] 返回的错误原样传递。
//
// # 缓存失效
//
// 默认策略 [InvalidateDependents] 为每个缓存的模板记录其传递读取的 key，
// 修改某个 key 时只丢弃读取过它的模板；[InvalidateAll] 在任意修改时清空缓存。
// 替换容器级格式化器不会使缓存失效。
package evaldict
