package evaldict

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ═══════════════════════════════════════════════════════════════════════════
// 格式化策略
// ═══════════════════════════════════════════════════════════════════════════

// Directive 模板解析后的一个单元。
//
// HasField 为 false 表示末尾的纯字面量，不做替换。
// FormatSpec 自身可以包含嵌套字段。
type Directive struct {
	Literal    string
	FieldName  string
	HasField   bool
	FormatSpec string
	Conversion string
}

// Formatter 负责解析模板并代入已求值的变量。
type Formatter interface {
	// Parse 将模板拆分为字面量与字段。
	Parse(template string) ([]Directive, error)
	// Format 用 values 替换模板中的字段。
	Format(template string, values map[string]any) (string, error)
}

// Formattable 由携带自身格式化器的值实现，优先级高于 [Dict] 级格式化器。
type Formattable interface {
	Template() string
	Formatter() Formatter
}

// Expr 是携带可选格式化器的模板。Fmt 为 nil 时等同于普通字符串模板。
type Expr struct {
	Text string
	Fmt  Formatter
}

// Template 返回模板文本。
func (e Expr) Template() string { return e.Text }

// Formatter 返回值级格式化器。
func (e Expr) Formatter() Formatter { return e.Fmt }

func (e Expr) String() string { return e.Text }

// ═══════════════════════════════════════════════════════════════════════════
// 默认格式化器
// ═══════════════════════════════════════════════════════════════════════════

// DefaultFormatter 实现字段替换语法：
//
//   - 字面量中的 "{{" 与 "}}" 表示花括号本身
//   - 字段写作 {name!conversion:format_spec}，conversion 与 format_spec 可省略
//   - format_spec 可嵌套字段，如 {message:{fill}{align}{pad}}，深度不限
//   - name 为首个顶层 '!' 或 ':' 之前的全部文本，因此 "server.addr" 是一个完整名字
//
// 转换符支持 s、r、a；format_spec 语法见 [FormatValue]。
type DefaultFormatter struct{}

// Parse 解析模板。
func (DefaultFormatter) Parse(template string) ([]Directive, error) {
	var (
		out []Directive
		lit strings.Builder
	)

	for i := 0; i < len(template); {
		switch ch := template[i]; ch {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := findFieldEnd(template, i+1)
			if end == -1 {
				return nil, formatErrorf(template, "expected '}' before end of string")
			}
			d, err := parseField(template, template[i+1:end])
			if err != nil {
				return nil, err
			}
			d.Literal = lit.String()
			lit.Reset()
			out = append(out, d)
			i = end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, formatErrorf(template, "single '}' encountered in format string")
		default:
			lit.WriteByte(ch)
			i++
		}
	}

	if lit.Len() > 0 {
		out = append(out, Directive{Literal: lit.String()})
	}

	return out, nil
}

// Format 替换模板中的字段。嵌套的 format_spec 先用同一组 values 展开。
func (f DefaultFormatter) Format(template string, values map[string]any) (string, error) {
	directives, err := f.Parse(template)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.Grow(len(template))
	for _, d := range directives {
		buf.WriteString(d.Literal)
		if !d.HasField {
			continue
		}

		val, ok := values[d.FieldName]
		if !ok {
			return "", &KeyNotFoundError{Key: d.FieldName}
		}
		val, err = convertField(template, val, d.Conversion)
		if err != nil {
			return "", err
		}

		spec := d.FormatSpec
		if strings.ContainsAny(spec, "{}") {
			spec, err = f.Format(spec, values)
			if err != nil {
				return "", err
			}
		}

		out, err := FormatValue(val, spec)
		if err != nil {
			return "", err
		}
		buf.WriteString(out)
	}

	return buf.String(), nil
}

// findFieldEnd 返回与 start-1 处 '{' 配对的 '}' 下标，未闭合返回 -1。
func findFieldEnd(text string, start int) int {
	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// parseField 拆分 "name!conv:spec"。
func parseField(template, field string) (Directive, error) {
	i := 0
scan:
	for i < len(field) {
		switch field[i] {
		case '[':
			// 下标内的 ':' 与 '!' 属于名字
			for i < len(field) && field[i] != ']' {
				i++
			}
			if i == len(field) {
				return Directive{}, formatErrorf(template, "missing ']' in format string")
			}
		case '{':
			return Directive{}, formatErrorf(template, "unexpected '{' in field name")
		case ':', '!':
			break scan
		}
		i++
	}

	d := Directive{FieldName: field[:i], HasField: true}
	if d.FieldName == "" {
		return Directive{}, formatErrorf(template, "empty field name")
	}
	if i == len(field) {
		return d, nil
	}

	if field[i] == '!' {
		if i+1 >= len(field) {
			return Directive{}, formatErrorf(template, "end of string while looking for conversion specifier")
		}
		_, size := utf8.DecodeRuneInString(field[i+1:])
		d.Conversion = field[i+1 : i+1+size]
		i += 1 + size
		if i == len(field) {
			return d, nil
		}
		if field[i] != ':' {
			return Directive{}, formatErrorf(template, "expected ':' after conversion specifier")
		}
	}
	d.FormatSpec = field[i+1:]

	return d, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 转换符
// ═══════════════════════════════════════════════════════════════════════════

func convertField(template string, val any, conversion string) (any, error) {
	switch conversion {
	case "":
		return val, nil
	case "s":
		return stringOf(val), nil
	case "r":
		return repr(val), nil
	case "a":
		return asciiEscape(repr(val)), nil
	default:
		return nil, formatErrorf(template, "unknown conversion specifier %s", conversion)
	}
}

func stringOf(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	s, err := FormatValue(val, "")
	if err != nil {
		return fmt.Sprint(val)
	}

	return s
}

func repr(val any) string {
	if s, ok := val.(string); ok {
		return quote(s)
	}

	return stringOf(val)
}

// quote 单引号优先；仅当含单引号且不含双引号时改用双引号。
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var buf strings.Builder
	buf.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case !unicode.IsPrint(r):
			buf.WriteString(escapeRune(r))
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte(q)

	return buf.String()
}

func asciiEscape(s string) string {
	var buf strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf {
			buf.WriteRune(r)
			continue
		}
		buf.WriteString(escapeRune(r))
	}

	return buf.String()
}

func escapeRune(r rune) string {
	switch {
	case r <= 0xff:
		return fmt.Sprintf(`\x%02x`, r)
	case r <= 0xffff:
		return fmt.Sprintf(`\u%04x`, r)
	default:
		return fmt.Sprintf(`\U%08x`, r)
	}
}
