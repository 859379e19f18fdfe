package evaldict

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SpecFormatter 由能够自行解释 format_spec 的值实现。
//
// 返回的错误原样向上传递。
type SpecFormatter interface {
	FormatSpec(spec string) (string, error)
}

// formatSpec 对应 [[fill]align][sign][z][#][0][width][grouping][.precision][type]。
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	noNegZero bool
	alternate bool
	zeroPad   bool
	width     int
	grouping  byte
	precision int
	typ       byte
}

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '^' || r == '='
}

// maxSpecNumber 宽度与精度的上限。
const maxSpecNumber = 1 << 20

func parseSpecNumber(digits []rune) (int, error) {
	n, err := strconv.Atoi(string(digits))
	if err != nil || n > maxSpecNumber {
		return 0, formatErrorf("", "too many decimal digits in format string")
	}

	return n, nil
}

func parseFormatSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	runes := []rune(spec)
	i := 0

	switch {
	case len(runes) >= 2 && isAlign(runes[1]):
		fs.fill, fs.align = runes[0], byte(runes[1])
		i = 2
	case len(runes) >= 1 && isAlign(runes[0]):
		fs.align = byte(runes[0])
		i = 1
	}

	if i < len(runes) && (runes[i] == '+' || runes[i] == '-' || runes[i] == ' ') {
		fs.sign = byte(runes[i])
		i++
	}
	if i < len(runes) && runes[i] == 'z' {
		fs.noNegZero = true
		i++
	}
	if i < len(runes) && runes[i] == '#' {
		fs.alternate = true
		i++
	}
	if i < len(runes) && runes[i] == '0' {
		fs.zeroPad = true
		i++
	}

	start := i
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	if i > start {
		width, err := parseSpecNumber(runes[start:i])
		if err != nil {
			return fs, err
		}
		fs.width = width
	}

	if i < len(runes) && (runes[i] == ',' || runes[i] == '_') {
		fs.grouping = byte(runes[i])
		i++
	}

	if i < len(runes) && runes[i] == '.' {
		i++
		start = i
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		}
		if i == start {
			return fs, formatErrorf("", "format specifier missing precision")
		}
		precision, err := parseSpecNumber(runes[start:i])
		if err != nil {
			return fs, err
		}
		fs.precision = precision
	}

	if len(runes)-i > 1 {
		return fs, formatErrorf("", "invalid format specifier %q", spec)
	}
	if i < len(runes) {
		if runes[i] >= utf8.RuneSelf {
			return fs, formatErrorf("", "invalid format specifier %q", spec)
		}
		fs.typ = byte(runes[i])
	}

	return fs, nil
}

// FormatValue 按 format_spec 渲染单个值。
//
// 依次尝试：[SpecFormatter]、字符串、布尔、整数、浮点数、fmt.Stringer，
// 其余类型按 fmt.Sprint 结果作为字符串处理。空 spec 时浮点数保留至少一位小数（3.0 → "3.0"）。
func FormatValue(val any, spec string) (string, error) {
	if sf, ok := val.(SpecFormatter); ok {
		return sf.FormatSpec(spec)
	}

	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}

	switch v := val.(type) {
	case string:
		return formatString(v, fs)
	case bool:
		if fs.typ == 0 || fs.typ == 's' {
			return formatString(strconv.FormatBool(v), fs)
		}
		if v {
			return formatInt(false, 1, fs)
		}
		return formatInt(false, 0, fs)
	case fmt.Stringer:
		return formatString(v.String(), fs)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return formatInt(true, uint64(-(n+1))+1, fs)
		}
		return formatInt(false, uint64(n), fs)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return formatInt(false, rv.Uint(), fs)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float(), fs)
	case reflect.String:
		return formatString(rv.String(), fs)
	default:
		return formatString(fmt.Sprint(val), fs)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 字符串
// ═══════════════════════════════════════════════════════════════════════════

func formatString(s string, fs formatSpec) (string, error) {
	switch {
	case fs.typ != 0 && fs.typ != 's':
		return "", formatErrorf("", "unknown format code '%c' for object of type 'str'", fs.typ)
	case fs.sign != 0:
		return "", formatErrorf("", "sign not allowed in string format specifier")
	case fs.alternate:
		return "", formatErrorf("", "alternate form (#) not allowed in string format specifier")
	case fs.align == '=':
		return "", formatErrorf("", "'=' alignment not allowed in string format specifier")
	case fs.grouping != 0:
		return "", formatErrorf("", "cannot specify '%c' with 's'", fs.grouping)
	}

	if fs.precision >= 0 && utf8.RuneCountInString(s) > fs.precision {
		s = string([]rune(s)[:fs.precision])
	}

	align := fs.align
	fill := fs.fill
	if fs.zeroPad && align == 0 {
		fill = '0'
	}
	if align == 0 {
		align = '<'
	}

	return pad("", s, fs.width, fill, align), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 数值
// ═══════════════════════════════════════════════════════════════════════════

func formatInt(neg bool, mag uint64, fs formatSpec) (string, error) {
	switch fs.typ {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		f := float64(mag)
		if neg {
			f = -f
		}
		return formatFloat(f, fs)
	}

	if fs.precision >= 0 {
		return "", formatErrorf("", "precision not allowed in integer format specifier")
	}

	var (
		base   = 10
		prefix string
		group  = 3
	)
	switch fs.typ {
	case 0, 'd':
	case 'n':
		if fs.grouping != 0 {
			return "", formatErrorf("", "cannot specify '%c' with 'n'", fs.grouping)
		}
	case 'b':
		base, prefix, group = 2, "0b", 4
	case 'o':
		base, prefix, group = 8, "0o", 4
	case 'x':
		base, prefix, group = 16, "0x", 4
	case 'X':
		base, prefix, group = 16, "0X", 4
	case 'c':
		if fs.sign != 0 {
			return "", formatErrorf("", "sign not allowed with integer format specifier 'c'")
		}
		if mag > utf8.MaxRune || neg {
			return "", formatErrorf("", "%%c arg not in range(0x110000)")
		}
		return numericPad("", "", string(rune(mag)), fs), nil
	default:
		return "", formatErrorf("", "unknown format code '%c' for object of type 'int'", fs.typ)
	}

	if fs.grouping == ',' && base != 10 {
		return "", formatErrorf("", "cannot specify ',' with '%c'", fs.typ)
	}
	if !fs.alternate {
		prefix = ""
	}

	digits := strconv.FormatUint(mag, base)
	if fs.typ == 'X' {
		digits = strings.ToUpper(digits)
	}
	if fs.grouping != 0 {
		digits = groupDigits(digits, fs.grouping, group)
	}

	return numericPad(signOf(neg, fs.sign), prefix, digits, fs), nil
}

func formatFloat(f float64, fs formatSpec) (string, error) {
	switch fs.typ {
	case 0, 'e', 'E', 'f', 'F', 'g', 'G', 'n', '%':
	default:
		return "", formatErrorf("", "unknown format code '%c' for object of type 'float'", fs.typ)
	}
	if fs.typ == 'n' && fs.grouping != 0 {
		return "", formatErrorf("", "cannot specify '%c' with 'n'", fs.grouping)
	}

	neg := math.Signbit(f) && !math.IsNaN(f)
	abs := math.Abs(f)
	upper := fs.typ == 'E' || fs.typ == 'F' || fs.typ == 'G'

	var body string
	switch {
	case math.IsInf(abs, 0):
		body = "inf"
	case math.IsNaN(abs):
		body = "nan"
	default:
		body = floatBody(abs, fs)
	}
	if fs.typ == '%' {
		body += "%"
	}
	if upper {
		body = strings.ToUpper(body)
	}

	if neg && fs.noNegZero && strings.Trim(body, "0.%") == "" {
		neg = false
	}
	if fs.grouping != 0 {
		end := strings.IndexFunc(body, func(r rune) bool { return r < '0' || r > '9' })
		if end == -1 {
			end = len(body)
		}
		body = groupDigits(body[:end], fs.grouping, 3) + body[end:]
	}

	return numericPad(signOf(neg, fs.sign), "", body, fs), nil
}

func floatBody(abs float64, fs formatSpec) string {
	precision := fs.precision
	if precision < 0 && fs.typ != 0 {
		precision = 6
	}

	switch fs.typ {
	case 'f', 'F':
		return strconv.FormatFloat(abs, 'f', precision, 64)
	case 'e', 'E':
		return strconv.FormatFloat(abs, 'e', precision, 64)
	case '%':
		return strconv.FormatFloat(abs*100, 'f', precision, 64)
	case 'g', 'G', 'n':
		return formatGeneral(abs, precision, false, fs.alternate)
	}

	if precision < 0 {
		return reprFloat(abs)
	}

	return formatGeneral(abs, precision, true, fs.alternate)
}

// reprFloat 最短往返表示；指数在 [-4, 16) 之外使用科学计数法。
func reprFloat(abs float64) string {
	sci := strconv.FormatFloat(abs, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	fixed := strconv.FormatFloat(abs, 'f', -1, 64)
	if !strings.ContainsRune(fixed, '.') {
		fixed += ".0"
	}

	return fixed
}

// formatGeneral 实现 'g' 与无类型带精度两种通用格式。
//
// 无类型时定点表示至少保留一位小数，且在 exp >= precision-1 时切换为科学计数法。
func formatGeneral(abs float64, precision int, untyped, keepZeros bool) string {
	if precision == 0 {
		precision = 1
	}

	sci := strconv.FormatFloat(abs, 'e', precision-1, 64)
	e := strings.IndexByte(sci, 'e')
	exp, _ := strconv.Atoi(sci[e+1:])

	threshold := precision
	if untyped {
		threshold = precision - 1
	}

	if exp < -4 || exp >= threshold {
		mant := sci[:e]
		if !keepZeros {
			mant = trimFraction(mant)
		}
		return mant + sci[e:]
	}

	fixed := strconv.FormatFloat(abs, 'f', max(precision-1-exp, 0), 64)
	if !keepZeros {
		fixed = trimFraction(fixed)
	}
	if untyped && !strings.ContainsRune(fixed, '.') {
		fixed += ".0"
	}

	return fixed
}

func trimFraction(s string) string {
	if !strings.ContainsRune(s, '.') {
		return s
	}
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}

func signOf(neg bool, sign byte) string {
	switch {
	case neg:
		return "-"
	case sign == '+':
		return "+"
	case sign == ' ':
		return " "
	default:
		return ""
	}
}

func groupDigits(digits string, sep byte, size int) string {
	if len(digits) <= size {
		return digits
	}

	var buf strings.Builder
	head := len(digits) % size
	if head > 0 {
		buf.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += size {
		if buf.Len() > 0 {
			buf.WriteByte(sep)
		}
		buf.WriteString(digits[i : i+size])
	}

	return buf.String()
}

// numericPad 数值默认右对齐；'=' 在符号/前缀与数字之间填充。
func numericPad(sign, prefix, digits string, fs formatSpec) string {
	fill, align := fs.fill, fs.align
	if fs.zeroPad && align == 0 {
		fill, align = '0', '='
	}
	if align == 0 {
		align = '>'
	}
	if align == '=' {
		return pad(sign+prefix, digits, fs.width, fill, align)
	}

	return pad("", sign+prefix+digits, fs.width, fill, align)
}

// pad 将 head+body 填充到 width 个字符；'=' 时填充位于 head 与 body 之间。
func pad(head, body string, width int, fill rune, align byte) string {
	n := utf8.RuneCountInString(head) + utf8.RuneCountInString(body)
	if n >= width {
		return head + body
	}

	padding := width - n
	filler := func(count int) string { return strings.Repeat(string(fill), count) }
	switch align {
	case '<':
		return head + body + filler(padding)
	case '^':
		left := padding / 2
		return filler(left) + head + body + filler(padding-left)
	case '=':
		return head + filler(padding) + body
	default:
		return filler(padding) + head + body
	}
}
