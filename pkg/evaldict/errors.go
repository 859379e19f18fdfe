package evaldict

import (
	"errors"
	"fmt"
	"strings"
)

// 哨兵错误，配合 errors.Is 判断错误类别。
var (
	ErrKeyNotFound       = errors.New("evaldict: key not found")
	ErrCyclicDependency  = errors.New("evaldict: cyclic dependency")
	ErrMalformedTemplate = errors.New("evaldict: malformed template")
)

// KeyNotFoundError 读取或删除不存在的 key 时返回。
type KeyNotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("evaldict: key %q not found", e.Key)
}

// Is 使 errors.Is(err, ErrKeyNotFound) 成立。
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// CyclicDependencyError 变量展开需要其自身时返回（直接或传递）。
//
// Vars 已排序，仅用于诊断，不应依赖其内容。
type CyclicDependencyError struct {
	Vars []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("evaldict: cyclic dependency detected on variables: '%s'", strings.Join(e.Vars, ", "))
}

// Is 使 errors.Is(err, ErrCyclicDependency) 成立。
func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// FormatError 模板语法错误或格式说明符无法应用于值。
type FormatError struct {
	Template string
	Msg      string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Template == "" {
		return "evaldict: " + e.Msg
	}

	return fmt.Sprintf("evaldict: %s in %q", e.Msg, e.Template)
}

// Is 使 errors.Is(err, ErrMalformedTemplate) 成立。
func (e *FormatError) Is(target error) bool {
	return target == ErrMalformedTemplate
}

func formatErrorf(template, format string, args ...any) error {
	return &FormatError{Template: template, Msg: fmt.Sprintf(format, args...)}
}
