package evaldict

import (
	"maps"
	"slices"
)

// Set 字符串集合，用于依赖集与已访问变量。
//
// nil Set 可安全读取。
type Set map[string]struct{}

// NewSet 创建包含给定元素的集合。
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}

	return s
}

// Has 判断元素是否存在。
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Add 加入元素。
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// AddAll 将 other 的元素并入 s。
func (s Set) AddAll(other Set) {
	for item := range other {
		s[item] = struct{}{}
	}
}

// Len 元素个数。
func (s Set) Len() int {
	return len(s)
}

// With 返回 s 追加 items 后的副本，s 本身不变。
func (s Set) With(items ...string) Set {
	out := make(Set, len(s)+len(items))
	maps.Copy(out, s)
	for _, item := range items {
		out[item] = struct{}{}
	}

	return out
}

// Intersect 返回交集。
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for item := range small {
		if large.Has(item) {
			out[item] = struct{}{}
		}
	}

	return out
}

// Sorted 返回排序后的元素。
func (s Set) Sorted() []string {
	out := slices.AppendSeq(make([]string, 0, len(s)), maps.Keys(s))
	slices.Sort(out)

	return out
}
