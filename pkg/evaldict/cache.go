package evaldict

import (
	"fmt"
	"strings"
)

// Invalidation 缓存失效策略。
type Invalidation int

const (
	// InvalidateDependents 仅丢弃传递依赖于被修改 key 的缓存条目。
	InvalidateDependents Invalidation = iota
	// InvalidateAll 任意修改都清空整个缓存。
	InvalidateAll
)

// ParseInvalidation 解析 "dependents" 或 "all"（不区分大小写）。
func ParseInvalidation(s string) (Invalidation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dependents":
		return InvalidateDependents, nil
	case "all":
		return InvalidateAll, nil
	default:
		return 0, fmt.Errorf("evaldict: unknown invalidation policy %q", s)
	}
}

func (p Invalidation) String() string {
	if p == InvalidateAll {
		return "all"
	}

	return "dependents"
}

// CacheStats 缓存统计快照。
type CacheStats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Entries       int   `json:"entries"`
	Invalidations int64 `json:"invalidations"`
}

type memoEntry struct {
	value string
	deps  Set
}

// memo 以模板文本为键的求值缓存。
//
// dependents 是反向依赖索引：key → 读取过该 key 的模板文本。
type memo struct {
	policy     Invalidation
	entries    map[string]*memoEntry
	dependents map[string]Set
	stats      CacheStats
}

func newMemo(policy Invalidation) *memo {
	return &memo{
		policy:     policy,
		entries:    make(map[string]*memoEntry),
		dependents: make(map[string]Set),
	}
}

func (m *memo) lookup(text string) (*memoEntry, bool) {
	entry, ok := m.entries[text]
	if ok {
		m.stats.Hits++
	} else {
		m.stats.Misses++
	}

	return entry, ok
}

func (m *memo) store(text, value string, deps Set) {
	m.entries[text] = &memoEntry{value: value, deps: deps}
	if m.policy == InvalidateAll {
		return
	}
	for key := range deps {
		texts, ok := m.dependents[key]
		if !ok {
			texts = NewSet()
			m.dependents[key] = texts
		}
		texts.Add(text)
	}
}

// invalidate 处理 key 被修改，返回丢弃的条目数。
func (m *memo) invalidate(key string) int {
	if m.policy == InvalidateAll {
		return m.reset()
	}

	texts := m.dependents[key]
	delete(m.dependents, key)
	dropped := 0
	for text := range texts {
		entry, ok := m.entries[text]
		if !ok {
			continue
		}
		delete(m.entries, text)
		dropped++
		for dep := range entry.deps {
			if others, ok := m.dependents[dep]; ok {
				delete(others, text)
				if others.Len() == 0 {
					delete(m.dependents, dep)
				}
			}
		}
	}
	m.stats.Invalidations += int64(dropped)

	return dropped
}

func (m *memo) reset() int {
	n := len(m.entries)
	m.entries = make(map[string]*memoEntry)
	m.dependents = make(map[string]Set)
	m.stats.Invalidations += int64(n)

	return n
}

func (m *memo) snapshot() CacheStats {
	s := m.stats
	s.Entries = len(m.entries)

	return s
}
