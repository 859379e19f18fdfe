package evaldict

import (
	"container/list"
	"iter"
)

// Store 按插入顺序保存 key 到原始值的映射。
//
// Store 从不求值，也不接触缓存；失效由 [Dict] 在 Set/Delete 外层处理。
type Store struct {
	index map[string]*list.Element
	order *list.List
}

type storeEntry struct {
	key   string
	value any
}

// NewStore 创建空 Store。
func NewStore() *Store {
	return &Store{
		index: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Set 写入或覆盖；覆盖时保留原有位置。
func (s *Store) Set(key string, value any) {
	if elem, ok := s.index[key]; ok {
		elem.Value.(*storeEntry).value = value
		return
	}
	s.index[key] = s.order.PushBack(&storeEntry{key: key, value: value})
}

// Get 返回原始值。
func (s *Store) Get(key string) (any, error) {
	elem, ok := s.index[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}

	return elem.Value.(*storeEntry).value, nil
}

// Delete 删除 key。
func (s *Store) Delete(key string) error {
	elem, ok := s.index[key]
	if !ok {
		return &KeyNotFoundError{Key: key}
	}
	s.order.Remove(elem)
	delete(s.index, key)

	return nil
}

// Contains 判断 key 是否存在。
func (s *Store) Contains(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len 条目数量。
func (s *Store) Len() int {
	return len(s.index)
}

// Keys 按插入顺序遍历 key。
func (s *Store) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for elem := s.order.Front(); elem != nil; elem = elem.Next() {
			if !yield(elem.Value.(*storeEntry).key) {
				return
			}
		}
	}
}
