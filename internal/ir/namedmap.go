package ir

import "fmt"

// namedMap is an insertion-ordered string-keyed map used for the named
// operand, result, argument and region collections on operations and
// blocks. Duplicate insertion is a contract violation.
type namedMap[T any] struct {
	keys []string
	m    map[string]T
}

func (n *namedMap[T]) Len() int { return len(n.m) }

func (n *namedMap[T]) Empty() bool { return len(n.m) == 0 }

func (n *namedMap[T]) Has(key string) bool {
	_, ok := n.m[key]
	return ok
}

func (n *namedMap[T]) Get(key string) (T, bool) {
	v, ok := n.m[key]
	return v, ok
}

func (n *namedMap[T]) Put(key string, v T) {
	if n.m == nil {
		n.m = make(map[string]T)
	}
	if _, dup := n.m[key]; dup {
		panic(fmt.Sprintf("ir: duplicate name %q", key))
	}
	n.m[key] = v
	n.keys = append(n.keys, key)
}

func (n *namedMap[T]) Delete(key string) {
	if _, ok := n.m[key]; !ok {
		return
	}
	delete(n.m, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the insertion-ordered key slice. Callers must not mutate.
func (n *namedMap[T]) Keys() []string { return n.keys }

func (n *namedMap[T]) ForEach(fn func(key string, v T)) {
	for _, k := range n.keys {
		fn(k, n.m[k])
	}
}

func (n *namedMap[T]) Clear() {
	n.keys = nil
	n.m = nil
}
