package ilist

// Hooked is implemented by element types that need to observe list
// membership changes (e.g. symbols registering in a symbol table).
// NodeInserted runs after the node joins a list; NodeRemoved runs just
// before it leaves. The list itself knows nothing about what the hooks do.
type Hooked interface {
	NodeInserted(parent any)
	NodeRemoved(parent any)
}

// box is the ownership indirection shared by elements that joined a list
// in the same era. MergeInto retires the source list's box by forwarding
// it at the destination's, so chained merges build a forwarding chain
// rather than requiring a per-element walk. Owner resolution follows the
// chain and compresses it, keeping lookups amortized O(1).
type box[T any] struct {
	list *List[T] // non-nil only at the root of a forwarding chain
	fwd  *box[T]
}

// resolve returns the root box, halving the chain as it goes.
func (b *box[T]) resolve() *box[T] {
	for b.fwd != nil {
		if b.fwd.fwd != nil {
			b.fwd = b.fwd.fwd
		}
		b = b.fwd
	}
	return b
}

// Elem is the embeddable intrusive node. Types embed Elem[*Self] and call
// Attach(self) before the node is first inserted anywhere.
type Elem[T any] struct {
	prev, next *Elem[T]
	owner      *box[T]
	self       T
}

// Node is satisfied automatically by any type embedding Elem[T].
type Node[T any] interface {
	elem() *Elem[T]
}

func (e *Elem[T]) elem() *Elem[T] { return e }

// Attach records the element's own identity so that list iteration can
// yield T rather than the embedded node. Must be called exactly once,
// before first insertion.
func (e *Elem[T]) Attach(self T) { e.self = self }

// Owner returns the list currently containing this element, or nil.
func (e *Elem[T]) Owner() *List[T] {
	if e.owner == nil {
		return nil
	}
	e.owner = e.owner.resolve()
	return e.owner.list
}

// ListParent returns the parent object of the owning list, or nil when the
// element is detached. This is the non-owning back-reference: parenthood is
// derived from list membership, never stored on the element.
func (e *Elem[T]) ListParent() any {
	if l := e.Owner(); l != nil {
		return l.parent
	}
	return nil
}

// Prev returns the previous element, or the zero T at the front.
func (e *Elem[T]) Prev() T {
	var zero T
	if e.prev == nil {
		return zero
	}
	return e.prev.self
}

// Next returns the next element, or the zero T at the back.
func (e *Elem[T]) Next() T {
	var zero T
	if e.next == nil {
		return zero
	}
	return e.next.self
}

// RemoveFromOwner unlinks the element from whichever list holds it.
// Panics if the element is not in a list.
func (e *Elem[T]) RemoveFromOwner() {
	l := e.Owner()
	if l == nil {
		panic("ilist: removing element with no owner")
	}
	l.Remove(any(e.self).(Node[T]))
}

// List is an intrusive doubly-linked sequence. The zero List is not ready
// for use; call Init (or New) to bind the parent back-reference.
type List[T any] struct {
	parent     any
	head, tail *Elem[T]
	size       int
	members    *box[T]
}

// New returns a list whose elements will report parent as their owner's
// parent object.
func New[T any](parent any) *List[T] {
	l := &List[T]{}
	l.Init(parent)
	return l
}

// Init prepares an embedded zero List for use.
func (l *List[T]) Init(parent any) {
	l.parent = parent
	l.members = &box[T]{list: l}
}

// Parent returns the object this list belongs to.
func (l *List[T]) Parent() any { return l.parent }

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.size }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.size == 0 }

// Front returns the first element, or the zero T for an empty list.
func (l *List[T]) Front() T {
	var zero T
	if l.head == nil {
		return zero
	}
	return l.head.self
}

// Back returns the last element, or the zero T for an empty list.
func (l *List[T]) Back() T {
	var zero T
	if l.tail == nil {
		return zero
	}
	return l.tail.self
}

func (l *List[T]) adopt(e *Elem[T]) {
	if e.owner != nil {
		panic("ilist: inserting element that already has an owner")
	}
	e.owner = l.members
	l.size++
}

func (l *List[T]) notifyInserted(e *Elem[T]) {
	if h, ok := any(e.self).(Hooked); ok {
		h.NodeInserted(l.parent)
	}
}

// PushBack appends n. Panics if n already has an owner.
func (l *List[T]) PushBack(n Node[T]) {
	e := n.elem()
	l.adopt(e)
	e.prev = l.tail
	e.next = nil
	if l.tail != nil {
		l.tail.next = e
	} else {
		l.head = e
	}
	l.tail = e
	l.notifyInserted(e)
}

// PushFront prepends n. Panics if n already has an owner.
func (l *List[T]) PushFront(n Node[T]) {
	e := n.elem()
	l.adopt(e)
	e.next = l.head
	e.prev = nil
	if l.head != nil {
		l.head.prev = e
	} else {
		l.tail = e
	}
	l.head = e
	l.notifyInserted(e)
}

// InsertBefore inserts n immediately before pos, which must be a member of
// this list. Panics if n already has an owner or pos has none.
func (l *List[T]) InsertBefore(n, pos Node[T]) {
	p := pos.elem()
	if p.Owner() != l {
		panic("ilist: insertion position is not in this list")
	}
	e := n.elem()
	l.adopt(e)
	e.prev = p.prev
	e.next = p
	if p.prev != nil {
		p.prev.next = e
	} else {
		l.head = e
	}
	p.prev = e
	l.notifyInserted(e)
}

// Remove unlinks n from this list. The NodeRemoved hook (if any) runs
// before the unlink, while the parent is still observable. Panics if n is
// not a member.
func (l *List[T]) Remove(n Node[T]) {
	e := n.elem()
	if e.Owner() != l {
		panic("ilist: removing element that is not in this list")
	}
	if h, ok := any(e.self).(Hooked); ok {
		h.NodeRemoved(l.parent)
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.owner = nil
	l.size--
}

// MergeInto moves every remaining element of l to the tail of dest in O(1)
// total: the chain is relinked end-to-end and l's ownership box is
// forwarded at dest's current box, so no element is visited. Elements
// that reached l through earlier merges follow the forwarding chain to
// dest the next time their owner is resolved. Insertion/removal hooks do
// not run; the IR only splices use-lists, whose elements carry no hooks.
func (l *List[T]) MergeInto(dest *List[T]) {
	if l == dest || l.size == 0 {
		return
	}
	if dest.tail != nil {
		dest.tail.next = l.head
		l.head.prev = dest.tail
	} else {
		dest.head = l.head
	}
	dest.tail = l.tail
	dest.size += l.size

	// Retire l's box into dest's chain, then start a fresh one for l.
	l.members.list = nil
	l.members.fwd = dest.members
	l.members = &box[T]{list: l}
	l.head, l.tail = nil, nil
	l.size = 0
}

// Clear removes every element, running removal hooks front to back.
func (l *List[T]) Clear() {
	for l.head != nil {
		l.Remove(any(l.head.self).(Node[T]))
	}
}

// ForEach calls fn on each element in list order. The callback must not
// mutate the list; use Front/Next with EraseFromParent-style continuation
// for iterate-while-deleting.
func (l *List[T]) ForEach(fn func(T)) {
	for e := l.head; e != nil; e = e.next {
		fn(e.self)
	}
}

// IndexOf returns the position of n in the list, or -1. O(n).
func (l *List[T]) IndexOf(n Node[T]) int {
	target := n.elem()
	i := 0
	for e := l.head; e != nil; e = e.next {
		if e == target {
			return i
		}
		i++
	}
	return -1
}
