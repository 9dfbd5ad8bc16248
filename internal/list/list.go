// Package list implements a doubly-linked list of record nodes. A node is
// not embedded in its record: Bind allocates a separate Node_t that points
// back at the record (a thread record, a free block header, ...), and the
// record keeps a pointer to its node. The list itself never allocates or
// frees a node, it only rearranges links.
package list

import "fmt"

// Node_t is the embeddable link pair. A node is free when it belongs to no
// list and linked when it belongs to exactly one. Callers wrap the record
// they want to list in a Node_t via Bind and pass the node to the list;
// Elem recovers the original record.
type Node_t struct {
	prev, next *Node_t
	owner      *List_t
	elem       any
}

// Elem recovers the record that owns this node.
func (n *Node_t) Elem() any { return n.elem }

func (n *Node_t) isFree() bool { return n.owner == nil }

// List_t is an intrusive doubly-linked list of Node_t. The zero value is an
// empty list.
type List_t struct {
	head, tail *Node_t
	length     int
}

// List is the exported alias matching the teacher's *_t export pattern.
type List = *List_t

// New returns an empty list.
func New() List { return &List_t{} }

func (l *List_t) IsEmpty() bool { return l.head == nil }

// Len is O(1): it returns a count every link and unlink keeps up to date.
// Provided for diagnostics only.
func (l *List_t) Len() int { return l.length }

func mustBeFree(n *Node_t) {
	if !n.isFree() {
		panic("list: attempted to link an already-linked node")
	}
}

func mustBelongTo(l *List_t, n *Node_t) {
	if n.owner != l {
		panic("list: attempted to remove a node that is not linked into this list")
	}
}

// Bind wraps elem in a fresh, unlinked Node_t.
func Bind(elem any) *Node_t {
	return &Node_t{elem: elem}
}

// PushFront links n at the head of l.
func (l *List_t) PushFront(n *Node_t) {
	mustBeFree(n)
	n.owner = l
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.length++
}

// PushBack links n at the tail of l.
func (l *List_t) PushBack(n *Node_t) {
	mustBeFree(n)
	n.owner = l
	n.next = nil
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.length++
}

// PopFront unlinks and returns the head node, or nil if l is empty.
func (l *List_t) PopFront() *Node_t {
	n := l.head
	if n == nil {
		return nil
	}
	l.removeNode(n)
	return n
}

// PopBack unlinks and returns the tail node, or nil if l is empty.
func (l *List_t) PopBack() *Node_t {
	n := l.tail
	if n == nil {
		return nil
	}
	l.removeNode(n)
	return n
}

func (l *List_t) Front() *Node_t { return l.head }
func (l *List_t) Back() *Node_t  { return l.tail }

// removeNode splices n out of l, wherever it sits.
func (l *List_t) removeNode(n *Node_t) {
	mustBelongTo(l, n)
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.owner = nil, nil, nil
	l.length--
}

// Iter walks the list head-to-tail, invoking visit for every node. visit
// returning false stops iteration early.
func (l *List_t) Iter(visit func(*Node_t) bool) {
	for n := l.head; n != nil; n = n.next {
		if !visit(n) {
			return
		}
	}
}

// Cursor yields a mutable traversal position over l. A nil cursor position
// (Current() == nil) is the sentinel "one past both ends".
type Cursor_t struct {
	l   *List_t
	cur *Node_t
}

type Cursor = *Cursor_t

// CursorFront returns a cursor positioned at the first node (nil if empty).
func (l *List_t) CursorFront() Cursor { return &Cursor_t{l: l, cur: l.head} }

// CursorBack returns a cursor positioned at the last node (nil if empty).
func (l *List_t) CursorBack() Cursor { return &Cursor_t{l: l, cur: l.tail} }

func (c *Cursor_t) Current() *Node_t { return c.cur }

func (c *Cursor_t) PeekNext() *Node_t {
	if c.cur == nil {
		return c.l.head
	}
	return c.cur.next
}

func (c *Cursor_t) PeekPrev() *Node_t {
	if c.cur == nil {
		return c.l.tail
	}
	return c.cur.prev
}

// MoveNext advances the cursor to the sentinel-relative next position.
func (c *Cursor_t) MoveNext() { c.cur = c.PeekNext() }

// MovePrev moves the cursor to the sentinel-relative previous position.
func (c *Cursor_t) MovePrev() { c.cur = c.PeekPrev() }

// RemoveCurrent unlinks the node under the cursor and advances it to the
// node that followed (or the sentinel, if none). Panics if the cursor sits
// on the sentinel.
func (c *Cursor_t) RemoveCurrent() *Node_t {
	n := c.cur
	if n == nil {
		panic("list: RemoveCurrent on sentinel cursor")
	}
	next := n.next
	c.l.removeNode(n)
	c.cur = next
	return n
}

// InsertBefore links n immediately before the cursor's current position. At
// the sentinel this degenerates to PushBack.
func (c *Cursor_t) InsertBefore(n *Node_t) {
	mustBeFree(n)
	if c.cur == nil {
		c.l.PushBack(n)
		return
	}
	if c.cur.prev == nil {
		c.l.PushFront(n)
		return
	}
	prev := c.cur.prev
	n.owner = c.l
	n.prev = prev
	n.next = c.cur
	prev.next = n
	c.cur.prev = n
	c.l.length++
}

// InsertAfter links n immediately after the cursor's current position. At
// the sentinel this degenerates to PushFront.
func (c *Cursor_t) InsertAfter(n *Node_t) {
	mustBeFree(n)
	if c.cur == nil {
		c.l.PushFront(n)
		return
	}
	if c.cur.next == nil {
		c.l.PushBack(n)
		return
	}
	next := c.cur.next
	n.owner = c.l
	n.next = next
	n.prev = c.cur
	next.prev = n
	c.cur.next = n
	c.l.length++
}

// SpliceBefore moves the entire contents of other to just before the
// cursor's current position, leaving other empty. At the sentinel this
// degenerates to appending other's contents to the tail of l.
func (c *Cursor_t) SpliceBefore(other List) {
	spliceAt(c.l, c.cur, other, true)
}

// SpliceAfter moves the entire contents of other to just after the cursor's
// current position, leaving other empty. At the sentinel this degenerates
// to prepending other's contents to the head of l.
func (c *Cursor_t) SpliceAfter(other List) {
	spliceAt(c.l, c.cur, other, false)
}

func spliceAt(l *List_t, at *Node_t, other *List_t, before bool) {
	if other.IsEmpty() {
		return
	}
	if l == other {
		panic("list: cannot splice a list into itself")
	}
	oh, ot, n := other.head, other.tail, other.length
	for cur := oh; cur != nil; cur = cur.next {
		cur.owner = l
	}
	other.head, other.tail, other.length = nil, nil, 0

	if at == nil {
		if before {
			if l.tail != nil {
				l.tail.next = oh
				oh.prev = l.tail
			} else {
				l.head = oh
			}
			l.tail = ot
		} else {
			if l.head != nil {
				l.head.prev = ot
				ot.next = l.head
			} else {
				l.tail = ot
			}
			l.head = oh
		}
		l.length += n
		return
	}

	if before {
		prev := at.prev
		if prev == nil {
			l.head = oh
		} else {
			prev.next = oh
		}
		oh.prev = prev
		ot.next = at
		at.prev = ot
	} else {
		next := at.next
		if next == nil {
			l.tail = ot
		} else {
			next.prev = ot
		}
		ot.next = next
		oh.prev = at
		at.next = oh
	}
	l.length += n
}

func (n *Node_t) String() string {
	return fmt.Sprintf("Node(%v)", n.elem)
}
