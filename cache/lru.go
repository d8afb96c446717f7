package cache

// lruNode is a node in a doubly-linked LRU list. It carries the key for
// O(1) deletion from the shard map and the entry's charged size.
type lruNode[K comparable] struct {
	key  K
	size int64
	prev *lruNode[K]
	next *lruNode[K]
}

// lruList orders entries by recency: head is the most recently used.
// It also tracks the summed size of its nodes.
// The list is not thread-safe; the owning shard synchronizes access.
type lruList[K comparable] struct {
	head *lruNode[K]
	tail *lruNode[K]
	len  int
	size int64
}

// Len returns the number of nodes in the list.
func (l *lruList[K]) Len() int { return l.len }

// Size returns the summed size of all nodes.
func (l *lruList[K]) Size() int64 { return l.size }

// PushFront adds a node for key at the front and returns it.
func (l *lruList[K]) PushFront(key K, size int64) *lruNode[K] {
	node := &lruNode[K]{key: key, size: size}
	l.link(node)
	return node
}

// MoveToFront marks node as most recently used.
func (l *lruList[K]) MoveToFront(node *lruNode[K]) {
	if node == l.head {
		return
	}
	l.unlink(node)
	l.link(node)
}

// Resize changes the charged size of node.
func (l *lruList[K]) Resize(node *lruNode[K], size int64) {
	l.size += size - node.size
	node.size = size
}

// Remove removes node from the list.
func (l *lruList[K]) Remove(node *lruNode[K]) {
	l.unlink(node)
}

// RemoveOldest removes the least recently used node and returns it.
func (l *lruList[K]) RemoveOldest() (*lruNode[K], bool) {
	node := l.tail
	if node == nil {
		return nil, false
	}
	l.unlink(node)
	return node, true
}

// Clear drops every node.
func (l *lruList[K]) Clear() {
	*l = lruList[K]{}
}

func (l *lruList[K]) link(node *lruNode[K]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
	l.size += node.size
}

func (l *lruList[K]) unlink(node *lruNode[K]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
	l.size -= node.size
}
