package gotreesitter

// reusableCursor walks the public *Node tree produced by a previous Parse
// or ParseIncremental call, in byte order, so the driver can test whether
// the next span of the new input matches an unchanged subtree from the old
// one. It never rebuilds from the internal subtree representation: the
// previous tree it walks is exactly the tree the caller got back and then
// called Tree.Edit on, so hasChanges reflects the edits already applied.
type reusableCursor struct {
	// stack holds the path from the root to the current node; stack[len-1]
	// is the node the cursor currently points at.
	stack []*Node
	// byteOffset is the end byte of the node most recently consumed by pop
	// or popLeaf (the root's start byte before anything is consumed), in
	// the coordinate space of the new (edited) source.
	byteOffset uint32
	// lastExternalToken is a slot for serialized external-token state; no
	// cursor method writes it, so it stays nil.
	lastExternalToken []byte
}

// newReusableCursor positions a cursor at the root of tree's previous
// result. A nil root yields a cursor with nothing to offer.
func newReusableCursor(tree *Tree) *reusableCursor {
	c := &reusableCursor{}
	if tree == nil || tree.root == nil {
		return c
	}
	c.stack = []*Node{tree.root}
	c.byteOffset = tree.root.startByte
	return c
}

func (c *reusableCursor) done() bool {
	return len(c.stack) == 0
}

// current returns the node the cursor points at, or nil if exhausted.
func (c *reusableCursor) current() *Node {
	if c.done() {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// canReuse reports whether the current node (and everything beneath it) is
// untouched by any edit and therefore eligible to be reused verbatim.
func (c *reusableCursor) canReuse() bool {
	n := c.current()
	return n != nil && !n.hasChanges
}

// breakdown descends into the current node's first child, failing (and
// returning false) if the current node is a leaf. Used when a whole
// subtree can't be reused but one of its children still might be.
func (c *reusableCursor) breakdown() bool {
	n := c.current()
	if n == nil || len(n.children) == 0 {
		return false
	}
	c.stack = append(c.stack, n.children[0])
	return true
}

// popLeaf discards the current leaf node and advances to the next node in
// byte order (the next sibling, or the parent's next sibling, and so on).
func (c *reusableCursor) popLeaf() {
	if c.done() {
		return
	}
	n := c.stack[len(c.stack)-1]
	c.byteOffset = n.endByte
	c.advanceAfterCurrent()
}

// pop discards the entire current node (reused as-is, including all
// descendants) and advances past it in byte order.
func (c *reusableCursor) pop() *Node {
	if c.done() {
		return nil
	}
	n := c.stack[len(c.stack)-1]
	c.byteOffset = n.endByte
	c.advanceAfterCurrent()
	return n
}

// advanceAfterCurrent pops the current node off the path and moves to its
// next sibling, or its parent's next sibling if it was the last child, and
// so on up the path — a standard iterative pre-order successor walk.
func (c *reusableCursor) advanceAfterCurrent() {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if len(c.stack) == 0 {
			return
		}
		parent := c.stack[len(c.stack)-1]
		idx := childIndex(parent, top)
		if idx >= 0 && idx+1 < len(parent.children) {
			c.stack = append(c.stack, parent.children[idx+1])
			return
		}
		// top was the last child of parent: keep popping upward.
	}
}

func childIndex(parent, child *Node) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	return -1
}

// advance moves the cursor to the node covering byteIndex, descending into
// the covering child as far as necessary (stopping early at a node that
// starts exactly at byteIndex). Returns false once no node in the previous
// tree covers that position.
func (c *reusableCursor) advance(byteIndex uint32) bool {
	for {
		n := c.current()
		if n == nil {
			return false
		}
		if byteIndex < n.startByte || byteIndex >= n.endByte {
			c.advanceAfterCurrent()
			if c.done() {
				return false
			}
			continue
		}
		if n.startByte != byteIndex {
			descended := false
			for _, ch := range n.children {
				if byteIndex >= ch.startByte && byteIndex < ch.endByte {
					c.stack = append(c.stack, ch)
					descended = true
					break
				}
			}
			if descended {
				continue
			}
		}
		return true
	}
}
