package gotreesitter

// noParseState marks a subtree that was built while fragile: it has no
// single LR state it can be trusted to resume from, per invariant 4
// (fragile_left || fragile_right => parse_state = NONE). errorRecoveryState
// already claims StateID(0), so this sentinel sits at the other end of the
// range.
const noParseState = StateID(0xFFFF)

// extent is a byte/row-column span used for padding (leading whitespace
// absorbed by a token) and size (the token or subtree's own width).
type extent struct {
	bytes uint32
	point Point
}

func addExtent(a, b extent) extent {
	row := a.point.Row + b.point.Row
	col := b.point.Column
	if b.point.Row == 0 {
		col = a.point.Column + b.point.Column
	}
	return extent{
		bytes: a.bytes + b.bytes,
		point: Point{Row: row, Column: col},
	}
}

// subtree is the internal, refcounted, pool-allocated parse node. Spec's
// public Node is built from an accepted tree of these by finalize; subtree
// itself never escapes this package. Every subtree is produced by a
// subtreePool and returned to the same pool when its refCount reaches zero.
type subtree struct {
	symbol     Symbol
	parseState StateID

	aliasSymbol  Symbol
	aliasIsNamed bool

	// padding is the whitespace/skipped-token span before this subtree's
	// content; size is the span of the content itself. Together they let
	// a parent compute its own span without rescanning children.
	padding extent
	size    extent

	childCount        uint32
	children          []*subtree
	visibleChildCount uint32
	namedChildCount   uint32
	aliasSequenceID   uint16

	// Leaf-only union: an internal token carries nothing extra, an
	// external token carries its scanner-serialized state, an error
	// token carries the single codepoint that was skipped.
	externalTokenState []byte
	lookaheadChar       rune

	refCount          int32
	dynamicPrecedence int16
	errorCost         uint32

	firstLeafSymbol  Symbol
	firstLeafLexMode uint16

	bytesScanned uint32

	visible           bool
	named             bool
	extra             bool
	fragileLeft       bool
	fragileRight      bool
	hasChanges        bool
	hasExternalTokens bool
	isError           bool
	isMissing         bool

	// Post-parse context slots. finalizeSubtree does not fill them (it
	// records parent links on the public Node tree instead), so they stay
	// zero; makeCopy resets them on the copy.
	parent        *subtree
	indexInParent int
	offsetInParent extent
}

// makeLeaf builds a terminal subtree for a token straight out of the lexer
// adapter (internal lex function or external scanner).
func makeLeaf(pool *subtreePool, tok Token, named, visible, extraToken bool, padding extent, parseState StateID) *subtree {
	t := pool.allocate()
	t.symbol = tok.Symbol
	t.named = named
	t.visible = visible
	t.extra = extraToken
	t.parseState = parseState
	t.padding = padding
	t.size = extent{
		bytes: tok.EndByte - tok.StartByte,
		point: pointDelta(tok.StartPoint, tok.EndPoint),
	}
	t.firstLeafSymbol = tok.Symbol
	return t
}

// makeExternalLeaf builds a terminal subtree produced by an external
// scanner, carrying its serialized state for the next incremental parse.
func makeExternalLeaf(pool *subtreePool, tok Token, named, visible bool, padding extent, parseState StateID, state []byte) *subtree {
	t := makeLeaf(pool, tok, named, visible, false, padding, parseState)
	t.hasExternalTokens = true
	t.externalTokenState = state
	return t
}

// makeErrorLeaf builds the single-codepoint leaf used by error recovery
// when no valid action exists and a character must be skipped.
func makeErrorLeaf(pool *subtreePool, r rune, startByte, endByte uint32, startPoint, endPoint Point, padding extent) *subtree {
	t := pool.allocate()
	t.symbol = errorSymbol
	t.named = false
	t.visible = true
	t.isError = true
	t.padding = padding
	t.size = extent{bytes: endByte - startByte, point: pointDelta(startPoint, endPoint)}
	t.lookaheadChar = r
	t.firstLeafSymbol = errorSymbol
	t.errorCost = errorCostPerSkippedChar
	return t
}

// makeMissingLeaf builds a zero-width leaf inserted by error recovery to
// stand in for a token the parser expected but never saw.
func makeMissingLeaf(pool *subtreePool, sym Symbol, named bool, at uint32, atPoint Point, parseState StateID) *subtree {
	t := pool.allocate()
	t.symbol = sym
	t.named = named
	t.visible = true
	t.isMissing = true
	t.parseState = parseState
	t.firstLeafSymbol = sym
	t.errorCost = errorCostPerSkippedTree
	return t
}

// makeNode builds a non-terminal subtree from already-retained children,
// computing span, precedence, and propagated flags the way a parent's
// reduce action does. fragile marks a node the driver itself judged
// unstable (built under ambiguity, from a forked slice, or while more than
// one stack version was live); it always makes the node's own edges
// fragile, regardless of what the children report. Either way, fragility
// propagates from the first child's fragile_left and the last child's
// fragile_right, and fragile_left || fragile_right forces parse_state to
// noParseState per invariant 4.
func makeNode(pool *subtreePool, sym Symbol, named bool, children []*subtree, productionID uint16, dynamicPrecedence int16, fragile bool) *subtree {
	t := pool.allocate()
	t.symbol = sym
	t.named = named
	t.visible = true
	t.children = children
	t.childCount = uint32(len(children))
	t.dynamicPrecedence = dynamicPrecedence
	t.aliasSequenceID = productionID

	t.fragileLeft = fragile
	t.fragileRight = fragile
	if len(children) > 0 {
		if children[0].fragileLeft {
			t.fragileLeft = true
		}
		if children[len(children)-1].fragileRight {
			t.fragileRight = true
		}
	}
	if t.fragileLeft || t.fragileRight {
		t.parseState = noParseState
	}

	for i, c := range children {
		if c.visible {
			t.visibleChildCount++
		}
		if c.named {
			t.namedChildCount++
		}
		if c.hasChanges {
			t.hasChanges = true
		}
		if c.hasExternalTokens {
			t.hasExternalTokens = true
		}
		if c.dynamicPrecedence > t.dynamicPrecedence {
			t.dynamicPrecedence = c.dynamicPrecedence
		}
		t.errorCost += c.errorCost
		t.bytesScanned += c.bytesScanned
		if i == 0 {
			t.padding = c.padding
			t.firstLeafSymbol = c.firstLeafSymbol
			t.firstLeafLexMode = c.firstLeafLexMode
		}
		t.size = addExtent(t.size, addExtent(c.padding, c.size))
		if i == 0 {
			t.size = extent{bytes: c.size.bytes, point: c.size.point}
		}
	}
	if len(children) > 0 {
		// Subsequent children's padding belongs to the parent's size, not
		// its own leading padding, so recompute size as the span from the
		// end of the first child's padding to the end of the last child.
		total := extent{}
		for i, c := range children {
			if i == 0 {
				total = c.size
				continue
			}
			total = addExtent(total, addExtent(c.padding, c.size))
		}
		t.size = total
	}
	return t
}

// makeErrorNode wraps a sequence of already-retained children (valid trees
// the parser couldn't place) in a synthetic ERROR node, the shape recover
// builds from the error leaves handleError pushed.
func makeErrorNode(pool *subtreePool, children []*subtree) *subtree {
	t := makeNode(pool, errorSymbol, false, children, 0, 0, false)
	t.isError = true
	t.errorCost += uint32(len(children)) * errorCostPerSkippedTree
	return t
}

// makeCopy returns an independent subtree with the same content as t,
// suitable for mutating in place (e.g. reusing a child list under a new
// alias) without disturbing other owners of t. Children are retained again
// since the copy is a distinct owner.
func makeCopy(pool *subtreePool, t *subtree) *subtree {
	c := pool.allocate()
	*c = *t
	c.refCount = 1
	c.parent = nil
	c.indexInParent = 0
	c.offsetInParent = extent{}
	if len(t.children) > 0 {
		c.children = append([]*subtree(nil), t.children...)
		for _, ch := range c.children {
			retainSubtree(ch)
		}
	}
	return c
}

// retainSubtree increments t's reference count. Every subtree stored in more
// than one place (a stack slice, a child list, a reusable-cursor result)
// must be retained before the extra reference is handed out.
func retainSubtree(t *subtree) {
	if t == nil {
		return
	}
	t.refCount++
}

// releaseSubtree decrements t's reference count, releasing its children and
// returning t to pool once the count reaches zero.
func releaseSubtree(pool *subtreePool, t *subtree) {
	if t == nil {
		return
	}
	t.refCount--
	if t.refCount > 0 {
		return
	}
	for _, c := range t.children {
		releaseSubtree(pool, c)
	}
	pool.free(t)
}

// subtreeEq reports whether a and b are structurally identical: same
// symbol, same span, same children. The reusable-node cursor does not call
// it: the cursor works on the public Node tree, not on subtrees.
func subtreeEq(a, b *subtree) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.symbol != b.symbol || a.size != b.size || a.padding != b.padding {
		return false
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !subtreeEq(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// externalTokenStateEq compares two external-scanner serialized states
// byte for byte, used by the token cache's lookup and by the stack's
// canMerge.
func externalTokenStateEq(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// compareSubtrees is the ranking selectBestVersion uses: lower error cost wins, then
// higher dynamic precedence, then compareStructure's structural order as a
// final, deterministic tie-break.
func compareSubtrees(a, b *subtree) int {
	if a.errorCost != b.errorCost {
		if a.errorCost < b.errorCost {
			return -1
		}
		return 1
	}
	if a.dynamicPrecedence != b.dynamicPrecedence {
		if a.dynamicPrecedence > b.dynamicPrecedence {
			return -1
		}
		return 1
	}
	return compareStructure(a, b)
}

// compareStructure is compare(a, b) from the parse table's shape, with no
// notion of cost or precedence: symbol first, then child_count, then each
// child pairwise in order. The first difference decides; identical shape
// all the way down compares equal.
func compareStructure(a, b *subtree) int {
	if a == b {
		return 0
	}
	if a.symbol != b.symbol {
		if a.symbol < b.symbol {
			return -1
		}
		return 1
	}
	if a.childCount != b.childCount {
		if a.childCount < b.childCount {
			return -1
		}
		return 1
	}
	for i := range a.children {
		if c := compareStructure(a.children[i], b.children[i]); c != 0 {
			return c
		}
	}
	return 0
}

func pointDelta(start, end Point) Point {
	if end.Row == start.Row {
		return Point{Row: 0, Column: end.Column - start.Column}
	}
	return Point{Row: end.Row - start.Row, Column: end.Column}
}
