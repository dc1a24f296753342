package gotreesitter

// StackVersion identifies one of the parallel stack heads a GLR parse is
// exploring. Versions come and go as the driver forks on ambiguous actions
// and merges or halts afterward.
type StackVersion int

// StackVersionNone is returned where no version applies (ts_stack.h's
// STACK_VERSION_NONE).
const StackVersionNone StackVersion = -1

// StackSlice is one interpretation of the trees popped off a stack version:
// the consumed subtrees, in order, plus the version number the pop left
// behind (pop_count forks into one slice per distinct path through shared
// stack nodes).
type StackSlice struct {
	Trees   []*subtree
	Version StackVersion
}

// StackPopResult groups every slice produced by a single pop_count call.
type StackPopResult struct {
	Slices []StackSlice
}

// StackIterateAction is returned by an iterate callback to control the walk.
type StackIterateAction uint8

const (
	StackIterateNone StackIterateAction = 0
	StackIterateStop StackIterateAction = 1 << iota
	StackIteratePop
)

// StackSummaryEntry records one (depth, state) pair seen below a given
// position. handleError records one per skipped character; nothing in the
// driver reads the summaries back.
type StackSummaryEntry struct {
	Position extent
	Depth    uint32
	State    StateID
}

// stackLink is one edge in the graph-structured stack: a predecessor node,
// the subtree consumed along that edge (nil only for the synthetic base
// link), and whether that subtree is a not-yet-reduced error token.
type stackLink struct {
	node      *stackNode
	tree      *subtree
	isPending bool
}

// stackNode is shared by every version whose path passes through it; this
// sharing is what gives the stack memory proportional to the divergent
// suffix rather than to the number of live versions.
type stackNode struct {
	state    StateID
	links    []stackLink
	position extent
	errorCost uint32
	refCount int
}

func (n *stackNode) retain() { n.refCount++ }

func (p *parseStack) releaseNode(n *stackNode) {
	if n == nil {
		return
	}
	n.refCount--
	if n.refCount > 0 {
		return
	}
	for _, l := range n.links {
		releaseSubtree(p.pool, l.tree)
		p.releaseNode(l.node)
	}
}

// stackVersionState is one live head of the parse stack.
type stackVersionState struct {
	head              *stackNode
	lastExternalToken []byte
	halted            bool
	pushCount         uint32
	summaries         []StackSummaryEntry
	// forked marks that popCount has already redirected this version's
	// head once during the current pop; a second ambiguous path gets a
	// freshly appended version instead of overwriting this one again.
	forked bool
}

// parseStack is the graph-structured parse stack (component G): a DAG of
// stackNodes plus a head-pointer table, one head per live version.
type parseStack struct {
	pool     *subtreePool
	base     *stackNode
	versions []*stackVersionState
}

func newParseStack(pool *subtreePool, initialState StateID) *parseStack {
	base := &stackNode{state: initialState, refCount: 1}
	return &parseStack{
		pool:     pool,
		base:     base,
		versions: []*stackVersionState{{head: base}},
	}
}

func (p *parseStack) versionCount() int { return len(p.versions) }

func (p *parseStack) topState(v StackVersion) StateID {
	return p.versions[v].head.state
}

func (p *parseStack) topPosition(v StackVersion) extent {
	return p.versions[v].head.position
}

func (p *parseStack) pushCount(v StackVersion) uint32 {
	return p.versions[v].pushCount
}

func (p *parseStack) decreasePushCount(v StackVersion, n uint32) {
	ver := p.versions[v]
	if n > ver.pushCount {
		ver.pushCount = 0
		return
	}
	ver.pushCount -= n
}

func (p *parseStack) lastExternalToken(v StackVersion) []byte {
	return p.versions[v].lastExternalToken
}

func (p *parseStack) setLastExternalToken(v StackVersion, state []byte) {
	p.versions[v].lastExternalToken = state
}

// push extends version v with a new top state consuming tree (nil tree
// means an epsilon/goto-only edge). isPending marks an unreduced error
// token awaiting a later pop_pending.
func (p *parseStack) push(v StackVersion, state StateID, tree *subtree, isPending bool) {
	ver := p.versions[v]
	node := &stackNode{
		state:    state,
		links:    []stackLink{{node: ver.head, tree: tree, isPending: isPending}},
		refCount: 1,
	}
	ver.head.retain()
	pos := ver.head.position
	if tree != nil {
		pos = addExtent(pos, addExtent(tree.padding, tree.size))
		node.errorCost = ver.head.errorCost + tree.errorCost
	} else {
		node.errorCost = ver.head.errorCost
	}
	node.position = pos
	p.releaseNode(ver.head)
	ver.head = node
	ver.pushCount++
	ver.forked = false
}

// popCount pops n trees off version v, forking into one StackSlice per
// distinct path when a shared node along the way has more than one
// incoming link (an unresolved ambiguity; the driver's reduce builds one
// node per slice).
func (p *parseStack) popCount(v StackVersion, n uint32) StackPopResult {
	type frontier struct {
		node  *stackNode
		trees []*subtree
	}
	frontiers := []frontier{{node: p.versions[v].head}}
	for i := uint32(0); i < n; i++ {
		var next []frontier
		for _, f := range frontiers {
			if len(f.node.links) == 0 {
				next = append(next, f)
				continue
			}
			for _, l := range f.node.links {
				trees := make([]*subtree, len(f.trees), len(f.trees)+1)
				copy(trees, f.trees)
				if l.tree != nil {
					retainSubtree(l.tree)
					trees = append(trees, l.tree)
				}
				next = append(next, frontier{node: l.node, trees: trees})
			}
		}
		frontiers = next
	}

	result := StackPopResult{Slices: make([]StackSlice, 0, len(frontiers))}
	for _, f := range frontiers {
		reversed := make([]*subtree, len(f.trees))
		for i, t := range f.trees {
			reversed[len(f.trees)-1-i] = t
		}
		newVer := p.forkVersionAt(v, f.node)
		result.Slices = append(result.Slices, StackSlice{Trees: reversed, Version: newVer})
	}
	return result
}

// forkVersionAt points version v's head at node (retaining it) if v is the
// only consumer of its current head chain, or appends a brand new version
// when a popCount produced more than one slice. Returns the version that
// now has node as its head.
func (p *parseStack) forkVersionAt(v StackVersion, node *stackNode) StackVersion {
	ver := p.versions[v]
	if ver.head == node {
		return v
	}
	// First caller to reach `node` this pop reuses v in place; later ones
	// (additional ambiguous slices) get a fresh version appended.
	if !ver.forked {
		node.retain()
		p.releaseNode(ver.head)
		ver.head = node
		ver.forked = true
		return v
	}
	node.retain()
	nv := &stackVersionState{
		head:              node,
		lastExternalToken: ver.lastExternalToken,
		forked:            true,
	}
	p.versions = append(p.versions, nv)
	return StackVersion(len(p.versions) - 1)
}

// popPending pops a single pending (not yet reduced into a tree) error
// token off version v, if the top link is marked pending.
func (p *parseStack) popPending(v StackVersion) (*subtree, bool) {
	ver := p.versions[v]
	if len(ver.head.links) != 1 || !ver.head.links[0].isPending {
		return nil, false
	}
	l := ver.head.links[0]
	tree := l.tree
	l.node.retain()
	p.releaseNode(ver.head)
	ver.head = l.node
	ver.pushCount--
	return tree, true
}

// popError pops down through version v until leaving the contiguous run of
// ERROR_STATE-tagged nodes pushed during the most recent recovery attempt.
func (p *parseStack) popError(v StackVersion, errorState StateID) StackPopResult {
	ver := p.versions[v]
	n := uint32(0)
	node := ver.head
	for node.state == errorState && len(node.links) == 1 {
		n++
		node = node.links[0].node
	}
	return p.popCount(v, n)
}

// popAll pops version v all the way down to the stack base, returning every
// tree consumed along the way (used by the driver's accept to collect the
// whole parse).
func (p *parseStack) popAll(v StackVersion) StackPopResult {
	return p.popCount(v, p.versions[v].pushCount)
}

// iterate walks version v's chain from the top down to the base, invoking
// fn at each node with the cumulative depth. fn's returned action can stop
// the walk early.
func (p *parseStack) iterate(v StackVersion, fn func(node *stackNode, depth uint32) StackIterateAction) {
	depth := uint32(0)
	node := p.versions[v].head
	for {
		action := fn(node, depth)
		if action&StackIterateStop != 0 {
			return
		}
		if len(node.links) == 0 {
			return
		}
		node = node.links[0].node
		depth++
	}
}

// errorCost returns the cumulative error cost charged to version v's
// current path, used by handleError's halt check and by worstVersion when
// condenseStack prunes versions.
func (p *parseStack) errorCost(v StackVersion) uint32 {
	return p.versions[v].head.errorCost
}

// canMerge reports whether versions v1 and v2 can be combined: same top
// state and same external-token state, the two conditions tree-sitter's
// stack_can_merge checks before accepting an ambiguity as a DAG merge
// rather than two live versions.
func (p *parseStack) canMerge(v1, v2 StackVersion) bool {
	a, b := p.versions[v1], p.versions[v2]
	if a.head.state != b.head.state {
		return false
	}
	return externalTokenStateEq(a.lastExternalToken, b.lastExternalToken)
}

// merge combines v2 into v1 by adding v2's head's links onto v1's head node
// (if they're not already the same node) and removing v2. Returns whether a
// merge happened.
func (p *parseStack) merge(v1, v2 StackVersion) bool {
	if !p.canMerge(v1, v2) {
		return false
	}
	return p.forceMerge(v1, v2)
}

// forceMerge merges v2 into v1 unconditionally (used by condenseStack once
// canMerge has matched the two versions' state and external-token state).
func (p *parseStack) forceMerge(v1, v2 StackVersion) bool {
	a, b := p.versions[v1], p.versions[v2]
	if a.head != b.head {
		// a.head now also owns b.head's links, which removeVersion is about
		// to release along with b.head.
		for _, l := range b.head.links {
			l.node.retain()
			retainSubtree(l.tree)
		}
		a.head.links = append(a.head.links, b.head.links...)
	}
	p.removeVersion(v2)
	return true
}

func (p *parseStack) recordSummary(v StackVersion, entry StackSummaryEntry) {
	ver := p.versions[v]
	ver.summaries = append(ver.summaries, entry)
	if len(ver.summaries) > maxSummaryDepth {
		ver.summaries = ver.summaries[len(ver.summaries)-maxSummaryDepth:]
	}
}

func (p *parseStack) getSummary(v StackVersion) []StackSummaryEntry {
	return p.versions[v].summaries
}

func (p *parseStack) halt(v StackVersion) { p.versions[v].halted = true }

func (p *parseStack) isHalted(v StackVersion) bool { return p.versions[v].halted }

// renumberVersion moves version v2's state onto v1's slot and removes v2,
// keeping the version index space dense after a version is dropped.
func (p *parseStack) renumberVersion(v1, v2 StackVersion) {
	p.versions[v1] = p.versions[v2]
	p.removeVersion(v2)
}

func (p *parseStack) swapVersions(v1, v2 StackVersion) {
	p.versions[v1], p.versions[v2] = p.versions[v2], p.versions[v1]
}

// copyVersion duplicates version v into a brand new version sharing the
// same head node (retained), used when the driver needs to try two
// different actions from the same stack configuration.
func (p *parseStack) copyVersion(v StackVersion) StackVersion {
	ver := p.versions[v]
	ver.head.retain()
	nv := &stackVersionState{
		head:              ver.head,
		lastExternalToken: ver.lastExternalToken,
		pushCount:         ver.pushCount,
		forked:            ver.forked,
	}
	p.versions = append(p.versions, nv)
	return StackVersion(len(p.versions) - 1)
}

// removeVersion drops version v, releasing its head chain down to any node
// still shared by a surviving version.
func (p *parseStack) removeVersion(v StackVersion) {
	ver := p.versions[v]
	p.releaseNode(ver.head)
	p.versions = append(p.versions[:v], p.versions[v+1:]...)
}

func (p *parseStack) clear() {
	for i := range p.versions {
		p.releaseNode(p.versions[i].head)
	}
	p.base = &stackNode{state: p.base.state, refCount: 1}
	p.versions = []*stackVersionState{{head: p.base}}
}
