package gotreesitter

import "unicode/utf8"

// errorSymbol is the well-known symbol ID tree-sitter reserves for the
// synthetic ERROR node produced by recovery.
const errorSymbol = Symbol(65535)

// errorRecoveryState is the parser state pushed while a version is
// accumulating skipped tokens during recovery. State 0 is reserved for
// this purpose in every generated language table, mirroring ERROR_STATE
// in tree-sitter's own parser.c.
const errorRecoveryState = StateID(0)

// Cost weights and bounds governing GLR error recovery and version
// pruning (ground truth: original_source/src/runtime/parser.c).
const (
	maxVersionCount = 6
	maxSummaryDepth = 16

	errorCostPerSkippedTree = 500
	errorCostPerSkippedChar = 3
	errorCostPerSkippedLine = 30

	maxCostDifference = 16 * errorCostPerSkippedTree
)

// Token is produced either by the internal lex function, an external
// scanner, or a caller-supplied TokenSource (see below).

// TokenSource lets a language supply its own scanner instead of the
// table-driven DFA lexer — e.g. a hand-written recursive lexer for a
// language whose tokens aren't regular. The lexer adapter (component E)
// tries this first when set, falling back to nothing else: a TokenSource
// is an all-or-nothing replacement for the internal lex function, not a
// supplement to it.
type TokenSource interface {
	Next() Token
}

// ByteSkippableTokenSource lets a TokenSource reposition itself to an
// arbitrary byte offset, needed when the GLR driver backtracks to a
// different stack version's position instead of lexing strictly in order.
type ByteSkippableTokenSource interface {
	TokenSource
	SkipToByte(pos uint32) Token
}

// LogEntryType identifies the kind of event a Parser's logger is told
// about.
type LogEntryType uint8

const (
	LogShift LogEntryType = iota
	LogReduce
	LogAccept
	LogError
	LogRecover
	LogCondense
)

// LogEntry is one event emitted through Parser.SetLogger, modeled directly
// on tree-sitter's TSLogger callback: the embedder owns formatting and the
// destination, the parser only reports what happened and where.
type LogEntry struct {
	Type    LogEntryType
	Message string
}

// Logger receives LogEntry values as the driver runs. Parser.SetLogger(nil)
// disables logging (the default).
type Logger func(LogEntry)

// Parser drives a GLR parse against a Language's tables, producing a Tree.
// Multiple stack versions are explored in lock step when the table has more
// than one action for a (state, symbol) pair; versions merge back together
// once they reconverge on the same state, and the cheapest-to-recover
// survivor is selected if the input required error recovery.
type Parser struct {
	language *Language
	logger   Logger
}

// NewParser creates a new Parser for the given language.
func NewParser(lang *Language) *Parser {
	return &Parser{language: lang}
}

// SetLogger installs fn as the parser's logging sink, or clears it if fn is
// nil.
func (p *Parser) SetLogger(fn Logger) { p.logger = fn }

func (p *Parser) log(t LogEntryType, msg string) {
	if p.logger != nil {
		p.logger(LogEntry{Type: t, Message: msg})
	}
}

// Parse tokenizes and parses source from scratch, returning a syntax tree.
func (p *Parser) Parse(source []byte) *Tree {
	return p.run(source, nil, nil)
}

// ParseIncremental re-parses source, reusing unchanged subtrees from
// oldTree via the reusable-node cursor. Call oldTree.Edit for every
// InputEdit before calling this.
func (p *Parser) ParseIncremental(source []byte, oldTree *Tree) *Tree {
	return p.run(source, oldTree, nil)
}

// ParseWithTokenSource parses source using ts instead of the language's
// internal DFA lexer.
func (p *Parser) ParseWithTokenSource(source []byte, ts TokenSource) *Tree {
	return p.run(source, nil, ts)
}

// ParseIncrementalWithTokenSource combines incremental reuse with a custom
// TokenSource.
func (p *Parser) ParseIncrementalWithTokenSource(source []byte, oldTree *Tree, ts TokenSource) *Tree {
	return p.run(source, oldTree, ts)
}

// parseSession holds everything one run of the driver needs: the language,
// the shared subtree pool, the graph-structured stack, the lexer adapter's
// components, and (for incremental parses) the reusable-node cursor.
type parseSession struct {
	parser      *Parser
	lang        *Language
	source      []byte
	pool        *subtreePool
	stack       *parseStack
	lexer       *Lexer
	tokenSource TokenSource
	cursor      *reusableCursor
	cache       tokenCache
}

func (p *Parser) run(source []byte, oldTree *Tree, ts TokenSource) *Tree {
	if len(source) == 0 {
		return NewTree(nil, source, p.language)
	}
	if ts == nil && len(p.language.LexStates) == 0 {
		// No internal lex table and no substitute TokenSource: there's
		// nothing this parser can tokenize with.
		return NewTree(nil, source, p.language)
	}

	pool := acquireSubtreePool()
	defer releaseSubtreePool(pool)

	s := &parseSession{
		parser:      p,
		lang:        p.language,
		source:      source,
		pool:        pool,
		stack:       newParseStack(pool, p.language.InitialState),
		tokenSource: ts,
	}
	if ts == nil {
		s.lexer = NewLexer(p.language.LexStates, source)
	}
	if oldTree != nil {
		s.cursor = newReusableCursor(oldTree)
	}

	// Round-robin over every live stack version until all are halted
	// (accepted or abandoned) or a full round makes no progress at all.
	for {
		progressed := false
		for v := StackVersion(0); int(v) < s.stack.versionCount(); v++ {
			if s.stack.isHalted(v) {
				continue
			}
			if s.advanceVersion(v) {
				progressed = true
			}
		}
		s.condenseStack()
		if s.allHalted() || !progressed {
			break
		}
	}

	root := s.selectBestVersion()
	return NewTree(finalizeSubtree(root), source, p.language)
}

func (s *parseSession) allHalted() bool {
	for _, v := range s.stack.versions {
		if !v.halted {
			return false
		}
	}
	return true
}

// advanceVersion consumes one lookahead token for version v: looking up the
// action table, forking a new version for every action beyond the first
// when the grammar is locally ambiguous, and applying the chosen action(s).
// Returns false only when v could make no progress and was halted.
func (s *parseSession) advanceVersion(v StackVersion) bool {
	if s.tryReuseSubtree(v) {
		return true
	}

	state := s.stack.topState(v)
	tok, padding := s.getLookahead(v)

	entry := s.lang.lookupAction(state, tok.Symbol)
	if entry == nil || len(entry.Actions) == 0 {
		return s.handleError(v, tok, padding)
	}

	inAmbiguity := len(entry.Actions) > 1
	for i := 1; i < len(entry.Actions); i++ {
		nv := s.stack.copyVersion(v)
		s.applyAction(nv, entry.Actions[i], tok, padding, inAmbiguity)
	}
	return s.applyAction(v, entry.Actions[0], tok, padding, inAmbiguity)
}

func (s *parseSession) applyAction(v StackVersion, act ParseAction, tok Token, padding extent, inAmbiguity bool) bool {
	switch act.Type {
	case ParseActionShift:
		named := s.lang.isNamedSymbol(tok.Symbol)
		leaf := makeLeaf(s.pool, tok, named, true, act.Extra, padding, act.State)
		s.stack.push(v, act.State, leaf, false)
		s.parser.log(LogShift, s.lang.symbolName(tok.Symbol))
		return true

	case ParseActionReduce:
		s.reduce(v, act, inAmbiguity)
		return true

	case ParseActionAccept:
		s.accept(v)
		return true

	case ParseActionRecover:
		return s.recover(v)

	default:
		return s.handleError(v, tok, padding)
	}
}

// accept closes out version v at a ParseActionAccept: it pops everything
// above the stack base so the whole parse, including any error-recovery
// debris that was never folded into a production by a grammar rule, is
// captured in one tree. A clean parse pops exactly one tree and that tree
// becomes the root untouched; leftover debris (more than one tree) is
// wrapped in a synthetic, HasError-marked root the way the single-stack
// parser's own buildResult did, so an error-tolerant parse is never silently
// missing the tokens it failed to place.
func (s *parseSession) accept(v StackVersion) {
	result := s.stack.popAll(v)
	for _, slice := range result.Slices {
		var root *subtree
		switch len(slice.Trees) {
		case 0:
			root = nil
		case 1:
			root = slice.Trees[0]
		default:
			last := slice.Trees[len(slice.Trees)-1]
			named := s.lang.isNamedSymbol(last.symbol)
			root = makeNode(s.pool, last.symbol, named, slice.Trees, 0, 0, false)
			root.isError = true
		}
		if root != nil {
			s.stack.push(slice.Version, s.stack.topState(slice.Version), root, false)
		}
		s.stack.halt(slice.Version)
	}
	s.parser.log(LogAccept, "")
}

// reduce pops act.ChildCount trees off v (forking into one new version per
// ambiguous path popCount discovers), builds the reduced node, and pushes
// it back on after consulting the GOTO entry for the new top state.
//
// A parent built here is fragile (and therefore gets no trustworthy
// parse_state, invariant 4) whenever popCount had to fork more than one
// slice off a shared prefix, the driver is exploring more than one stack
// version right now, or the dispatch that chose act was itself locally
// ambiguous (inAmbiguity): any of these mean a sibling version could still
// claim a different parse over the same span, so this one can't be handed
// back to the reusable cursor as settled.
func (s *parseSession) reduce(v StackVersion, act ParseAction, inAmbiguity bool) {
	result := s.stack.popCount(v, uint32(act.ChildCount))
	multiSlice := len(result.Slices) > 1
	fragile := multiSlice || inAmbiguity || s.stack.versionCount() > 1
	for _, slice := range result.Slices {
		named := s.lang.isNamedSymbol(act.Symbol)
		children := s.applyAliases(act.ProductionID, slice.Trees)
		node := makeNode(s.pool, act.Symbol, named, children, act.ProductionID, act.DynamicPrecedence, fragile)

		stateAfterPop := s.stack.topState(slice.Version)
		target := stateAfterPop
		if gotoEntry := s.lang.lookupAction(target, act.Symbol); gotoEntry != nil && len(gotoEntry.Actions) > 0 {
			if ga := gotoEntry.Actions[0]; ga.Type == ParseActionShift {
				target = ga.State
			}
		}
		if !node.fragileLeft && !node.fragileRight {
			node.parseState = stateAfterPop
		}
		s.stack.push(slice.Version, target, node, false)
	}
	s.parser.log(LogReduce, s.lang.symbolName(act.Symbol))
}

// applyAliases rewrites children whose grammar symbol needs renaming for
// this production, per the language's alias sequence table. A child shared
// with another owner (refCount > 1, e.g. still referenced by a sibling GLR
// version) is copied first so the rename doesn't leak into that owner's
// view of the same node — the copy-on-write discipline make_copy exists
// for.
func (s *parseSession) applyAliases(productionID uint16, children []*subtree) []*subtree {
	if int(productionID) >= len(s.lang.AliasSequences) {
		return children
	}
	seq := s.lang.AliasSequences[productionID]
	for i := range seq {
		if i >= len(children) || seq[i] == 0 {
			continue
		}
		c := children[i]
		if c.aliasSymbol == seq[i] {
			continue
		}
		if c.refCount > 1 {
			cp := makeCopy(s.pool, c)
			releaseSubtree(s.pool, c)
			c = cp
			children[i] = c
		}
		c.aliasSymbol = seq[i]
		c.aliasIsNamed = s.lang.isNamedSymbol(seq[i])
	}
	return children
}

// handleError runs when no action exists for (state, lookahead): the
// version enters (or continues) error recovery by wrapping the first
// character (one rune) of the lookahead token in an error leaf and pushing
// it in errorRecoveryState, charging the version's error cost along the
// way. A version whose own accumulated error cost exceeds maxCostDifference
// is halted; the cost is not compared against other live versions, and no
// potential reductions are explored before skipping.
func (s *parseSession) handleError(v StackVersion, tok Token, padding extent) bool {
	if tok.StartByte == tok.EndByte {
		// Nothing left to skip (EOF): stop trying to recover.
		s.stack.halt(v)
		s.parser.log(LogError, "unexpected eof")
		return true
	}

	r, size := utf8.DecodeRuneInString(tok.Text)
	if size == 0 {
		size = 1
	}
	skipStart := tok.StartByte
	skipEnd := skipStart + uint32(size)
	if skipEnd > tok.EndByte {
		skipEnd = tok.EndByte
	}

	cost := uint32(errorCostPerSkippedChar)
	if r == '\n' {
		cost = errorCostPerSkippedLine
	}
	errLeaf := makeErrorLeaf(s.pool, r, skipStart, skipEnd, tok.StartPoint, tok.StartPoint, padding)
	errLeaf.errorCost = cost

	s.stack.push(v, errorRecoveryState, errLeaf, true)
	s.stack.recordSummary(v, StackSummaryEntry{
		Position: s.stack.topPosition(v),
		Depth:    s.stack.pushCount(v),
		State:    errorRecoveryState,
	})
	s.parser.log(LogError, "skipped input")

	if s.stack.errorCost(v) > maxCostDifference {
		s.stack.halt(v)
	}
	return true
}

// recover closes out an error-recovery run: it pops every pending error
// leaf accumulated in errorRecoveryState back off the stack, wraps them in
// a synthetic ERROR node, and pushes that node in whatever state existed
// before recovery began.
func (s *parseSession) recover(v StackVersion) bool {
	result := s.stack.popError(v, errorRecoveryState)
	for _, slice := range result.Slices {
		if len(slice.Trees) == 0 {
			continue
		}
		node := makeErrorNode(s.pool, slice.Trees)
		target := s.stack.topState(slice.Version)
		s.stack.push(slice.Version, target, node, false)
	}
	s.parser.log(LogRecover, "")
	return true
}

// condenseStack merges versions that have reconverged on the same (state,
// external-token state) pair, then prunes the survivors down to
// maxVersionCount by dropping the versions with the worst accumulated
// error cost, per spec's condense_stack.
func (s *parseSession) condenseStack() {
	st := s.stack
	for i := 0; i < st.versionCount(); i++ {
		for j := i + 1; j < st.versionCount(); {
			if st.versions[i].halted != st.versions[j].halted {
				j++
				continue
			}
			if st.canMerge(StackVersion(i), StackVersion(j)) {
				st.forceMerge(StackVersion(i), StackVersion(j))
				s.parser.log(LogCondense, "")
				continue
			}
			j++
		}
	}

	for st.versionCount() > maxVersionCount {
		worst := s.worstVersion()
		st.removeVersion(worst)
	}
}

// worstVersion returns the live version with the highest error cost,
// preferring to keep halted (already-accepted) versions over still-running
// ones when costs tie, since an accepted parse is strictly more useful to
// keep around than one still exploring.
func (s *parseSession) worstVersion() StackVersion {
	st := s.stack
	worst := StackVersion(0)
	worstCost := st.errorCost(0)
	worstHalted := st.isHalted(0)
	for i := 1; i < st.versionCount(); i++ {
		v := StackVersion(i)
		cost := st.errorCost(v)
		halted := st.isHalted(v)
		if betterVersion(cost, halted, worstCost, worstHalted) {
			continue
		}
		worst, worstCost, worstHalted = v, cost, halted
	}
	return worst
}

// betterVersion reports whether (cost, halted) describes a more promising
// version than (otherCost, otherHalted): lower error cost wins; a tie
// favors the halted (accepted) version.
func betterVersion(cost uint32, halted bool, otherCost uint32, otherHalted bool) bool {
	if cost != otherCost {
		return cost < otherCost
	}
	return halted && !otherHalted
}

// selectBestVersion picks the accepted version whose resulting tree ranks
// best under compareSubtrees (lowest error cost, then highest dynamic
// precedence, then compareStructure's structural order), matching
// select_tree's tie-break rule:
// the incumbent is kept on equality (a <= b keeps a), so earlier versions
// win ties over later ones.
func (s *parseSession) selectBestVersion() *subtree {
	var best *subtree
	for i := range s.stack.versions {
		t := headTree(s.stack.versions[i].head)
		if t == nil {
			continue
		}
		if best == nil || compareSubtrees(t, best) < 0 {
			best = t
		}
	}
	return best
}

func headTree(head *stackNode) *subtree {
	var best *subtree
	for _, l := range head.links {
		if l.tree != nil && (best == nil || compareSubtrees(l.tree, best) < 0) {
			best = l.tree
		}
	}
	return best
}

// getLookahead is the lexer adapter's orchestration (component E), tried in
// the order get_lookahead specifies: (a) the reusable-node cursor, so an
// unchanged span skips re-lexing entirely; (b) the token cache, so two
// versions probing the same position in the same round don't re-lex either;
// (c) a caller-supplied TokenSource, an external scanner, or the internal
// DFA lex function, in that order, for a position nothing reusable covers.
func (s *parseSession) getLookahead(v StackVersion) (Token, extent) {
	pos := s.stack.topPosition(v)
	lastExternal := s.stack.lastExternalToken(v)
	state := s.stack.topState(v)

	// padFor is the whitespace the lexer skipped between the version's
	// position and the token's start.
	padFor := func(tok Token) extent {
		if tok.StartByte <= pos.bytes {
			return extent{}
		}
		return extent{bytes: tok.StartByte - pos.bytes, point: pointDelta(pos.point, tok.StartPoint)}
	}

	if reused, padding, ok := s.tryReuse(pos.bytes, state); ok {
		s.cache.store(pos.bytes, lastExternal, reused)
		return reused, padding
	}

	if cached, ok := s.cache.lookup(pos.bytes, lastExternal); ok {
		return cached, padFor(cached)
	}

	if s.tokenSource != nil {
		var tok Token
		if bs, ok := s.tokenSource.(ByteSkippableTokenSource); ok {
			tok = bs.SkipToByte(pos.bytes)
		} else {
			tok = s.tokenSource.Next()
		}
		return tok, padFor(tok)
	}

	var lexMode LexMode
	if int(state) < len(s.lang.LexModes) {
		lexMode = s.lang.LexModes[state]
	}

	if s.lang.ExternalScanner != nil {
		if valid := s.lang.enabledExternalTokens(state); valid != nil {
			el := newExternalLexer(s.source, int(pos.bytes), pos.point.Row, pos.point.Column)
			if RunExternalScanner(s.lang, nil, el, valid) {
				if tok, ok := el.token(); ok {
					return tok, padFor(tok)
				}
			}
		}
	}

	s.lexer.SeekTo(int(pos.bytes), pos.point.Row, pos.point.Column)
	tok := s.lexer.Next(lexMode.LexState)
	s.cache.store(pos.bytes, lastExternal, tok)
	return tok, padFor(tok)
}

// reusable decides whether n may be handed back to the driver unchanged
// instead of rebuilt from lookahead, matching get_lookahead's rejection
// rule: an edited node, an error node, a fragile node (built under
// ambiguity and so carrying no trustworthy parse_state, invariant 4), an
// interior node offered while the current dispatch point is itself locally
// ambiguous, a node the language table reports as unreusable in this
// (state, symbol) slot, or a leaf reached through a depends_on_lookahead
// entry (only an already-disambiguated interior node can survive that one)
// all get rejected.
func (s *parseSession) reusable(n *Node, state StateID, inAmbiguity bool) bool {
	if n == nil || !s.cursor.canReuse() || n.hasError {
		return false
	}
	if n.fragileLeft || n.fragileRight {
		return false
	}
	interior := len(n.children) > 0
	if interior && inAmbiguity {
		return false
	}
	entry := s.lang.lookupAction(state, n.symbol)
	if entry == nil || !entry.Reusable {
		return false
	}
	if entry.DependsOnLookahead && !interior {
		return false
	}
	return true
}

// tryReuseSubtree attempts whole-subtree reuse: when the reusable-node
// cursor is sitting on an interior node that starts exactly where v is
// about to look for its next token, and the current state's table entry
// for that node's symbol is a shift (the same GOTO shape a freshly reduced
// nonterminal would take), the old subtree is pushed directly and the
// lexer and the normal table-dispatch loop are skipped for everything
// beneath it.
func (s *parseSession) tryReuseSubtree(v StackVersion) bool {
	if s.cursor == nil {
		return false
	}
	pos := s.stack.topPosition(v)
	if !s.cursor.advance(pos.bytes) {
		return false
	}
	n := s.cursor.current()
	if n == nil || n.startByte != pos.bytes || len(n.children) == 0 {
		return false
	}
	state := s.stack.topState(v)
	entry := s.lang.lookupAction(state, n.symbol)
	if entry == nil || len(entry.Actions) == 0 || entry.Actions[0].Type != ParseActionShift {
		return false
	}
	if !s.reusable(n, state, len(entry.Actions) > 1) {
		return false
	}
	t := s.subtreeFromNode(n)
	s.cursor.pop()
	s.stack.push(v, entry.Actions[0].State, t, false)
	return true
}

// subtreeFromNode reconstructs a subtree from a reused Node so the driver
// can push it straight onto the parse stack. Node doesn't retain padding,
// precedence, or the error-cost/external-scanner bookkeeping a freshly
// parsed subtree carries, so this rebuilds span data from the node's own
// recorded byte offsets (the gap between each child and its previous
// sibling) rather than trusting makeNode's aggregation, which assumes
// children still carry their original padding.
func (s *parseSession) subtreeFromNode(n *Node) *subtree {
	t := s.pool.allocate()
	t.symbol = n.symbol
	t.named = n.isNamed
	t.visible = true
	t.isMissing = n.isMissing
	t.isError = n.hasError && len(n.children) == 0 && n.symbol == errorSymbol
	t.fragileLeft = n.fragileLeft
	t.fragileRight = n.fragileRight
	t.parseState = n.parseState
	t.size = extent{bytes: n.endByte - n.startByte, point: pointDelta(n.startPoint, n.endPoint)}

	if len(n.children) == 0 {
		t.firstLeafSymbol = n.symbol
		return t
	}

	children := make([]*subtree, len(n.children))
	prevEnd := n.startByte
	for i, cn := range n.children {
		c := s.subtreeFromNode(cn)
		c.padding = extent{bytes: cn.startByte - prevEnd}
		children[i] = c
		prevEnd = cn.endByte
		if c.visible {
			t.visibleChildCount++
		}
		if c.named {
			t.namedChildCount++
		}
		if c.hasChanges {
			t.hasChanges = true
		}
	}
	t.children = children
	t.childCount = uint32(len(children))
	t.firstLeafSymbol = children[0].firstLeafSymbol
	return t
}

// tryReuse asks the reusable-node cursor whether the previous tree still
// has an unchanged node starting exactly at byteIndex, breaking down past
// anything reusable() rejects until it bottoms out at a reusable leaf or
// nothing usable remains. tryReuseSubtree already had the first chance at
// handing back a whole interior node, so by the time control reaches here
// the cursor either has nothing reusable left at this position or is
// sitting somewhere tryReuseSubtree's state/GOTO check turned away; this
// always breaks interior nodes down to leaf level rather than retrying
// whole-subtree reuse.
func (s *parseSession) tryReuse(byteIndex uint32, state StateID) (Token, extent, bool) {
	if s.cursor == nil {
		return Token{}, extent{}, false
	}
	for {
		if !s.cursor.advance(byteIndex) {
			return Token{}, extent{}, false
		}
		n := s.cursor.current()
		if n.startByte != byteIndex {
			return Token{}, extent{}, false
		}
		entry := s.lang.lookupAction(state, n.symbol)
		inAmbiguity := entry != nil && len(entry.Actions) > 1
		if !s.reusable(n, state, inAmbiguity) {
			if len(n.children) > 0 && s.cursor.breakdown() {
				continue
			}
			return Token{}, extent{}, false
		}
		if len(n.children) > 0 {
			if !s.cursor.breakdown() {
				return Token{}, extent{}, false
			}
			continue
		}
		s.cursor.popLeaf()
		return Token{
			Symbol:     n.symbol,
			Text:       string(s.source[n.startByte:n.endByte]),
			StartByte:  n.startByte,
			EndByte:    n.endByte,
			StartPoint: n.startPoint,
			EndPoint:   n.endPoint,
		}, extent{}, true
	}
}

func (l *Language) symbolName(sym Symbol) string {
	if int(sym) < len(l.SymbolNames) {
		return l.SymbolNames[sym]
	}
	return ""
}

// finalizeSubtree converts an accepted *subtree into the public *Node tree,
// populating parent pointers and cumulative byte/point offsets in a single
// bottom-up pass after the version that produced it has already won —
// never while more than one version could still claim the same subtree,
// since parent is a single-owner field.
func finalizeSubtree(root *subtree) *Node {
	if root == nil {
		return nil
	}
	n, _ := buildNode(root, extent{})
	return n
}

func buildNode(t *subtree, offset extent) (*Node, extent) {
	start := addExtent(offset, t.padding)
	sym, named := t.symbol, t.named
	if t.aliasSymbol != 0 {
		sym, named = t.aliasSymbol, t.aliasIsNamed
	}
	n := &Node{
		symbol:       sym,
		isNamed:      named,
		isMissing:    t.isMissing,
		hasError:     t.isError,
		hasChanges:   t.hasChanges,
		productionID: t.aliasSequenceID,
		fragileLeft:  t.fragileLeft,
		fragileRight: t.fragileRight,
		parseState:   t.parseState,
		startByte:    start.bytes,
		startPoint:   start.point,
	}

	if len(t.children) == 0 {
		end := addExtent(start, t.size)
		n.endByte = end.bytes
		n.endPoint = end.point
		return n, end
	}

	// t.padding is the first child's padding, which that child's own
	// buildNode call adds; starting from start would count it twice.
	cur := offset
	for _, c := range t.children {
		cn, next := buildNode(c, cur)
		cn.parent = n
		if cn.hasError {
			n.hasError = true
		}
		if cn.hasChanges {
			n.hasChanges = true
		}
		n.children = append(n.children, cn)
		cur = next
	}
	last := n.children[len(n.children)-1]
	n.endByte = last.endByte
	n.endPoint = last.endPoint
	return n, extent{bytes: n.endByte, point: n.endPoint}
}
