// Package gotreesitter implements a pure Go tree-sitter runtime.
//
// This file defines the core data structures that mirror tree-sitter's
// TSLanguage C struct and related types. They form the foundation on
// which the lexer, parser, query engine, and syntax tree are built.
package gotreesitter

import "github.com/pkg/errors"

// Symbol is a grammar symbol ID (terminal or nonterminal).
type Symbol uint16

// StateID is a parser state index.
type StateID uint16

// FieldID is a named field index.
type FieldID uint16

// ParseActionType identifies the kind of parse action.
type ParseActionType uint8

const (
	ParseActionShift  ParseActionType = iota
	ParseActionReduce
	ParseActionAccept
	ParseActionRecover
)

// ParseAction is a single parser action from the parse table.
type ParseAction struct {
	Type              ParseActionType
	State             StateID  // target state (shift/recover)
	Symbol            Symbol   // reduced symbol (reduce)
	ChildCount        uint8    // children consumed (reduce)
	DynamicPrecedence int16    // precedence (reduce)
	ProductionID      uint16   // which production (reduce)
	Extra             bool     // is this an extra token (shift)
	Repetition        bool     // is this a repetition (shift)
}

// ParseActionEntry is a group of actions for a (state, symbol) pair.
type ParseActionEntry struct {
	// Reusable reports whether an existing subtree already sitting in this
	// (state, symbol) slot may be handed back to the parser unchanged
	// instead of re-derived from lookahead.
	Reusable bool
	// DependsOnLookahead marks an entry whose action set was resolved using
	// lookahead beyond the one token being dispatched on (e.g. a
	// conflict the table broke by inspecting what follows). A reused node
	// sitting in such a slot can only be trusted if it's itself an
	// interior, error-free subtree: it was already disambiguated the first
	// time it was parsed, rather than relying on lookahead resolved fresh
	// at this call.
	DependsOnLookahead bool
	Actions            []ParseAction
}

// LexState is one state in the table-driven lexer DFA.
type LexState struct {
	AcceptToken Symbol // 0 if this state doesn't accept
	Skip        bool   // true if accepted chars are whitespace
	Transitions []LexTransition
	Default     int // default next state (-1 if none)
	EOF         int // state on EOF (-1 if none)
}

// LexTransition maps a character range to a next state.
type LexTransition struct {
	Lo, Hi    rune // inclusive character range
	NextState int
}

// LexMode maps a parser state to its lexer configuration.
type LexMode struct {
	LexState         uint16
	ExternalLexState uint16
}

// SymbolMetadata holds display information about a symbol.
type SymbolMetadata struct {
	Name      string
	Visible   bool
	Named     bool
	Supertype bool
}

// FieldMapEntry maps a child index to a field name.
type FieldMapEntry struct {
	FieldID    FieldID
	ChildIndex uint8
	Inherited  bool
}

// ExternalScanner is the interface for language-specific external scanners.
// Languages like Python and JavaScript need these for indent tracking,
// template literals, regex vs division, etc.
//
// The Scan method takes the lexer parameter as an interface{};
// RunExternalScanner passes an *ExternalLexer.
type ExternalScanner interface {
	Create() interface{}
	Destroy(payload interface{})
	Serialize(payload interface{}, buf []byte) int
	Deserialize(payload interface{}, buf []byte)
	Scan(payload interface{}, lexer interface{}, validSymbols []bool) bool
}

// Language holds all data needed to parse a specific language.
// It mirrors tree-sitter's TSLanguage C struct, translated into
// idiomatic Go types with slice-based tables instead of raw pointers.
type Language struct {
	Name string

	// Counts
	SymbolCount        uint32
	TokenCount         uint32
	ExternalTokenCount uint32
	StateCount         uint32
	LargeStateCount    uint32
	FieldCount         uint32
	ProductionIDCount  uint32

	// Symbol metadata
	SymbolNames    []string
	SymbolMetadata []SymbolMetadata
	FieldNames     []string // index 0 is ""

	// Parse tables
	ParseTable         [][]uint16         // dense: [state][symbol] -> action index
	SmallParseTable    []uint16           // compressed sparse table
	SmallParseTableMap []uint32           // state -> offset into SmallParseTable
	ParseActions       []ParseActionEntry

	// Lex tables
	LexModes            []LexMode
	LexStates           []LexState // main lexer DFA
	KeywordLexStates    []LexState // keyword lexer DFA (optional)
	KeywordCaptureToken Symbol

	// Field mapping
	FieldMapSlices  [][2]uint16   // [production_id] -> (index, length)
	FieldMapEntries []FieldMapEntry

	// Alias sequences
	AliasSequences [][]Symbol // [production_id][child_index] -> alias symbol

	// Primary state IDs (for table dedup)
	PrimaryStateIDs []StateID

	// External scanner (nil if not needed)
	ExternalScanner ExternalScanner

	// InitialState is the parser's start state. In tree-sitter grammars
	// this is always 1 (state 0 is reserved for error recovery). For
	// hand-built grammars it defaults to 0.
	InitialState StateID

	// ExternalTokenNames names each external token, parallel to
	// ExternalTokenCount, so TokenSymbolsByName can resolve them the same
	// way SymbolByName resolves grammar symbols.
	ExternalTokenNames []string

	// ExternalTokenEnabledStates[lexState] is a bitset (by external token
	// index) of which external tokens the scanner should be asked about
	// while in that external lex state. Indexed by LexMode.ExternalLexState.
	ExternalTokenEnabledStates [][]bool

	// LanguageVersion is the ABI version this table was generated against,
	// checked by CompatibleWithRuntime.
	LanguageVersion uint32

	symbolsByName map[string]Symbol
	fieldsByName  map[string]FieldID
}

// minCompatibleLanguageVersion and languageVersion bound the ABI range this
// runtime accepts, mirroring tree-sitter's own TREE_SITTER_LANGUAGE_VERSION
// / MIN_COMPATIBLE_LANGUAGE_VERSION pair.
const (
	languageVersion            = 14
	minCompatibleLanguageVersion = 13
)

// Version reports the ABI version the language table was generated against.
func (l *Language) Version() uint32 {
	if l.LanguageVersion == 0 {
		return languageVersion
	}
	return l.LanguageVersion
}

// CompatibleWithRuntime reports whether this runtime can parse with l,
// i.e. whether l.Version() falls within [minCompatibleLanguageVersion,
// languageVersion].
func (l *Language) CompatibleWithRuntime() bool {
	v := l.Version()
	return v >= minCompatibleLanguageVersion && v <= languageVersion
}

func (l *Language) ensureNameIndex() {
	if l.symbolsByName == nil {
		l.symbolsByName = make(map[string]Symbol, len(l.SymbolNames))
		for i, name := range l.SymbolNames {
			if _, exists := l.symbolsByName[name]; exists {
				continue // first occurrence wins
			}
			l.symbolsByName[name] = Symbol(i)
		}
	}
	if l.fieldsByName == nil {
		l.fieldsByName = make(map[string]FieldID, len(l.FieldNames))
		for i, name := range l.FieldNames {
			if name == "" {
				continue
			}
			if _, exists := l.fieldsByName[name]; exists {
				continue
			}
			l.fieldsByName[name] = FieldID(i)
		}
	}
}

// SymbolByName resolves a node type name (as it appears in a grammar or a
// query) to its Symbol ID. Named and anonymous symbols share the same
// namespace, as in tree-sitter's ts_language_symbol_for_name.
func (l *Language) SymbolByName(name string) (Symbol, bool) {
	l.ensureNameIndex()
	sym, ok := l.symbolsByName[name]
	return sym, ok
}

// TokenSymbolsByName returns every terminal symbol (index < TokenCount)
// named name. Unlike SymbolByName, which returns the first match across
// the whole symbol table, this is scoped to terminals and returns every
// duplicate: a grammar can legitimately lex the same literal into more
// than one token ID depending on context (e.g. a keyword that also
// appears in the ordinary identifier token), and a caller matching by name
// against an external scanner or a hand-written TokenSource needs all of
// them, not just one.
func (l *Language) TokenSymbolsByName(name string) []Symbol {
	var result []Symbol
	for i, n := range l.SymbolNames {
		if uint32(i) >= l.TokenCount {
			break
		}
		if n == name {
			result = append(result, Symbol(i))
		}
	}
	return result
}

// FieldByName resolves a field name to its FieldID.
func (l *Language) FieldByName(name string) (FieldID, bool) {
	l.ensureNameIndex()
	fid, ok := l.fieldsByName[name]
	return fid, ok
}

// isNamedSymbol reports whether sym is a named grammar symbol (as opposed
// to anonymous literal syntax like punctuation).
func (l *Language) isNamedSymbol(sym Symbol) bool {
	if int(sym) < len(l.SymbolMetadata) {
		return l.SymbolMetadata[sym].Named
	}
	return false
}

// lookupAction looks up the parse action table entry for (state, sym) in
// the dense ParseTable, returning nil when state or sym fall outside it.
// SmallParseTable/SmallParseTableMap are not consulted: a state stored only
// in the compressed table yields nil.
func (l *Language) lookupAction(state StateID, sym Symbol) *ParseActionEntry {
	if int(state) < len(l.ParseTable) {
		row := l.ParseTable[state]
		if int(sym) < len(row) {
			idx := row[sym]
			if int(idx) < len(l.ParseActions) {
				return &l.ParseActions[idx]
			}
		}
	}
	return nil
}

// enabledExternalTokens returns which external tokens the scanner should
// be asked about while the parser is in state's external lex mode, or nil
// if the language has no external scanner or no table entry for that mode.
func (l *Language) enabledExternalTokens(state StateID) []bool {
	if l.ExternalScanner == nil || int(state) >= len(l.LexModes) {
		return nil
	}
	idx := int(l.LexModes[state].ExternalLexState)
	if idx >= len(l.ExternalTokenEnabledStates) {
		return nil
	}
	return l.ExternalTokenEnabledStates[idx]
}

// ValidateLanguage checks a few invariants before a Parser is built from
// lang: it rejects a nil language, an incompatible ABI version, fewer
// SymbolNames than SymbolCount, and a language with no parse table at all.
// It does not check parse or lex table dimensions against the declared
// state/symbol counts.
// This is the one place the core treats external input (a generated table)
// as untrusted.
func ValidateLanguage(lang *Language) error {
	if lang == nil {
		return errors.New("gotreesitter: nil language")
	}
	if !lang.CompatibleWithRuntime() {
		return errors.Errorf("gotreesitter: language %q version %d incompatible with runtime version %d (min %d)",
			lang.Name, lang.Version(), languageVersion, minCompatibleLanguageVersion)
	}
	if len(lang.SymbolNames) < int(lang.SymbolCount) {
		return errors.Errorf("gotreesitter: language %q has %d symbol names for %d symbols",
			lang.Name, len(lang.SymbolNames), lang.SymbolCount)
	}
	if len(lang.ParseTable) == 0 && len(lang.SmallParseTable) == 0 {
		return errors.Errorf("gotreesitter: language %q has no parse table", lang.Name)
	}
	return nil
}
