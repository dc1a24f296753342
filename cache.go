package gotreesitter

// tokenCache memoizes the single most recently produced token at a given
// byte position so that speculative GLR re-lexing (the same position
// probed by more than one stack version in the same driver tick) doesn't
// rerun the lexer adapter. It holds exactly one slot: the next token stored
// at a different position simply overwrites it, matching tree-sitter's own
// token cache, which trades a higher hit rate for a fixed, trivial
// footprint.
type tokenCache struct {
	valid             bool
	byteIndex         uint32
	lastExternalToken []byte
	produced          Token
}

// lookup returns the cached token if it was produced at byteIndex with the
// same external-token state the caller currently has, and false otherwise.
// A state mismatch is treated as a miss because an external scanner's
// output can depend on accumulated state, not just position.
func (c *tokenCache) lookup(byteIndex uint32, lastExternalToken []byte) (Token, bool) {
	if !c.valid || c.byteIndex != byteIndex {
		return Token{}, false
	}
	if !externalTokenStateEq(c.lastExternalToken, lastExternalToken) {
		return Token{}, false
	}
	return c.produced, true
}

// store records the result of lexing at byteIndex, replacing whatever was
// cached before.
func (c *tokenCache) store(byteIndex uint32, lastExternalToken []byte, produced Token) {
	c.valid = true
	c.byteIndex = byteIndex
	c.lastExternalToken = lastExternalToken
	c.produced = produced
}

func (c *tokenCache) clear() {
	*c = tokenCache{}
}
