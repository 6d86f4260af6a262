package search

// Navigator steps through matches with wrap-around in both directions.
type Navigator struct {
	matches []Match
	cur     int
}

// NewNavigator starts at the first match, or nowhere when there are none.
func NewNavigator(matches []Match) *Navigator {
	n := &Navigator{matches: matches, cur: -1}
	if len(matches) > 0 {
		n.cur = 0
	}
	return n
}

// Len is the number of matches.
func (n *Navigator) Len() int { return len(n.matches) }

// Index is the 0-based position of the current match, -1 when empty.
func (n *Navigator) Index() int { return n.cur }

// Current returns the current match.
func (n *Navigator) Current() (Match, bool) {
	if n.cur < 0 {
		return Match{}, false
	}
	return n.matches[n.cur], true
}

// Next advances, wrapping from the last match to the first.
func (n *Navigator) Next() (Match, bool) {
	if len(n.matches) == 0 {
		return Match{}, false
	}
	n.cur = (n.cur + 1) % len(n.matches)
	return n.matches[n.cur], true
}

// Prev steps back, wrapping from the first match to the last.
func (n *Navigator) Prev() (Match, bool) {
	if len(n.matches) == 0 {
		return Match{}, false
	}
	n.cur = (n.cur - 1 + len(n.matches)) % len(n.matches)
	return n.matches[n.cur], true
}

// Reset clears the matches.
func (n *Navigator) Reset() {
	n.matches = nil
	n.cur = -1
}
