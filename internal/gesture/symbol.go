// Package gesture turns hand landmarks into discrete gesture symbols and the
// events the combo pipeline consumes.
package gesture

import "slices"

// Symbol is one discrete classified hand pose.
type Symbol string

const (
	OpenHand   Symbol = "open_hand"
	ClosedFist Symbol = "closed_fist"
	Pinch      Symbol = "pinch"
	Point      Symbol = "point"
	Victory    Symbol = "victory"
	ThumbsUp   Symbol = "thumbs_up"
	RockOn     Symbol = "rock_on"
	OKSign     Symbol = "ok_sign"
	// NoHand is the absence-of-hand sentinel. It is a valid symbol and breaks
	// sequences like any other.
	NoHand Symbol = "no_hand"
)

var allSymbols = []Symbol{
	OpenHand,
	ClosedFist,
	Pinch,
	Point,
	Victory,
	ThumbsUp,
	RockOn,
	OKSign,
	NoHand,
}

// AllSymbols returns every symbol in declaration order.
func AllSymbols() []Symbol {
	return slices.Clone(allSymbols)
}

// ParseSymbol converts a wire name into a Symbol.
func ParseSymbol(s string) (Symbol, bool) {
	sym := Symbol(s)
	if !sym.Valid() {
		return "", false
	}
	return sym, true
}

// Valid reports whether s is a member of the enumeration.
func (s Symbol) Valid() bool {
	return slices.Contains(allSymbols, s)
}

func (s Symbol) String() string {
	return string(s)
}
