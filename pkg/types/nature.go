// Package types implements the IEC data-type descriptor model: a tagged
// Type variant per declaration form, the Nature classification hierarchy
// used for generic constraints, widening ("bigger type") rules, and size
// computation. Grounded on the teacher's ast.Type interface
// (SubtypeOf/LeastUpperBound/Width/String), generalized from a single
// numeric-interval type to the full IEC form set (SPEC_FULL.md §4.H).
package types

// Nature classifies a type for the purposes of generic constraints
// (ANY_INT, ANY_NUM, ANY_STRING, ...). The hierarchy is a partial order;
// HasNature climbs it looking for a match.
type Nature int

// The nature classifications, forming the partial order documented in
// SPEC_FULL.md §4.H.
const (
	NatureAny Nature = iota
	NatureElementary
	NatureVLA
	NatureMagnitude
	NatureBit
	NatureChars
	NatureDate
	NatureNum
	NatureDuration
	NatureInt
	NatureReal
	NatureSigned
	NatureUnsigned
	NatureChar
	NatureString
)

// parents maps each nature to its immediate supertype(s) in the hierarchy.
var parents = map[Nature][]Nature{
	NatureElementary: {NatureAny},
	NatureVLA:        {NatureAny},
	NatureMagnitude:  {NatureElementary},
	NatureBit:        {NatureElementary},
	NatureChars:      {NatureElementary},
	NatureDate:       {NatureElementary},
	NatureNum:        {NatureMagnitude},
	NatureDuration:   {NatureMagnitude},
	NatureInt:        {NatureNum},
	NatureReal:       {NatureNum},
	NatureSigned:     {NatureInt},
	NatureUnsigned:   {NatureInt},
	NatureChar:       {NatureChars},
	NatureString:     {NatureChars},
}

// HasNature reports whether nature n satisfies the constraint "is a
// (transitive) subtype of want", climbing the partial order defined above.
func HasNature(n, want Nature) bool {
	if n == want {
		return true
	}

	for _, p := range parents[n] {
		if HasNature(p, want) {
			return true
		}
	}

	return false
}

// String renders a nature's canonical ANY_-prefixed spelling.
func (n Nature) String() string {
	switch n {
	case NatureAny:
		return "ANY"
	case NatureElementary:
		return "ANY_ELEMENTARY"
	case NatureVLA:
		return "__ANY_VLA"
	case NatureMagnitude:
		return "ANY_MAGNITUDE"
	case NatureBit:
		return "ANY_BIT"
	case NatureChars:
		return "ANY_CHARS"
	case NatureDate:
		return "ANY_DATE"
	case NatureNum:
		return "ANY_NUM"
	case NatureDuration:
		return "ANY_DURATION"
	case NatureInt:
		return "ANY_INT"
	case NatureReal:
		return "ANY_REAL"
	case NatureSigned:
		return "ANY_SIGNED"
	case NatureUnsigned:
		return "ANY_UNSIGNED"
	case NatureChar:
		return "ANY_CHAR"
	case NatureString:
		return "ANY_STRING"
	default:
		return "ANY"
	}
}
