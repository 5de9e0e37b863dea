package types

// GetBiggerType resolves the dominant type of a binary operation between
// a and b, following the five-rule cascade in SPEC_FULL.md §4.H.
func GetBiggerType(a, b Type) Type {
	ai, aIsInt := a.(IntegerType)
	bi, bIsInt := b.(IntegerType)

	if aIsInt && bIsInt {
		return biggerInt(ai, bi)
	}

	af, aIsFloat := a.(FloatType)
	bf, bIsFloat := b.(FloatType)

	if aIsFloat && bIsFloat {
		if af.Bits >= bf.Bits {
			return af
		}

		return bf
	}

	// Rule 2: exactly one real, one integer.
	if aIsFloat && bIsInt {
		return biggerFloatInt(af, bi)
	}

	if bIsFloat && aIsInt {
		return biggerFloatInt(bf, ai)
	}

	// Rule 3: exactly one string-like.
	_, aIsStr := a.(StringType)
	_, bIsStr := b.(StringType)

	if aIsStr && !bIsStr {
		return a
	}

	if bIsStr && !aIsStr {
		return b
	}

	// Rule 4: both arrays.
	_, aIsArr := a.(ArrayType)
	_, bIsArr := b.(ArrayType)

	if aIsArr && bIsArr {
		return a
	}

	// Rule 5: mixed-incompatible falls back to the first operand.
	return a
}

// biggerInt implements rule 1: wider wins; equal width, signed dominates
// unsigned.
func biggerInt(a, b IntegerType) Type {
	if a.Bits != b.Bits {
		if a.Bits > b.Bits {
			return a
		}

		return b
	}

	if a.Signed || b.Signed {
		return IntegerType{Signed: true, Bits: a.Bits}
	}

	return a
}

// biggerFloatInt implements rule 2: the real wins unless the integer is
// wider than the real's representable integer range, in which case the
// real promotes to the next width.
func biggerFloatInt(f FloatType, i IntegerType) Type {
	// REAL (32-bit, ~24 bit mantissa) cannot exactly represent every value
	// a DINT/UDINT can hold; treat 32+ bit integers against a 32-bit float
	// as requiring promotion to LREAL, mirroring the documented
	// `LINT op REAL -> LREAL` example.
	if f.Bits == 32 && i.Bits >= 32 {
		return FloatType{Bits: 64}
	}

	return f
}

// GetSignedType returns the signed sibling of an unsigned/bit type of the
// same width.
func GetSignedType(t Type) Type {
	switch v := t.(type) {
	case IntegerType:
		return IntegerType{Signed: true, Bits: v.Bits}
	case BitStringType:
		return IntegerType{Signed: true, Bits: v.Bits}
	default:
		return t
	}
}
