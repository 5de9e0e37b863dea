package types

import "fmt"

// Type is the common interface every type descriptor form implements.
type Type interface {
	// String renders the type's canonical name.
	String() string
	// Nature returns the classification used for generic-constraint
	// checking.
	Nature() Nature
	// Width returns the size of this type in bits. Types whose size
	// depends on runtime/const data the evaluator has not yet resolved
	// return -1.
	Width() int
	// SubtypeOf reports whether a value of this type may be used where a
	// value of other is expected without an explicit cast.
	SubtypeOf(other Type) bool
}

// LeastUpperBound returns the most specific type that both a and b are
// subtypes of, falling back to AnyType when the two share no useful
// common ancestor.
func LeastUpperBound(a, b Type) Type {
	if a.SubtypeOf(b) {
		return b
	}

	if b.SubtypeOf(a) {
		return a
	}

	return AnyType{}
}

// AnyType is the top of the type lattice; used as a placeholder result
// when inference cannot determine anything more specific (e.g. after an
// unresolved-reference diagnostic).
type AnyType struct{}

func (AnyType) String() string            { return "ANY" }
func (AnyType) Nature() Nature            { return NatureAny }
func (AnyType) Width() int                { return -1 }
func (AnyType) SubtypeOf(other Type) bool { _, ok := other.(AnyType); return ok }

// VoidType is the absence of a value, the result type of a statement-only
// call or a debug-stripped expression.
type VoidType struct{}

func (VoidType) String() string            { return "VOID" }
func (VoidType) Nature() Nature            { return NatureAny }
func (VoidType) Width() int                { return 0 }
func (VoidType) SubtypeOf(other Type) bool { _, ok := other.(VoidType); return ok }

// IntegerType is a signed or unsigned integer of a fixed bit width.
type IntegerType struct {
	Signed bool
	Bits   int
}

func (t IntegerType) String() string {
	names := map[[2]int]string{
		{1, 8}: "SINT", {0, 8}: "USINT",
		{1, 16}: "INT", {0, 16}: "UINT",
		{1, 32}: "DINT", {0, 32}: "UDINT",
		{1, 64}: "LINT", {0, 64}: "ULINT",
	}

	s := 0
	if t.Signed {
		s = 1
	}

	if n, ok := names[[2]int{s, t.Bits}]; ok {
		return n
	}

	return fmt.Sprintf("INT%d", t.Bits)
}

func (t IntegerType) Nature() Nature {
	if t.Signed {
		return NatureSigned
	}

	return NatureUnsigned
}

func (t IntegerType) Width() int { return t.Bits }

func (t IntegerType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case IntegerType:
		return t.Signed == o.Signed && t.Bits <= o.Bits
	case AnyType:
		return true
	default:
		return false
	}
}

// FloatType is a floating-point type (REAL/LREAL).
type FloatType struct{ Bits int }

func (t FloatType) String() string {
	if t.Bits == 32 {
		return "REAL"
	}

	return "LREAL"
}
func (t FloatType) Nature() Nature { return NatureReal }
func (t FloatType) Width() int     { return t.Bits }
func (t FloatType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case FloatType:
		return t.Bits <= o.Bits
	case AnyType:
		return true
	default:
		return false
	}
}

// BoolType is BOOL.
type BoolType struct{}

func (BoolType) String() string { return "BOOL" }
func (BoolType) Nature() Nature { return NatureBit }
func (BoolType) Width() int     { return 1 }
func (BoolType) SubtypeOf(other Type) bool {
	switch other.(type) {
	case BoolType, AnyType:
		return true
	default:
		return false
	}
}

// BitStringType is BYTE/WORD/DWORD/LWORD: unsigned bit patterns without
// arithmetic nature.
type BitStringType struct{ Bits int }

func (t BitStringType) String() string {
	switch t.Bits {
	case 8:
		return "BYTE"
	case 16:
		return "WORD"
	case 32:
		return "DWORD"
	default:
		return "LWORD"
	}
}
func (t BitStringType) Nature() Nature { return NatureBit }
func (t BitStringType) Width() int     { return t.Bits }
func (t BitStringType) SubtypeOf(other Type) bool {
	if o, ok := other.(BitStringType); ok {
		return t.Bits <= o.Bits
	}

	_, ok := other.(AnyType)

	return ok
}

// CharType is CHAR or WCHAR.
type CharType struct{ Wide bool }

func (t CharType) String() string {
	if t.Wide {
		return "WCHAR"
	}

	return "CHAR"
}
func (t CharType) Nature() Nature { return NatureChar }
func (t CharType) Width() int {
	if t.Wide {
		return 16
	}

	return 8
}
func (t CharType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case CharType:
		return t.Wide == o.Wide
	case AnyType:
		return true
	default:
		return false
	}
}

// StringType is STRING[n] or WSTRING[n]. Size is a literal when known at
// parse time, or -1 when it depends on a const-expression not yet folded.
type StringType struct {
	Wide bool
	Size int
}

func (t StringType) String() string {
	base := "STRING"
	if t.Wide {
		base = "WSTRING"
	}

	if t.Size > 0 {
		return fmt.Sprintf("%s[%d]", base, t.Size)
	}

	return base
}
func (t StringType) Nature() Nature { return NatureString }
func (t StringType) Width() int {
	if t.Size < 0 {
		return -1
	}

	bytesPerChar := 1
	if t.Wide {
		bytesPerChar = 2
	}

	return (t.Size + 1) * bytesPerChar * 8
}
func (t StringType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case StringType:
		return t.Wide == o.Wide && (o.Size <= 0 || t.Size <= o.Size)
	case AnyType:
		return true
	default:
		return false
	}
}

// DurationKind distinguishes the eight date/time/duration elementary
// forms.
type DurationKind int

// The date/time/duration forms.
const (
	KindTime DurationKind = iota
	KindLTime
	KindDate
	KindLDate
	KindTimeOfDay
	KindLTimeOfDay
	KindDateAndTime
	KindLDateAndTime
)

// DateTimeType covers TIME/LTIME/DATE/LDATE/TIME_OF_DAY/LTOD/DATE_AND_TIME/LDT.
type DateTimeType struct{ Kind DurationKind }

var dateTimeNames = map[DurationKind]string{
	KindTime: "TIME", KindLTime: "LTIME", KindDate: "DATE", KindLDate: "LDATE",
	KindTimeOfDay: "TIME_OF_DAY", KindLTimeOfDay: "LTOD",
	KindDateAndTime: "DATE_AND_TIME", KindLDateAndTime: "LDT",
}

func (t DateTimeType) String() string { return dateTimeNames[t.Kind] }
func (t DateTimeType) Nature() Nature {
	if t.Kind == KindTime || t.Kind == KindLTime {
		return NatureDuration
	}

	return NatureDate
}
func (t DateTimeType) Width() int { return 64 }
func (t DateTimeType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case DateTimeType:
		return t.Kind == o.Kind
	case AnyType:
		return true
	default:
		return false
	}
}

// NamedType refers to a user-defined type (struct, enum, alias, subrange,
// POU-generated vtable, generic placeholder) by name; its structural
// details live in the index, not in the descriptor itself, so cyclic type
// graphs never require cyclic ownership here (SPEC_FULL.md §9).
type NamedType struct {
	Name string
	N    Nature
}

func (t NamedType) String() string { return t.Name }
func (t NamedType) Nature() Nature { return t.N }
func (t NamedType) Width() int     { return -1 }
func (t NamedType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case NamedType:
		return t.Name == o.Name
	case AnyType:
		return true
	default:
		return false
	}
}

// Dimension is one `lo..hi` bound of an ArrayType, or the `*` wildcard of
// a variable-length array (Wildcard true, Low/High meaningless).
type Dimension struct {
	Low, High int
	Wildcard  bool
}

// ArrayType is ARRAY[d1,d2,...] OF Element.
type ArrayType struct {
	Element Type
	Dims    []Dimension
}

func (t ArrayType) String() string {
	s := "ARRAY["
	for i, d := range t.Dims {
		if i > 0 {
			s += ","
		}

		if d.Wildcard {
			s += "*"
		} else {
			s += fmt.Sprintf("%d..%d", d.Low, d.High)
		}
	}

	return s + "] OF " + t.Element.String()
}
func (t ArrayType) Nature() Nature { return NatureElementary }
func (t ArrayType) Width() int {
	total := t.Element.Width()
	if total < 0 {
		return -1
	}

	for _, d := range t.Dims {
		if d.Wildcard {
			return -1
		}

		total *= d.High - d.Low + 1
	}

	return total
}
func (t ArrayType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case ArrayType:
		return len(t.Dims) == len(o.Dims) && t.Element.SubtypeOf(o.Element)
	case AnyType:
		return true
	default:
		return false
	}
}

// IsVariableLength reports whether any dimension is the `*` wildcard form.
func (t ArrayType) IsVariableLength() bool {
	for _, d := range t.Dims {
		if d.Wildcard {
			return true
		}
	}

	return false
}

// AutoDerefMode classifies how a PointerType is implicitly dereferenced at
// use sites.
type AutoDerefMode int

// The auto-deref modes a pointer type can carry.
const (
	DerefNone AutoDerefMode = iota
	DerefDefault                // VAR_IN_OUT / {ref} input
	DerefAlias                  // POU-level alias
	DerefReferenceTo             // REFERENCE TO
)

// PointerType is POINTER TO T / REF_TO T / REFERENCE TO T. Note that an
// auto-dereferenced pointer is a distinct descriptor from a raw pointer to
// the same inner type, per SPEC_FULL.md §3 invariant 5.
type PointerType struct {
	Inner      string // by name; resolved through the index
	AutoDeref  AutoDerefMode
	TypeSafe   bool // false for POINTER TO, true for REF_TO/REFERENCE TO
	IsFunction bool
}

func (t PointerType) String() string {
	switch {
	case t.AutoDeref == DerefReferenceTo:
		return "REFERENCE TO " + t.Inner
	case t.TypeSafe:
		return "REF_TO " + t.Inner
	default:
		return "POINTER TO " + t.Inner
	}
}
func (t PointerType) Nature() Nature { return NatureAny }
func (t PointerType) Width() int     { return 64 }
func (t PointerType) SubtypeOf(other Type) bool {
	switch o := other.(type) {
	case PointerType:
		return t.Inner == o.Inner && t.AutoDeref == o.AutoDeref
	case AnyType:
		return true
	default:
		return false
	}
}

// SubrangeType is INT(lo..hi): a base integer type narrowed to a closed
// range.
type SubrangeType struct {
	Base     IntegerType
	Low, High int64
}

func (t SubrangeType) String() string {
	return fmt.Sprintf("%s(%d..%d)", t.Base.String(), t.Low, t.High)
}
func (t SubrangeType) Nature() Nature { return t.Base.Nature() }
func (t SubrangeType) Width() int     { return t.Base.Width() }
func (t SubrangeType) SubtypeOf(other Type) bool {
	if o, ok := other.(SubrangeType); ok {
		return t.Low >= o.Low && t.High <= o.High
	}

	return t.Base.SubtypeOf(other)
}

// GenericType is a `<T: NATURE>` type parameter placeholder, resolved to a
// concrete type only after monomorphization.
type GenericType struct {
	Symbol string
	Want   Nature
}

func (t GenericType) String() string            { return t.Symbol }
func (t GenericType) Nature() Nature             { return t.Want }
func (t GenericType) Width() int                 { return -1 }
func (t GenericType) SubtypeOf(other Type) bool  { _, ok := other.(GenericType); return ok }

// VariadicType is `{sized}? T...`.
type VariadicType struct {
	Inner Type // nil when fully untyped
	Sized bool
}

func (t VariadicType) String() string {
	if t.Inner == nil {
		return "..."
	}

	return t.Inner.String() + "..."
}
func (t VariadicType) Nature() Nature { return NatureAny }
func (t VariadicType) Width() int     { return -1 }
func (t VariadicType) SubtypeOf(other Type) bool {
	_, ok := other.(AnyType)
	return ok
}
