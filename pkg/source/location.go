// Package source models addressable regions of program source: either a
// textual range within a loaded file, a block identifier within a graphical
// diagram document, a combination of several locations, or no location at
// all (for compiler-synthesized code).
package source

import (
	"fmt"
	"sort"

	"go.lsp.dev/uri"

	"github.com/gostc/stc/pkg/util"
)

// Range is a textual span within a file, expressed both as a rune offset
// range and as resolved line/column endpoints.
type Range struct {
	StartOffset, EndOffset int
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// Block identifies a node within a graphical (CFC/FBD) document tree. An
// inner textual Range is attached when the block also carries an embedded
// text expression (e.g. a condition on a jump node).
type Block struct {
	LocalID        string
	ExecutionOrder int
	Inner          util.Option[Range]
}

// kind tags which variant a Location currently holds.
type kind int

const (
	kindNone kind = iota
	kindRange
	kindBlock
	kindCombined
)

// Location is a tagged union over the location forms a diagnostic or AST
// node may carry: a textual Range, a diagram Block, a Combined sequence of
// locations, or None (compiler-synthesized, carries no position).
//
// Location is comparable only through its accessor methods; the zero value
// is the None variant with no file.
type Location struct {
	kind     kind
	file     util.Option[uri.URI]
	rng      Range
	block    Block
	combined []Location
}

// None constructs a file-less, position-less sentinel location, used for
// AST nodes synthesized by the compiler itself (initializer calls, vtables,
// implicit pointer types).
func None() Location {
	return Location{kind: kindNone}
}

// NewRange constructs a textual-range location within the given file.
func NewRange(file uri.URI, r Range) Location {
	return Location{kind: kindRange, file: util.Some(file), rng: r}
}

// NewBlock constructs a diagram-block location within the given file.
func NewBlock(file uri.URI, b Block) Location {
	return Location{kind: kindBlock, file: util.Some(file), block: b}
}

// NewFileOnly constructs a location that identifies a file but no specific
// position within it.
func NewFileOnly(file uri.URI) Location {
	return Location{kind: kindNone, file: util.Some(file)}
}

// File returns the file this location is attached to, if any.
func (l Location) File() util.Option[uri.URI] {
	return l.file
}

// IsInternal is true iff this location has neither a file nor a position,
// i.e. it was synthesized by the compiler rather than read from source.
func (l Location) IsInternal() bool {
	return l.file.IsEmpty() && l.kind == kindNone
}

// IsInUnit reports whether this location belongs to the given file, or has
// no file at all (compiler-generated code is considered local to every
// unit that might reference it).
func (l Location) IsInUnit(file uri.URI) bool {
	if l.file.IsEmpty() {
		return true
	}

	return l.file.Unwrap() == file
}

// ToRange returns the textual range of this location, if it has one. A
// Combined location returns the envelope of its first and last textual
// sub-ranges, if any exist.
func (l Location) ToRange() util.Option[Range] {
	switch l.kind {
	case kindRange:
		return util.Some(l.rng)
	case kindBlock:
		return l.block.Inner
	case kindCombined:
		var first, last util.Option[Range]

		for _, sub := range l.combined {
			if r := sub.ToRange(); r.HasValue() {
				if first.IsEmpty() {
					first = r
				}

				last = r
			}
		}

		if first.IsEmpty() {
			return util.None[Range]()
		}

		return util.Some(joinRanges(first.Unwrap(), last.Unwrap()))
	default:
		return util.None[Range]()
	}
}

// Span merges two locations into one covering both. Two textual ranges
// merge into their enveloping range. Two block locations sharing the same
// LocalID merge their inner ranges. A block and a range combine into a
// block carrying the range as its inner span. An internal operand (no file,
// no position) on either side is dropped and the other operand returned,
// so compiler-synthesized sub-nodes do not blank out a real position
// recorded by a sibling. Anything else (differing files, differing block
// ids, a file-only location) becomes a Combined location retaining both
// operands in order.
func (l Location) Span(other Location) Location {
	if l.IsInternal() {
		return other
	}

	if other.IsInternal() {
		return l
	}

	if l.kind == kindRange && other.kind == kindRange && sameFile(l.file, other.file) {
		return Location{kind: kindRange, file: l.file, rng: joinRanges(l.rng, other.rng)}
	}

	if l.kind == kindBlock && other.kind == kindBlock && sameFile(l.file, other.file) &&
		l.block.LocalID == other.block.LocalID {
		inner := l.block.Inner
		if other.block.Inner.HasValue() {
			inner = other.block.Inner
		}

		return Location{
			kind: kindBlock, file: l.file,
			block: Block{LocalID: l.block.LocalID, ExecutionOrder: l.block.ExecutionOrder, Inner: inner},
		}
	}

	if l.kind == kindBlock && other.kind == kindRange && sameFile(l.file, other.file) {
		return Location{kind: kindBlock, file: l.file, block: Block{
			LocalID: l.block.LocalID, ExecutionOrder: l.block.ExecutionOrder, Inner: util.Some(other.rng),
		}}
	}

	if l.kind == kindRange && other.kind == kindBlock && sameFile(l.file, other.file) {
		return other.Span(l)
	}

	return Location{kind: kindCombined, combined: flattenCombine(l, other)}
}

func flattenCombine(a, b Location) []Location {
	var out []Location

	if a.kind == kindCombined {
		out = append(out, a.combined...)
	} else {
		out = append(out, a)
	}

	if b.kind == kindCombined {
		out = append(out, b.combined...)
	} else {
		out = append(out, b)
	}

	return out
}

func sameFile(a, b util.Option[uri.URI]) bool {
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}

	if a.IsEmpty() || b.IsEmpty() {
		return false
	}

	return a.Unwrap() == b.Unwrap()
}

func joinRanges(a, b Range) Range {
	r := Range{StartOffset: a.StartOffset, StartLine: a.StartLine, StartColumn: a.StartColumn,
		EndOffset: a.EndOffset, EndLine: a.EndLine, EndColumn: a.EndColumn}
	if b.StartOffset < r.StartOffset {
		r.StartOffset, r.StartLine, r.StartColumn = b.StartOffset, b.StartLine, b.StartColumn
	}

	if b.EndOffset > r.EndOffset {
		r.EndOffset, r.EndLine, r.EndColumn = b.EndOffset, b.EndLine, b.EndColumn
	}

	return r
}

// String renders a human-readable "line:column" (or block id) prefix
// suitable for diagnostic messages.
func (l Location) String() string {
	switch l.kind {
	case kindRange:
		return fmt.Sprintf("%d:%d", l.rng.StartLine, l.rng.StartColumn)
	case kindBlock:
		return fmt.Sprintf("block#%s@%d", l.block.LocalID, l.block.ExecutionOrder)
	case kindCombined:
		if len(l.combined) == 0 {
			return "<internal>"
		}

		return l.combined[0].String()
	default:
		return "<internal>"
	}
}

// NewLines is a monotonically increasing table of rune offsets of line
// terminators within a file, enabling O(log N) offset to (line, column)
// translation via binary search.
type NewLines struct {
	offsets []int
}

// BuildNewLines scans the given file contents once and records every line
// terminator offset.
func BuildNewLines(contents []rune) *NewLines {
	var offsets []int

	for i, r := range contents {
		if r == '\n' {
			offsets = append(offsets, i)
		}
	}

	return &NewLines{offsets}
}

// LineColumn maps a rune offset to a 1-indexed (line, column) pair.
func (n *NewLines) LineColumn(offset int) (line, column int) {
	// idx is the count of newlines strictly before offset.
	idx := sort.Search(len(n.offsets), func(i int) bool { return n.offsets[i] >= offset })
	line = idx + 1

	lineStart := 0
	if idx > 0 {
		lineStart = n.offsets[idx-1] + 1
	}

	column = offset - lineStart + 1

	return line, column
}

// LineOf returns the 1-indexed line number containing the given offset.
func (n *NewLines) LineOf(offset int) int {
	line, _ := n.LineColumn(offset)
	return line
}

// File is a loaded source file: its identity, its raw contents, and a
// precomputed NewLines table for position resolution.
type File struct {
	URI      uri.URI
	Filename string
	Contents []rune
	lines    *NewLines
}

// NewFile constructs a File and eagerly builds its NewLines table.
func NewFile(filename string, u uri.URI, contents []byte) *File {
	runes := []rune(string(contents))
	return &File{URI: u, Filename: filename, Contents: runes, lines: BuildNewLines(runes)}
}

// Factory produces Locations that are all bound to the same File.
type Factory struct {
	file *File
}

// NewFactory constructs a location factory bound to the given file.
func NewFactory(file *File) *Factory {
	return &Factory{file}
}

// CreateRange constructs a textual-range location from a rune offset pair,
// resolving line/column endpoints through the file's NewLines table.
func (f *Factory) CreateRange(start, end int) Location {
	sl, sc := f.file.lines.LineColumn(start)
	el, ec := f.file.lines.LineColumn(end)

	return NewRange(f.file.URI, Range{
		StartOffset: start, EndOffset: end,
		StartLine: sl, StartColumn: sc, EndLine: el, EndColumn: ec,
	})
}

// CreateBlock constructs a diagram-block location.
func (f *Factory) CreateBlock(localID string, executionOrder int) Location {
	return NewBlock(f.file.URI, Block{LocalID: localID, ExecutionOrder: executionOrder})
}

// CreateFileOnly constructs a location naming this file but no position.
func (f *Factory) CreateFileOnly() Location {
	return NewFileOnly(f.file.URI)
}

// CreateRangeToEndOfLine constructs a range starting at the given
// (1-indexed) line/column and extending to the end of that physical line.
func (f *Factory) CreateRangeToEndOfLine(line, column int) Location {
	lineStart := 0
	if line > 1 && line-2 < len(f.file.lines.offsets) {
		lineStart = f.file.lines.offsets[line-2] + 1
	}

	end := len(f.file.Contents)
	if line-1 < len(f.file.lines.offsets) {
		end = f.file.lines.offsets[line-1]
	}

	start := lineStart + column - 1

	return f.CreateRange(start, end)
}

// CreateInternal constructs a file-less, position-less location, for nodes
// synthesized during lowering rather than parsed from source.
func (f *Factory) CreateInternal() Location {
	return None()
}
