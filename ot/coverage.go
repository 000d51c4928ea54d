package ot

import "fmt"

// Coverage tables and class definition tables are the format family's
// compact representations of glyph-ID sets: sorted glyph lists (format 1)
// or sorted (first, last) ranges (format 2). This package reads the raw
// ranges from the buffer; set-like data structures built from them are the
// business of the consumer (see RangeVisitor).

// GlyphRange is a type frequently used by sub-tables of layout tables.
// If an input glyph g is contained in the range, an index and true is
// returned, false otherwise.
type GlyphRange interface {
	Match(g GlyphIndex) (int, bool) // is glyph ID g in range?
	ByteSize() int                  // size of the underlying representation
}

// RangeVisitor receives raw glyph ranges as they are read from the buffer.
// It is the seam to external sparse-set implementations: this package
// supplies (from, to, index) triples in storage order, the visitor owns
// whatever set representation it builds from them. Returning false stops
// the emission.
//
// `index` is the coverage index of `from` (for coverage tables) or the
// class value of the range (for class definition tables).
type RangeVisitor interface {
	VisitRange(from, to GlyphIndex, index int) bool
}

// RangeVisitorFunc adapts a function to the RangeVisitor interface.
type RangeVisitorFunc func(from, to GlyphIndex, index int) bool

// VisitRange calls f.
func (f RangeVisitorFunc) VisitRange(from, to GlyphIndex, index int) bool {
	return f(from, to, index)
}

// --- Coverage tables -------------------------------------------------------

// Coverage is a parsed coverage table: an ordered set of glyph IDs, each
// associated with its coverage index.
type Coverage struct {
	Format     uint16
	GlyphRange GlyphRange
	count      int
	data       binarySegm
}

// parseCoverage parses a coverage table, formats 1 and 2.
func parseCoverage(b binarySegm) (Coverage, error) {
	format, err := dispatchFormat16(b, "Coverage", 1, 2)
	if err != nil {
		return Coverage{}, err
	}
	switch format {
	case 1:
		// | uint16 | coverageFormat | = 1                          |
		// | uint16 | glyphCount     |                              |
		// | uint16 | glyphArray[]   | sorted glyph IDs             |
		glyphs, err := parseArray16(b, 2, "Coverage", "GlyphID")
		if err != nil {
			return Coverage{}, err
		}
		if glyphs.length > MaxCoverageCount {
			return Coverage{}, FormatError{Detail: fmt.Sprintf("coverage count %d exceeds maximum", glyphs.length)}
		}
		return Coverage{
			Format:     1,
			GlyphRange: &glyphArraySet{glyphs: glyphs},
			count:      glyphs.length,
			data:       glyphs.loc,
		}, nil
	case 2:
		// | uint16 | coverageFormat | = 2                          |
		// | uint16 | rangeCount     |                              |
		// | Range  | rangeRecords[] | startGlyph, endGlyph, index  |
		records, err := parseArray(b, 2, 6, "Coverage", "RangeRecord")
		if err != nil {
			return Coverage{}, err
		}
		if records.length > MaxCoverageCount {
			return Coverage{}, FormatError{Detail: fmt.Sprintf("coverage range count %d exceeds maximum", records.length)}
		}
		return Coverage{
			Format:     2,
			GlyphRange: &glyphRangeSet{records: records},
			count:      records.length,
			data:       records.loc,
		}, nil
	}
	return Coverage{}, UnsupportedVersionError{Kind: "Coverage", Value: uint32(format)}
}

// Index returns the coverage index for glyph g, if g is covered.
func (c Coverage) Index(g GlyphIndex) (int, bool) {
	if c.GlyphRange == nil {
		return 0, false
	}
	return c.GlyphRange.Match(g)
}

// EmitRanges supplies every (from, to, coverageIndex) triple of the
// coverage table to v, in storage order. Format 1 glyph lists are emitted
// as single-glyph ranges.
func (c Coverage) EmitRanges(v RangeVisitor) {
	if v == nil {
		return
	}
	switch c.Format {
	case 1:
		for i := 0; i < c.count; i++ {
			g, err := c.data.u16(i * 2)
			if err != nil {
				return
			}
			if !v.VisitRange(GlyphIndex(g), GlyphIndex(g), i) {
				return
			}
		}
	case 2:
		for i := 0; i < c.count; i++ {
			from, err := c.data.u16(i * 6)
			if err != nil {
				return
			}
			to, _ := c.data.u16(i*6 + 2)
			index, _ := c.data.u16(i*6 + 4)
			if !v.VisitRange(GlyphIndex(from), GlyphIndex(to), int(index)) {
				return
			}
		}
	}
}

// glyphArraySet is coverage format 1: a sorted block of consecutive glyph
// keys. Match returns the index of the key in the block; 0 is a valid
// return value.
type glyphArraySet struct {
	glyphs array
}

func (r *glyphArraySet) Match(g GlyphIndex) (int, bool) {
	// The glyph array is specified to be sorted: binary search.
	lo, hi := 0, r.glyphs.length
	for lo < hi {
		mid := (lo + hi) / 2
		k, err := r.glyphs.loc.u16(mid * 2)
		if err != nil {
			return 0, false
		}
		switch {
		case GlyphIndex(k) < g:
			lo = mid + 1
		case GlyphIndex(k) > g:
			hi = mid
		default:
			return mid, true
		}
	}
	return 0, false
}

func (r *glyphArraySet) ByteSize() int {
	return r.glyphs.Size()
}

// glyphRangeSet is coverage format 2: entries stored as range records.
// Match returns the coverage index of g, computed from the range's start
// index.
type glyphRangeSet struct {
	records array
}

func (r *glyphRangeSet) Match(g GlyphIndex) (int, bool) {
	for i := 0; i < r.records.length; i++ {
		from, err := r.records.loc.u16(i * 6)
		if err != nil {
			return 0, false
		}
		to, _ := r.records.loc.u16(i*6 + 2)
		index, _ := r.records.loc.u16(i*6 + 4)
		if GlyphIndex(from) <= g && g <= GlyphIndex(to) {
			return int(index + uint16(g) - from), true
		}
	}
	return 0, false
}

func (r *glyphRangeSet) ByteSize() int {
	return r.records.Size()
}

// --- Class definition tables -----------------------------------------------

// ClassDefinitions maps glyph IDs to glyph classes. Glyphs not listed have
// class 0.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#class-definition-table
type ClassDefinitions struct {
	format uint16
	start  GlyphIndex // format 1: first glyph ID covered
	count  int
	data   binarySegm
}

// Format returns the class-def format (1 or 2), or 0 for a void table.
func (cdef ClassDefinitions) Format() uint16 {
	return cdef.format
}

// parseClassDefinitions parses a class definition table, formats 1 and 2.
func parseClassDefinitions(b binarySegm) (ClassDefinitions, error) {
	format, err := dispatchFormat16(b, "ClassDef", 1, 2)
	if err != nil {
		return ClassDefinitions{}, err
	}
	cdef := ClassDefinitions{format: format}
	switch format {
	case 1:
		// | uint16 | classFormat   | = 1                      |
		// | uint16 | startGlyphID  |                          |
		// | uint16 | glyphCount    |                          |
		// | uint16 | classValues[] | one class value per glyph |
		start, err := b.u16(2)
		if err != nil {
			return ClassDefinitions{}, boundsErr("ClassDef", 2, 2, len(b))
		}
		values, err := parseArray16(b, 4, "ClassDef", "ClassValue")
		if err != nil {
			return ClassDefinitions{}, err
		}
		if values.length > MaxClassDefCount {
			return ClassDefinitions{}, FormatError{Detail: fmt.Sprintf("class def count %d exceeds maximum", values.length)}
		}
		cdef.start = GlyphIndex(start)
		cdef.count = values.length
		cdef.data = values.loc
	case 2:
		// | uint16 | classFormat        | = 2                    |
		// | uint16 | classRangeCount    |                        |
		// | Range  | classRangeRecords[] | start, end, class     |
		records, err := parseArray(b, 2, 6, "ClassDef", "ClassRangeRecord")
		if err != nil {
			return ClassDefinitions{}, err
		}
		if records.length > MaxClassDefCount {
			return ClassDefinitions{}, FormatError{Detail: fmt.Sprintf("class range count %d exceeds maximum", records.length)}
		}
		cdef.count = records.length
		cdef.data = records.loc
	}
	return cdef, nil
}

// Lookup returns the glyph class for glyph g. Glyphs not covered by the
// table have class 0.
func (cdef ClassDefinitions) Lookup(g GlyphIndex) int {
	switch cdef.format {
	case 1:
		if g < cdef.start || int(g-cdef.start) >= cdef.count {
			return 0
		}
		clz, err := cdef.data.u16(int(g-cdef.start) * 2)
		if err != nil {
			return 0
		}
		return int(clz)
	case 2:
		for i := 0; i < cdef.count; i++ {
			from, err := cdef.data.u16(i * 6)
			if err != nil {
				return 0
			}
			to, _ := cdef.data.u16(i*6 + 2)
			clz, _ := cdef.data.u16(i*6 + 4)
			if GlyphIndex(from) <= g && g <= GlyphIndex(to) {
				return int(clz)
			}
		}
	}
	return 0
}

// EmitRanges supplies every (from, to, class) triple of the class
// definition to v, in storage order. Format 1 runs are emitted per glyph.
func (cdef ClassDefinitions) EmitRanges(v RangeVisitor) {
	if v == nil {
		return
	}
	switch cdef.format {
	case 1:
		for i := 0; i < cdef.count; i++ {
			clz, err := cdef.data.u16(i * 2)
			if err != nil {
				return
			}
			g := cdef.start + GlyphIndex(i)
			if !v.VisitRange(g, g, int(clz)) {
				return
			}
		}
	case 2:
		for i := 0; i < cdef.count; i++ {
			from, err := cdef.data.u16(i * 6)
			if err != nil {
				return
			}
			to, _ := cdef.data.u16(i*6 + 2)
			clz, _ := cdef.data.u16(i*6 + 4)
			if !v.VisitRange(GlyphIndex(from), GlyphIndex(to), int(clz)) {
				return
			}
		}
	}
}
