package ot

import "testing"

// coverageFmt1 builds a coverage table format 1 from sorted glyph IDs.
func coverageFmt1(glyphs ...uint16) []byte {
	b := make([]byte, 4+2*len(glyphs))
	putU16(b, 0, 1)
	putU16(b, 2, uint16(len(glyphs)))
	for i, g := range glyphs {
		putU16(b, 4+i*2, g)
	}
	return b
}

// coverageFmt2 builds a coverage table format 2 from (start, end, index)
// triples.
func coverageFmt2(ranges ...[3]uint16) []byte {
	b := make([]byte, 4+6*len(ranges))
	putU16(b, 0, 2)
	putU16(b, 2, uint16(len(ranges)))
	for i, r := range ranges {
		putU16(b, 4+i*6, r[0])
		putU16(b, 4+i*6+2, r[1])
		putU16(b, 4+i*6+4, r[2])
	}
	return b
}

func TestCoverageFormat1(t *testing.T) {
	cov, err := parseCoverage(coverageFmt1(10, 20, 30))
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := cov.Index(20); !ok || i != 1 {
		t.Fatalf("expected glyph 20 at coverage index 1, got %d, %v", i, ok)
	}
	if i, ok := cov.Index(10); !ok || i != 0 {
		t.Fatalf("index 0 is a valid coverage index, got %d, %v", i, ok)
	}
	if _, ok := cov.Index(15); ok {
		t.Fatal("glyph 15 is not covered")
	}
}

func TestCoverageFormat2(t *testing.T) {
	cov, err := parseCoverage(coverageFmt2([3]uint16{10, 14, 0}, [3]uint16{100, 102, 5}))
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := cov.Index(12); !ok || i != 2 {
		t.Fatalf("expected coverage index 2 for glyph 12, got %d, %v", i, ok)
	}
	if i, ok := cov.Index(102); !ok || i != 7 {
		t.Fatalf("expected coverage index 7 for glyph 102, got %d, %v", i, ok)
	}
	if _, ok := cov.Index(15); ok {
		t.Fatal("glyph 15 is not covered")
	}
}

func TestCoverageUnknownFormat(t *testing.T) {
	b := make([]byte, 4)
	putU16(b, 0, 3)
	_, err := parseCoverage(binarySegm(b))
	if !IsUnsupportedVersion(err) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}

func TestCoverageCountValidation(t *testing.T) {
	b := make([]byte, 6)
	putU16(b, 0, 1)
	putU16(b, 2, 50000) // claims 50000 glyphs in a 6-byte table
	if _, err := parseCoverage(binarySegm(b)); err == nil {
		t.Fatal("expected error for oversized coverage count")
	}
}

type rangeCollector struct {
	triples [][3]int
	stopAt  int // stop after this many ranges, 0 = never
}

func (rc *rangeCollector) VisitRange(from, to GlyphIndex, index int) bool {
	rc.triples = append(rc.triples, [3]int{int(from), int(to), index})
	return rc.stopAt == 0 || len(rc.triples) < rc.stopAt
}

func TestCoverageEmitRanges(t *testing.T) {
	cov, err := parseCoverage(coverageFmt2([3]uint16{10, 14, 0}, [3]uint16{100, 102, 5}))
	if err != nil {
		t.Fatal(err)
	}
	rc := &rangeCollector{}
	cov.EmitRanges(rc)
	want := [][3]int{{10, 14, 0}, {100, 102, 5}}
	if len(rc.triples) != len(want) {
		t.Fatalf("expected %d ranges, got %d", len(want), len(rc.triples))
	}
	for i := range want {
		if rc.triples[i] != want[i] {
			t.Fatalf("range %d = %v, want %v", i, rc.triples[i], want[i])
		}
	}
}

func TestCoverageEmitRangesFormat1AndStop(t *testing.T) {
	cov, err := parseCoverage(coverageFmt1(7, 9, 11))
	if err != nil {
		t.Fatal(err)
	}
	rc := &rangeCollector{stopAt: 2}
	cov.EmitRanges(rc)
	if len(rc.triples) != 2 {
		t.Fatalf("visitor returning false must stop emission, got %d ranges", len(rc.triples))
	}
	if rc.triples[1] != [3]int{9, 9, 1} {
		t.Fatalf("format 1 glyphs emit as single-glyph ranges, got %v", rc.triples[1])
	}
}

// classDefFmt1 builds a class definition format 1.
func classDefFmt1(startGlyph uint16, classes ...uint16) []byte {
	b := make([]byte, 6+2*len(classes))
	putU16(b, 0, 1)
	putU16(b, 2, startGlyph)
	putU16(b, 4, uint16(len(classes)))
	for i, c := range classes {
		putU16(b, 6+i*2, c)
	}
	return b
}

func TestClassDefFormat1(t *testing.T) {
	cdef, err := parseClassDefinitions(classDefFmt1(30, 1, 2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := cdef.Lookup(31); got != 2 {
		t.Fatalf("expected class 2 for glyph 31, got %d", got)
	}
	if got := cdef.Lookup(29); got != 0 {
		t.Fatalf("glyphs not covered have class 0, got %d", got)
	}
	if got := cdef.Lookup(33); got != 0 {
		t.Fatalf("glyphs past the block have class 0, got %d", got)
	}
}

func TestClassDefFormat2(t *testing.T) {
	b := make([]byte, 4+6)
	putU16(b, 0, 2)
	putU16(b, 2, 1)  // one range record
	putU16(b, 4, 40) // start
	putU16(b, 6, 49) // end
	putU16(b, 8, 3)  // class
	cdef, err := parseClassDefinitions(binarySegm(b))
	if err != nil {
		t.Fatal(err)
	}
	if got := cdef.Lookup(45); got != 3 {
		t.Fatalf("expected class 3, got %d", got)
	}
	if got := cdef.Lookup(50); got != 0 {
		t.Fatalf("expected class 0 outside range, got %d", got)
	}
	rc := &rangeCollector{}
	cdef.EmitRanges(rc)
	if len(rc.triples) != 1 || rc.triples[0] != [3]int{40, 49, 3} {
		t.Fatalf("unexpected emitted ranges %v", rc.triples)
	}
}
