package ot

import (
	"errors"
	"fmt"
	"math"
)

// Parsing of the top-level structure of OpenType fonts: the sfnt table
// directory and the 'ttcf' collection header. The parser trusts nothing:
// every count, offset and size read from the buffer is validated before it
// is used, and arithmetic on them is overflow-checked. A defect inside one
// table is recorded and scoped to that table; sibling tables parse
// unaffected.

// Maximum reasonable counts for OpenType table structures. Fonts in the
// wild stay far below these; a count above them is treated as a format
// defect rather than an allocation request.
const (
	MaxTableCount          = 1024  // top-level tables in a directory
	MaxCollectionFontCount = 1024  // fonts in a 'ttcf' collection
	MaxScriptCount         = 50    // Scripts: typically < 10
	MaxFeatureCount        = 500   // Features: typically < 200
	MaxLookupCount         = 1000  // Lookups: typically < 100
	MaxTagListCount        = 100   // Tag lists
	MaxGlyphCount          = 65536 // Maximum glyph index (uint16)
	MaxCoverageCount       = 65535 // Coverage tables
	MaxClassDefCount       = 65535 // Class definitions
	MaxRecordMapCount      = 1000  // Generic tag record maps
)

// Structural recursion limits.
const (
	MaxExtensionDepth   = 16 // Maximum Extension lookup nesting
	MaxIndirectionDepth = 8  // Maximum offset-array indirection levels
)

// --- Checked arithmetic ------------------------------------------------------

// Offsets, sizes and counts come straight from untrusted bytes. All
// arithmetic combining them goes through these helpers; a result that would
// wrap is an OverflowError, never a silently wrong offset.

// checkedMulInt checks for overflow in multiplication of two integers.
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, OverflowError{Op: "*", A: uint64(a), B: uint64(b)}
	}
	if a < 0 || b < 0 {
		return 0, OverflowError{Op: "*", A: uint64(int64(a)), B: uint64(int64(b))}
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers.
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, OverflowError{Op: "+", A: uint64(a), B: uint64(b)}
	}
	if a < 0 || b < 0 {
		return 0, OverflowError{Op: "+", A: uint64(int64(a)), B: uint64(int64(b))}
	}
	return a + b, nil
}

// checkedMulUint32 checks for overflow in multiplication of two uint32 values.
func checkedMulUint32(a, b uint32) (uint32, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint32/b {
		return 0, OverflowError{Op: "*", A: uint64(a), B: uint64(b)}
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values.
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, OverflowError{Op: "+", A: uint64(a), B: uint64(b)}
	}
	return a + b, nil
}

// errFontFormat produces a FormatError with a given message.
func errFontFormat(message string) error {
	return FormatError{Detail: message}
}

// --- Container signatures ----------------------------------------------------

// sfnt version / magic numbers at the start of a font file.
const (
	sfntVersionTrueType = 0x00010000 // TrueType outlines
	sfntVersionOTTO     = 0x4f54544f // 'OTTO', CFF outlines
	sfntVersionAppleTT  = 0x74727565 // 'true', Apple TrueType
	ttcTag              = 0x74746366 // 'ttcf', font collection
)

// headerSize is the size of the sfnt table directory header, entrySize the
// size of one table record within it.
const (
	headerSize = 12
	entrySize  = 16
)

// --- Parsing single fonts ----------------------------------------------------

// Parse parses an OpenType font from a byte array. The returned Font holds
// views into `font`, which therefore must stay immutable and alive for the
// lifetime of the Font.
//
// Parse returns an error only if the container itself is unusable: an
// unrecognized signature or a table directory that does not fit the buffer.
// Defects inside individual tables are recorded in the Font's error list
// (see Font.Errors) and do not abort parsing; views of intact sibling
// tables stay fully usable.
//
// For font collection files ('ttcf'), use ParseCollection.
func Parse(font []byte) (*Font, error) {
	if sig, err := binarySegm(font).u32(0); err == nil && sig == ttcTag {
		return nil, errFontFormat("font collection; use ParseCollection")
	}
	return parseFont(font, 0)
}

// parseFont parses the table directory starting at dirOffset. Table record
// offsets within the directory are relative to the start of the whole
// buffer, which is what makes collection faces over a shared buffer work.
func parseFont(font []byte, dirOffset uint32) (*Font, error) {
	b := binarySegm(font)
	header, err := b.view(int(dirOffset), headerSize)
	if err != nil {
		return nil, fmt.Errorf("table directory header incomplete: %w", err)
	}
	h := &FontHeader{}
	h.FontType, _ = header.u32(0)
	switch h.FontType {
	case sfntVersionTrueType, sfntVersionOTTO, sfntVersionAppleTT:
		// known flavors
	default:
		return nil, FormatError{Detail: "unrecognized sfnt version", Value: h.FontType}
	}
	h.TableCount, _ = header.u16(4)
	tracer().Debugf("font has %d tables", h.TableCount)
	if h.TableCount > MaxTableCount {
		return nil, errFontFormat(fmt.Sprintf("table count %d exceeds maximum %d", h.TableCount, MaxTableCount))
	}
	// The whole directory must fit before a single record is read.
	recordsSize, err := checkedMulInt(entrySize, int(h.TableCount))
	if err != nil {
		return nil, err
	}
	recordsStart, err := checkedAddInt(int(dirOffset), headerSize)
	if err != nil {
		return nil, err
	}
	records, err := b.view(recordsStart, recordsSize)
	if err != nil {
		return nil, fmt.Errorf("table directory: %d records do not fit buffer: %w", h.TableCount, err)
	}

	otf := &Font{Header: h, tables: make(map[Tag]Table, h.TableCount)}
	ec := &errorCollector{}
	for i := 0; i < int(h.TableCount); i++ {
		entry, _ := records.view(i*entrySize, entrySize)
		tagval, _ := entry.u32(0)
		tag := Tag(tagval)
		off, _ := entry.u32(8)
		size, _ := entry.u32(12)
		end, err := checkedAddUint32(off, size)
		if err != nil || int64(end) > int64(len(font)) {
			ec.addError(tag, "directory", boundsErr(tag.String(), int(off), int(size), len(font)),
				SeverityCritical, off)
			continue
		}
		if _, dup := otf.tables[tag]; dup {
			// Duplicate tags are not forbidden by the format; the record
			// occurring last in the directory wins.
			ec.addWarning(tag, "duplicate table tag in directory", off)
		}
		t, err := parseTable(tag, b[off:end], off, size, ec)
		if err != nil {
			// A defect inside one table is scoped to that table; the raw
			// bytes remain reachable through a generic table entry.
			ec.addError(tag, "table", err, SeverityMajor, off)
			t = newTable(tag, b[off:end], off, size)
		}
		otf.tables[tag] = t
	}
	bindTypedTables(otf)
	checkRequiredTables(otf, ec)
	validateCrossTableConsistency(otf, ec)
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// --- Parsing font collections ------------------------------------------------

// ParseCollection parses an OpenType font collection ('ttcf') from a byte
// array. Every returned Font is an independent table directory over the
// shared buffer; collection faces commonly share table data, which the
// zero-copy views make free.
//
// A defective face fails that face only: it is skipped and the intact
// faces are returned. ParseCollection returns an error when the collection
// header itself is unusable or when not a single face parses; in the
// latter case the error wraps the per-face failures.
//
// A plain single-font buffer is accepted too and yields a one-element
// result.
func ParseCollection(data []byte) ([]*Font, error) {
	b := binarySegm(data)
	sig, err := b.u32(0)
	if err != nil {
		return nil, errFontFormat("buffer too small for font container")
	}
	if sig != ttcTag {
		otf, err := parseFont(data, 0)
		if err != nil {
			return nil, err
		}
		return []*Font{otf}, nil
	}
	// TTC header:
	// | uint32   | ttcTag       | = 'ttcf'                      |
	// | uint16   | majorVersion | 1 or 2                        |
	// | uint16   | minorVersion | 0                             |
	// | uint32   | numFonts     |                               |
	// | Offset32 | tableDirectoryOffsets[numFonts]              |
	// Version 2 appends DSIG fields after the offsets; they are ignored
	// here.
	version, err := b.u32(4)
	if err != nil {
		return nil, errFontFormat("font collection header incomplete")
	}
	switch version >> 16 {
	case 1, 2:
		// known header layouts
	default:
		return nil, UnsupportedVersionError{Kind: "ttcf", Value: version}
	}
	numFonts, err := b.u32(8)
	if err != nil {
		return nil, errFontFormat("font collection header incomplete")
	}
	if numFonts == 0 {
		return nil, errFontFormat("font collection contains no fonts")
	}
	if numFonts > MaxCollectionFontCount {
		return nil, errFontFormat(fmt.Sprintf("font collection count %d exceeds maximum %d",
			numFonts, MaxCollectionFontCount))
	}
	offsetsSize, err := checkedMulInt(int(numFonts), 4)
	if err != nil {
		return nil, err
	}
	offsets, err := b.view(12, offsetsSize)
	if err != nil {
		return nil, errFontFormat(fmt.Sprintf("font collection: %d directory offsets do not fit buffer", numFonts))
	}
	fonts := make([]*Font, 0, numFonts)
	var faceErrs []error
	for i := 0; i < int(numFonts); i++ {
		dirOffset, _ := offsets.u32(i * 4)
		otf, err := parseFont(data, dirOffset)
		if err != nil {
			// A defective face is scoped to that face; siblings stay usable.
			tracer().Infof("font collection entry %d unusable: %v", i, err)
			faceErrs = append(faceErrs, fmt.Errorf("font collection entry %d: %w", i, err))
			continue
		}
		fonts = append(fonts, otf)
	}
	if len(fonts) == 0 {
		return nil, errors.Join(faceErrs...)
	}
	return fonts, nil
}

// --- Per-table dispatch ------------------------------------------------------

// RequiredTables lists the tables the OpenType specification requires every
// font to carry. Their absence is recorded as a warning; this package does
// not refuse to represent incomplete fonts.
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

// parseTable interprets the byte segment b as the table named by t. Tables
// without a concrete interpretation in this package come back as generic
// tables; no directory entry is ever dropped.
func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t.String() {
	case "cmap":
		return parseCMap(t, b, offset, size, ec)
	case "head":
		return parseHead(t, b, offset, size, ec)
	case "hhea":
		return parseHHea(t, b, offset, size, ec)
	case "hmtx":
		return parseHMtx(t, b, offset, size, ec)
	case "maxp":
		return parseMaxP(t, b, offset, size, ec)
	case "loca":
		return parseLoca(t, b, offset, size, ec)
	case "name":
		return parseName(t, b, offset, size, ec)
	case "OS/2":
		return parseOS2(t, b, offset, size, ec)
	case "kern":
		return parseKern(t, b, offset, size, ec)
	case "GDEF":
		return parseGDef(t, b, offset, size, ec)
	case "GPOS":
		return parseGPos(t, b, offset, size, ec)
	case "GSUB":
		return parseGSub(t, b, offset, size, ec)
	}
	tracer().Debugf("font table %s will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// bindTypedTables fills the Font's typed shortcut fields from the parsed
// table map.
func bindTypedTables(otf *Font) {
	if t := otf.Table(T("cmap")); t != nil {
		otf.CMap = t.Self().AsCMap()
	}
	if t := otf.Table(T("head")); t != nil {
		otf.Head = t.Self().AsHead()
	}
	if t := otf.Table(T("maxp")); t != nil {
		otf.MaxP = t.Self().AsMaxP()
	}
	if t := otf.Table(T("hhea")); t != nil {
		otf.HHea = t.Self().AsHHea()
	}
	if t := otf.Table(T("hmtx")); t != nil {
		otf.HMtx = t.Self().AsHMtx()
	}
	if t := otf.Table(T("OS/2")); t != nil {
		otf.OS2 = t.Self().AsOS2()
	}
	if t := otf.Table(T("loca")); t != nil {
		otf.Loca = t.Self().AsLoca()
	}
	if t := otf.Table(T("name")); t != nil {
		otf.Name = t.Self().AsName()
	}
	if t := otf.Table(T("GSUB")); t != nil {
		otf.Layout.GSub = t.Self().AsGSub()
	}
	if t := otf.Table(T("GPOS")); t != nil {
		otf.Layout.GPos = t.Self().AsGPos()
	}
	if t := otf.Table(T("GDEF")); t != nil {
		otf.Layout.GDef = t.Self().AsGDef()
	}
}

// checkRequiredTables records a warning for every required table the font
// does not carry.
func checkRequiredTables(otf *Font, ec *errorCollector) {
	for _, name := range RequiredTables {
		if otf.Table(T(name)) == nil {
			ec.addWarning(T(name), "required table missing", 0)
		}
	}
}

// validateCrossTableConsistency checks invariants which span several
// tables: metric counts against the hmtx extent and the loca length against
// glyph count and index format. Violations are recorded, not fatal.
func validateCrossTableConsistency(otf *Font, ec *errorCollector) {
	numGlyphs := 0
	if otf.MaxP != nil {
		numGlyphs = otf.MaxP.NumGlyphs
	}
	if otf.HHea != nil && otf.HMtx != nil && numGlyphs > 0 {
		n := int(otf.HHea.NumberOfHMetrics)
		if n > numGlyphs {
			ec.addError(T("hhea"), "numberOfHMetrics",
				errFontFormat(fmt.Sprintf("numberOfHMetrics %d exceeds glyph count %d", n, numGlyphs)),
				SeverityMajor, 0)
		} else if err := otf.HMtx.bindMetrics(n, numGlyphs); err != nil {
			ec.addError(T("hmtx"), "metrics", err, SeverityMajor, 0)
		}
	}
	if otf.Head != nil && otf.Loca != nil && numGlyphs > 0 {
		entrySz := 2
		if otf.Head.IndexToLocFormat == 1 {
			entrySz = 4
		}
		expected, err := checkedMulInt(numGlyphs+1, entrySz)
		if err != nil {
			ec.addError(T("loca"), "length", err, SeverityMajor, 0)
		} else if err := otf.Loca.bindGlyphCount(numGlyphs, otf.Head.IndexToLocFormat); err != nil {
			ec.addError(T("loca"), "length",
				fmt.Errorf("expected %d bytes: %w", expected, err), SeverityMajor, 0)
		}
	}
}
