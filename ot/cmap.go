package ot

import "fmt"

// The 'cmap' table maps character codes to glyph indices. A font may carry
// several sub-tables for different platforms and encodings; following
// golang.org/x/image/font/sfnt, the sub-table with the widest supported
// encoding wins and the others are ignored.

// CMapTable represents the cmap table of a font.
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex // character-to-glyph mapping of the selected sub-table
}

// CMapGlyphIndex is the character-to-glyph mapping of a cmap sub-table.
// Lookup returns glyph 0, the "missing character", for code points the font
// does not cover.
type CMapGlyphIndex interface {
	Lookup(codepoint rune) GlyphIndex
	ReverseLookup(gid GlyphIndex) rune // inverse of Lookup; inefficient, 0 if not found
	Format() uint16                    // binary format of the sub-table this mapping was read from
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

type encodingRecord struct {
	platformId uint16
	encodingId uint16
	link       NavLink
	format     uint16
	width      int // encoding width in bytes
}

// platformEncodingWidth returns the encoding width in bytes for a
// (platform, encoding) pair, or 0 for unsupported pairs. Grounded in the
// pairs that occur in practice: Unicode, Macintosh Roman and Windows.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode
		switch psid {
		case 3: // BMP only
			return 2
		case 4, 6: // full repertoire
			return 4
		}
	case 1: // Macintosh
		if psid == 0 { // Roman
			return 1
		}
	case 3: // Windows
		switch psid {
		case 0, 1: // symbol, UCS-2
			return 2
		case 10: // UCS-4
			return 4
		}
	}
	return 0
}

// supportedCmapFormat reports whether a sub-table format makes sense for a
// (platform, encoding) pair this package can interpret.
func supportedCmapFormat(format, pid, psid uint16) bool {
	switch format {
	case 0:
		return pid == 1 && psid == 0
	case 4, 6:
		return platformEncodingWidth(pid, psid) == 2
	case 12:
		return platformEncodingWidth(pid, psid) == 4
	}
	return false
}

// cmap header:
// | uint16 | version   | = 0                           |
// | uint16 | numTables | number of encoding records    |
// | EncodingRecord[numTables] | pid, psid, offset32     |
func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	const headerSize, entrySize = 4, 8
	records, err := parseArray(b, 2, entrySize, "cmap", "EncodingRecord")
	if err != nil {
		return nil, err
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", records.length, size)
	t := newCMapTable(tag, b, offset, size)
	var enc encodingRecord
	for i := 0; i < records.length; i++ {
		rec, _ := records.get(i)
		pid, _ := rec.u16(0)
		psid, _ := rec.u16(2)
		width := platformEncodingWidth(pid, psid)
		if width <= enc.width {
			continue
		}
		link, err := parseLink32(rec, 4, b, "cmap.Subtable")
		if err != nil || link.IsNull() {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) cannot be reached", i, pid, psid), offset)
			continue
		}
		subtable := binarySegm(link.Jump().Bytes())
		format, err := subtable.u16(0)
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d truncated", i), offset)
			continue
		}
		tracer().Debugf("cmap table contains subtable with format %d", format)
		if supportedCmapFormat(format, pid, psid) {
			enc = encodingRecord{platformId: pid, encodingId: psid, link: link, format: format, width: width}
		}
	}
	if enc.width == 0 {
		return nil, errFontFormat("no supported cmap sub-table format found")
	}
	t.GlyphIndexMap, err = makeGlyphIndex(binarySegm(enc.link.Jump().Bytes()), enc)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// makeGlyphIndex constructs the character-to-glyph mapping from the
// selected sub-table.
func makeGlyphIndex(b binarySegm, enc encodingRecord) (CMapGlyphIndex, error) {
	format, err := dispatchFormat16(b, "cmap sub-table", 0, 4, 6, 12)
	if err != nil {
		return nil, err
	}
	switch format {
	case 0:
		return makeCMapFormat0(b)
	case 4:
		return makeCMapFormat4(b)
	case 6:
		return makeCMapFormat6(b)
	case 12:
		return makeCMapFormat12(b)
	}
	return nil, UnsupportedVersionError{Kind: "cmap sub-table", Value: uint32(format)}
}

// --- Format 0: byte encoding table ------------------------------------------

// Format 0 is a plain 256-entry byte lookup, used by legacy Macintosh
// encodings.
type cmapFormat0 struct {
	glyphs binarySegm // 256 glyph bytes
}

func makeCMapFormat0(b binarySegm) (CMapGlyphIndex, error) {
	glyphs, err := b.view(6, 256)
	if err != nil {
		return nil, boundsErr("cmap format 0", 6, 256, len(b))
	}
	return cmapFormat0{glyphs: glyphs}, nil
}

func (cm cmapFormat0) Format() uint16 { return 0 }

func (cm cmapFormat0) Lookup(codepoint rune) GlyphIndex {
	if codepoint < 0 || codepoint > 0xff {
		return 0
	}
	g, err := cm.glyphs.u8(int(codepoint))
	if err != nil {
		return 0
	}
	return GlyphIndex(g)
}

func (cm cmapFormat0) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 || gid > 0xff {
		return 0
	}
	for c := 0; c < 256; c++ {
		if g, err := cm.glyphs.u8(c); err == nil && GlyphIndex(g) == gid {
			return rune(c)
		}
	}
	return 0
}

// --- Format 4: segment mapping to delta values -------------------------------

// Format 4 is the standard BMP mapping: parallel arrays of segment end
// codes, start codes, deltas and range offsets, with a glyph ID array
// hanging off the range offsets.
//
// | uint16 | format        | = 4                        |
// | uint16 | length        |                            |
// | uint16 | language      |                            |
// | uint16 | segCountX2    |                            |
// | uint16 | searchRange, entrySelector, rangeShift     |
// | uint16 | endCode[segCount]                          |
// | uint16 | reservedPad   |                            |
// | uint16 | startCode[segCount]                        |
// | int16  | idDelta[segCount]                          |
// | uint16 | idRangeOffsets[segCount]                   |
// | uint16 | glyphIdArray[]                             |
type cmapFormat4 struct {
	segCount int
	data     binarySegm // sub-table bytes, arrays located by segCount
}

func makeCMapFormat4(b binarySegm) (CMapGlyphIndex, error) {
	segCountX2, err := b.u16(6)
	if err != nil {
		return nil, boundsErr("cmap format 4", 6, 2, len(b))
	}
	if segCountX2 == 0 || segCountX2&1 != 0 {
		return nil, FormatError{Detail: "cmap format 4 segCountX2 invalid", Value: uint32(segCountX2)}
	}
	segCount := int(segCountX2 / 2)
	// Four parallel uint16 arrays plus the reserved pad must fit.
	arrays, err := checkedMulInt(segCount, 8)
	if err != nil {
		return nil, err
	}
	required, err := checkedAddInt(14+2, arrays)
	if err != nil {
		return nil, err
	}
	if required > len(b) {
		return nil, boundsErr("cmap format 4", 14, arrays+2, len(b))
	}
	return cmapFormat4{segCount: segCount, data: b}, nil
}

func (cm cmapFormat4) Format() uint16 { return 4 }

func (cm cmapFormat4) Lookup(codepoint rune) GlyphIndex {
	if codepoint < 0 || codepoint > 0xffff {
		return 0
	}
	c := uint16(codepoint)
	endBase := 14
	startBase := endBase + cm.segCount*2 + 2 // skip reservedPad
	deltaBase := startBase + cm.segCount*2
	rangeBase := deltaBase + cm.segCount*2
	// binary search for the first segment with endCode >= c
	lo, hi := 0, cm.segCount
	for lo < hi {
		mid := (lo + hi) / 2
		end, err := cm.data.u16(endBase + mid*2)
		if err != nil {
			return 0
		}
		if end < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= cm.segCount {
		return 0
	}
	start, err := cm.data.u16(startBase + lo*2)
	if err != nil || c < start {
		return 0
	}
	delta, _ := cm.data.u16(deltaBase + lo*2)
	rangeOffset, _ := cm.data.u16(rangeBase + lo*2)
	if rangeOffset == 0 {
		return GlyphIndex(c + delta) // modulo 65536 by uint16 arithmetic
	}
	// The range offset is relative to its own position in the array.
	at := rangeBase + lo*2 + int(rangeOffset) + int(c-start)*2
	g, err := cm.data.u16(at)
	if err != nil || g == 0 {
		return 0
	}
	return GlyphIndex(g + delta)
}

func (cm cmapFormat4) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	endBase := 14
	startBase := endBase + cm.segCount*2 + 2
	for seg := 0; seg < cm.segCount; seg++ {
		start, err := cm.data.u16(startBase + seg*2)
		if err != nil {
			return 0
		}
		end, err := cm.data.u16(endBase + seg*2)
		if err != nil || end == 0xffff && start == 0xffff {
			break
		}
		for c := start; ; c++ {
			if c > end {
				break
			}
			if cm.Lookup(rune(c)) == gid {
				return rune(c)
			}
			if c == 0xffff { // avoid uint16 wrap-around
				break
			}
		}
	}
	return 0
}

// --- Format 6: trimmed table mapping -----------------------------------------

// Format 6 maps one dense range of character codes.
type cmapFormat6 struct {
	firstCode uint16
	glyphs    array
}

func makeCMapFormat6(b binarySegm) (CMapGlyphIndex, error) {
	firstCode, err := b.u16(6)
	if err != nil {
		return nil, boundsErr("cmap format 6", 6, 2, len(b))
	}
	glyphs, err := parseArray16(b[8:], 0, "cmap format 6", "GlyphID")
	if err != nil {
		return nil, err
	}
	return cmapFormat6{firstCode: firstCode, glyphs: glyphs}, nil
}

func (cm cmapFormat6) Format() uint16 { return 6 }

func (cm cmapFormat6) Lookup(codepoint rune) GlyphIndex {
	if codepoint < 0 || codepoint > 0xffff {
		return 0
	}
	i := int(codepoint) - int(cm.firstCode)
	if i < 0 || i >= cm.glyphs.length {
		return 0
	}
	g, err := cm.glyphs.loc.u16(i * 2)
	if err != nil {
		return 0
	}
	return GlyphIndex(g)
}

func (cm cmapFormat6) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for i := 0; i < cm.glyphs.length; i++ {
		if g, err := cm.glyphs.loc.u16(i * 2); err == nil && GlyphIndex(g) == gid {
			return rune(int(cm.firstCode) + i)
		}
	}
	return 0
}

// --- Format 12: segmented coverage -------------------------------------------

// Format 12 maps sequential groups of 32-bit code points.
//
// | uint16 | format    | = 12                       |
// | uint16 | reserved  |                            |
// | uint32 | length    |                            |
// | uint32 | language  |                            |
// | uint32 | numGroups |                            |
// | SequentialMapGroup[numGroups] | start, end, startGlyphID |
type cmapFormat12 struct {
	numGroups int
	groups    binarySegm // group records, 12 bytes each
}

func makeCMapFormat12(b binarySegm) (CMapGlyphIndex, error) {
	numGroups, err := b.u32(12)
	if err != nil {
		return nil, boundsErr("cmap format 12", 12, 4, len(b))
	}
	if numGroups > uint32(MaxGlyphCount) {
		return nil, FormatError{Detail: "cmap format 12 group count exceeds maximum", Value: numGroups}
	}
	groupsSize, err := checkedMulInt(int(numGroups), 12)
	if err != nil {
		return nil, err
	}
	groups, err := b.view(16, groupsSize)
	if err != nil {
		return nil, boundsErr("cmap format 12", 16, groupsSize, len(b))
	}
	return cmapFormat12{numGroups: int(numGroups), groups: groups}, nil
}

func (cm cmapFormat12) Format() uint16 { return 12 }

func (cm cmapFormat12) Lookup(codepoint rune) GlyphIndex {
	if codepoint < 0 {
		return 0
	}
	c := uint32(codepoint)
	lo, hi := 0, cm.numGroups
	for lo < hi {
		mid := (lo + hi) / 2
		start, err := cm.groups.u32(mid * 12)
		if err != nil {
			return 0
		}
		end, _ := cm.groups.u32(mid*12 + 4)
		switch {
		case c < start:
			hi = mid
		case c > end:
			lo = mid + 1
		default:
			startGlyph, _ := cm.groups.u32(mid*12 + 8)
			g := startGlyph + (c - start)
			if g > 0xffff {
				return 0
			}
			return GlyphIndex(g)
		}
	}
	return 0
}

func (cm cmapFormat12) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	g := uint32(gid)
	for i := 0; i < cm.numGroups; i++ {
		start, err := cm.groups.u32(i * 12)
		if err != nil {
			return 0
		}
		end, _ := cm.groups.u32(i*12 + 4)
		startGlyph, _ := cm.groups.u32(i*12 + 8)
		if g >= startGlyph && g-startGlyph <= end-start {
			return rune(start + (g - startGlyph))
		}
	}
	return 0
}
