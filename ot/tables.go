package ot

import "fmt"

// Concrete interpretations for the metric and naming tables. Each table
// type only surfaces the handful of fields needed for consistency checks
// and common queries; everything else stays reachable through the generic
// navigation interface:
//
//	head   := otf.Table(T("head"))
//	fields := head.Fields()
//
// See also type `Navigator`.

// --- Head table ------------------------------------------------------------

// headMagic is the fixed magicNumber field every 'head' table carries.
const headMagic = 0x5f0f3cf5

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	FontRevision     Fixed  // set by font manufacturer
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret loca table
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// The 'head' table is 54 bytes of fixed layout. Its magicNumber field is a
// constant; a mismatch means the bytes are not a head table at all.
func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		return nil, boundsErr("head", 0, 54, int(size))
	}
	if _, _, err := dispatchMajorMinor(b, "head", 1); err != nil {
		return nil, err
	}
	magic, _ := b.u32(12)
	if magic != headMagic {
		return nil, FormatError{Detail: "head table magic number mismatch", Value: magic}
	}
	t := newHeadTable(tag, b, offset, size)
	t.FontRevision, _ = b.fixed(4)
	t.Flags, _ = b.u16(16)
	t.UnitsPerEm, _ = b.u16(18)
	t.IndexToLocFormat, _ = b.u16(50)
	if t.IndexToLocFormat > 1 {
		ec.addError(tag, "indexToLocFormat",
			FormatError{Detail: "invalid indexToLocFormat", Value: uint32(t.IndexToLocFormat)},
			SeverityMajor, offset)
		t.IndexToLocFormat = 0
	}
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	Version   uint32 // 0x00005000 (CFF outlines) or 0x00010000 (TrueType)
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// Fonts with CFF data must use version 0.5 of this table, specifying only
// the numGlyphs field. Fonts with TrueType outlines must use version 1.0,
// where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	version, err := dispatchVersion32(b, "maxp", 0x00005000, 0x00010000)
	if err != nil {
		return nil, err
	}
	if version == 0x00010000 && size < 32 {
		return nil, boundsErr("maxp", 0, 32, int(size))
	}
	if size < 6 {
		return nil, boundsErr("maxp", 0, 6, int(size))
	}
	t := newMaxPTable(tag, b, offset, size)
	t.Version = version
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfHMetrics    int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		return nil, boundsErr("hhea", 0, 36, int(size))
	}
	if _, _, err := dispatchMajorMinor(b, "hhea", 1); err != nil {
		return nil, err
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	t.AdvanceWidthMax, _ = b.u16(10)
	t.MinLeftSideBearing, _ = b.i16(12)
	t.MinRightSideBearing, _ = b.i16(14)
	t.XMaxExtent, _ = b.i16(16)
	t.CaretSlopeRise, _ = b.i16(18)
	t.CaretSlopeRun, _ = b.i16(20)
	t.CaretOffset, _ = b.i16(22)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// HMtxTable contains metric information for the horizontal layout of each
// glyph in the font. The leading hMetrics array has NumberOfHMetrics
// entries of two parts each, advance width and left side bearing;
// NumberOfHMetrics is taken from the 'hhea' table. Optionally an array of
// bare left side bearings follows, one entry per remaining glyph; those
// glyphs share the advance width of the last hMetrics entry.
//
// Interpreting hmtx needs counts from two other tables, so the metric
// arrays are bound in a separate step after the directory parse (see
// bindMetrics).
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// hmtx cannot be interpreted in isolation; the raw bytes are kept and
// decoded by bindMetrics during the cross-table consistency pass.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size == 0 {
		return nil, boundsErr("hmtx", 0, 4, 0)
	}
	return newHMtxTable(tag, b, offset, size), nil
}

// bindMetrics decodes the metric arrays, given numberOfHMetrics from 'hhea'
// and the glyph count from 'maxp'. The required size is computed with
// checked arithmetic and validated against the table extent before any
// entry is read.
func (t *HMtxTable) bindMetrics(numberOfHMetrics, numGlyphs int) error {
	if t == nil {
		return nil
	}
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	longSize, err := checkedMulInt(numberOfHMetrics, 4)
	if err != nil {
		return err
	}
	lsbCount := numGlyphs - numberOfHMetrics
	lsbSize, err := checkedMulInt(lsbCount, 2)
	if err != nil {
		return err
	}
	required, err := checkedAddInt(longSize, lsbSize)
	if err != nil {
		return err
	}
	if required > len(t.data) {
		return boundsErr("hmtx", 0, required, len(t.data))
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		aw, _ := t.data.u16(i * 4)
		lsb, _ := t.data.i16(i*4 + 2)
		longMetrics[i] = HMetricRecord{AdvanceWidth: aw, LeftSideBearing: lsb}
	}
	leftSideBearings := make([]int16, lsbCount)
	for i := 0; i < lsbCount; i++ {
		lsb, _ := t.data.i16(longSize + i*2)
		leftSideBearings[i] = lsb
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[g]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i >= len(t.leftSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}

// --- Loca table ------------------------------------------------------------

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table. By definition, index
// zero points to the “missing character”, which is the character that
// appears if a character is not found in the font.
//
// The entry width depends on the indexToLocFormat field of 'head' and the
// entry count on the numGlyphs field of 'maxp'; both are bound during the
// cross-table consistency pass (see bindGlyphCount).
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) uint32
	locCnt  int
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.inx2loc = shortLocaVersion // may get changed during consistency check
	t.locCnt = 0                 // bound during consistency check
	t.self = t
	return t
}

func parseLoca(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newLocaTable(tag, b, offset, size), nil
}

// bindGlyphCount validates the loca extent against the glyph count from
// 'maxp' and the entry width from head.indexToLocFormat, and selects the
// matching entry decoder.
func (t *LocaTable) bindGlyphCount(numGlyphs int, indexToLocFormat uint16) error {
	if t == nil {
		return nil
	}
	entrySz := 2
	decoder := shortLocaVersion
	if indexToLocFormat == 1 {
		entrySz = 4
		decoder = longLocaVersion
	}
	required, err := checkedMulInt(numGlyphs+1, entrySz)
	if err != nil {
		return err
	}
	if required > len(t.data) {
		return boundsErr("loca", 0, required, len(t.data))
	}
	t.inx2loc = decoder
	t.locCnt = numGlyphs + 1
	return nil
}

// IndexToLocation returns the location of glyph gid's data block within the
// 'glyf' table. Out-of-range indices map to the missing character at
// location 0.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	return t.inx2loc(t, gid)
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if int(gid) >= t.locCnt {
		return 0
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0
	}
	// short format stores the actual offset divided by 2
	return uint32(loc) * 2
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	if int(gid) >= t.locCnt {
		return 0
	}
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0
	}
	return loc
}

// --- OS/2 table ------------------------------------------------------------

// OS2Table contains a small, concrete subset of metrics from table 'OS/2'
// required for layout fallback decisions.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	WeightClass   uint16
	WidthClass    uint16
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
}

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	// version 0 of OS/2 already carries 78 bytes
	if size < 78 {
		return nil, boundsErr("OS/2", 0, 78, int(size))
	}
	version, err := b.u16(0)
	if err != nil {
		return nil, err
	}
	if version > 5 {
		return nil, UnsupportedVersionError{Kind: "OS/2", Value: uint32(version)}
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version = version
	t.XAvgCharWidth, _ = b.i16(2)
	t.WeightClass, _ = b.u16(4)
	t.WidthClass, _ = b.u16(6)
	t.FsSelection, _ = b.u16(62)
	t.TypoAscender, _ = b.i16(68)
	t.TypoDescender, _ = b.i16(70)
	t.TypoLineGap, _ = b.i16(72)
	t.WinAscent, _ = b.u16(74)
	t.WinDescent, _ = b.u16(76)
	return t, nil
}

// --- Name table ------------------------------------------------------------

// NameTable contains the font's naming strings: family, style, copyright,
// sample text and so on, keyed by (platform, encoding, language, nameID).
// This package returns the raw string bytes; decoding them (UTF-16BE for
// the Windows and Unicode platforms) is left to the caller.
type NameTable struct {
	tableBase
	strbuf   binarySegm // string storage area
	nameRecs array      // name records, 12 bytes each
}

// NameRecord identifies one entry of the name table.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// Name table header:
// | uint16 | version       | 0 or 1                |
// | uint16 | count         | number of records     |
// | uint16 | storageOffset | to string storage     |
// | NameRecord[count]      | 12 bytes each         |
func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < 6 {
		return nil, boundsErr("name", 0, 6, len(b))
	}
	version, _ := b.u16(0)
	if version > 1 {
		return nil, UnsupportedVersionError{Kind: "name", Value: uint32(version)}
	}
	N, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	if int(strOffset) > len(b) {
		return nil, boundsErr("name storage", int(strOffset), 1, len(b))
	}
	recsSize, err := checkedMulInt(12, int(N))
	if err != nil {
		return nil, err
	}
	required, err := checkedAddInt(6, recsSize)
	if err != nil {
		return nil, err
	}
	if required > len(b) {
		return nil, boundsErr("name", 6, recsSize, len(b))
	}
	t := newNameTable(tag, b, offset, size)
	t.strbuf = b[strOffset:]
	t.nameRecs = viewArray(b[6:required], 12)
	return t, nil
}

// Count returns the number of name records.
func (t *NameTable) Count() int {
	if t == nil {
		return 0
	}
	return t.nameRecs.length
}

// Record returns name record #i and the raw bytes of its string. The bytes
// are a view into the font buffer, in the encoding the record declares.
func (t *NameTable) Record(i int) (NameRecord, []byte, error) {
	rec, err := t.nameRecs.get(i)
	if err != nil {
		return NameRecord{}, nil, err
	}
	r := NameRecord{}
	r.PlatformID, _ = rec.u16(0)
	r.EncodingID, _ = rec.u16(2)
	r.LanguageID, _ = rec.u16(4)
	r.NameID, _ = rec.u16(6)
	length, _ := rec.u16(8)
	strOff, _ := rec.u16(10)
	s, err := t.strbuf.view(int(strOff), int(length))
	if err != nil {
		return r, nil, fmt.Errorf("name record %d: %w", i, err)
	}
	return r, s, nil
}

// Name returns the raw bytes for a given name ID, preferring the Windows
// platform (3), then Unicode (0), then Macintosh (1). Both preferred
// platforms store UTF-16BE.
func (t *NameTable) Name(nameID uint16) (NameRecord, []byte, bool) {
	if t == nil {
		return NameRecord{}, nil, false
	}
	var best NameRecord
	var bestBytes []byte
	bestRank := -1
	for i := 0; i < t.nameRecs.length; i++ {
		r, s, err := t.Record(i)
		if err != nil || r.NameID != nameID {
			continue
		}
		rank := 0
		switch r.PlatformID {
		case 3:
			rank = 3
		case 0:
			rank = 2
		case 1:
			rank = 1
		}
		if rank > bestRank {
			best, bestBytes, bestRank = r, s, rank
		}
	}
	return best, bestBytes, bestRank >= 0
}

// --- Kern table ------------------------------------------------------------

// KernTable gives access to kerning pairs. TrueType and OpenType slightly
// differ on formats of kern tables: see
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6kern.html
// and https://docs.microsoft.com/en-us/typography/opentype/spec/kern
//
// Only format 0 sub-tables are interpreted; in the real world fonts usually
// carry just one kern sub-table, and older Windows versions cannot handle
// more than one.
type KernTable struct {
	tableBase
	headers []kernSubTableHeader
}

type kernSubTableHeader struct {
	offset   uint16 // start position of this sub-table's kern pairs
	length   uint32 // size of the sub-table in bytes, without header
	coverage uint16 // info about type of information contained in this sub-table
	pairs    int    // number of kern pairs
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func parseKern(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size <= 4 {
		return nil, boundsErr("kern", 0, 4, int(size))
	}
	var N, suboffset, subheaderlen int
	if version, _ := b.u32(0); version == 0x00010000 {
		tracer().Debugf("font has Apple TTF kern table format")
		n, _ := b.u32(4) // number of kerning sub-tables is uint32
		N, suboffset, subheaderlen = int(n), 8, 16
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		n, _ := b.u16(2) // number of kerning sub-tables is uint16
		N, suboffset, subheaderlen = int(n), 4, 14
	}
	t := newKernTable(tag, b, offset, size)
	for i := 0; i < N; i++ {
		hdr, err := b.view(suboffset, subheaderlen)
		if err != nil {
			ec.addError(tag, "subtable header", err, SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat("kern sub-table header exceeds table bounds")
		}
		length, _ := hdr.u16(2)
		coverage, _ := hdr.u16(4)
		if int(length) < subheaderlen {
			ec.addError(tag, "subtable header",
				FormatError{Detail: "kern sub-table length smaller than header", Value: uint32(length)},
				SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat("kern sub-table length smaller than header")
		}
		h := kernSubTableHeader{
			offset:   uint16(suboffset + subheaderlen),
			length:   uint32(length) - uint32(subheaderlen),
			coverage: coverage,
		}
		if format := h.coverage >> 8; format != 0 {
			tracer().Infof("kern sub-table format %d not supported, ignoring sub-table", format)
			suboffset += int(length)
			continue
		}
		npairs, _ := b.u16(suboffset + subheaderlen - 8)
		h.pairs = int(npairs)
		sz, err := checkedMulUint32(uint32(npairs), 6) // kern pair is of size 6
		if err != nil {
			ec.addError(tag, "subtable size", err, SeverityMajor, offset+uint32(suboffset))
			return nil, err
		}
		if sz != h.length {
			// For some fonts, size calculation of kern sub-tables is off; see
			// https://github.com/fonttools/fonttools/issues/314
			// Testable with the Calibri font.
			ec.addWarning(tag, fmt.Sprintf("kern sub-table size declared 0x%x, pairs need 0x%x", h.length, sz), offset+uint32(suboffset))
		}
		pairsEnd, err := checkedAddUint32(uint32(h.offset), sz)
		if err != nil || pairsEnd > uint32(len(b)) {
			ec.addError(tag, "subtable bounds",
				boundsErr("kern pairs", int(h.offset), int(sz), len(b)), SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat("kern sub-table exceeds kern table bounds")
		}
		t.headers = append(t.headers, h)
		suboffset += subheaderlen + int(h.length)
	}
	tracer().Debugf("table kern has %d sub-table(s)", len(t.headers))
	return t, nil
}

// SubTableCount returns the number of interpreted (format 0) sub-tables.
func (t *KernTable) SubTableCount() int {
	if t == nil {
		return 0
	}
	return len(t.headers)
}

// Kerning returns the kern value for the glyph pair (left, right) from the
// first sub-table containing the pair. Kern pairs are sorted by the
// combined key, enabling binary search.
func (t *KernTable) Kerning(left, right GlyphIndex) (int16, bool) {
	if t == nil {
		return 0, false
	}
	key := uint32(left)<<16 | uint32(right)
	for _, h := range t.headers {
		lo, hi := 0, h.pairs
		for lo < hi {
			mid := (lo + hi) / 2
			at := int(h.offset) + mid*6
			l, err := t.data.u16(at)
			if err != nil {
				break
			}
			r, _ := t.data.u16(at + 2)
			k := uint32(l)<<16 | uint32(r)
			switch {
			case k < key:
				lo = mid + 1
			case k > key:
				hi = mid
			default:
				v, _ := t.data.i16(at + 4)
				return v, true
			}
		}
	}
	return 0, false
}
