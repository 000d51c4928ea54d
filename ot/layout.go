package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

This package parses the structure of GSUB, GPOS and GDEF: headers, script,
feature and lookup lists, class definitions and coverage. Interpreting
lookup sub-tables for shaping is out of scope.
*/

import "fmt"

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a base type for layout tables.
// OpenType specifies two such tables–GPOS and GSUB–which share some of their
// structure.
type LayoutTable struct {
	tableBase
	header      LayoutHeader
	ScriptList  TagRecordMap // script tag → Script table
	FeatureList TagRecordMap // feature tag → Feature table
	LookupList  LookupList
}

// Header returns the layout table header for this table.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

// GSubTable is the Glyph Substitution table.
type GSubTable struct {
	LayoutTable
}

// GPosTable is the Glyph Positioning table.
type GPosTable struct {
	LayoutTable
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	versionHeader
	offsets layoutHeader11
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// offsetFor returns an offset for a layout table section within the layout
// table (GPOS or GSUB). A layout table contains four sections:
// ▪︎ Script Section,
// ▪︎ Feature Section,
// ▪︎ Lookup Section,
// ▪︎ Feature Variations Section.
func (h *LayoutHeader) offsetFor(which layoutTableSectionName) int {
	switch which {
	case layoutScriptSection:
		return int(h.offsets.ScriptListOffset)
	case layoutFeatureSection:
		return int(h.offsets.FeatureListOffset)
	case layoutLookupSection:
		return int(h.offsets.LookupListOffset)
	case layoutFeatureVariationsSection:
		return int(h.offsets.FeatureVariationsOffset)
	}
	tracer().Errorf("illegal section offset type into layout table: %d", which)
	return 0 // illegal call, nothing sensible to return
}

// versionHeader is the beginning of the on-disk format of several table
// headers.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/gdef#gdef-header
// See https://www.microsoft.com/typography/otspec/GPOS.htm
// See https://www.microsoft.com/typography/otspec/GSUB.htm
type versionHeader struct {
	Major uint16
	Minor uint16
}

// layoutHeader10 is the on-disk format of GPOS/GSUB version header when
// major=1 and minor=0.
type layoutHeader10 struct {
	ScriptListOffset  uint16 // from beginning of GPOS/GSUB table
	FeatureListOffset uint16 // from beginning of GPOS/GSUB table
	LookupListOffset  uint16 // from beginning of GPOS/GSUB table
}

// layoutHeader11 is the on-disk format of GPOS/GSUB version header when
// major=1 and minor=1.
type layoutHeader11 struct {
	layoutHeader10
	FeatureVariationsOffset uint32 // may be NULL
}

// layoutTableSectionName lists the sections of OT layout tables, i.e. GPOS
// and GSUB.
type layoutTableSectionName int

const (
	layoutScriptSection layoutTableSectionName = iota
	layoutFeatureSection
	layoutLookupSection
	layoutFeatureVariationsSection
)

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups
	// and is ignored otherwise. It is not used by client software in
	// determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, the lookup structure carries a MarkFilteringSet field
	LOOKUP_FLAG_reserved                  LayoutTableLookupFlag = 0x00E0 // For future use (set to zero)
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified
)

// LayoutTableLookupType is a type identifier for layout lookup records
// (GPOS and GSUB). Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// --- Lookup list -----------------------------------------------------------

// LookupList gives access to the lookup tables of a GSUB or GPOS table,
// addressed by lookup index.
type LookupList struct {
	base    binarySegm // the lookup list section
	offsets array      // offset16 entries, one per lookup
	err     error
}

// Len returns the number of lookups in the list.
func (ll LookupList) Len() int {
	return ll.offsets.length
}

// Navigate returns lookup #i, or an error for out-of-range indices or a
// malformed lookup header.
func (ll LookupList) Navigate(i int) (Lookup, error) {
	if ll.err != nil {
		return Lookup{}, ll.err
	}
	entry, err := ll.offsets.get(i)
	if err != nil {
		return Lookup{}, err
	}
	link, err := parseLink16(entry, 0, ll.base, "Lookup")
	if err != nil {
		return Lookup{}, err
	}
	if link.IsNull() {
		return Lookup{}, FormatError{Detail: fmt.Sprintf("lookup %d has NULL offset", i)}
	}
	return parseLookup(binarySegm(link.Jump().Bytes()))
}

// Lookup is one lookup table of a GSUB or GPOS table:
//
// | uint16 | lookupType       | dispatch for sub-table layouts        |
// | uint16 | lookupFlag       | see the LOOKUP_FLAG constants         |
// | uint16 | subTableCount    |                                       |
// | uint16 | subtableOffsets[subTableCount]                           |
// | uint16 | markFilteringSet | only if USE_MARK_FILTERING_SET is set |
type Lookup struct {
	Type             LayoutTableLookupType
	Flag             LayoutTableLookupFlag
	MarkFilteringSet uint16
	subTables        array
	base             binarySegm
}

func parseLookup(b binarySegm) (Lookup, error) {
	l := Lookup{base: b}
	lt, err := b.u16(0)
	if err != nil {
		return Lookup{}, boundsErr("Lookup", 0, 6, len(b))
	}
	flag, err := b.u16(2)
	if err != nil {
		return Lookup{}, boundsErr("Lookup", 2, 4, len(b))
	}
	l.Type = LayoutTableLookupType(lt)
	l.Flag = LayoutTableLookupFlag(flag)
	l.subTables, err = parseArray16(b, 4, "Lookup", "LookupSubtable")
	if err != nil {
		return Lookup{}, err
	}
	if l.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		at, err := checkedAddInt(6, l.subTables.length*2)
		if err != nil {
			return Lookup{}, err
		}
		mfs, err := b.u16(at)
		if err != nil {
			return Lookup{}, boundsErr("Lookup markFilteringSet", at, 2, len(b))
		}
		l.MarkFilteringSet = mfs
	}
	return l, nil
}

// SubTableCount returns the number of sub-tables of this lookup.
func (l Lookup) SubTableCount() int {
	return l.subTables.length
}

// SubTable returns the byte window of sub-table #i. The sub-table's format
// discriminant sits at its first uint16.
func (l Lookup) SubTable(i int) (NavLocation, error) {
	entry, err := l.subTables.get(i)
	if err != nil {
		return binarySegm{}, err
	}
	link, err := parseLink16(entry, 0, l.base, "LookupSubtable")
	if err != nil {
		return binarySegm{}, err
	}
	return link.Jump(), nil
}

// --- GSUB and GPOS ---------------------------------------------------------

func newGSubTable(tag Tag, b binarySegm, offset, size uint32) *GSubTable {
	t := &GSubTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

func newGPosTable(tag Tag, b binarySegm, offset, size uint32) *GPosTable {
	t := &GPosTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// GSUB — the Glyph Substitution table — provides data for substitution of
// glyphs. Only the structural skeleton is interpreted here.
func parseGSub(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	gsub := newGSubTable(tag, b, offset, size)
	if err := parseLayoutStructure(&gsub.LayoutTable, b, tag, ec); err != nil {
		return nil, err
	}
	return gsub, nil
}

// GPOS — the Glyph Positioning table — provides data for glyph placement.
func parseGPos(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	gpos := newGPosTable(tag, b, offset, size)
	if err := parseLayoutStructure(&gpos.LayoutTable, b, tag, ec); err != nil {
		return nil, err
	}
	return gpos, nil
}

// parseLayoutStructure parses the parts GSUB and GPOS have in common:
// header, script list, feature list and lookup list. A defect in one
// section is recorded and does not abort the sibling sections.
func parseLayoutStructure(lytt *LayoutTable, b binarySegm, tag Tag, ec *errorCollector) error {
	if err := parseLayoutHeader(lytt, b, tag, ec); err != nil {
		return err
	}
	if err := parseScriptList(lytt, b); err != nil {
		ec.addError(tag, "ScriptList", err, SeverityMajor, 0)
	}
	if err := parseFeatureList(lytt, b); err != nil {
		ec.addError(tag, "FeatureList", err, SeverityMajor, 0)
	}
	if err := parseLookupList(lytt, b, tag, ec); err != nil {
		ec.addError(tag, "LookupList", err, SeverityMajor, 0)
	}
	return nil
}

// parseLayoutHeader parses a layout table header, supporting versions 1.0
// and 1.1, and validates every section offset against the table extent.
func parseLayoutHeader(lytt *LayoutTable, b binarySegm, tag Tag, ec *errorCollector) error {
	major, minor, err := dispatchMajorMinor(b, tag.String(), 1)
	if err != nil {
		return err
	}
	if minor > 1 {
		return UnsupportedVersionError{Kind: tag.String(), Value: uint32(major)<<16 | uint32(minor)}
	}
	h := LayoutHeader{versionHeader: versionHeader{Major: major, Minor: minor}}
	header, err := b.view(4, 6)
	if err != nil {
		return boundsErr(tag.String()+" header", 4, 6, len(b))
	}
	h.offsets.ScriptListOffset, _ = header.u16(0)
	h.offsets.FeatureListOffset, _ = header.u16(2)
	h.offsets.LookupListOffset, _ = header.u16(4)
	if minor == 1 {
		fvar, err := b.u32(10)
		if err != nil {
			return boundsErr(tag.String()+" header", 10, 4, len(b))
		}
		h.offsets.FeatureVariationsOffset = fvar
	}
	for _, section := range []struct {
		name   string
		offset int
	}{
		{"ScriptList", int(h.offsets.ScriptListOffset)},
		{"FeatureList", int(h.offsets.FeatureListOffset)},
		{"LookupList", int(h.offsets.LookupListOffset)},
		{"FeatureVariations", int(h.offsets.FeatureVariationsOffset)},
	} {
		if section.offset > 0 && section.offset >= len(b) {
			return fmt.Errorf("layout %s offset out of bounds: %d >= %d: %w",
				section.name, section.offset, len(b),
				boundsErr(section.name, section.offset, 1, len(b)))
		}
	}
	lytt.header = h
	return nil
}

// A ScriptList table consists of a count of the scripts represented by the
// glyphs in the font and an array of records, one for each script for which
// the font defines script-specific features. Each record consists of a
// script tag and an offset to a Script table. The array is stored in
// alphabetic order of the script tags.
func parseScriptList(lytt *LayoutTable, b binarySegm) error {
	link := link16{base: b, offset: uint16(lytt.header.offsetFor(layoutScriptSection))}
	if link.IsNull() {
		lytt.ScriptList = tagRecordMap16{}
		return nil
	}
	scripts := binarySegm(link.Jump().Bytes())
	lytt.ScriptList = parseTagRecordMap16(scripts, 0, scripts, "ScriptList", "Script")
	return nil
}

// The FeatureList table enumerates features in an array of records and
// specifies the total number of features. Every feature must have a record,
// consisting of a feature tag and an offset to a Feature table. The array
// is arranged alphabetically by feature tag.
func parseFeatureList(lytt *LayoutTable, b binarySegm) error {
	link := link16{base: b, offset: uint16(lytt.header.offsetFor(layoutFeatureSection))}
	if link.IsNull() {
		lytt.FeatureList = tagRecordMap16{}
		return nil
	}
	features := binarySegm(link.Jump().Bytes())
	lytt.FeatureList = parseTagRecordMap16(features, 0, features, "FeatureList", "Feature")
	return nil
}

// parseLookupList parses the LookupList.
// See https://www.microsoft.com/typography/otspec/chapter2.htm#lulTbl
func parseLookupList(lytt *LayoutTable, b binarySegm, tag Tag, ec *errorCollector) error {
	link := link16{base: b, offset: uint16(lytt.header.offsetFor(layoutLookupSection))}
	if link.IsNull() {
		return nil
	}
	section := binarySegm(link.Jump().Bytes())
	count, err := section.u16(0)
	if err != nil {
		return boundsErr("LookupList", 0, 2, len(section))
	}
	if int(count) > MaxLookupCount {
		return FormatError{Detail: fmt.Sprintf("lookup list count %d exceeds maximum %d", count, MaxLookupCount)}
	}
	ll := LookupList{base: section}
	ll.offsets, ll.err = parseArray16(section, 0, "LookupList", "Lookup")
	if ll.err != nil {
		return ll.err
	}
	lytt.LookupList = ll
	// Every lookup header must be reachable within the section.
	for i := 0; i < ll.offsets.length; i++ {
		entry, _ := ll.offsets.get(i)
		off := int(entry.U16(0))
		if off == 0 {
			continue
		}
		if off+6 > len(section) {
			ec.addError(tag, "LookupList",
				boundsErr("Lookup", off, 6, len(section)), SeverityMajor, 0)
		}
	}
	return nil
}

// --- LangSys ---------------------------------------------------------------

// langSys is a language system table: the feature indices applying to one
// language of one script.
//
// | uint16 | lookupOrderOffset    | = NULL, reserved             |
// | uint16 | requiredFeatureIndex | 0xFFFF if none               |
// | uint16 | featureIndexCount    |                              |
// | uint16 | featureIndices[featureIndexCount]                   |
type langSys struct {
	mandatory      uint16 // feature required for this language system
	featureIndices array  // indices into the FeatureList, in arbitrary order
}

// parseLangSys expects b+offset to be positioned at the start of the
// required-feature field, i.e. the second uint16 of a LangSys table.
func parseLangSys(b binarySegm, offset int, target string) (langSys, error) {
	lsys := langSys{}
	if len(b) < offset+4 {
		return lsys, errBufferBounds
	}
	tracer().Debugf("parsing LangSys (%s)", target)
	b = b[offset:]
	lsys.mandatory, _ = b.u16(0)
	features, err := parseArray16(b, 2, "LangSys", target)
	if err != nil {
		return lsys, err
	}
	lsys.featureIndices = features
	tracer().Debugf("LangSys points to %d features", features.length)
	return lsys, nil
}

// --- GDEF table ------------------------------------------------------------

// GDefTable, the Glyph Definition (GDEF) table, provides various glyph
// properties used in OpenType Layout processing.
//
// See also
// https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
type GDefTable struct {
	tableBase
	header                 GDefHeader
	GlyphClassDef          ClassDefinitions
	AttachmentPointList    AttachmentPointList
	MarkAttachmentClassDef ClassDefinitions
	MarkGlyphSets          []Coverage
}

func newGDefTable(tag Tag, b binarySegm, offset, size uint32) *GDefTable {
	t := &GDefTable{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	return t
}

// Header returns the Glyph Definition header for t.
func (t *GDefTable) Header() GDefHeader {
	return t.header
}

// GDefHeader contains general information for a Glyph Definition table
// (GDEF). Three versions are defined: 1.0, 1.2 and 1.3.
type GDefHeader struct {
	versionHeader
	GlyphClassDefOffset      uint16
	AttachListOffset         uint16
	LigCaretListOffset       uint16
	MarkAttachClassDefOffset uint16
	MarkGlyphSetsDefOffset   uint16 // since version 1.2
	ItemVarStoreOffset       uint32 // since version 1.3
	headerSize               uint8  // header size in bytes
}

// Version returns major and minor version numbers for this GDef table.
func (h GDefHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// AttachmentPointList holds, for every covered glyph, the contour point
// indices of its attachment points.
type AttachmentPointList struct {
	Count    int
	Coverage Coverage
	offsets  array      // offset16 per covered glyph, to AttachPoint tables
	base     binarySegm // the AttachList table
}

// PointIndices returns the attachment point indices for the glyph with
// coverage index i.
func (apl AttachmentPointList) PointIndices(i int) ([]uint16, error) {
	entry, err := apl.offsets.get(i)
	if err != nil {
		return nil, err
	}
	link, err := parseLink16(entry, 0, apl.base, "AttachPoint")
	if err != nil {
		return nil, err
	}
	if link.IsNull() {
		return nil, nil
	}
	points, err := parseArray16(binarySegm(link.Jump().Bytes()), 0, "AttachPoint", "PointIndex")
	if err != nil {
		return nil, err
	}
	indices := make([]uint16, points.length)
	for j := 0; j < points.length; j++ {
		indices[j], _ = points.loc.u16(j * 2)
	}
	return indices, nil
}

// The Glyph Definition (GDEF) table provides various glyph properties used
// in OpenType Layout processing. The Ligature Caret List (used for text
// editing/cursor positioning) is not interpreted.
func parseGDef(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	gdef := newGDefTable(tag, b, offset, size)
	if err := parseGDefHeader(gdef, b); err != nil {
		return nil, err
	}
	if err := parseGlyphClassDefinitions(gdef, b); err != nil {
		ec.addError(tag, GDefGlyphClassDefSection, err, SeverityMajor, offset)
	}
	if err := parseAttachmentPointList(gdef, b); err != nil {
		ec.addError(tag, GDefAttachListSection, err, SeverityMajor, offset)
	}
	if err := parseMarkAttachmentClassDef(gdef, b); err != nil {
		ec.addError(tag, GDefMarkAttachClassSection, err, SeverityMajor, offset)
	}
	if err := parseMarkGlyphSets(gdef, b); err != nil {
		ec.addError(tag, GDefMarkGlyphSetsDefSection, err, SeverityMajor, offset)
	}
	return gdef, nil
}

// Sections of a GDEF table.
const (
	GDefGlyphClassDefSection    = "GlyphClassDef"
	GDefAttachListSection       = "AttachList"
	GDefLigCaretListSection     = "LigCaretList"
	GDefMarkAttachClassSection  = "MarkAttachClassDef"
	GDefMarkGlyphSetsDefSection = "MarkGlyphSetsDef"
	GDefItemVarStoreSection     = "ItemVarStore"
)

func parseGDefHeader(gdef *GDefTable, b binarySegm) error {
	major, minor, err := dispatchMajorMinor(b, "GDEF", 1)
	if err != nil {
		return err
	}
	switch minor {
	case 0, 2, 3:
		// known header layouts
	default:
		return UnsupportedVersionError{Kind: "GDEF", Value: uint32(major)<<16 | uint32(minor)}
	}
	h := GDefHeader{versionHeader: versionHeader{Major: major, Minor: minor}}
	fields, err := b.view(4, 8)
	if err != nil {
		return boundsErr("GDEF header", 4, 8, len(b))
	}
	h.GlyphClassDefOffset, _ = fields.u16(0)
	h.AttachListOffset, _ = fields.u16(2)
	h.LigCaretListOffset, _ = fields.u16(4)
	h.MarkAttachClassDefOffset, _ = fields.u16(6)
	h.headerSize = 12
	if minor >= 2 {
		mgs, err := b.u16(12)
		if err != nil {
			return boundsErr("GDEF header", 12, 2, len(b))
		}
		h.MarkGlyphSetsDefOffset = mgs
		h.headerSize = 14
	}
	if minor >= 3 {
		ivs, err := b.u32(14)
		if err != nil {
			return boundsErr("GDEF header", 14, 4, len(b))
		}
		h.ItemVarStoreOffset = ivs
		h.headerSize = 18
	}
	gdef.header = h
	return nil
}

func parseGlyphClassDefinitions(gdef *GDefTable, b binarySegm) error {
	link := link16{base: b, offset: gdef.header.GlyphClassDefOffset}
	if link.IsNull() {
		return nil
	}
	cdef, err := parseClassDefinitions(binarySegm(link.Jump().Bytes()))
	if err != nil {
		return err
	}
	gdef.GlyphClassDef = cdef
	return nil
}

// AttachList:
// | uint16 | coverageOffset    |                            |
// | uint16 | glyphCount        |                            |
// | uint16 | attachPointOffsets[glyphCount]                 |
func parseAttachmentPointList(gdef *GDefTable, b binarySegm) error {
	link := link16{base: b, offset: gdef.header.AttachListOffset}
	if link.IsNull() {
		return nil
	}
	attachList := binarySegm(link.Jump().Bytes())
	covLink, err := parseLink16(attachList, 0, attachList, "Coverage")
	if err != nil {
		return err
	}
	if covLink.IsNull() {
		return FormatError{Detail: "AttachList has NULL coverage offset"}
	}
	coverage, err := parseCoverage(binarySegm(covLink.Jump().Bytes()))
	if err != nil {
		return err
	}
	offsets, err := parseArray16(attachList, 2, "AttachList", "AttachPoint")
	if err != nil {
		return err
	}
	gdef.AttachmentPointList = AttachmentPointList{
		Count:    offsets.length,
		Coverage: coverage,
		offsets:  offsets,
		base:     attachList,
	}
	return nil
}

func parseMarkAttachmentClassDef(gdef *GDefTable, b binarySegm) error {
	link := link16{base: b, offset: gdef.header.MarkAttachClassDefOffset}
	if link.IsNull() {
		return nil
	}
	cdef, err := parseClassDefinitions(binarySegm(link.Jump().Bytes()))
	if err != nil {
		return err
	}
	gdef.MarkAttachmentClassDef = cdef
	return nil
}

// MarkGlyphSets:
// | uint16 | format            | = 1                        |
// | uint16 | markGlyphSetCount |                            |
// | uint32 | coverageOffsets[markGlyphSetCount]             |
func parseMarkGlyphSets(gdef *GDefTable, b binarySegm) error {
	link := link16{base: b, offset: gdef.header.MarkGlyphSetsDefOffset}
	if link.IsNull() {
		return nil
	}
	sets := binarySegm(link.Jump().Bytes())
	if _, err := dispatchFormat16(sets, "MarkGlyphSets", 1); err != nil {
		return err
	}
	offsets, err := parseArray(sets, 2, 4, "MarkGlyphSets", "Coverage")
	if err != nil {
		return err
	}
	for i := 0; i < offsets.length; i++ {
		entry, _ := offsets.get(i)
		covLink, err := parseLink32(entry, 0, sets, "Coverage")
		if err != nil {
			return err
		}
		if covLink.IsNull() {
			gdef.MarkGlyphSets = append(gdef.MarkGlyphSets, Coverage{})
			continue
		}
		coverage, err := parseCoverage(binarySegm(covLink.Jump().Bytes()))
		if err != nil {
			return fmt.Errorf("mark glyph set %d: %w", i, err)
		}
		gdef.MarkGlyphSets = append(gdef.MarkGlyphSets, coverage)
	}
	return nil
}
