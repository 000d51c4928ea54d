package otquery

import (
	"github.com/npillmayer/otbase/ot"
)

// --- Font Information -------------------------------------------------

// FontType returns a font's flavor as a string: "TrueType" for fonts with
// TrueType outlines, "CFF" for fonts with CFF data, "Apple TrueType" for
// fonts carrying the old Apple 'true' signature. Unrecognized signatures
// yield "Unknown".
func FontType(otf *ot.Font) string {
	if otf == nil || otf.Header == nil {
		return ""
	}
	switch otf.Header.FontType {
	case 0x00010000:
		return "TrueType"
	case uint32(ot.T("OTTO")):
		return "CFF"
	case uint32(ot.T("true")):
		return "Apple TrueType"
	}
	return "Unknown"
}

// LayoutTables returns a list of OpenType layout tables contained in a
// font, by table name.
func LayoutTables(otf *ot.Font) []string {
	tl := []string{}
	if otf == nil {
		return tl
	}
	for _, tag := range []string{"GSUB", "GPOS", "GDEF", "BASE", "JSTF"} {
		if otf.Table(ot.T(tag)) != nil {
			tl = append(tl, tag)
		}
	}
	return tl
}

// TableInfo is one row of a font's table directory summary.
type TableInfo struct {
	Tag    string
	Offset uint32
	Size   uint32
}

// TableSummary lists all tables of a font with their extents, in directory
// order of the tags returned by ot.Font.TableTags.
func TableSummary(otf *ot.Font) []TableInfo {
	if otf == nil {
		return nil
	}
	tags := otf.TableTags()
	summary := make([]TableInfo, 0, len(tags))
	for _, tag := range tags {
		table := otf.Table(tag)
		if table == nil {
			continue
		}
		offset, size := table.Extent()
		summary = append(summary, TableInfo{Tag: tag.String(), Offset: offset, Size: size})
	}
	return summary
}

// ClassesForGlyph looks up the GDEF categorization of a glyph. For fonts
// without a GDEF table, zero classes are returned.
func ClassesForGlyph(otf *ot.Font, gid ot.GlyphIndex) GlyphClassesInfo {
	clz := GlyphClassesInfo{}
	if otf == nil || otf.Layout.GDef == nil {
		return clz
	}
	gdef := otf.Layout.GDef
	clz.Class = GlyphClass(gdef.GlyphClassDef.Lookup(gid))
	clz.MarkAttachmentClass = gdef.MarkAttachmentClassDef.Lookup(gid)
	return clz
}
