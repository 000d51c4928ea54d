package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otbase/ot"
	"github.com/npillmayer/otbase/otquery"
	"github.com/pterm/pterm"
)

func printOp(intp *Intp, op *Op) (err error, stop bool) {
	var nav ot.Navigator
	if nav, err = intp.checkLocation(); err != nil {
		return
	}
	n := intp.lastPathNode()
	sb := strings.Builder{}
	if n.key != "" {
		sb.WriteString(fmt.Sprintf("%s[%s]", nav.Name(), n.key))
	} else if n.inx >= 0 {
		sb.WriteString(fmt.Sprintf("%s[%d]", nav.Name(), n.inx))
	} else if m := nav.Map(); m.Len() > 0 {
		sb.WriteString(fmt.Sprintf("%s@%v", nav.Name(), m.Tags()))
	} else if l := nav.List(); l.Len() > 0 {
		sb.WriteString(fmt.Sprintf("%s|%d|", nav.Name(), l.Len()))
	} else {
		sb.WriteString(nav.Name())
	}
	if n.link != nil {
		sb.WriteString(fmt.Sprintf(" -> (%s)", n.link.Name()))
	}
	pterm.Printf("Current location: %s\n", sb.String())
	return nil, false
}

// --- Font and table summaries -----------------------------------------------

func printFontSummary(otf *ot.Font) {
	info := otquery.NameInfo(otf, ot.DFLT)
	pterm.Printf("Font:   %s %s\n", info["family"], info["subfamily"])
	pterm.Printf("Flavor: %s\n", otquery.FontType(otf))
	if layouts := otquery.LayoutTables(otf); len(layouts) > 0 {
		pterm.Printf("Layout: %v\n", layouts)
	}
	data := [][]string{
		{"Tag", "Offset", "Size"},
	}
	for _, row := range otquery.TableSummary(otf) {
		data = append(data, []string{
			row.Tag,
			fmt.Sprintf("%d", row.Offset),
			fmt.Sprintf("%d", row.Size),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printTable(otf *ot.Font, tag string) error {
	table := otf.Table(ot.T(tag))
	if table == nil {
		return fmt.Errorf("font has no table %s", tag)
	}
	switch tag {
	case "head":
		if h, ok := otquery.HeadInfo(otf); ok {
			pterm.Printf("version:          %d.%d\n", h.MajorVersion, h.MinorVersion)
			pterm.Printf("unitsPerEm:       %d\n", h.UnitsPerEm)
			pterm.Printf("flags:            %#04x\n", h.Flags)
			pterm.Printf("macStyle:         %#04x\n", h.MacStyle)
			pterm.Printf("indexToLocFormat: %d\n", h.IndexToLocFormat)
			return nil
		}
	case "maxp":
		if m, ok := otquery.MaxPInfo(otf); ok {
			pterm.Printf("version:   %#08x\n", m.VersionFixed)
			pterm.Printf("numGlyphs: %d\n", m.NumGlyphs)
			if m.HasExtendedProfile {
				pterm.Printf("maxPoints: %d, maxContours: %d\n", m.MaxPoints, m.MaxContours)
			}
			return nil
		}
	case "name":
		data := [][]string{{"NameID", "Value"}}
		for nameId, value := range otquery.NamesRange(otf) {
			data = append(data, []string{fmt.Sprintf("%d", nameId), value})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil
	case "cmap":
		if otf.CMap != nil {
			pterm.Printf("selected sub-table format: %d\n", otf.CMap.GlyphIndexMap.Format())
			return nil
		}
	case "GSUB", "GPOS":
		lyt, err := layoutTableOf(table)
		if err != nil {
			return err
		}
		if lyt.ScriptList != nil {
			pterm.Printf("scripts:  %v\n", lyt.ScriptList.Tags())
		}
		if lyt.FeatureList != nil {
			pterm.Printf("features: %v\n", lyt.FeatureList.Tags())
		}
		printLookupList(lyt)
		return nil
	case "GDEF":
		if gdef := table.Self().AsGDef(); gdef != nil {
			major, minor := gdef.Header().Version()
			pterm.Printf("version:          %d.%d\n", major, minor)
			pterm.Printf("glyph class def:  format %d\n", gdef.GlyphClassDef.Format())
			pterm.Printf("mark attach def:  format %d\n", gdef.MarkAttachmentClassDef.Format())
			return nil
		}
	}
	offset, size := table.Extent()
	pterm.Printf("table %s: %d bytes at offset %d\n", tag, size, offset)
	return nil
}

// --- Lookup rendering --------------------------------------------------------

func printLookupList(table *ot.LayoutTable) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	ll := table.LookupList
	count := ll.Len()
	pterm.Printf("LookupList has %d entries\n", count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i := range count {
		lookup, err := ll.Navigate(i)
		if err != nil {
			data = append(data, []string{fmt.Sprintf("%d", i), "<error>", "-", "-"})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(lookup.Type),
			fmt.Sprintf("%d", lookup.SubTableCount()),
			formatLookupFlags(lookup.Flag),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookup(table *ot.LayoutTable, index int) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	ll := table.LookupList
	if index < 0 || index >= ll.Len() {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	lookup, err := ll.Navigate(index)
	if err != nil {
		pterm.Error.Printf("Lookup %d cannot be read: %v\n", index, err)
		return
	}
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d\n",
		index,
		formatLookupType(lookup.Type),
		formatLookupFlags(lookup.Flag),
		lookup.SubTableCount(),
	)
	data := [][]string{
		{"Sub", "Format", "Bytes"},
	}
	for i := 0; i < lookup.SubTableCount(); i++ {
		sub, err := lookup.SubTable(i)
		if err != nil {
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", sub.U16(0)),
			fmt.Sprintf("%d", sub.Size()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

var gsubLookupTypeNames = []string{
	"Unknown(0)",
	"Single",
	"Multiple",
	"Alternate",
	"Ligature",
	"Context",
	"ChainedContext",
	"ExtensionSubs",
	"ReverseChained",
}

func formatLookupType(ltype ot.LayoutTableLookupType) string {
	if int(ltype) < len(gsubLookupTypeNames) {
		return gsubLookupTypeNames[ltype]
	}
	return fmt.Sprintf("Type(%d)", ltype)
}

func formatLookupFlags(flag ot.LayoutTableLookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag>>8))
	}
	return strings.Join(parts, "|")
}
