package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// gsubBytes builds a minimal GSUB table: one script, one feature, one
// lookup with one sub-table.
func gsubBytes() []byte {
	b := make([]byte, 76)
	putU16(b, 0, 1)  // majorVersion
	putU16(b, 2, 0)  // minorVersion
	putU16(b, 4, 12) // scriptListOffset
	putU16(b, 6, 40) // featureListOffset
	putU16(b, 8, 60) // lookupListOffset
	// ScriptList at 12
	putU16(b, 12, 1)
	putTag(b, 14, "latn")
	putU16(b, 18, 8) // Script table at 12+8=20
	putU16(b, 20, 6) // defaultLangSysOffset -> 26
	putU16(b, 22, 0) // langSysCount
	// default LangSys at 26
	putU16(b, 28, 0xffff) // no required feature
	putU16(b, 30, 0)      // featureIndexCount
	// FeatureList at 40
	putU16(b, 40, 1)
	putTag(b, 42, "liga")
	putU16(b, 46, 8) // Feature table at 40+8=48
	putU16(b, 50, 1) // lookupIndexCount
	putU16(b, 52, 0) // -> lookup 0
	// LookupList at 60
	putU16(b, 60, 1)
	putU16(b, 62, 4) // Lookup at 60+4=64
	putU16(b, 64, 4) // lookupType: ligature
	putU16(b, 66, uint16(LOOKUP_FLAG_IGNORE_MARKS))
	putU16(b, 68, 1) // subTableCount
	putU16(b, 70, 8) // sub-table at 64+8=72
	putU16(b, 72, 1) // sub-table format
	return b
}

func TestParseGSubStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otbase.ot")
	defer teardown()
	//
	b := gsubBytes()
	ec := &errorCollector{}
	table, err := parseGSub(T("GSUB"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	gsub := table.Self().AsGSub()
	if gsub == nil {
		t.Fatal("cannot convert GSUB table")
	}
	if major, minor := gsub.Header().Version(); major != 1 || minor != 0 {
		t.Fatalf("expected version 1.0, got %d.%d", major, minor)
	}
	if gsub.ScriptList.Len() != 1 {
		t.Fatalf("expected 1 script, got %d", gsub.ScriptList.Len())
	}
	if gsub.ScriptList.LookupTag(T("latn")).IsNull() {
		t.Fatal("expected script 'latn'")
	}
	if gsub.FeatureList.LookupTag(T("liga")).IsNull() {
		t.Fatal("expected feature 'liga'")
	}
	if gsub.LookupList.Len() != 1 {
		t.Fatalf("expected 1 lookup, got %d", gsub.LookupList.Len())
	}
	lookup, err := gsub.LookupList.Navigate(0)
	if err != nil {
		t.Fatal(err)
	}
	if lookup.Type != 4 {
		t.Fatalf("expected lookup type 4, got %d", lookup.Type)
	}
	if lookup.Flag&LOOKUP_FLAG_IGNORE_MARKS == 0 {
		t.Fatal("expected IGNORE_MARKS flag")
	}
	if lookup.SubTableCount() != 1 {
		t.Fatalf("expected 1 sub-table, got %d", lookup.SubTableCount())
	}
	sub, err := lookup.SubTable(0)
	if err != nil {
		t.Fatal(err)
	}
	if sub.U16(0) != 1 {
		t.Fatalf("expected sub-table format 1, got %d", sub.U16(0))
	}
}

func TestParseLayoutHeaderRejectsUnknownVersion(t *testing.T) {
	b := gsubBytes()
	putU16(b, 0, 2)
	ec := &errorCollector{}
	_, err := parseGSub(T("GSUB"), b, 0, uint32(len(b)), ec)
	if !IsUnsupportedVersion(err) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}

func TestParseLayoutHeaderValidatesOffsets(t *testing.T) {
	b := gsubBytes()
	putU16(b, 8, 60000) // lookup list offset far out
	ec := &errorCollector{}
	_, err := parseGSub(T("GSUB"), b, 0, uint32(len(b)), ec)
	if err == nil {
		t.Fatal("expected error for out-of-bounds section offset")
	}
}

func TestParseGPosSharesLayoutStructure(t *testing.T) {
	b := gsubBytes()
	ec := &errorCollector{}
	table, err := parseGPos(T("GPOS"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	gpos := table.Self().AsGPos()
	if gpos == nil {
		t.Fatal("cannot convert GPOS table")
	}
	if gpos.ScriptList.LookupTag(T("latn")).IsNull() {
		t.Fatal("expected script 'latn'")
	}
}

func TestParseLangSysTable(t *testing.T) {
	b := make([]byte, 10)
	putU16(b, 2, 0xffff) // requiredFeatureIndex
	putU16(b, 4, 2)      // featureIndexCount
	putU16(b, 6, 3)
	putU16(b, 8, 7)
	lsys, err := parseLangSys(binarySegm(b), 2, "Feature")
	if err != nil {
		t.Fatal(err)
	}
	if lsys.mandatory != 0xffff {
		t.Fatalf("expected no required feature, got %d", lsys.mandatory)
	}
	if lsys.featureIndices.Len() != 2 {
		t.Fatalf("expected 2 feature indices, got %d", lsys.featureIndices.Len())
	}
	if got := lsys.featureIndices.Get(1).U16(0); got != 7 {
		t.Fatalf("expected feature index 7, got %d", got)
	}
}

// --- GDEF ------------------------------------------------------------------

func TestParseGDef(t *testing.T) {
	b := make([]byte, 14+len(classDefFmt1(0, 0, 0)))
	putU16(b, 0, 1)
	putU16(b, 2, 2)  // version 1.2
	putU16(b, 4, 14) // glyphClassDefOffset
	copy(b[14:], classDefFmt1(10, 1, 2))
	ec := &errorCollector{}
	table, err := parseGDef(T("GDEF"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	gdef := table.Self().AsGDef()
	if gdef == nil {
		t.Fatal("cannot convert GDEF table")
	}
	if major, minor := gdef.Header().Version(); major != 1 || minor != 2 {
		t.Fatalf("expected version 1.2, got %d.%d", major, minor)
	}
	if got := gdef.GlyphClassDef.Lookup(11); got != 2 {
		t.Fatalf("expected glyph class 2, got %d", got)
	}
	if got := gdef.GlyphClassDef.Lookup(9); got != 0 {
		t.Fatalf("expected glyph class 0, got %d", got)
	}
	if len(ec.errors) > 0 {
		t.Fatalf("unexpected errors: %v", ec.errors)
	}
}

func TestParseGDefUnknownMinor(t *testing.T) {
	b := make([]byte, 20)
	putU16(b, 0, 1)
	putU16(b, 2, 5)
	ec := &errorCollector{}
	_, err := parseGDef(T("GDEF"), b, 0, uint32(len(b)), ec)
	if !IsUnsupportedVersion(err) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}

func TestParseGDefScopesSectionErrors(t *testing.T) {
	// A broken class def section is recorded; the header still parses.
	b := make([]byte, 20)
	putU16(b, 0, 1)
	putU16(b, 2, 0)
	putU16(b, 4, 14) // glyphClassDefOffset
	putU16(b, 14, 9) // bogus class def format
	ec := &errorCollector{}
	table, err := parseGDef(T("GDEF"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	if table.Self().AsGDef() == nil {
		t.Fatal("GDEF table should survive a broken section")
	}
	if len(ec.errors) == 0 {
		t.Fatal("expected a recorded error for the class def section")
	}
}
