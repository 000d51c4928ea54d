package ot

import "fmt"

// Navigating a font's binary data without copying it: locations are windows
// into the font's buffer, links are offsets between windows. A link whose
// raw offset is 0 is a NULL link, meaning the referenced structure is
// absent. NULL is a valid outcome of navigation, not an error.

// --- Link ------------------------------------------------------------------

// NavLink is a type to represent the transfer from one navigation item to
// another. Clients may use it to either arrive at the binary segment of the
// destination (call Jump) or to receive the destination as a Navigator item
// (call Navigate).
//
// Name returns the OpenType structure name of the link's destination. IsNull
// is used to check if this NavLink represents a link to a valid destination;
// an offset field holding 0 always yields a null link.
//
// Links may chain arbitrarily deep: a resolved destination may itself
// contain offset fields, resolved relative to its own start. Every hop is
// validated independently against its base window.
type NavLink interface {
	Base() NavLocation   // source location
	Jump() NavLocation   // destination location
	IsNull() bool        // is this a link to an absent destination?
	Navigate() Navigator // interpret destination as an OpenType structure element
	Name() string        // OpenType structure name of destination
}

// parseLink16 parses a uint16 value at b[offset] and interprets it as a
// navigation link to another entity, relative to the start of base.
// `offset` is the number of bytes from the beginning of b to the offset
// field. It usually is the size of a preceding 'key' in bytes, but no
// semantics is enforced.
func parseLink16(b binarySegm, offset int, base binarySegm, target string) (NavLink, error) {
	n, err := b.u16(offset)
	if err != nil {
		return link16{}, boundsErr("offset16 to "+target, offset, 2, len(b))
	}
	// Offset 0 is a valid NULL link; any other value must land inside base.
	if n > 0 && int(n) > len(base) {
		return link16{}, boundsErr("offset16 to "+target, int(n), 1, len(base))
	}
	return link16{
		target: target,
		base:   base,
		offset: n,
	}, nil
}

func makeLink16(offset uint16, base binarySegm, target string) NavLink {
	return link16{
		target: target,
		base:   base,
		offset: offset,
	}
}

type link16 struct {
	err    error
	target string
	base   binarySegm
	offset uint16
}

func (l16 link16) IsNull() bool {
	if l16.err != nil {
		return true
	}
	return l16.offset == 0 || len(l16.base) == 0
}

func (l16 link16) Name() string {
	return l16.target
}

func (l16 link16) Base() NavLocation {
	return l16.base
}

func (l16 link16) Jump() NavLocation {
	if l16.err != nil || l16.IsNull() {
		return binarySegm{}
	}
	if int(l16.offset) > len(l16.base) {
		tracer().Debugf("offset16 to %s out of table bounds: %d > %d", l16.target, l16.offset, len(l16.base))
		return binarySegm{}
	}
	return l16.base[l16.offset:]
}

func (l16 link16) Navigate() Navigator {
	if l16.err != nil {
		return null(l16.err)
	}
	if l16.IsNull() {
		return null(nil)
	}
	return NavigatorFactory(l16.target, l16.Jump(), l16.base)
}

// parseLink24 parses a 3-byte offset at b[offset], relative to base.
// 24-bit offsets are rare; they occur in extended bitmap and cmap
// structures.
func parseLink24(b binarySegm, offset int, base binarySegm, target string) (NavLink, error) {
	n, err := b.u24(offset)
	if err != nil {
		return link32{}, boundsErr("offset24 to "+target, offset, 3, len(b))
	}
	if n > 0 && int(n) > len(base) {
		return link32{}, boundsErr("offset24 to "+target, int(n), 1, len(base))
	}
	return link32{
		target: target,
		base:   base,
		offset: n,
	}, nil
}

func parseLink32(b binarySegm, offset int, base binarySegm, target string) (NavLink, error) {
	n, err := b.u32(offset)
	if err != nil {
		return link32{}, boundsErr("offset32 to "+target, offset, 4, len(b))
	}
	if n > 0 && int64(n) > int64(len(base)) {
		return link32{}, boundsErr("offset32 to "+target, int(n), 1, len(base))
	}
	return link32{
		target: target,
		base:   base,
		offset: n,
	}, nil
}

func makeLink32(offset uint32, base binarySegm, target string) NavLink {
	return link32{
		target: target,
		base:   base,
		offset: offset,
	}
}

type link32 struct {
	err    error
	target string
	base   binarySegm
	offset uint32
}

func (l32 link32) IsNull() bool {
	if l32.err != nil {
		return true
	}
	return l32.offset == 0 || len(l32.base) == 0
}

func (l32 link32) Name() string {
	return l32.target
}

func (l32 link32) Base() NavLocation {
	return l32.base
}

func (l32 link32) Jump() NavLocation {
	if l32.err != nil || l32.IsNull() {
		return binarySegm{}
	}
	if int64(l32.offset) > int64(len(l32.base)) {
		tracer().Debugf("offset32 to %s out of table bounds: %d > %d", l32.target, l32.offset, len(l32.base))
		return binarySegm{}
	}
	return l32.base[l32.offset:]
}

func (l32 link32) Navigate() Navigator {
	if l32.err != nil {
		return null(l32.err)
	}
	if l32.IsNull() {
		return null(nil)
	}
	return NavigatorFactory(l32.target, l32.Jump(), l32.base)
}

// nullLink produces a link to nowhere, with an explanation.
func nullLink(reason string) NavLink {
	if reason == "" {
		return link16{}
	}
	return link16{err: fmt.Errorf("%s", reason)}
}

// --- Navigator -------------------------------------------------------------

// Navigator is a lazily evaluated interpretation of a byte segment as an
// OpenType structure element. Navigators do not materialize anything: each
// call re-derives its result from the underlying location.
//
// Error returns the first error encountered along the navigation chain that
// produced this Navigator; once an error occurs, all further navigation
// yields void navigators carrying that error.
type Navigator interface {
	Name() string             // OpenType structure name of this element
	IsVoid() bool             // does this navigator point to a valid structure?
	Error() error             // error that occurred during navigation, if any
	Location() NavLocation    // the underlying byte window
	Link(name string) NavLink // named offset field, if the structure has one
	List() NavList            // interpret the element as a list of records
	Map() TagRecordMap        // interpret the element as a tag→record map
}

// NavList is a read-only list of equally typed records.
type NavList interface {
	Name() string        // structure name, if known
	Len() int            // number of entries
	Get(int) NavLocation // entry #i as a byte window
	All() []NavLocation  // all entries, in storage order
}

// NavigatorFactory creates a Navigator for a named OpenType structure,
// positioned at loc. base is the window which offsets inside the structure
// are relative to (usually the enclosing table).
//
// The factory understands the common list-like layout structures
// (ScriptList, FeatureList, Script, LookupList); everything else is
// presented as an opaque location which clients may slice and read
// themselves.
func NavigatorFactory(name string, loc NavLocation, base binarySegm) Navigator {
	b := binarySegm(loc.Bytes())
	switch name {
	case "ScriptList", "FeatureList":
		target := "Script"
		if name == "FeatureList" {
			target = "Feature"
		}
		m := parseTagRecordMap16(b, 0, b, name, target)
		return mapNav{name: name, m: m}
	case "Script":
		// Script table: defaultLangSysOffset uint16, then a tag record map
		// of LangSys records.
		m := parseTagRecordMap16(b, 2, b, name, "LangSys")
		return mapNav{name: name, m: m}
	case "LookupList":
		a, err := parseArray16(b, 0, "LookupList", "Lookup")
		if err != nil {
			return null(err)
		}
		return listNav{name: name, a: a, base: b}
	}
	return locNav{name: name, loc: b, base: base}
}

// NavMap presents a tag record map as a Navigator, for clients that hold a
// map (e.g. a script or feature list) but want to continue navigating
// generically.
func NavMap(name string, m TagRecordMap) Navigator {
	return tagMapNav{name: name, m: m}
}

type tagMapNav struct {
	name string
	m    TagRecordMap
}

func (n tagMapNav) Name() string          { return n.name }
func (n tagMapNav) IsVoid() bool          { return n.m == nil || n.m.Len() == 0 }
func (n tagMapNav) Error() error          { return nil }
func (n tagMapNav) Location() NavLocation { return binarySegm{} }
func (n tagMapNav) List() NavList         { return u16List(nil) }

func (n tagMapNav) Map() TagRecordMap {
	if n.m == nil {
		return tagRecordMap16{}
	}
	return n.m
}

func (n tagMapNav) Link(name string) NavLink {
	if n.m == nil {
		return nullLink("no map to look up " + name)
	}
	return n.m.LookupTag(T(name))
}

// null produces a void Navigator carrying err.
func null(err error) Navigator {
	return nullNav{err: err}
}

type nullNav struct {
	err error
}

func (n nullNav) Name() string          { return "<void>" }
func (n nullNav) IsVoid() bool          { return true }
func (n nullNav) Error() error          { return n.err }
func (n nullNav) Location() NavLocation { return binarySegm{} }
func (n nullNav) Link(string) NavLink   { return nullLink("") }
func (n nullNav) List() NavList         { return u16List(nil) }
func (n nullNav) Map() TagRecordMap     { return tagRecordMap16{} }

// locNav is a Navigator over an opaque byte window.
type locNav struct {
	name string
	loc  binarySegm
	base binarySegm
}

func (n locNav) Name() string          { return n.name }
func (n locNav) IsVoid() bool          { return len(n.loc) == 0 }
func (n locNav) Error() error          { return nil }
func (n locNav) Location() NavLocation { return n.loc }

// Link interprets name as a decimal byte offset of an offset16 field; for
// generic structures the factory cannot know field names.
func (n locNav) Link(name string) NavLink {
	return nullLink("no named links in " + n.name)
}

func (n locNav) List() NavList {
	return viewArray16(n.loc)
}

func (n locNav) Map() TagRecordMap {
	return parseTagRecordMap16(n.loc, 0, n.base, n.name, "")
}

// mapNav is a Navigator over a tag→record map structure.
type mapNav struct {
	name string
	m    tagRecordMap16
}

func (n mapNav) Name() string          { return n.name }
func (n mapNav) IsVoid() bool          { return n.m.Len() == 0 }
func (n mapNav) Error() error          { return nil }
func (n mapNav) Location() NavLocation { return n.m.base }
func (n mapNav) List() NavList         { return n.m.records }
func (n mapNav) Map() TagRecordMap     { return n.m }

func (n mapNav) Link(name string) NavLink {
	return n.m.LookupTag(T(name))
}

// listNav is a Navigator over an offset16 array structure.
type listNav struct {
	name string
	a    array
	base binarySegm
}

func (n listNav) Name() string          { return n.name }
func (n listNav) IsVoid() bool          { return n.a.length == 0 }
func (n listNav) Error() error          { return nil }
func (n listNav) Location() NavLocation { return n.base }
func (n listNav) List() NavList         { return n.a }
func (n listNav) Map() TagRecordMap     { return tagRecordMap16{} }

func (n listNav) Link(name string) NavLink {
	return nullLink("no named links in " + n.name)
}
