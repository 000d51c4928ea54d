package ot

import (
	"fmt"
	"iter"
)

// Parsing of record sequences. The OpenType format family knows three
// shapes of sequences:
//
// ▪︎ fixed-stride arrays, where every record has identical byte width,
// allowing O(1) random access;
//
// ▪︎ arrays of offsets, where each entry links to a record of varying size
// (random access is O(1) through the offset resolver);
//
// ▪︎ self-sizing sequences, where each record's leading field declares its
// own byte width, forcing a linear scan to reach index i. The cost is
// inherent to the binary format; callers needing repeated random access
// build an explicit index with BuildIndex.
//
// For every shape, the declared count is validated against the remaining
// window before any element is accessed: either the whole array constructs,
// or construction fails with a bounds error. No partial access.

// --- Fixed-stride arrays ---------------------------------------------------

// array is a type for a linear sequence of equal-sized records.
type array struct {
	name       string
	target     string
	recordSize int
	length     int
	loc        binarySegm
}

// ParseList interprets a byte segment as a list of N records of a given
// fixed size. The segment must have been validated by the caller.
func ParseList(b NavLocation, N int, recordSize int) NavList {
	sz, err := checkedMulInt(N, recordSize)
	if err != nil || sz > b.Size() {
		return array{}
	}
	return array{
		recordSize: recordSize,
		length:     N,
		loc:        binarySegm(b.Bytes()),
	}
}

// viewArray16 interprets a byte segment as an array of uint16 values,
// spanning the whole segment.
func viewArray16(b binarySegm) array {
	if b.Size()&0x1 != 0 {
		tracer().Errorf("cannot create array16: size not aligned")
		return array{}
	}
	n := b.Size() / 2
	return array{
		recordSize: 2,
		length:     n,
		loc:        b,
	}
}

// viewArray interprets a byte segment as an array of records of a given
// size, spanning as much of the segment as fits.
func viewArray(b binarySegm, recordSize int) array {
	if recordSize <= 0 {
		return array{}
	}
	N := b.Size() / recordSize
	return array{
		recordSize: recordSize,
		length:     N,
		loc:        b,
	}
}

// parseArray reads a count field of type uint16 at b[offset] and interprets
// the bytes following it as an array of records of fixed size. The count is
// validated against the remaining window before the array is constructed.
func parseArray(b binarySegm, offset int, recordSize int, name, target string) (array, error) {
	n, err := b.u16(offset)
	if err != nil {
		return array{name: name, target: target}, boundsErr(name, offset, 2, len(b))
	}
	headerSize, err := checkedAddInt(offset, 2)
	if err != nil {
		return array{}, err
	}
	arraySize, err := checkedMulInt(int(n), recordSize)
	if err != nil {
		return array{}, err
	}
	requiredSize, err := checkedAddInt(headerSize, arraySize)
	if err != nil {
		return array{}, err
	}
	if requiredSize > len(b) {
		return array{}, fmt.Errorf("array %s: count %d * recordSize %d requires %d bytes, have %d: %w",
			name, n, recordSize, requiredSize, len(b),
			boundsErr(name, headerSize, arraySize, len(b)-headerSize))
	}
	return array{
		name:       name,
		target:     target,
		recordSize: recordSize,
		length:     int(n),
		loc:        b[headerSize:],
	}, nil
}

// parseArray16 is parseArray for the ubiquitous case of an array of uint16
// values (counts, glyph IDs, offsets).
func parseArray16(b binarySegm, offset int, name, target string) (array, error) {
	return parseArray(b, offset, 2, name, target)
}

func (a array) Name() string {
	return a.name
}

// Size of array a in bytes.
func (a array) Size() int {
	return a.length * a.recordSize
}

// Len returns the number of entries in the list.
func (a array) Len() int {
	return a.length
}

// Get returns item #i as a byte location. Out-of-range indices yield an
// empty location; parsers use the checked variant get instead.
func (a array) Get(i int) NavLocation {
	b, err := a.get(i)
	if err != nil {
		return binarySegm{}
	}
	return b
}

// get returns item #i, or a bounds error for i outside [0, Len).
func (a array) get(i int) (binarySegm, error) {
	if i < 0 || i >= a.length {
		return nil, boundsErr(a.name, i*a.recordSize, a.recordSize, a.length*a.recordSize)
	}
	return a.loc.view(i*a.recordSize, a.recordSize)
}

// All returns every record, in storage order.
func (a array) All() []NavLocation {
	r := make([]NavLocation, a.length)
	for i := 0; i < a.length; i++ {
		r[i] = a.Get(i)
	}
	return r
}

// Range iterates lazily over the records in storage order. The sequence is
// restartable and finite.
func (a array) Range() iter.Seq2[int, NavLocation] {
	return func(yield func(int, NavLocation) bool) {
		for i := 0; i < a.length; i++ {
			if !yield(i, a.Get(i)) {
				return
			}
		}
	}
}

// --- Arrays of offsets (variable-size records) -----------------------------

// VarArray is a type for arrays of variable length records, which in turn may
// point to nested arrays of (variable size) records.
type VarArray interface {
	Get(i int, deep bool) (NavLocation, error) // get record at index i; if deep: query nested arrays
	Size() int                                 // get the number of entries
}

type varArray struct {
	name         string
	ptrs         array
	indirections int
	base         binarySegm
}

// ParseVarArray interprets a byte sequence as a `VarArray`: a count field at
// sizeOffset, followed (after arrayDataGap bytes) by an array of offset16
// links, each pointing to a record of varying size.
func ParseVarArray(loc NavLocation, sizeOffset, arrayDataGap int, name string) VarArray {
	va, err := parseVarArray16(binarySegm(loc.Bytes()), sizeOffset, arrayDataGap, 1, name)
	if err != nil {
		tracer().Errorf("%s: %v", name, err)
		return varArray{}
	}
	return va
}

func parseVarArray16(b binarySegm, szOffset, gap, indirections int, name string) (varArray, error) {
	// A bounded indirection depth keeps adversarial offset cycles from
	// turning into unbounded work.
	if indirections > MaxIndirectionDepth {
		return varArray{}, fmt.Errorf("varArray %s: indirection depth %d exceeds maximum %d",
			name, indirections, MaxIndirectionDepth)
	}
	cnt, err := b.u16(szOffset)
	if err != nil {
		return varArray{}, boundsErr(name, szOffset, 2, len(b))
	}
	ptrsStart, err := checkedAddInt(szOffset, gap)
	if err != nil {
		return varArray{}, err
	}
	requiredSize, err := checkedAddInt(ptrsStart, int(cnt)*2)
	if err != nil {
		return varArray{}, err
	}
	if requiredSize > len(b) {
		return varArray{}, fmt.Errorf("varArray %s: count %d requires %d bytes, have %d: %w",
			name, cnt, requiredSize, len(b), boundsErr(name, ptrsStart, int(cnt)*2, len(b)-ptrsStart))
	}
	va := varArray{name: name, indirections: indirections, base: b}
	va.ptrs = array{recordSize: 2, length: int(cnt), loc: b[ptrsStart:]}
	return va, nil
}

// Get looks up index i within the cascading arrays of va. If deep is false,
// only the top-level array will be queried.
//
// A NULL offset at any level yields an empty location, not an error.
func (va varArray) Get(i int, deep bool) (b NavLocation, err error) {
	var a array = va.ptrs
	var indirect = va.indirections
	if !deep {
		indirect = 1
	}
	base := va.base
	for j := 0; j < indirect; j++ {
		ptr, err := a.get(i)
		if err != nil {
			return binarySegm{}, err
		}
		if ptr.U16(0) == 0 {
			// link to record data is NULL: empty entry
			return binarySegm{}, nil
		}
		if j < va.indirections {
			link := makeLink16(ptr.U16(0), base, va.name)
			b = link.Jump()
			if b.Size() == 0 {
				return binarySegm{}, boundsErr(va.name, int(ptr.U16(0)), 1, len(base))
			}
			if j+1 < va.indirections {
				a, err = parseArray16(binarySegm(b.Bytes()), 0, va.name, va.name+"-entry")
				if err != nil {
					return binarySegm{}, err
				}
			}
		}
	}
	return b, nil
}

func (va varArray) Size() int {
	return va.ptrs.length
}

var _ VarArray = varArray{}

// --- Self-sizing record sequences ------------------------------------------

// recordSeq is a sequence of records where each record's leading uint16
// field declares the record's total byte length (including the length field
// itself). Reaching record #i requires a linear scan over its predecessors;
// this cost is inherent to the binary format. Use BuildIndex for repeated
// random access.
type recordSeq struct {
	name  string
	count int
	loc   binarySegm
}

// parseRecordSeq reads a count field at b[countOffset] and positions the
// sequence at the bytes following it.
func parseRecordSeq(b binarySegm, countOffset int, name string) (recordSeq, error) {
	n, err := b.u16(countOffset)
	if err != nil {
		return recordSeq{}, boundsErr(name, countOffset, 2, len(b))
	}
	start, err := checkedAddInt(countOffset, 2)
	if err != nil {
		return recordSeq{}, err
	}
	// Each record needs at least its 2-byte length field.
	minSize, err := checkedMulInt(int(n), 2)
	if err != nil {
		return recordSeq{}, err
	}
	if start+minSize > len(b) {
		return recordSeq{}, fmt.Errorf("sequence %s: count %d requires at least %d bytes, have %d: %w",
			name, n, start+minSize, len(b), boundsErr(name, start, minSize, len(b)-start))
	}
	return recordSeq{name: name, count: int(n), loc: b[start:]}, nil
}

// Len returns the declared number of records.
func (s recordSeq) Len() int {
	return s.count
}

// Get returns record #i. Cost is proportional to i: the scan has to walk all
// preceding records to find where record #i starts.
func (s recordSeq) Get(i int) (NavLocation, error) {
	if i < 0 || i >= s.count {
		return binarySegm{}, boundsErr(s.name, i, 1, s.count)
	}
	offset := 0
	for j := 0; ; j++ {
		size, err := s.loc.u16(offset)
		if err != nil {
			return binarySegm{}, fmt.Errorf("sequence %s: record %d: %w", s.name, j, err)
		}
		if size < 2 {
			return binarySegm{}, FormatError{Detail: fmt.Sprintf("sequence %s: record %d declares size %d", s.name, j, size)}
		}
		if j == i {
			return s.loc.view(offset, int(size))
		}
		offset, err = checkedAddInt(offset, int(size))
		if err != nil {
			return binarySegm{}, err
		}
	}
}

// BuildIndex walks the sequence once and returns the byte offset of every
// record, enabling O(1) access through s.loc afterwards. The index is valid
// only for the buffer this sequence was parsed from; it is never cached by
// the package.
func (s recordSeq) BuildIndex() ([]int, error) {
	index := make([]int, s.count)
	offset := 0
	for j := 0; j < s.count; j++ {
		size, err := s.loc.u16(offset)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: record %d: %w", s.name, j, err)
		}
		if size < 2 {
			return nil, FormatError{Detail: fmt.Sprintf("sequence %s: record %d declares size %d", s.name, j, size)}
		}
		index[j] = offset
		offset, err = checkedAddInt(offset, int(size))
		if err != nil {
			return nil, err
		}
	}
	return index, nil
}

// Range iterates over the records in storage order. Iteration stops early at
// the first malformed record.
func (s recordSeq) Range() iter.Seq2[int, NavLocation] {
	return func(yield func(int, NavLocation) bool) {
		offset := 0
		for j := 0; j < s.count; j++ {
			size, err := s.loc.u16(offset)
			if err != nil || size < 2 {
				return
			}
			rec, err := s.loc.view(offset, int(size))
			if err != nil {
				return
			}
			if !yield(j, rec) {
				return
			}
			offset += int(size)
		}
	}
}

// --- Tag record map --------------------------------------------------------

// TagRecordMap is a map-like interpretation of a byte segment, mapping tags
// to links. Scripts, features and languages are represented this way.
type TagRecordMap interface {
	Name() string                   // structure name of the map
	Len() int                       // number of entries
	Get(int) (Tag, NavLink)         // entry #i, in storage order
	LookupTag(Tag) NavLink          // link associated with a tag; null link if absent
	Tags() []Tag                    // all keys, in storage order
	Range() iter.Seq2[Tag, NavLink] // range over sequence of tag→record pairs
}

// tagRecordMap16 is a type for sub-tables which map from a tag to a target.
//
// | Type      | Name         | Descr.                      |
// |-----------|--------------|-----------------------------|
// | …         | Some Info    | Additional opaque data      |
// | uint16    | Count        | # Records                   |
// | x-Records | Array[Count] | Array of records            |
//
// The entries (x-Records) are segments of bytes, which in turn are
// interpreted as a key + a value. The key is a 4-byte tag, the value an
// offset16 relative to base.
type tagRecordMap16 struct {
	name    string
	target  string
	base    binarySegm
	records array
}

// parseTagRecordMap16 creates a map-like interpretation on a slice of bytes,
// with the count field located at b[offset]. The count is validated against
// the remaining window and a per-structure limit before any entry is
// touched.
func parseTagRecordMap16(b binarySegm, offset int, base binarySegm, name, target string) tagRecordMap16 {
	const recordSize = 6 // Tag=4 bytes + offset16=2 bytes
	N, err := b.u16(offset)
	if err != nil {
		tracer().Debugf("buffer too small for tag record map %s", name)
		return tagRecordMap16{}
	}
	var maxCount int
	switch name {
	case "ScriptList":
		maxCount = MaxScriptCount
	case "FeatureList":
		maxCount = MaxFeatureCount
	default:
		maxCount = MaxRecordMapCount
	}
	if int(N) > maxCount {
		tracer().Errorf("tag record map %s: count %d exceeds maximum %d", name, N, maxCount)
		return tagRecordMap16{}
	}
	records, err := parseArray(b, offset, recordSize, name, target)
	if err != nil {
		tracer().Errorf("tag record map %s: %v", name, err)
		return tagRecordMap16{}
	}
	return tagRecordMap16{
		name:    name,
		target:  target,
		base:    base,
		records: records,
	}
}

// LookupTag returns the link associated with a given tag, or a null link if
// the tag is not a key of the map.
//
// TODO binary search for large N; record maps are specified to be sorted by
// tag, but fonts in the wild do not always honor that.
func (m tagRecordMap16) LookupTag(tag Tag) NavLink {
	if len(m.base) == 0 {
		return link16{}
	}
	for i := 0; i < m.records.length; i++ {
		b, err := m.records.get(i)
		if err != nil {
			return link16{}
		}
		if rtag := MakeTag(b[:4]); tag == rtag {
			link, err := parseLink16(b, 4, m.base, m.target)
			if err != nil {
				return link16{}
			}
			return link
		}
	}
	return link16{}
}

// Tags returns all the tags which the map uses as keys.
func (m tagRecordMap16) Tags() []Tag {
	tags := make([]Tag, 0, m.records.length)
	for i := 0; i < m.records.length; i++ {
		b, err := m.records.get(i)
		if err != nil {
			break
		}
		tags = append(tags, MakeTag(b[:4]))
	}
	return tags
}

func (m tagRecordMap16) Name() string {
	return m.name
}

func (m tagRecordMap16) Len() int {
	return m.records.length
}

// Get returns entry #i of the map, in storage order.
func (m tagRecordMap16) Get(i int) (Tag, NavLink) {
	const sizeOfMapKey = 4 // tags have size of 4 bytes
	b, err := m.records.get(i)
	if err != nil {
		return 0, link16{}
	}
	tag := MakeTag(b[:sizeOfMapKey])
	link, err := parseLink16(b, sizeOfMapKey, m.base, m.target)
	if err != nil {
		return 0, link16{}
	}
	return tag, link
}

// Range iterates over the map's tag→record pairs in storage order.
func (m tagRecordMap16) Range() iter.Seq2[Tag, NavLink] {
	return func(yield func(Tag, NavLink) bool) {
		for i := range m.Len() {
			tag, link := m.Get(i)
			if !yield(tag, link) {
				return
			}
		}
	}
}

var _ TagRecordMap = tagRecordMap16{}

// --- Plain value lists -----------------------------------------------------

// u16List implements the NavList interface. It represents a list/array of
// u16 values held in memory rather than in the font buffer.
type u16List []uint16

func (u16l u16List) Name() string {
	return "<unknown>"
}

func (u16l u16List) Len() int {
	return len(u16l)
}

func (u16l u16List) Get(i int) NavLocation {
	if i < 0 || i >= len(u16l) {
		return binarySegm{}
	}
	return uintBytes(u16l[i])
}

func (u16l u16List) All() []NavLocation {
	r := make([]NavLocation, len(u16l))
	for i, x := range u16l {
		r[i] = uintBytes(x)
	}
	return r
}

// --- Tag list --------------------------------------------------------------

// tagList is a counted list of 4-byte tags (BaseTagList and the like).
type tagList struct {
	Count int
	link  NavLink
}

func parseTagList(b binarySegm) tagList {
	count, err := b.u16(0)
	if err != nil {
		return tagList{Count: 0}
	}
	if int(count) > MaxTagListCount {
		tracer().Errorf("tag list count %d exceeds maximum %d", count, MaxTagListCount)
		return tagList{Count: 0}
	}
	requiredSize := 2 + int(count)*4 // each tag is 4 bytes
	if requiredSize > len(b) {
		tracer().Errorf("tag list: count %d requires %d bytes, have %d", count, requiredSize, len(b))
		return tagList{Count: 0}
	}
	tl := tagList{Count: int(count)}
	tl.link = link16{base: b, offset: 2}
	return tl
}

func (l tagList) Tag(i int) Tag {
	const taglen = 4
	if b := l.link.Jump(); b.Size() >= (i+1)*taglen {
		if n, err := binarySegm(b.Bytes()).u32(i * taglen); err == nil {
			return Tag(n)
		}
	}
	return Tag(0)
}
