package ot

// Version and format dispatch. Many OpenType tables occur in several
// incompatible binary layouts, discriminated by a version or format field.
// By design of the format family, the discriminant is always the first field
// of a versioned structure, which makes reading it universally safe before
// the variant is known.
//
// Dispatch is over a closed set: an unknown discriminant is reported with
// its raw value and never coerced to a "closest" known layout.

// dispatchFormat16 reads the uint16 format discriminant at the start of b
// and matches it against the closed set of known formats for the given
// structure kind. It returns the discriminant on a match and an
// UnsupportedVersionError carrying the raw value otherwise.
func dispatchFormat16(b binarySegm, kind string, known ...uint16) (uint16, error) {
	format, err := b.u16(0)
	if err != nil {
		return 0, boundsErr(kind, 0, 2, len(b))
	}
	for _, f := range known {
		if format == f {
			return format, nil
		}
	}
	return 0, UnsupportedVersionError{Kind: kind, Value: uint32(format)}
}

// dispatchVersion32 reads a uint32 version discriminant at the start of b
// ('maxp' and friends encode their version as 16.16) and matches it against
// the closed set of known versions.
func dispatchVersion32(b binarySegm, kind string, known ...uint32) (uint32, error) {
	version, err := b.u32(0)
	if err != nil {
		return 0, boundsErr(kind, 0, 4, len(b))
	}
	for _, v := range known {
		if version == v {
			return version, nil
		}
	}
	return 0, UnsupportedVersionError{Kind: kind, Value: version}
}

// dispatchMajorMinor reads a major.minor version pair (two uint16 values) at
// the start of b and validates the major version against a closed set,
// returning both numbers. Minor versions are upward compatible within a
// major version and are range-checked by the caller.
func dispatchMajorMinor(b binarySegm, kind string, knownMajor ...uint16) (major, minor uint16, err error) {
	major, err = b.u16(0)
	if err != nil {
		return 0, 0, boundsErr(kind, 0, 4, len(b))
	}
	minor, err = b.u16(2)
	if err != nil {
		return 0, 0, boundsErr(kind, 2, 2, len(b))
	}
	for _, m := range knownMajor {
		if major == m {
			return major, minor, nil
		}
	}
	return 0, 0, UnsupportedVersionError{Kind: kind, Value: uint32(major)<<16 | uint32(minor)}
}
