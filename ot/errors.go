package ot

import (
	"errors"
	"fmt"
)

// Any byte sequence may be handed to this package, including adversarial
// ones. Every failure mode of the parsing core is therefore a structured,
// recoverable error value — never a panic. Four kinds of errors cover the
// parsing core; all of them are returned through ordinary error values and
// can be tested for with errors.As.

// BoundsError reports an offset, length or count that would read outside a
// view's declared window. Structure identifies the field or table which
// produced the offending value.
type BoundsError struct {
	Structure string // name of the structure or offset field
	Offset    int    // requested position, relative to the view
	Need      int    // bytes required at Offset
	Have      int    // bytes available in the view
}

func (e BoundsError) Error() string {
	if e.Structure == "" {
		return fmt.Sprintf("bounds error: need %d bytes at offset %d, have %d", e.Need, e.Offset, e.Have)
	}
	return fmt.Sprintf("%s: need %d bytes at offset %d, have %d", e.Structure, e.Need, e.Offset, e.Have)
}

// OverflowError reports arithmetic on offsets, lengths or counts which would
// exceed the representable range. Offsets and counts are untrusted input;
// every multiplication and addition on them is checked before use.
type OverflowError struct {
	Op   string // "+" or "*"
	A, B uint64
}

func (e OverflowError) Error() string {
	return fmt.Sprintf("integer overflow: %d %s %d", e.A, e.Op, e.B)
}

// FormatError reports a container signature or required fixed value that is
// not recognized.
type FormatError struct {
	Detail string
	Value  uint32 // the offending raw value, if applicable
}

func (e FormatError) Error() string {
	if e.Value != 0 {
		return fmt.Sprintf("OpenType font format: %s (0x%x)", e.Detail, e.Value)
	}
	return "OpenType font format: " + e.Detail
}

// UnsupportedVersionError reports a version or format discriminant with no
// known binary layout. The raw discriminant value is preserved for
// diagnostics; the parser never guesses a "closest" known layout.
type UnsupportedVersionError struct {
	Kind  string // table or subtable kind, e.g. "cmap subtable", "ClassDef"
	Value uint32 // the discriminant as read from the buffer
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: unsupported version/format %d", e.Kind, e.Value)
}

// errBufferBounds is the anonymous bounds error used by the checked
// primitives in bytes.go, where no structure name is known.
var errBufferBounds error = BoundsError{}

// boundsErr produces a named bounds error for a structure.
func boundsErr(structure string, offset, need, have int) error {
	return BoundsError{Structure: structure, Offset: offset, Need: need, Have: have}
}

// IsBounds reports whether err is (or wraps) a BoundsError.
func IsBounds(err error) bool {
	var be BoundsError
	return errors.As(err, &be)
}

// IsUnsupportedVersion reports whether err is (or wraps) an
// UnsupportedVersionError.
func IsUnsupportedVersion(err error) bool {
	var ue UnsupportedVersionError
	return errors.As(err, &ue)
}

// --- Error accumulation ----------------------------------------------------

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
// Errors are accumulated during initial parsing and can be inspected after
// parsing completes. A FontError scopes its cause to the smallest construct
// that failed: a defect deep inside one table never invalidates views of
// sibling tables.
type FontError struct {
	Table    Tag           // the OpenType table where the error occurred (e.g., "GSUB", "cmap")
	Section  string        // specific section within the table (e.g., "ScriptList")
	Err      error         // underlying cause; one of the four error kinds above
	Severity ErrorSeverity // severity level of the error
	Offset   uint32        // byte offset in the font file where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %v", e.Severity, e.Table, e.Section, e.Offset, e.Err)
	}
	return fmt.Sprintf("[%s] %s/%s: %v", e.Severity, e.Table, e.Section, e.Err)
}

// Unwrap returns the underlying cause of the error.
func (e FontError) Unwrap() error {
	return e.Err
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // the OpenType table where the warning occurred
	Issue  string // human-readable description of the warning
	Offset uint32 // byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they
// are discovered, so that a failed parse of one table does not prevent
// successful parsing of sibling tables in the same directory.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error.
func (ec *errorCollector) addError(table Tag, section string, cause error, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Err:      cause,
		Severity: severity,
		Offset:   offset,
	})
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// criticalErrors returns all errors with critical severity.
func (ec *errorCollector) criticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}
