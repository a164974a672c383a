// Package errs defines the sentinel errors returned by the cdfgo library.
//
// All errors surfaced at the public API boundary wrap one of these values,
// so callers can classify failures with errors.Is:
//
//	_, err := cdf.LoadStrict("data.cdf")
//	if errors.Is(err, errs.ErrNotACDF) {
//	    // not a CDF file at all
//	}
package errs

import "errors"

var (
	// ErrNotACDF indicates the input does not start with the CDF magic number.
	ErrNotACDF = errors.New("not a CDF file")

	// ErrUnsupportedVersion indicates a CDF version other than v3.
	ErrUnsupportedVersion = errors.New("unsupported CDF version")

	// ErrUnsupportedEncoding indicates a numeric encoding the reader does not
	// handle (VAX, IBM and DEC float encodings are read-only rejected).
	ErrUnsupportedEncoding = errors.New("unsupported CDF encoding")

	// ErrBadRecord indicates a record whose declared size does not match its
	// payload layout.
	ErrBadRecord = errors.New("malformed CDF record")

	// ErrCorruptedIndex indicates an inconsistent VXR chain: overlapping
	// record ranges, or a compressed record whose inflated size does not
	// match the slab it covers.
	ErrCorruptedIndex = errors.New("corrupted variable index")

	// ErrCompression indicates a failure inside a compression codec.
	ErrCompression = errors.New("compression error")

	// ErrTypeMismatch indicates a typed accessor called on a cell of a
	// different CDF data type.
	ErrTypeMismatch = errors.New("CDF data type mismatch")

	// ErrDuplicateName indicates two attributes or two variables sharing a
	// name within one file.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrResourceExceeded indicates a variable whose materialized size would
	// exceed the configured ceiling.
	ErrResourceExceeded = errors.New("decoded size exceeds limit")

	// ErrIO indicates a failure in the underlying byte source or sink.
	ErrIO = errors.New("i/o error")

	// ErrInvalidRecordSize indicates a record buffer shorter than the fixed
	// layout of its kind.
	ErrInvalidRecordSize = errors.New("invalid record size")

	// ErrInvalidName indicates an attribute or variable name longer than the
	// on-disk name field (256 bytes).
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidCompressionLevel indicates a GZIP level outside 1..9.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")

	// ErrShapeMismatch indicates data whose length is not a whole number of
	// records for the declared shape.
	ErrShapeMismatch = errors.New("data length does not match shape")
)
