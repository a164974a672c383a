// Package file implements the CDF object model and its decoder and
// encoder: File, Attribute, Variable and Data, the four-phase record-graph
// decoder, and the two-pass record serializer.
package file

import (
	"fmt"
	"iter"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/nomap"
)

// File is an in-memory CDF: file-level metadata plus insertion-ordered
// attribute and variable maps. Variable numbers are kept dense in [0, N).
type File struct {
	majority         format.Majority
	version          [3]int32
	compression      format.CompressionType
	compressionParam int
	checksum         bool
	copyright        string

	attributes *nomap.Map[*Attribute]
	variables  *nomap.Map[*Variable]
}

// New creates an empty CDF v3 file with row-major records.
func New() *File {
	return &File{
		version:    [3]int32{3, 9, 0},
		attributes: nomap.New[*Attribute](),
		variables:  nomap.New[*Variable](),
	}
}

// Majority returns the storage order of multi-dimensional records.
// It has no effect on scalar and rank-1 variables.
func (f *File) Majority() format.Majority {
	return f.majority
}

// SetMajority selects the on-disk storage order of multi-dimensional
// records. In memory records are always row-major.
func (f *File) SetMajority(m format.Majority) {
	f.majority = m
}

// Version returns the (version, release, increment) triple.
func (f *File) Version() [3]int32 {
	return f.version
}

// Compression returns the whole-file compression algorithm, or
// format.CompressionNone when the file is stored uncompressed.
func (f *File) Compression() format.CompressionType {
	return f.compression
}

// CompressionParam returns the whole-file compression parameter.
func (f *File) CompressionParam() int {
	return f.compressionParam
}

// SetCompression selects whole-file compression applied on save.
func (f *File) SetCompression(c format.CompressionType, param int) {
	f.compression = c
	f.compressionParam = param
	if c == format.CompressionGzip && param == 0 {
		f.compressionParam = 6
	}
}

// Checksum reports whether the file carries a trailing MD5 digest.
func (f *File) Checksum() bool {
	return f.checksum
}

// SetChecksum toggles the trailing MD5 digest written on save.
func (f *File) SetChecksum(enabled bool) {
	f.checksum = enabled
}

// Copyright returns the CDR copyright text.
func (f *File) Copyright() string {
	return f.copyright
}

// AddAttribute inserts an attribute, keyed by name in insertion order.
func (f *File) AddAttribute(a *Attribute) error {
	if f.attributes.Contains(a.Name()) {
		return fmt.Errorf("%w: attribute %q", errs.ErrDuplicateName, a.Name())
	}

	f.attributes.Set(a.Name(), a)

	return nil
}

// Attribute returns the attribute with the given name.
func (f *File) Attribute(name string) (*Attribute, bool) {
	return f.attributes.Get(name)
}

// RemoveAttribute deletes the named attribute, reporting whether it
// existed.
func (f *File) RemoveAttribute(name string) bool {
	return f.attributes.Remove(name)
}

// NumAttributes returns the attribute count.
func (f *File) NumAttributes() int {
	return f.attributes.Len()
}

// Attributes iterates attributes in insertion order.
func (f *File) Attributes() iter.Seq2[string, *Attribute] {
	return f.attributes.All()
}

// AddVariable inserts a variable, assigning it the next dense variable
// number.
func (f *File) AddVariable(v *Variable) error {
	if f.variables.Contains(v.Name()) {
		return fmt.Errorf("%w: variable %q", errs.ErrDuplicateName, v.Name())
	}

	v.num = int32(f.variables.Len())
	f.variables.Set(v.Name(), v)

	return nil
}

// Variable returns the variable with the given name.
func (f *File) Variable(name string) (*Variable, bool) {
	return f.variables.Get(name)
}

// VariableByNum returns the variable with the given number.
func (f *File) VariableByNum(num int32) (*Variable, bool) {
	for _, v := range f.variables.All() {
		if v.num == num {
			return v, true
		}
	}

	return nil, false
}

// RemoveVariable deletes the named variable and renumbers the remaining
// variables to keep numbers dense.
func (f *File) RemoveVariable(name string) bool {
	removed, ok := f.variables.Get(name)
	if !ok {
		return false
	}

	f.variables.Remove(name)
	for _, v := range f.variables.All() {
		if v.num > removed.num {
			v.num--
		}
	}

	return true
}

// NumVariables returns the variable count.
func (f *File) NumVariables() int {
	return f.variables.Len()
}

// Variables iterates variables in insertion order, which equals variable
// number order for files built through AddVariable.
func (f *File) Variables() iter.Seq2[string, *Variable] {
	return f.variables.All()
}

// Equal reports whether two files match on metadata, attributes and
// variables, the comparison behind the decode(encode(f)) == f law.
func (f *File) Equal(other *File) bool {
	if f.majority != other.majority || f.version != other.version {
		return false
	}
	if f.compression != other.compression || f.checksum != other.checksum {
		return false
	}
	if f.attributes.Len() != other.attributes.Len() || f.variables.Len() != other.variables.Len() {
		return false
	}

	for name, a := range f.attributes.All() {
		b, ok := other.attributes.Get(name)
		if !ok || !a.Equal(b) {
			return false
		}
	}

	for name, v := range f.variables.All() {
		w, ok := other.variables.Get(name)
		if !ok || !v.Equal(w) {
			return false
		}
	}

	return true
}
