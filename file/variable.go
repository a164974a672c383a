package file

import (
	"fmt"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/record"
)

// Variable is a named, typed array of records. The record slab is stored
// row-major in little-endian byte order regardless of the source file's
// majority and encoding; both are normalized at decode time.
type Variable struct {
	name             string
	num              int32
	dtype            format.DataType
	numElems         int // string length for character types
	shape            []int32
	dimVarys         []bool
	recVariant       bool
	compression      format.CompressionType
	compressionParam int
	blockingFactor   int32
	pad              *Data
	data             Data
	maxRec           int32

	// materialize defers slab decoding under the lazy load option; nil
	// once data is present.
	materialize func() (Data, int32, error)
}

// NewVariable creates a record-variant variable from a data cell and a
// per-record shape. The cell length must be a whole number of records.
//
// Parameters:
//   - name: variable name, at most 256 bytes
//   - data: record slab; row-major within each record
//   - shape: per-record dimension sizes; empty for scalar records
func NewVariable(name string, data Data, shape []int32) (*Variable, error) {
	if name == "" || !record.ValidName(name) {
		return nil, fmt.Errorf("%w: variable name %q", errs.ErrInvalidName, name)
	}

	v := &Variable{
		name:       name,
		num:        -1,
		dtype:      data.Type(),
		numElems:   data.NumElems(),
		shape:      append([]int32(nil), shape...),
		dimVarys:   make([]bool, len(shape)),
		recVariant: true,
	}
	for i := range v.dimVarys {
		v.dimVarys[i] = true
	}

	if err := v.SetData(data); err != nil {
		return nil, err
	}

	return v, nil
}

// Name returns the variable name.
func (v *Variable) Name() string {
	return v.name
}

// Num returns the variable number, dense in [0, N) once the variable is
// added to a File; -1 before that.
func (v *Variable) Num() int32 {
	return v.num
}

// Type returns the variable's data type.
func (v *Variable) Type() format.DataType {
	return v.dtype
}

// NumElems returns the declared string length for character variables,
// 1 otherwise.
func (v *Variable) NumElems() int {
	if v.numElems < 1 {
		return 1
	}

	return v.numElems
}

// Shape returns the per-record dimension sizes. The slice is shared.
func (v *Variable) Shape() []int32 {
	return v.shape
}

// DimVariances returns the per-dimension variance bitmap. The slice is
// shared; its length equals the rank.
func (v *Variable) DimVariances() []bool {
	return v.dimVarys
}

// SetDimVariances replaces the variance bitmap; its length must equal the
// rank.
func (v *Variable) SetDimVariances(varys []bool) error {
	if len(varys) != len(v.shape) {
		return fmt.Errorf("%w: %d variances for rank %d", errs.ErrShapeMismatch, len(varys), len(v.shape))
	}

	v.dimVarys = append([]bool(nil), varys...)

	return nil
}

// RecordVariant reports whether each record holds distinct data. When
// false a single stored record is virtually repeated Len() times.
func (v *Variable) RecordVariant() bool {
	return v.recVariant
}

// SetRecordVariant toggles record variance. Switching to false keeps only
// the first stored record.
func (v *Variable) SetRecordVariant(variant bool) {
	if !variant && v.materialize == nil && v.data.Len() > v.recordElems() {
		size := v.recordElems() * v.data.ElemSize()
		v.data = Data{dtype: v.dtype, buf: v.data.buf[:size], numElems: v.numElems}
	}

	v.recVariant = variant
}

// Compression returns the variable's compression algorithm.
func (v *Variable) Compression() format.CompressionType {
	return v.compression
}

// CompressionParam returns the algorithm parameter (the GZIP level).
func (v *Variable) CompressionParam() int {
	return v.compressionParam
}

// SetCompression selects the compression applied to the variable's data
// records on save.
func (v *Variable) SetCompression(c format.CompressionType) {
	v.compression = c
	if c == format.CompressionGzip && v.compressionParam == 0 {
		v.compressionParam = 6
	}
}

// SetCompressionParam sets the algorithm parameter (the GZIP level).
func (v *Variable) SetCompressionParam(param int) {
	v.compressionParam = param
}

// BlockingFactor returns the blocking factor hint.
func (v *Variable) BlockingFactor() int32 {
	return v.blockingFactor
}

// SetBlockingFactor stores the blocking factor hint.
func (v *Variable) SetBlockingFactor(bf int32) {
	v.blockingFactor = bf
}

// Pad returns the explicit pad value, or nil when none is set.
func (v *Variable) Pad() *Data {
	return v.pad
}

// SetPad sets the explicit pad value: a single element of the variable's
// type.
func (v *Variable) SetPad(d Data) error {
	if d.Type() != v.dtype {
		return fmt.Errorf("%w: pad of type %s for %s variable", errs.ErrTypeMismatch, d.Type(), v.dtype)
	}
	if d.Len() != 1 || d.NumElems() != v.NumElems() {
		return fmt.Errorf("%w: pad must hold exactly one element", errs.ErrShapeMismatch)
	}

	v.pad = &d

	return nil
}

// MaxRec returns the highest record index; -1 for an empty variable.
func (v *Variable) MaxRec() int32 {
	return v.maxRec
}

// Len returns the logical record count, MaxRec+1. Non-record-variant
// variables report the virtual count, not the single stored record.
func (v *Variable) Len() int {
	return int(v.maxRec) + 1
}

// recordElems returns the number of cell elements per record.
func (v *Variable) recordElems() int {
	n := 1
	for _, d := range v.shape {
		n *= int(d)
	}

	return n
}

// Data returns the record slab, materializing it on first access when the
// file was loaded lazily.
func (v *Variable) Data() (Data, error) {
	if v.materialize != nil {
		data, maxRec, err := v.materialize()
		if err != nil {
			return Data{}, err
		}

		v.data = data
		v.maxRec = maxRec
		v.materialize = nil
	}

	return v.data, nil
}

// SetData replaces the record slab. The cell's type must match the
// variable's and its length must be a whole number of records. On a
// non-record-variant variable only the first record is stored; the record
// count still becomes the variable's virtual length.
func (v *Variable) SetData(data Data) error {
	if data.Type() != v.dtype {
		return fmt.Errorf("%w: data of type %s for %s variable", errs.ErrTypeMismatch, data.Type(), v.dtype)
	}

	perRec := v.recordElems()
	if perRec == 0 || data.Len()%perRec != 0 {
		return fmt.Errorf("%w: %d elements is not a whole number of %d-element records",
			errs.ErrShapeMismatch, data.Len(), perRec)
	}

	records := data.Len() / perRec
	if !v.recVariant && records > 1 {
		size := perRec * data.ElemSize()
		data = Data{dtype: data.dtype, buf: data.buf[:size], numElems: data.numElems}
	}

	v.data = data
	v.materialize = nil
	v.numElems = data.NumElems()
	v.maxRec = int32(records) - 1

	return nil
}

// Record returns the i-th logical record as a cell. Non-record-variant
// variables return the single stored record for every valid index.
func (v *Variable) Record(i int) (Data, error) {
	if i < 0 || i >= v.Len() {
		return Data{}, fmt.Errorf("%w: record %d of %d", errs.ErrShapeMismatch, i, v.Len())
	}

	data, err := v.Data()
	if err != nil {
		return Data{}, err
	}

	if !v.recVariant {
		i = 0
	}

	size := v.recordElems() * data.ElemSize()
	off := i * size

	return Data{dtype: v.dtype, buf: data.buf[off : off+size], numElems: v.numElems}, nil
}

// Float32s returns the slab as float32 values.
func (v *Variable) Float32s() ([]float32, error) {
	data, err := v.Data()
	if err != nil {
		return nil, err
	}

	return data.Float32s()
}

// Float64s returns the slab as float64 values.
func (v *Variable) Float64s() ([]float64, error) {
	data, err := v.Data()
	if err != nil {
		return nil, err
	}

	return data.Float64s()
}

// Equal reports whether two variables match by name, type, shape,
// variances, record variance, compression and data bytes.
func (v *Variable) Equal(other *Variable) bool {
	if v.name != other.name || v.dtype != other.dtype || v.recVariant != other.recVariant {
		return false
	}
	if v.compression != other.compression {
		return false
	}
	if len(v.shape) != len(other.shape) {
		return false
	}
	for i := range v.shape {
		if v.shape[i] != other.shape[i] {
			return false
		}
	}
	for i := range v.dimVarys {
		if v.dimVarys[i] != other.dimVarys[i] {
			return false
		}
	}

	a, err := v.Data()
	if err != nil {
		return false
	}
	b, err := other.Data()
	if err != nil {
		return false
	}

	return a.Equal(b)
}
