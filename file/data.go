package file

import (
	"fmt"
	"math"

	"github.com/SciQLop/cdfgo/endian"
	"github.com/SciQLop/cdfgo/epoch"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
)

// cellOrder is the normalized byte order of every decoded cell.
var cellOrder = endian.GetLittleEndianEngine()

// Data is a typed cell: a CDF data type tag over a raw little-endian byte
// buffer. Attribute entries, pad values and variable record slabs are all
// Data cells.
//
// For character types the cell additionally carries the declared string
// length; a cell of n strings of length l holds n*l bytes.
type Data struct {
	dtype    format.DataType
	buf      []byte
	numElems int // string length for character types, 1 otherwise
}

// NewData creates a cell from raw little-endian bytes.
//
// Parameters:
//   - dtype: CDF data type tag
//   - buf: raw cell bytes, length must be a multiple of the element size
//   - numElems: declared string length for character types; 1 otherwise
func NewData(dtype format.DataType, buf []byte, numElems int) (Data, error) {
	if !dtype.Valid() {
		return Data{}, fmt.Errorf("%w: data type %d", errs.ErrTypeMismatch, dtype)
	}

	if numElems < 1 {
		numElems = 1
	}
	if !dtype.IsString() {
		numElems = 1
	}

	elemSize := dtype.Size() * numElems
	if elemSize == 0 || len(buf)%elemSize != 0 {
		return Data{}, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte elements",
			errs.ErrShapeMismatch, len(buf), elemSize)
	}

	return Data{dtype: dtype, buf: buf, numElems: numElems}, nil
}

// Type returns the cell's data type tag.
func (d Data) Type() format.DataType {
	return d.dtype
}

// Bytes returns the raw cell bytes. The slice is shared, not copied.
func (d Data) Bytes() []byte {
	return d.buf
}

// NumElems returns the declared string length for character cells, 1 for
// all other types.
func (d Data) NumElems() int {
	if d.numElems < 1 {
		return 1
	}

	return d.numElems
}

// ElemSize returns the byte size of one logical element.
func (d Data) ElemSize() int {
	return d.dtype.Size() * d.NumElems()
}

// Len returns the number of logical elements in the cell.
func (d Data) Len() int {
	if d.ElemSize() == 0 {
		return 0
	}

	return len(d.buf) / d.ElemSize()
}

// Clone returns a deep copy of the cell.
func (d Data) Clone() Data {
	buf := make([]byte, len(d.buf))
	copy(buf, d.buf)

	return Data{dtype: d.dtype, buf: buf, numElems: d.numElems}
}

// Equal reports whether two cells have the same type, string length and
// bytes.
func (d Data) Equal(other Data) bool {
	if d.dtype != other.dtype || d.NumElems() != other.NumElems() {
		return false
	}
	if len(d.buf) != len(other.buf) {
		return false
	}
	for i := range d.buf {
		if d.buf[i] != other.buf[i] {
			return false
		}
	}

	return true
}

func (d Data) check(want ...format.DataType) error {
	for _, w := range want {
		if d.dtype == w {
			return nil
		}
	}

	return fmt.Errorf("%w: cell holds %s", errs.ErrTypeMismatch, d.dtype)
}

// Int8s returns a typed view of an INT1/BYTE cell.
func (d Data) Int8s() ([]int8, error) {
	if err := d.check(format.TypeInt1, format.TypeByte); err != nil {
		return nil, err
	}

	out := make([]int8, len(d.buf))
	for i, b := range d.buf {
		out[i] = int8(b)
	}

	return out, nil
}

// Uint8s returns a typed view of a UINT1 cell.
func (d Data) Uint8s() ([]uint8, error) {
	if err := d.check(format.TypeUInt1); err != nil {
		return nil, err
	}

	out := make([]uint8, len(d.buf))
	copy(out, d.buf)

	return out, nil
}

// Int16s returns a typed view of an INT2 cell.
func (d Data) Int16s() ([]int16, error) {
	if err := d.check(format.TypeInt2); err != nil {
		return nil, err
	}

	out := make([]int16, len(d.buf)/2)
	for i := range out {
		out[i] = int16(cellOrder.Uint16(d.buf[i*2:]))
	}

	return out, nil
}

// Uint16s returns a typed view of a UINT2 cell.
func (d Data) Uint16s() ([]uint16, error) {
	if err := d.check(format.TypeUInt2); err != nil {
		return nil, err
	}

	out := make([]uint16, len(d.buf)/2)
	for i := range out {
		out[i] = cellOrder.Uint16(d.buf[i*2:])
	}

	return out, nil
}

// Int32s returns a typed view of an INT4 cell.
func (d Data) Int32s() ([]int32, error) {
	if err := d.check(format.TypeInt4); err != nil {
		return nil, err
	}

	out := make([]int32, len(d.buf)/4)
	for i := range out {
		out[i] = int32(cellOrder.Uint32(d.buf[i*4:]))
	}

	return out, nil
}

// Uint32s returns a typed view of a UINT4 cell.
func (d Data) Uint32s() ([]uint32, error) {
	if err := d.check(format.TypeUInt4); err != nil {
		return nil, err
	}

	out := make([]uint32, len(d.buf)/4)
	for i := range out {
		out[i] = cellOrder.Uint32(d.buf[i*4:])
	}

	return out, nil
}

// Int64s returns a typed view of an INT8 cell.
func (d Data) Int64s() ([]int64, error) {
	if err := d.check(format.TypeInt8); err != nil {
		return nil, err
	}

	out := make([]int64, len(d.buf)/8)
	for i := range out {
		out[i] = int64(cellOrder.Uint64(d.buf[i*8:]))
	}

	return out, nil
}

// Float32s returns a typed view of a REAL4/FLOAT cell.
func (d Data) Float32s() ([]float32, error) {
	if err := d.check(format.TypeReal4, format.TypeFloat); err != nil {
		return nil, err
	}

	out := make([]float32, len(d.buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(cellOrder.Uint32(d.buf[i*4:]))
	}

	return out, nil
}

// Float64s returns a typed view of a REAL8/DOUBLE cell.
func (d Data) Float64s() ([]float64, error) {
	if err := d.check(format.TypeReal8, format.TypeDouble); err != nil {
		return nil, err
	}

	out := make([]float64, len(d.buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(cellOrder.Uint64(d.buf[i*8:]))
	}

	return out, nil
}

// Epochs returns a typed view of a CDF_EPOCH cell.
func (d Data) Epochs() ([]epoch.Epoch, error) {
	if err := d.check(format.TypeEpoch); err != nil {
		return nil, err
	}

	out := make([]epoch.Epoch, len(d.buf)/8)
	for i := range out {
		out[i] = epoch.Epoch(math.Float64frombits(cellOrder.Uint64(d.buf[i*8:])))
	}

	return out, nil
}

// Epoch16s returns a typed view of a CDF_EPOCH16 cell.
func (d Data) Epoch16s() ([]epoch.Epoch16, error) {
	if err := d.check(format.TypeEpoch16); err != nil {
		return nil, err
	}

	out := make([]epoch.Epoch16, len(d.buf)/16)
	for i := range out {
		out[i] = epoch.Epoch16{
			Seconds:     math.Float64frombits(cellOrder.Uint64(d.buf[i*16:])),
			Picoseconds: math.Float64frombits(cellOrder.Uint64(d.buf[i*16+8:])),
		}
	}

	return out, nil
}

// TT2000s returns a typed view of a CDF_TIME_TT2000 cell.
func (d Data) TT2000s() ([]epoch.TT2000, error) {
	if err := d.check(format.TypeTT2000); err != nil {
		return nil, err
	}

	out := make([]epoch.TT2000, len(d.buf)/8)
	for i := range out {
		out[i] = epoch.TT2000(cellOrder.Uint64(d.buf[i*8:]))
	}

	return out, nil
}

// Text returns a CHAR/UCHAR cell as a string.
func (d Data) Text() (string, error) {
	if err := d.check(format.TypeChar, format.TypeUChar); err != nil {
		return "", err
	}

	return string(d.buf), nil
}

// Strings returns a CHAR/UCHAR cell split into its fixed-length elements.
func (d Data) Strings() ([]string, error) {
	if err := d.check(format.TypeChar, format.TypeUChar); err != nil {
		return nil, err
	}

	l := d.NumElems()
	out := make([]string, 0, len(d.buf)/l)
	for off := 0; off+l <= len(d.buf); off += l {
		out = append(out, string(d.buf[off:off+l]))
	}

	return out, nil
}

// Int8Data creates an INT1 cell.
func Int8Data(values []int8) Data {
	buf := make([]byte, len(values))
	for i, v := range values {
		buf[i] = byte(v)
	}

	return Data{dtype: format.TypeInt1, buf: buf, numElems: 1}
}

// Uint8Data creates a UINT1 cell.
func Uint8Data(values []uint8) Data {
	buf := make([]byte, len(values))
	copy(buf, values)

	return Data{dtype: format.TypeUInt1, buf: buf, numElems: 1}
}

// Int16Data creates an INT2 cell.
func Int16Data(values []int16) Data {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		cellOrder.PutUint16(buf[i*2:], uint16(v))
	}

	return Data{dtype: format.TypeInt2, buf: buf, numElems: 1}
}

// Uint16Data creates a UINT2 cell.
func Uint16Data(values []uint16) Data {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		cellOrder.PutUint16(buf[i*2:], v)
	}

	return Data{dtype: format.TypeUInt2, buf: buf, numElems: 1}
}

// Int32Data creates an INT4 cell.
func Int32Data(values []int32) Data {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		cellOrder.PutUint32(buf[i*4:], uint32(v))
	}

	return Data{dtype: format.TypeInt4, buf: buf, numElems: 1}
}

// Uint32Data creates a UINT4 cell.
func Uint32Data(values []uint32) Data {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		cellOrder.PutUint32(buf[i*4:], v)
	}

	return Data{dtype: format.TypeUInt4, buf: buf, numElems: 1}
}

// Int64Data creates an INT8 cell.
func Int64Data(values []int64) Data {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		cellOrder.PutUint64(buf[i*8:], uint64(v))
	}

	return Data{dtype: format.TypeInt8, buf: buf, numElems: 1}
}

// Float32Data creates a FLOAT cell.
func Float32Data(values []float32) Data {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		cellOrder.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	return Data{dtype: format.TypeFloat, buf: buf, numElems: 1}
}

// Float64Data creates a DOUBLE cell.
func Float64Data(values []float64) Data {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		cellOrder.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	return Data{dtype: format.TypeDouble, buf: buf, numElems: 1}
}

// EpochData creates a CDF_EPOCH cell.
func EpochData(values []epoch.Epoch) Data {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		cellOrder.PutUint64(buf[i*8:], math.Float64bits(float64(v)))
	}

	return Data{dtype: format.TypeEpoch, buf: buf, numElems: 1}
}

// Epoch16Data creates a CDF_EPOCH16 cell.
func Epoch16Data(values []epoch.Epoch16) Data {
	buf := make([]byte, len(values)*16)
	for i, v := range values {
		cellOrder.PutUint64(buf[i*16:], math.Float64bits(v.Seconds))
		cellOrder.PutUint64(buf[i*16+8:], math.Float64bits(v.Picoseconds))
	}

	return Data{dtype: format.TypeEpoch16, buf: buf, numElems: 1}
}

// TT2000Data creates a CDF_TIME_TT2000 cell.
func TT2000Data(values []epoch.TT2000) Data {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		cellOrder.PutUint64(buf[i*8:], uint64(v))
	}

	return Data{dtype: format.TypeTT2000, buf: buf, numElems: 1}
}

// CharData creates a CHAR cell holding one string.
func CharData(s string) Data {
	n := len(s)
	if n == 0 {
		n = 1
		s = "\x00"
	}

	return Data{dtype: format.TypeChar, buf: []byte(s), numElems: n}
}

// CharsData creates a CHAR cell of fixed-length strings. Shorter values
// are right-padded with spaces, longer values truncated.
func CharsData(values []string, length int) Data {
	if length < 1 {
		length = 1
	}

	buf := make([]byte, len(values)*length)
	for i := range buf {
		buf[i] = ' '
	}
	for i, s := range values {
		copy(buf[i*length:(i+1)*length], s)
	}

	return Data{dtype: format.TypeChar, buf: buf, numElems: length}
}
