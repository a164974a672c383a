package file

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SciQLop/cdfgo/epoch"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
)

func TestDataTypedRoundTrip(t *testing.T) {
	require := require.New(t)

	i8 := Int8Data([]int8{-1, 0, 1})
	got8, err := i8.Int8s()
	require.NoError(err)
	require.Equal([]int8{-1, 0, 1}, got8)

	u16 := Uint16Data([]uint16{0, 0xBEEF, 0xFFFF})
	got16, err := u16.Uint16s()
	require.NoError(err)
	require.Equal([]uint16{0, 0xBEEF, 0xFFFF}, got16)

	i32 := Int32Data([]int32{-2147483648, 42})
	got32, err := i32.Int32s()
	require.NoError(err)
	require.Equal([]int32{-2147483648, 42}, got32)

	f32 := Float32Data([]float32{1.5, -2.25})
	gotF32, err := f32.Float32s()
	require.NoError(err)
	require.Equal([]float32{1.5, -2.25}, gotF32)

	f64 := Float64Data([]float64{3.14159, -0.5})
	gotF64, err := f64.Float64s()
	require.NoError(err)
	require.Equal([]float64{3.14159, -0.5}, gotF64)

	tt := TT2000Data([]epoch.TT2000{0, 631108869184000000})
	gotTT, err := tt.TT2000s()
	require.NoError(err)
	require.Equal([]epoch.TT2000{0, 631108869184000000}, gotTT)

	e16 := Epoch16Data([]epoch.Epoch16{{Seconds: 62167219200.0, Picoseconds: 500.0}})
	gotE16, err := e16.Epoch16s()
	require.NoError(err)
	require.Equal(62167219200.0, gotE16[0].Seconds)
	require.Equal(500.0, gotE16[0].Picoseconds)
}

func TestDataTypeMismatch(t *testing.T) {
	d := Float64Data([]float64{1})

	_, err := d.Float32s()
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = d.Int32s()
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = d.Text()
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestCharData(t *testing.T) {
	require := require.New(t)

	d := CharData("a cdf text attribute")
	require.Equal(format.TypeChar, d.Type())
	require.Equal(20, d.NumElems())
	require.Equal(1, d.Len())

	text, err := d.Text()
	require.NoError(err)
	require.Equal("a cdf text attribute", text)
}

func TestCharsDataPadding(t *testing.T) {
	require := require.New(t)

	d := CharsData([]string{"ab", "cdef"}, 4)
	require.Equal(2, d.Len())
	require.Equal(4, d.NumElems())

	strs, err := d.Strings()
	require.NoError(err)
	require.Equal([]string{"ab  ", "cdef"}, strs)
}

func TestNewDataValidation(t *testing.T) {
	_, err := NewData(format.DataType(99), []byte{1}, 1)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewData(format.TypeDouble, []byte{1, 2, 3}, 1)
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestDataEqualAndClone(t *testing.T) {
	require := require.New(t)

	a := Float64Data([]float64{1, 2})
	b := a.Clone()
	require.True(a.Equal(b))

	b.Bytes()[0] ^= 0xFF
	require.False(a.Equal(b))

	c := Float32Data([]float32{1, 2})
	require.False(a.Equal(c))
}

func TestAttributeEntries(t *testing.T) {
	require := require.New(t)

	attr, err := NewAttribute("attr_multi", format.GlobalScope)
	require.NoError(err)

	attr.Append(Int8Data([]int8{1}))
	attr.Append(Float32Data([]float32{2}))
	attr.Append(CharData("hello"))
	require.Equal(3, attr.Len())
	require.Equal(int32(2), attr.MaxEntry())

	cell, ok := attr.Get(2)
	require.True(ok)
	text, err := cell.Text()
	require.NoError(err)
	require.Equal("hello", text)

	// Entry numbers are unique but need not be contiguous.
	attr.Set(10, Int8Data([]int8{9}))
	require.Equal(4, attr.Len())
	require.Equal(int32(10), attr.MaxEntry())

	attr.Append(Int8Data([]int8{5}))
	require.Equal(int32(11), attr.Entries()[4].Number)

	require.True(attr.Remove(10))
	require.False(attr.Remove(10))
}

func TestAttributeNameValidation(t *testing.T) {
	_, err := NewAttribute("", format.GlobalScope)
	require.ErrorIs(t, err, errs.ErrInvalidName)

	_, err = NewAttribute(string(make([]byte, 300)), format.GlobalScope)
	require.ErrorIs(t, err, errs.ErrInvalidName)
}

func TestVariableShapeValidation(t *testing.T) {
	require := require.New(t)

	// 12 doubles over shape [4] is 3 records.
	v, err := NewVariable("var2d", Float64Data(make([]float64, 12)), []int32{4})
	require.NoError(err)
	require.Equal(3, v.Len())
	require.Equal(int32(2), v.MaxRec())

	// 10 doubles is not a whole number of [4] records.
	_, err = NewVariable("bad", Float64Data(make([]float64, 10)), []int32{4})
	require.ErrorIs(err, errs.ErrShapeMismatch)
}

func TestVariableRecordAccess(t *testing.T) {
	require := require.New(t)

	v, err := NewVariable("var2d", Float64Data([]float64{0, 1, 2, 3, 4, 5}), []int32{3})
	require.NoError(err)

	rec, err := v.Record(1)
	require.NoError(err)
	vals, err := rec.Float64s()
	require.NoError(err)
	require.Equal([]float64{3, 4, 5}, vals)

	_, err = v.Record(2)
	require.ErrorIs(err, errs.ErrShapeMismatch)
}

func TestVariableVirtualRecords(t *testing.T) {
	require := require.New(t)

	v, err := NewVariable("nrv", Float64Data([]float64{7, 8}), []int32{2})
	require.NoError(err)

	v.SetRecordVariant(false)
	v.maxRec = 4 // five virtual records backed by one stored record

	require.Equal(5, v.Len())
	for i := range 5 {
		rec, err := v.Record(i)
		require.NoError(err)
		vals, err := rec.Float64s()
		require.NoError(err)
		require.Equal([]float64{7, 8}, vals)
	}
}

func TestSetDataOnNonRecordVariant(t *testing.T) {
	require := require.New(t)

	v, err := NewVariable("nrv", Float64Data([]float64{1, 2}), []int32{2})
	require.NoError(err)
	v.SetRecordVariant(false)

	// Multi-record data keeps only its first record; the record count
	// becomes the virtual length.
	require.NoError(v.SetData(Float64Data([]float64{7, 8, 9, 10, 11, 12})))
	require.Equal(3, v.Len())

	data, err := v.Data()
	require.NoError(err)
	require.Equal(2, data.Len(), "only one record is stored")

	for i := range 3 {
		rec, err := v.Record(i)
		require.NoError(err)
		vals, err := rec.Float64s()
		require.NoError(err)
		require.Equal([]float64{7, 8}, vals)
	}
}

func TestVariablePadValidation(t *testing.T) {
	require := require.New(t)

	v, err := NewVariable("var", Float64Data(make([]float64, 4)), nil)
	require.NoError(err)

	require.NoError(v.SetPad(Float64Data([]float64{-1e31})))
	require.ErrorIs(v.SetPad(Float32Data([]float32{0})), errs.ErrTypeMismatch)
	require.ErrorIs(v.SetPad(Float64Data([]float64{1, 2})), errs.ErrShapeMismatch)
}

func TestFileModel(t *testing.T) {
	require := require.New(t)

	f := New()

	a1, _ := NewAttribute("a1", format.GlobalScope)
	require.NoError(f.AddAttribute(a1))

	dup, _ := NewAttribute("a1", format.GlobalScope)
	require.ErrorIs(f.AddAttribute(dup), errs.ErrDuplicateName)

	v1, _ := NewVariable("v1", Float64Data([]float64{1}), nil)
	v2, _ := NewVariable("v2", Float64Data([]float64{2}), nil)
	v3, _ := NewVariable("v3", Float64Data([]float64{3}), nil)
	require.NoError(f.AddVariable(v1))
	require.NoError(f.AddVariable(v2))
	require.NoError(f.AddVariable(v3))

	require.Equal(int32(0), v1.Num())
	require.Equal(int32(2), v3.Num())

	got, ok := f.VariableByNum(1)
	require.True(ok)
	require.Equal("v2", got.Name())

	// Removal keeps variable numbers dense.
	require.True(f.RemoveVariable("v2"))
	require.Equal(int32(0), v1.Num())
	require.Equal(int32(1), v3.Num())
	require.Equal(2, f.NumVariables())
}
