package file

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SciQLop/cdfgo/epoch"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/record"
)

// sampleFile mirrors the reference test archive: one text attribute plus
// float, int and mixed attributes, and four variables covering 0-D, 1-D
// and 2-D record shapes.
func sampleFile(t *testing.T) *File {
	t.Helper()

	f := New()

	attr, err := NewAttribute("attr", format.GlobalScope)
	require.NoError(t, err)
	attr.Append(CharData("a cdf text attribute"))
	require.NoError(t, f.AddAttribute(attr))

	attrFloat, err := NewAttribute("attr_float", format.GlobalScope)
	require.NoError(t, err)
	attrFloat.Append(Float32Data([]float32{1}))
	attrFloat.Append(Float32Data([]float32{2}))
	attrFloat.Append(Float32Data([]float32{3}))
	require.NoError(t, f.AddAttribute(attrFloat))

	attrInt, err := NewAttribute("attr_int", format.GlobalScope)
	require.NoError(t, err)
	attrInt.Append(Int8Data([]int8{1}))
	attrInt.Append(Int8Data([]int8{2}))
	attrInt.Append(Int8Data([]int8{3}))
	require.NoError(t, f.AddAttribute(attrInt))

	attrMulti, err := NewAttribute("attr_multi", format.GlobalScope)
	require.NoError(t, err)
	attrMulti.Append(Int8Data([]int8{1}))
	attrMulti.Append(Float32Data([]float32{2}))
	attrMulti.Append(CharData("hello"))
	require.NoError(t, f.AddAttribute(attrMulti))

	doubles := make([]float64, 101)
	for i := range doubles {
		doubles[i] = float64(i) * 0.25
	}
	v, err := NewVariable("var", Float64Data(doubles), nil)
	require.NoError(t, err)
	require.NoError(t, f.AddVariable(v))

	epochs := make([]epoch.Epoch, 101)
	for i := range epochs {
		epochs[i] = epoch.Epoch(62167219200000.0 + float64(i)*1000)
	}
	ev, err := NewVariable("epoch", EpochData(epochs), nil)
	require.NoError(t, err)
	require.NoError(t, f.AddVariable(ev))

	v2d, err := NewVariable("var2d", Float64Data(seq(12)), []int32{4})
	require.NoError(t, err)
	require.NoError(t, f.AddVariable(v2d))

	v3d, err := NewVariable("var3d", Float64Data(seq(24)), []int32{3, 2})
	require.NoError(t, err)
	require.NoError(t, f.AddVariable(v3d))

	return f
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

func roundTrip(t *testing.T, f *File, loadOpts ...*LoadOptions) *File {
	t.Helper()

	data, err := Encode(f, nil)
	require.NoError(t, err)

	var opts *LoadOptions
	if len(loadOpts) > 0 {
		opts = loadOpts[0]
	}

	g, err := Decode(data, opts)
	require.NoError(t, err)

	return g
}

func TestRoundTripSampleFile(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	g := roundTrip(t, f)

	require.True(f.Equal(g))
	require.True(g.Equal(f))

	require.Equal(4, g.NumAttributes())
	require.Equal(4, g.NumVariables())

	attr, ok := g.Attribute("attr")
	require.True(ok)
	cell, ok := attr.Get(0)
	require.True(ok)
	text, err := cell.Text()
	require.NoError(err)
	require.Equal("a cdf text attribute", text)

	v, ok := g.Variable("var")
	require.True(ok)
	require.Empty(v.Shape())
	vals, err := v.Float64s()
	require.NoError(err)
	require.Len(vals, 101)

	v3d, ok := g.Variable("var3d")
	require.True(ok)
	require.Equal([]int32{3, 2}, v3d.Shape())
	vals, err = v3d.Float64s()
	require.NoError(err)
	require.Len(vals, 24)
	require.Equal(seq(24), vals)

	// Attribute and variable order survives the trip.
	var names []string
	for name := range g.Variables() {
		names = append(names, name)
	}
	require.Equal([]string{"var", "epoch", "var2d", "var3d"}, names)
}

func TestRoundTripEmptyFile(t *testing.T) {
	f := New()
	g := roundTrip(t, f)
	require.True(t, f.Equal(g))
}

func TestRoundTripCompressedVariable(t *testing.T) {
	require := require.New(t)

	f := New()
	v, err := NewVariable("var1", Float32Data(make([]float32, 100)), nil)
	require.NoError(err)
	v.SetCompression(format.CompressionGzip)
	require.NoError(f.AddVariable(v))

	g := roundTrip(t, f)
	require.True(f.Equal(g))

	loaded, ok := g.Variable("var1")
	require.True(ok)
	require.Equal(format.CompressionGzip, loaded.Compression())

	vals, err := loaded.Float32s()
	require.NoError(err)
	require.Equal(make([]float32, 100), vals)
}

func TestRoundTripPerVariableCompressionAlgorithms(t *testing.T) {
	for _, comp := range []format.CompressionType{
		format.CompressionRLE,
		format.CompressionHuffman,
		format.CompressionAHuffman,
		format.CompressionGzip,
	} {
		t.Run(comp.String(), func(t *testing.T) {
			f := New()
			v, err := NewVariable("data", Float64Data(seq(64)), []int32{8})
			require.NoError(t, err)
			v.SetCompression(comp)
			require.NoError(t, f.AddVariable(v))

			g := roundTrip(t, f)
			require.True(t, f.Equal(g))
		})
	}
}

func TestRoundTripFileCompression(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	f.SetCompression(format.CompressionGzip, 9)

	data, err := Encode(f, nil)
	require.NoError(err)

	// The image leads with the compression magic.
	require.Equal(uint32(magicCompressed), structural.Uint32(data[4:8]))

	g, err := Decode(data, nil)
	require.NoError(err)
	require.True(f.Equal(g))
	require.Equal(format.CompressionGzip, g.Compression())
	require.Equal(9, g.CompressionParam())
}

func TestSaveOptionOverridesFileCompression(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)

	opts, err := NewSaveOptions(WithFileCompression(format.CompressionGzip, 1))
	require.NoError(err)

	data, err := Encode(f, opts)
	require.NoError(err)
	require.Equal(uint32(magicCompressed), structural.Uint32(data[4:8]))

	g, err := Decode(data, nil)
	require.NoError(err)
	require.Equal(format.CompressionGzip, g.Compression())
}

func TestRoundTripColumnMajor(t *testing.T) {
	require := require.New(t)

	f := New()
	f.SetMajority(format.ColumnMajor)

	v, err := NewVariable("var3d", Float64Data(seq(24)), []int32{3, 2})
	require.NoError(err)
	require.NoError(f.AddVariable(v))

	data, err := Encode(f, nil)
	require.NoError(err)

	g, err := Decode(data, nil)
	require.NoError(err)
	require.Equal(format.ColumnMajor, g.Majority())
	require.True(f.Equal(g))

	// In-memory order stays row-major on both sides.
	loaded, ok := g.Variable("var3d")
	require.True(ok)
	vals, err := loaded.Float64s()
	require.NoError(err)
	require.Equal(seq(24), vals)
}

func TestRoundTripChecksum(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	f.SetChecksum(true)

	data, err := Encode(f, nil)
	require.NoError(err)

	g, err := Decode(data, nil)
	require.NoError(err)
	require.True(g.Checksum())
	require.True(f.Equal(g))

	// Flipping one payload byte must break the digest.
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-20] ^= 0xFF
	_, err = Decode(corrupted, nil)
	require.ErrorIs(err, errs.ErrBadRecord)
}

func TestRoundTripVirtualRecords(t *testing.T) {
	require := require.New(t)

	f := New()
	v, err := NewVariable("nrv", Float64Data([]float64{1, 2, 3}), []int32{3})
	require.NoError(err)
	v.SetRecordVariant(false)
	v.maxRec = 4
	require.NoError(f.AddVariable(v))

	g := roundTrip(t, f)

	loaded, ok := g.Variable("nrv")
	require.True(ok)
	require.False(loaded.RecordVariant())
	require.Equal(5, loaded.Len())

	for i := range 5 {
		rec, err := loaded.Record(i)
		require.NoError(err)
		vals, err := rec.Float64s()
		require.NoError(err)
		require.Equal([]float64{1, 2, 3}, vals)
	}

	data, err := loaded.Data()
	require.NoError(err)
	require.Equal(3, data.Len(), "only one record is stored")
}

func TestRoundTripVirtualRecordsViaSetData(t *testing.T) {
	require := require.New(t)

	// The same state built purely through the exported API: a
	// non-record-variant variable fed multi-record data.
	f := New()
	v, err := NewVariable("nrv", Float64Data([]float64{0, 0, 0}), []int32{3})
	require.NoError(err)
	v.SetRecordVariant(false)
	require.NoError(v.SetData(Float64Data(seq(15))))
	require.NoError(f.AddVariable(v))

	g := roundTrip(t, f)
	require.True(f.Equal(g))

	loaded, ok := g.Variable("nrv")
	require.True(ok)
	require.False(loaded.RecordVariant())
	require.Equal(5, loaded.Len())

	for i := range 5 {
		rec, err := loaded.Record(i)
		require.NoError(err)
		vals, err := rec.Float64s()
		require.NoError(err)
		require.Equal([]float64{0, 1, 2}, vals)
	}
}

func TestRoundTripPadValue(t *testing.T) {
	require := require.New(t)

	f := New()
	v, err := NewVariable("padded", Float64Data(seq(2)), nil)
	require.NoError(err)
	require.NoError(v.SetPad(Float64Data([]float64{-1e31})))
	require.NoError(f.AddVariable(v))

	g := roundTrip(t, f)

	loaded, ok := g.Variable("padded")
	require.True(ok)
	require.NotNil(loaded.Pad())

	pads, err := loaded.Pad().Float64s()
	require.NoError(err)
	require.Equal([]float64{-1e31}, pads)
}

func TestRoundTripVariableScopeAttribute(t *testing.T) {
	require := require.New(t)

	f := New()

	v, err := NewVariable("var", Float64Data(seq(4)), nil)
	require.NoError(err)
	require.NoError(f.AddVariable(v))

	units, err := NewAttribute("UNITS", format.VariableScope)
	require.NoError(err)
	units.Set(0, CharData("nT"))
	require.NoError(f.AddAttribute(units))

	g := roundTrip(t, f)
	require.True(f.Equal(g))

	loaded, ok := g.Attribute("UNITS")
	require.True(ok)
	require.Equal(format.VariableScope, loaded.Scope())
}

func TestLazyLoading(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	data, err := Encode(f, nil)
	require.NoError(err)

	opts, err := NewLoadOptions(WithLazyLoading(true))
	require.NoError(err)

	g, err := Decode(data, opts)
	require.NoError(err)

	v, ok := g.Variable("var3d")
	require.True(ok)
	require.NotNil(v.materialize, "slab not materialized yet")

	vals, err := v.Float64s()
	require.NoError(err)
	require.Equal(seq(24), vals)
	require.Nil(v.materialize, "materialized after first access")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte("definitely not a cdf file"), nil)
	require.ErrorIs(err, errs.ErrNotACDF)

	_, err = Decode([]byte{1, 2, 3}, nil)
	require.ErrorIs(err, errs.ErrNotACDF)
}

func TestDecodeRejectsV2Magic(t *testing.T) {
	data := structural.AppendUint32(nil, magicV2)
	data = structural.AppendUint32(data, magicUncompressed)
	data = append(data, make([]byte, 64)...)

	_, err := Decode(data, nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestDecodeResourceLimit(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	data, err := Encode(f, nil)
	require.NoError(err)

	opts, err := NewLoadOptions(WithMaxDecodedBytes(64))
	require.NoError(err)

	_, err = Decode(data, opts)
	require.ErrorIs(err, errs.ErrResourceExceeded)
}

func TestDecodeTruncatedRecord(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	data, err := Encode(f, nil)
	require.NoError(err)

	_, err = Decode(data[:len(data)-40], nil)
	require.ErrorIs(err, errs.ErrBadRecord)
}

// buildCorruptIndexImage handcrafts a minimal file whose VXR covers
// record 0 twice.
func buildCorruptIndexImage(t *testing.T) []byte {
	t.Helper()

	vdr := record.VDR{
		RType:     format.RecordZVDR,
		VDRNext:   record.NoLink,
		DataType:  format.TypeDouble,
		MaxRec:    1,
		Flags:     record.VDRFlagRecordVariance,
		NumElems:  1,
		Num:       0,
		CPROffset: record.NoLink,
		Name:      "twice",
	}

	vvr := record.VVR{Data: make([]byte, 8)}

	cdr := record.CDR{
		Version:  3,
		Release:  9,
		Encoding: format.EncodingIBMPC,
		Flags:    record.CDRFlagRowMajority | record.CDRFlagSingleFile,
	}
	gdr := record.GDR{
		RVDRHead: record.NoLink,
		ADRHead:  record.NoLink,
		RMaxRec:  -1,
		NzVars:   1,
		Format:   record.GDRFormatSingle,
	}

	vxr := record.VXR{
		VXRNext:      record.NoLink,
		NEntries:     2,
		NUsedEntries: 2,
		First:        []int32{0, 0},
		Last:         []int32{0, 1},
		Offset:       []int64{0, 0},
	}

	off := int64(firstRecordOffset)
	off += cdr.Size()
	cdr.GDROffset = off
	off += gdr.Size()
	gdr.ZVDRHead = off
	off += vdr.Size()
	vdr.VXRHead = off
	vdr.VXRTail = off
	off += vxr.Size()
	vxr.Offset[0] = off
	vxr.Offset[1] = off
	off += vvr.Size()
	gdr.EOF = off

	// The single VVR only holds one record; the second entry would need
	// two, but the overlap check fires first.
	out := structural.AppendUint32(nil, magicV3)
	out = structural.AppendUint32(out, magicUncompressed)
	out = cdr.AppendTo(out)
	out = gdr.AppendTo(out)
	out = vdr.AppendTo(out)
	out = vxr.AppendTo(out)
	out = vvr.AppendTo(out)

	return out
}

func TestDecodeOverlappingVXR(t *testing.T) {
	_, err := Decode(buildCorruptIndexImage(t), nil)
	require.ErrorIs(t, err, errs.ErrCorruptedIndex)
}

func TestDecodeISO8859Attribute(t *testing.T) {
	require := require.New(t)

	f := New()
	attr, err := NewAttribute("title", format.GlobalScope)
	require.NoError(err)
	attr.Append(CharData("caf\xe9"))
	require.NoError(f.AddAttribute(attr))

	data, err := Encode(f, nil)
	require.NoError(err)

	opts, err := NewLoadOptions(WithISO8859_1(true))
	require.NoError(err)

	g, err := Decode(data, opts)
	require.NoError(err)

	loaded, ok := g.Attribute("title")
	require.True(ok)
	cell, ok := loaded.Get(0)
	require.True(ok)
	text, err := cell.Text()
	require.NoError(err)
	require.Equal("café", text)
}

func TestEncodeLinkInvariants(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	data, err := Encode(f, nil)
	require.NoError(err)

	// CDR at offset 8, GDR where the CDR says.
	cdrBuf, err := readRecordAt(data, firstRecordOffset)
	require.NoError(err)
	cdr, err := record.ParseCDR(cdrBuf)
	require.NoError(err)

	gdrBuf, err := readRecordAt(data, cdr.GDROffset)
	require.NoError(err)
	gdr, err := record.ParseGDR(gdrBuf)
	require.NoError(err)

	require.Equal(int32(4), gdr.NumAttrs)
	require.Equal(int32(4), gdr.NzVars)
	require.Equal(record.NoLink, gdr.RVDRHead)

	// Every VDR has a single VXR with head == tail covering [0, MaxRec].
	count := 0
	for off := gdr.ZVDRHead; off != record.NoLink; count++ {
		buf, err := readRecordAt(data, off)
		require.NoError(err)

		vdr, err := record.ParseVDR(buf, 0, func(v *record.VDR) int {
			return v.DataType.Size() * int(max(v.NumElems, 1))
		})
		require.NoError(err)
		require.Equal(vdr.VXRHead, vdr.VXRTail)

		vxrBuf, err := readRecordAt(data, vdr.VXRHead)
		require.NoError(err)
		vxr, err := record.ParseVXR(vxrBuf)
		require.NoError(err)
		require.Equal(int32(1), vxr.NUsedEntries)
		require.Equal(int32(0), vxr.First[0])
		require.Equal(vdr.MaxRec, vxr.Last[0])

		off = vdr.VDRNext
	}
	require.Equal(4, count)

	// EOF points at the end of the emitted image.
	require.Equal(int64(len(data)), gdr.EOF)
}
