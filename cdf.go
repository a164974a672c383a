// Package cdf reads and writes files in the NASA Common Data Format (CDF)
// version 3: a self-describing, record-oriented scientific container with
// typed multi-dimensional variables, global and per-variable attributes,
// optional per-variable and whole-file compression, and three time
// encodings bridged to a common nanosecond timeline.
//
// # Basic Usage
//
// Loading a file:
//
//	import "github.com/SciQLop/cdfgo"
//
//	f := cdf.Load("data.cdf")
//	if f == nil {
//	    // not a CDF, or corrupt; use LoadStrict for the reason
//	}
//	if v, ok := f.Variable("epoch"); ok {
//	    data, _ := v.Data()
//	    times, _ := data.TT2000s()
//	    _ = times
//	}
//
// Creating and saving a file:
//
//	f := cdf.New()
//	attr, _ := cdf.NewAttribute("mission", cdf.GlobalScope)
//	attr.Append(cdf.CharData("solar orbiter"))
//	_ = f.AddAttribute(attr)
//
//	v, _ := cdf.NewVariable("var1", cdf.Float32Data(make([]float32, 100)), nil)
//	v.SetCompression(cdf.CompressionGzip)
//	_ = f.AddVariable(v)
//	_ = cdf.Save(f, "out.cdf")
//
// Time conversion lives in the epoch package; the three CDF encodings all
// convert to and from 64-bit nanoseconds since 1970-01-01T00:00:00 UTC.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the file
// package. For fine-grained control (decode options, write sinks), use
// the file, record, compress and epoch packages directly.
package cdf

import (
	"io"
	"os"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/file"
	"github.com/SciQLop/cdfgo/format"
)

// Re-exported model types; the file package holds the implementations.
type (
	File      = file.File
	Attribute = file.Attribute
	Variable  = file.Variable
	Data      = file.Data
	Entry     = file.Entry

	LoadOption = file.LoadOption
	SaveOption = file.SaveOption
)

// Commonly used enum values, re-exported for call-site brevity.
const (
	GlobalScope   = format.GlobalScope
	VariableScope = format.VariableScope

	CompressionNone = format.CompressionNone
	CompressionGzip = format.CompressionGzip

	RowMajor    = format.RowMajor
	ColumnMajor = format.ColumnMajor
)

// Model constructors, re-exported from the file package.
var (
	New          = file.New
	NewAttribute = file.NewAttribute
	NewVariable  = file.NewVariable

	Int8Data    = file.Int8Data
	Uint8Data   = file.Uint8Data
	Int16Data   = file.Int16Data
	Uint16Data  = file.Uint16Data
	Int32Data   = file.Int32Data
	Uint32Data  = file.Uint32Data
	Int64Data   = file.Int64Data
	Float32Data = file.Float32Data
	Float64Data = file.Float64Data
	EpochData   = file.EpochData
	Epoch16Data = file.Epoch16Data
	TT2000Data  = file.TT2000Data
	CharData    = file.CharData
	CharsData   = file.CharsData

	WithLazyLoading     = file.WithLazyLoading
	WithISO8859_1       = file.WithISO8859_1
	WithMaxDecodedBytes = file.WithMaxDecodedBytes
	WithFileCompression = file.WithFileCompression
)

// Load reads a CDF file from disk. It returns nil on any error; use
// LoadStrict when the error kind matters.
func Load(path string, opts ...LoadOption) *File {
	f, err := LoadStrict(path, opts...)
	if err != nil {
		return nil
	}

	return f
}

// LoadStrict reads a CDF file from disk, reporting why a load failed.
// Error kinds are the sentinels of the errs package.
func LoadStrict(path string, opts ...LoadOption) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.ErrIO
	}

	return LoadBytesStrict(data, opts...)
}

// LoadBytes decodes a CDF image held in memory, returning nil on error.
func LoadBytes(data []byte, opts ...LoadOption) *File {
	f, err := LoadBytesStrict(data, opts...)
	if err != nil {
		return nil
	}

	return f
}

// LoadBytesStrict decodes a CDF image held in memory.
func LoadBytesStrict(data []byte, opts ...LoadOption) (*File, error) {
	cfg, err := file.NewLoadOptions(opts...)
	if err != nil {
		return nil, err
	}

	return file.Decode(data, cfg)
}

// LoadReader decodes a CDF image from a reader, consuming it fully.
func LoadReader(r io.Reader, opts ...LoadOption) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.ErrIO
	}

	return LoadBytesStrict(data, opts...)
}

// Save encodes a File and writes it to path. Nothing is written on error.
func Save(f *File, path string, opts ...SaveOption) error {
	cfg, err := file.NewSaveOptions(opts...)
	if err != nil {
		return err
	}

	return file.Save(f, path, cfg)
}

// SaveBytes encodes a File and returns the CDF image.
func SaveBytes(f *File, opts ...SaveOption) ([]byte, error) {
	cfg, err := file.NewSaveOptions(opts...)
	if err != nil {
		return nil, err
	}

	return file.Encode(f, cfg)
}

// SaveWriter encodes a File and writes the image to w. The sink sees
// either the complete image or nothing.
func SaveWriter(f *File, w io.Writer, opts ...SaveOption) error {
	cfg, err := file.NewSaveOptions(opts...)
	if err != nil {
		return err
	}

	return file.WriteTo(f, w, cfg)
}
