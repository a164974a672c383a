// Package endian provides the byte order engines used by the CDF codec.
//
// CDF v3 stores all record-level integer fields big-endian, while numeric
// payloads follow the encoding byte of the CDR. Decoded cells are always
// normalized to little-endian, so the two engines split cleanly: the
// big-endian engine reads and writes record structure, the little-endian
// engine backs the in-memory cell layout.
//
//	structural := endian.GetBigEndianEngine()
//	size := structural.Uint64(buf[0:8])
//
// The returned engines are immutable, stateless and safe for concurrent
// use.
package endian

import "encoding/binary"

// EndianEngine combines the ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations. It is satisfied by binary.BigEndian and binary.LittleEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the engine for CDF record structure, which
// is big-endian on disk.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the engine for normalized cell payloads.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
