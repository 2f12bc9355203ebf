// Package nsformat defines the fixed-layout header records that open
// every buffer this module produces: the compressed frame, the package
// frame, and the patch (delta) frame. The three header kinds share only
// the idea of a title; each is its own concrete struct, not a shared base
// with virtual dispatch, so the encode/decode path for each stays a flat
// function over a concrete type.
package nsformat

import (
	"encoding/binary"

	"github.com/nsuite/nsuite/errs"
)

// Fixed titles, one per frame kind. Lengths are exactly the byte counts
// documented in the wire format tables; no padding or NUL termination is
// ever applied.
const (
	TitleCompressed = "nSuite compressed" // 17 bytes
	TitlePackage    = "nSuite package"    // 14 bytes
	TitlePatch      = "nSuite patch"      // 12 bytes
)

// CompressedHeader opens every byte-compressor frame (see package
// compress).
//
//	offset 0  : title (17 bytes)
//	offset 17 : uncompressed_size (u64 LE)
type CompressedHeader struct {
	UncompressedSize uint64
}

// CompressedHeaderSize is the encoded length of a CompressedHeader.
const CompressedHeaderSize = len(TitleCompressed) + 8

// Encode appends the header's wire bytes to dst and returns the result.
func (h CompressedHeader) Encode(dst []byte) []byte {
	dst = append(dst, TitleCompressed...)
	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], h.UncompressedSize)
	return append(dst, sz[:]...)
}

// DecodeCompressedHeader reads a CompressedHeader from the front of buf,
// validating the title. It returns the header and the number of bytes
// consumed.
func DecodeCompressedHeader(buf []byte) (CompressedHeader, int, error) {
	if len(buf) < CompressedHeaderSize {
		return CompressedHeader{}, 0, errs.ErrCorruptFrame
	}
	if string(buf[:len(TitleCompressed)]) != TitleCompressed {
		return CompressedHeader{}, 0, errs.ErrCorruptFrame
	}
	sz := binary.LittleEndian.Uint64(buf[len(TitleCompressed):CompressedHeaderSize])
	return CompressedHeader{UncompressedSize: sz}, CompressedHeaderSize, nil
}

// PackageHeader opens a package frame (see package vdir's Pack/Unpack).
//
//	offset 0  : title (14 bytes)
//	offset 14 : folder_name_length (u64 LE)
//	offset 22 : folder_name bytes
type PackageHeader struct {
	FolderName string
}

// Encode appends the header's wire bytes to dst and returns the result.
func (h PackageHeader) Encode(dst []byte) []byte {
	dst = append(dst, TitlePackage...)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(h.FolderName)))
	dst = append(dst, n[:]...)
	return append(dst, h.FolderName...)
}

// DecodePackageHeader reads a PackageHeader from the front of buf,
// validating the title. It returns the header and the number of bytes
// consumed.
func DecodePackageHeader(buf []byte) (PackageHeader, int, error) {
	const fixed = len(TitlePackage) + 8
	if len(buf) < fixed {
		return PackageHeader{}, 0, errs.ErrCorruptFrame
	}
	if string(buf[:len(TitlePackage)]) != TitlePackage {
		return PackageHeader{}, 0, errs.ErrCorruptFrame
	}
	n := binary.LittleEndian.Uint64(buf[len(TitlePackage):fixed])
	end := fixed + int(n)
	if end < fixed || end > len(buf) {
		return PackageHeader{}, 0, errs.ErrCorruptFrame
	}
	return PackageHeader{FolderName: string(buf[fixed:end])}, end, nil
}

// PatchHeader opens a delta frame (see package vdir's MakeDelta/ApplyDelta).
//
//	offset 0  : title (12 bytes)
//	offset 12 : file_record_count (u64 LE)
type PatchHeader struct {
	FileRecordCount uint64
}

// PatchHeaderSize is the encoded length of a PatchHeader.
const PatchHeaderSize = len(TitlePatch) + 8

// Encode appends the header's wire bytes to dst and returns the result.
func (h PatchHeader) Encode(dst []byte) []byte {
	dst = append(dst, TitlePatch...)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], h.FileRecordCount)
	return append(dst, n[:]...)
}

// DecodePatchHeader reads a PatchHeader from the front of buf, validating
// the title. It returns the header and the number of bytes consumed.
func DecodePatchHeader(buf []byte) (PatchHeader, int, error) {
	if len(buf) < PatchHeaderSize {
		return PatchHeader{}, 0, errs.ErrCorruptFrame
	}
	if string(buf[:len(TitlePatch)]) != TitlePatch {
		return PatchHeader{}, 0, errs.ErrCorruptFrame
	}
	count := binary.LittleEndian.Uint64(buf[len(TitlePatch):PatchHeaderSize])
	return PatchHeader{FileRecordCount: count}, PatchHeaderSize, nil
}
