// Package compress implements the byte compressor: a sliding-window
// LZ-style encoder/decoder over a single Buffer, framed by the
// "nSuite compressed" header (package nsformat).
package compress

import (
	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/instruction"
	"github.com/nsuite/nsuite/lzmatch"
	"github.com/nsuite/nsuite/nsformat"
)

// Compress returns a compressed frame for src: a CompressedHeader
// followed by the Copy/Insert/Repeat instruction stream that reconstructs
// src's bytes. An empty src produces a header-only frame.
func Compress(src buffer.Buffer) buffer.Buffer {
	hdr := nsformat.CompressedHeader{UncompressedSize: uint64(src.Len())}
	out := hdr.Encode(nil)

	stream := lzmatch.Encode(src.Bytes(), src.Bytes(), true)
	out = append(out, instruction.EncodeStream(stream)...)
	return buffer.FromBytes(out)
}

// Decompress reverses Compress. It rejects a title mismatch, a truncated
// instruction stream, or any instruction whose destination range escapes
// the declared uncompressed size, all as ErrCorruptFrame.
func Decompress(src buffer.Buffer) (buffer.Buffer, error) {
	raw := src.Bytes()
	hdr, used, err := nsformat.DecodeCompressedHeader(raw)
	if err != nil {
		return buffer.Buffer{}, xerrors.Errorf("decompress: %w", err)
	}

	streamBytes := raw[used:]
	stream, err := instruction.DecodeStream(streamBytes, len(streamBytes))
	if err != nil {
		return buffer.Buffer{}, xerrors.Errorf("decompress: %w", err)
	}

	dst := buffer.New(int(hdr.UncompressedSize))
	// The compressor's Copy instructions are self-referential: they
	// index the output buffer itself as the source, which is how the
	// sliding window is realized on replay.
	if err := instruction.Apply(stream, dst, dst); err != nil {
		return buffer.Buffer{}, xerrors.Errorf("decompress: %w", err)
	}
	return dst, nil
}
