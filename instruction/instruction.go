// Package instruction implements the {Copy, Insert, Repeat} tagged-union
// wire format shared by the byte compressor and the delta codec. The
// alphabet is modeled as one concrete struct with a Kind tag, not as an
// interface with per-variant implementations, so encode, decode, and
// execute each stay a single flat switch — branch-predictable in the hot
// loop instead of a virtual call per instruction.
package instruction

import (
	"encoding/binary"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/errs"
)

// Kind tags which fields of an Instruction are meaningful.
type Kind uint8

const (
	Copy   Kind = 0x00
	Insert Kind = 0x01
	Repeat Kind = 0x02
)

// Instruction is one element of the Copy/Insert/Repeat alphabet.
//
//	Copy   : Dst, SrcBegin, SrcEnd
//	Insert : Dst, Literal (Length is implied by len(Literal))
//	Repeat : Dst, Length, Value
type Instruction struct {
	Kind     Kind
	Dst      uint64
	SrcBegin uint64
	SrcEnd   uint64
	Literal  []byte
	Length   uint64
	Value    byte
}

// Encode appends the instruction's wire bytes to dst and returns the
// result, per the instruction wire format:
//
//	Copy   : tag=0x00, dst u64, src_begin u64, src_end u64
//	Insert : tag=0x01, dst u64, len u64, bytes[len]
//	Repeat : tag=0x02, dst u64, len u64, value u8
func (in Instruction) Encode(dst []byte) []byte {
	var u64 [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(u64[:], v)
		dst = append(dst, u64[:]...)
	}
	dst = append(dst, byte(in.Kind))
	putU64(in.Dst)
	switch in.Kind {
	case Copy:
		putU64(in.SrcBegin)
		putU64(in.SrcEnd)
	case Insert:
		putU64(uint64(len(in.Literal)))
		dst = append(dst, in.Literal...)
	case Repeat:
		putU64(in.Length)
		dst = append(dst, in.Value)
	}
	return dst
}

// Decode reads one instruction from the front of buf. It returns the
// instruction and the number of bytes consumed.
func Decode(buf []byte) (Instruction, int, error) {
	if len(buf) < 9 {
		return Instruction{}, 0, errs.ErrCorruptFrame
	}
	kind := Kind(buf[0])
	dst := binary.LittleEndian.Uint64(buf[1:9])
	off := 9
	switch kind {
	case Copy:
		if len(buf) < off+16 {
			return Instruction{}, 0, errs.ErrCorruptFrame
		}
		begin := binary.LittleEndian.Uint64(buf[off : off+8])
		end := binary.LittleEndian.Uint64(buf[off+8 : off+16])
		return Instruction{Kind: Copy, Dst: dst, SrcBegin: begin, SrcEnd: end}, off + 16, nil
	case Insert:
		if len(buf) < off+8 {
			return Instruction{}, 0, errs.ErrCorruptFrame
		}
		n := binary.LittleEndian.Uint64(buf[off : off+8])
		off += 8
		end := off + int(n)
		if end < off || end > len(buf) {
			return Instruction{}, 0, errs.ErrCorruptFrame
		}
		lit := make([]byte, n)
		copy(lit, buf[off:end])
		return Instruction{Kind: Insert, Dst: dst, Literal: lit, Length: n}, end, nil
	case Repeat:
		if len(buf) < off+9 {
			return Instruction{}, 0, errs.ErrCorruptFrame
		}
		n := binary.LittleEndian.Uint64(buf[off : off+8])
		value := buf[off+8]
		return Instruction{Kind: Repeat, Dst: dst, Length: n, Value: value}, off + 9, nil
	default:
		return Instruction{}, 0, errs.ErrCorruptFrame
	}
}

// EncodeStream concatenates the wire encoding of every instruction in
// order.
func EncodeStream(stream []Instruction) []byte {
	var out []byte
	for _, in := range stream {
		out = in.Encode(out)
	}
	return out
}

// DecodeStream decodes instructions from buf until exactly n bytes have
// been consumed. It fails with ErrCorruptFrame if a trailing instruction
// would overrun n.
func DecodeStream(buf []byte, n int) ([]Instruction, error) {
	if n > len(buf) {
		return nil, errs.ErrCorruptFrame
	}
	region := buf[:n]
	var out []Instruction
	consumed := 0
	for consumed < n {
		in, used, err := Decode(region[consumed:])
		if err != nil {
			return nil, err
		}
		consumed += used
		out = append(out, in)
	}
	if consumed != n {
		return nil, errs.ErrCorruptFrame
	}
	return out, nil
}

// Apply replays stream into dst, using src as the Copy source. Instructions
// apply in order; a later write to a destination range overwrites an
// earlier one. Any destination or source range that escapes dst's or
// src's bounds fails with ErrCorruptFrame.
func Apply(stream []Instruction, dst buffer.Buffer, src buffer.Buffer) error {
	out := dst.Bytes()
	in := src.Bytes()
	for _, instr := range stream {
		switch instr.Kind {
		case Copy:
			if instr.SrcBegin > instr.SrcEnd || int(instr.SrcEnd) > len(in) {
				return errs.ErrCorruptFrame
			}
			n := int(instr.SrcEnd - instr.SrcBegin)
			d := int(instr.Dst)
			if d < 0 || d+n > len(out) {
				return errs.ErrCorruptFrame
			}
			// Self-referential Copy instructions always have
			// SrcEnd <= Dst (the encoder never reaches back past what it
			// has already emitted), so [SrcBegin,SrcEnd) and [d,d+n) never
			// overlap and a plain copy suffices.
			copy(out[d:d+n], in[instr.SrcBegin:instr.SrcEnd])
		case Insert:
			d := int(instr.Dst)
			if d < 0 || d+len(instr.Literal) > len(out) {
				return errs.ErrCorruptFrame
			}
			copy(out[d:d+len(instr.Literal)], instr.Literal)
		case Repeat:
			d := int(instr.Dst)
			n := int(instr.Length)
			if d < 0 || d+n > len(out) {
				return errs.ErrCorruptFrame
			}
			row := out[d : d+n]
			for i := range row {
				row[i] = instr.Value
			}
		default:
			return errs.ErrCorruptFrame
		}
	}
	return nil
}
