// Package lzmatch implements the sliding-window LZ-style matcher shared by
// the byte compressor (package compress) and the delta codec (package
// vdir): given a target byte slice to describe and a source byte slice to
// describe it against, it emits a Copy/Insert/Repeat instruction stream
// that reconstructs target when replayed with source as the Copy source.
//
// The byte compressor calls this with source and target as the same
// slice — the classic self-referential sliding window, where a position
// may only be referenced once it has itself been emitted. The delta
// codec calls this with source as the complete old file and target as the
// complete new file; there the whole of source is eligible from the
// start, since it is a separate, already-materialized buffer.
package lzmatch

import (
	"encoding/binary"

	"github.com/nsuite/nsuite/instruction"
)

// MinMatch is the minimum run length (for both Copy and Repeat) worth
// emitting as an instruction rather than literal bytes.
const MinMatch = 4

// maxChain bounds how many candidate positions are kept per hash bucket,
// trading match quality for a predictable worst case on pathological
// inputs (long runs of a repeated n-gram).
const maxChain = 32

// Encode returns the instruction stream that reconstructs target when
// replayed against source. selfReferential must be true when source and
// target are the same underlying content (the byte compressor's case):
// in that mode, a position may only be used as a Copy source once the
// cursor has passed it, so src_end <= dst always holds. When false
// (the delta codec's case), source is a complete, independent buffer and
// is searchable in full from the first byte.
func Encode(target, source []byte, selfReferential bool) []instruction.Instruction {
	var out []instruction.Instruction
	n := len(target)
	if n == 0 {
		return out
	}

	ix := newIndex()
	if !selfReferential {
		for p := 0; p+4 <= len(source); p++ {
			ix.insert(p, source)
		}
	}

	indexed := 0 // self-referential only: positions < indexed are in the index
	literalStart := 0
	cursor := 0

	flushLiteral := func(end int) {
		if end <= literalStart {
			return
		}
		lit := make([]byte, end-literalStart)
		copy(lit, target[literalStart:end])
		out = append(out, instruction.Instruction{
			Kind:    instruction.Insert,
			Dst:     uint64(literalStart),
			Literal: lit,
		})
	}

	for cursor < n {
		if selfReferential {
			for indexed < cursor {
				ix.insert(indexed, source)
				indexed++
			}
		}

		repeatLen := runLength(target, cursor)

		var bestLen, bestPos int
		if selfReferential {
			bestLen, bestPos = ix.bestMatch(target, cursor, source, cursor)
			// A self-referential match may only reach back into bytes
			// already emitted: clamp so src_end (bestPos+bestLen) never
			// passes cursor, or replay would need bytes not yet written.
			if bestLen > cursor-bestPos {
				bestLen = cursor - bestPos
			}
		} else {
			bestLen, bestPos = ix.bestMatch(target, cursor, source, len(source))
		}

		switch {
		case bestLen >= MinMatch && bestLen > repeatLen:
			flushLiteral(cursor)
			out = append(out, instruction.Instruction{
				Kind:     instruction.Copy,
				Dst:      uint64(cursor),
				SrcBegin: uint64(bestPos),
				SrcEnd:   uint64(bestPos + bestLen),
			})
			cursor += bestLen
			literalStart = cursor
		case repeatLen >= MinMatch:
			flushLiteral(cursor)
			out = append(out, instruction.Instruction{
				Kind:   instruction.Repeat,
				Dst:    uint64(cursor),
				Length: uint64(repeatLen),
				Value:  target[cursor],
			})
			cursor += repeatLen
			literalStart = cursor
		default:
			cursor++
		}
	}
	flushLiteral(n)
	return out
}

// runLength reports how many consecutive bytes starting at target[pos]
// equal target[pos].
func runLength(target []byte, pos int) int {
	v := target[pos]
	end := pos + 1
	for end < len(target) && target[end] == v {
		end++
	}
	return end - pos
}

// matchLen reports how many leading bytes of source[pos:] and
// target[cursor:] agree.
func matchLen(source []byte, pos int, target []byte, cursor int) int {
	max := len(source) - pos
	if rem := len(target) - cursor; rem < max {
		max = rem
	}
	i := 0
	for i < max && source[pos+i] == target[cursor+i] {
		i++
	}
	return i
}

// index is an in-progress hash-chain over 4-byte n-grams of a byte slice,
// used to find candidate Copy sources quickly.
type index struct {
	table map[uint32][]int
}

func newIndex() *index {
	return &index{table: make(map[uint32][]int)}
}

func hash4(b []byte) uint32 {
	v := binary.LittleEndian.Uint32(b)
	return (v * 2654435761) >> 16
}

func (ix *index) insert(pos int, data []byte) {
	if pos+4 > len(data) {
		return
	}
	h := hash4(data[pos : pos+4])
	lst := ix.table[h]
	if len(lst) >= maxChain {
		lst = lst[1:]
	}
	ix.table[h] = append(lst, pos)
}

// bestMatch finds the longest match for target[cursor:] among source
// positions strictly less than limit, breaking length ties in favor of
// the candidate nearest to cursor.
func (ix *index) bestMatch(target []byte, cursor int, source []byte, limit int) (length, pos int) {
	if cursor+4 > len(target) {
		return 0, 0
	}
	h := hash4(target[cursor : cursor+4])
	candidates := ix.table[h]
	bestLen, bestPos, bestDist := 0, 0, -1
	for _, p := range candidates {
		if p >= limit {
			continue
		}
		l := matchLen(source, p, target, cursor)
		if l < MinMatch {
			continue
		}
		dist := cursor - p
		if dist < 0 {
			dist = -dist
		}
		if l > bestLen || (l == bestLen && dist < bestDist) {
			bestLen, bestPos, bestDist = l, p, dist
		}
	}
	return bestLen, bestPos
}
