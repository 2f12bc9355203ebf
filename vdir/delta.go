package vdir

import (
	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/compress"
	"github.com/nsuite/nsuite/errs"
	"github.com/nsuite/nsuite/instruction"
	"github.com/nsuite/nsuite/lzmatch"
	"github.com/nsuite/nsuite/nsformat"
)

// deltaRecord is one per-file entry of a delta payload: a removal
// (NewSize==0, NewHash==0), an addition (OldSize==0, including an addition
// of an empty file when NewSize==0 too), or a modification (both nonzero).
// NewHash==0 is what distinguishes a removal from the addition of an empty
// file: an addition always records its content fingerprint, and the
// fingerprint of empty content is never 0. Neither NewSize==0 nor OldSize
// alone tells them apart, since the removal of an empty file also has
// OldSize==0.
type deltaRecord struct {
	Path             string
	OldHash, NewHash uint64
	OldSize, NewSize uint64
	Instr            []instruction.Instruction
}

// MakeDelta computes the outer diff by path between old and updated (both
// assumed path-sorted, as every Directory always is) and emits a
// path-sorted sequence of per-file records: removals for paths only in
// old, additions for paths only in updated, and modifications — via the same
// LZ matcher the byte compressor uses, but with the old file as Copy
// source and the updated file as target — for common paths whose content
// fingerprints differ. Common paths with equal fingerprints are skipped
// entirely.
func MakeDelta(old, updated *Directory) (buffer.Buffer, error) {
	var records []deltaRecord

	i, j := 0, 0
	for i < len(old.entries) && j < len(updated.entries) {
		oe, ne := old.entries[i], updated.entries[j]
		switch {
		case oe.Path < ne.Path:
			records = append(records, removalRecord(oe))
			i++
		case oe.Path > ne.Path:
			records = append(records, additionRecord(ne))
			j++
		default:
			if r, changed := modificationRecord(oe, ne); changed {
				records = append(records, r)
			}
			i++
			j++
		}
	}
	for ; i < len(old.entries); i++ {
		records = append(records, removalRecord(old.entries[i]))
	}
	for ; j < len(updated.entries); j++ {
		records = append(records, additionRecord(updated.entries[j]))
	}

	payload := make([]byte, 0)
	for _, r := range records {
		payload = putU64(payload, uint64(len(r.Path)))
		payload = append(payload, r.Path...)
		payload = putU64(payload, r.OldHash)
		payload = putU64(payload, r.NewHash)
		payload = putU64(payload, r.OldSize)
		payload = putU64(payload, r.NewSize)
		instrBytes := instruction.EncodeStream(r.Instr)
		payload = putU64(payload, uint64(len(instrBytes)))
		payload = append(payload, instrBytes...)
	}

	compressed := compress.Compress(buffer.FromBytes(payload))
	hdr := nsformat.PatchHeader{FileRecordCount: uint64(len(records))}
	out := hdr.Encode(nil)
	out = append(out, compressed.Bytes()...)
	return buffer.FromBytes(out), nil
}

func removalRecord(old Entry) deltaRecord {
	return deltaRecord{
		Path:    old.Path,
		OldHash: old.Bytes.Fingerprint(),
		OldSize: uint64(old.Bytes.Len()),
	}
}

func additionRecord(updated Entry) deltaRecord {
	instr := lzmatch.Encode(updated.Bytes.Bytes(), nil, false)
	return deltaRecord{
		Path:    updated.Path,
		NewHash: updated.Bytes.Fingerprint(),
		NewSize: uint64(updated.Bytes.Len()),
		Instr:   instr,
	}
}

func modificationRecord(old, updated Entry) (deltaRecord, bool) {
	oldFp := old.Bytes.Fingerprint()
	newFp := updated.Bytes.Fingerprint()
	if oldFp == newFp {
		return deltaRecord{}, false
	}
	instr := lzmatch.Encode(updated.Bytes.Bytes(), old.Bytes.Bytes(), false)
	return deltaRecord{
		Path:    old.Path,
		OldHash: oldFp,
		NewHash: newFp,
		OldSize: uint64(old.Bytes.Len()),
		NewSize: uint64(updated.Bytes.Len()),
		Instr:   instr,
	}, true
}

// decodeDeltaRecords parses the decompressed payload of a delta frame.
func decodeDeltaRecords(payload []byte, count int) ([]deltaRecord, error) {
	records := make([]deltaRecord, 0, count)
	off := 0
	for k := 0; k < count; k++ {
		pathBytes, next, ok := readLenPrefixed(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next
		oldHash, next, ok := readU64(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next
		newHash, next, ok := readU64(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next
		oldSize, next, ok := readU64(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next
		newSize, next, ok := readU64(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next
		instrBytes, next, ok := readLenPrefixed(payload, off)
		if !ok {
			return nil, errCorruptFrame()
		}
		off = next

		instr, err := instruction.DecodeStream(instrBytes, len(instrBytes))
		if err != nil {
			return nil, err
		}

		records = append(records, deltaRecord{
			Path:    string(pathBytes),
			OldHash: oldHash,
			NewHash: newHash,
			OldSize: oldSize,
			NewSize: newSize,
			Instr:   instr,
		})
	}
	return records, nil
}

func errCorruptFrame() error {
	return xerrors.Errorf("delta: %w", errs.ErrCorruptFrame)
}
