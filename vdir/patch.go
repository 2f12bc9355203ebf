package vdir

import (
	"sort"

	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/compress"
	"github.com/nsuite/nsuite/errs"
	"github.com/nsuite/nsuite/instruction"
	"github.com/nsuite/nsuite/nsformat"
)

// ApplyDelta replays a delta buffer (produced by MakeDelta) onto d. It is
// all-or-nothing: records are staged into a private copy of d's entries,
// and d is mutated only once every record has applied cleanly. Failure
// modes:
//   - ErrPreconditionMismatch: an existing entry's fingerprint does not
//     match the record's recorded old-hash.
//   - ErrCorruptPatch: the reconstructed entry's fingerprint does not
//     match the record's recorded new-hash.
//   - ErrCorruptFrame: header/payload/instruction-stream corruption.
func (d *Directory) ApplyDelta(buf buffer.Buffer) error {
	raw := buf.Bytes()
	hdr, used, err := nsformat.DecodePatchHeader(raw)
	if err != nil {
		return xerrors.Errorf("apply delta: %w", err)
	}

	payloadBuf, err := compress.Decompress(buffer.FromBytes(raw[used:]))
	if err != nil {
		return xerrors.Errorf("apply delta: %w", err)
	}

	records, err := decodeDeltaRecords(payloadBuf.Bytes(), int(hdr.FileRecordCount))
	if err != nil {
		return xerrors.Errorf("apply delta: %w", err)
	}

	staged := make(map[string]Entry, len(d.entries))
	for _, e := range d.entries {
		staged[e.Path] = e
	}

	for _, r := range records {
		// A removal has NewSize==0 and NewHash==0. NewSize==0 alone is
		// not enough: an addition of an empty file also has NewSize==0,
		// but records the (nonzero) fingerprint of empty content as
		// NewHash. OldSize cannot tell them apart either, since removing
		// an empty file has OldSize==0.
		removal := r.NewSize == 0 && r.NewHash == 0

		if r.OldSize > 0 || removal {
			existing, ok := staged[r.Path]
			if !ok || existing.Bytes.Fingerprint() != r.OldHash {
				return xerrors.Errorf("apply delta %s: %w", r.Path, errs.ErrPreconditionMismatch)
			}
		}

		if removal {
			delete(staged, r.Path)
			continue
		}

		var src buffer.Buffer
		if r.OldSize > 0 {
			src = staged[r.Path].Bytes
		}
		dst := buffer.New(int(r.NewSize))
		if err := instruction.Apply(r.Instr, dst, src); err != nil {
			return xerrors.Errorf("apply delta %s: %w", r.Path, err)
		}
		if dst.Fingerprint() != r.NewHash {
			return xerrors.Errorf("apply delta %s: %w", r.Path, errs.ErrCorruptPatch)
		}
		staged[r.Path] = Entry{Path: r.Path, Bytes: dst}
	}

	entries := make([]Entry, 0, len(staged))
	for _, e := range staged {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	d.entries = entries
	return nil
}
