package vdir

import (
	"testing"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/errs"
)

func TestApplyDeltaPreconditionMismatch(t *testing.T) {
	old := FromEntries("old", []Entry{{Path: "a.txt", Bytes: buffer.FromBytes([]byte("original"))}})
	new := FromEntries("new", []Entry{{Path: "a.txt", Bytes: buffer.FromBytes([]byte("changed"))}})
	delta, err := MakeDelta(old, new)
	if err != nil {
		t.Fatalf("MakeDelta: %v", err)
	}

	tampered := FromEntries("old", []Entry{{Path: "a.txt", Bytes: buffer.FromBytes([]byte("not what the delta expects"))}})
	before := tampered.Hash()
	if err := tampered.ApplyDelta(delta); !isWrapped(err, errs.ErrPreconditionMismatch) {
		t.Fatalf("ApplyDelta on mismatched directory = %v, want ErrPreconditionMismatch", err)
	}
	if tampered.Hash() != before {
		t.Fatalf("ApplyDelta mutated the directory despite a precondition failure")
	}
}

func TestApplyDeltaAllOrNothing(t *testing.T) {
	old := FromEntries("old", []Entry{
		{Path: "a.txt", Bytes: buffer.FromBytes([]byte("aaa"))},
		{Path: "b.txt", Bytes: buffer.FromBytes([]byte("bbb"))},
	})
	new := FromEntries("new", []Entry{
		{Path: "a.txt", Bytes: buffer.FromBytes([]byte("aaaa"))},
		{Path: "b.txt", Bytes: buffer.FromBytes([]byte("bbbb"))},
	})
	delta, err := MakeDelta(old, new)
	if err != nil {
		t.Fatalf("MakeDelta: %v", err)
	}

	// Corrupt "a.txt" in the target directory so its record's
	// precondition fails; "b.txt" would apply cleanly on its own, but
	// must not be applied since the whole delta must fail together.
	target := FromEntries("old", []Entry{
		{Path: "a.txt", Bytes: buffer.FromBytes([]byte("tampered"))},
		{Path: "b.txt", Bytes: buffer.FromBytes([]byte("bbb"))},
	})
	before := target.Clone()
	if err := target.ApplyDelta(delta); err == nil {
		t.Fatalf("ApplyDelta succeeded despite a corrupted precondition")
	}
	if target.Hash() != before.Hash() {
		t.Fatalf("ApplyDelta partially mutated the directory")
	}
}

func TestApplyDeltaAdditionAndRemoval(t *testing.T) {
	old := FromEntries("old", []Entry{{Path: "keep.txt", Bytes: buffer.FromBytes([]byte("keep"))}, {Path: "drop.txt", Bytes: buffer.FromBytes([]byte("drop me"))}})
	new := FromEntries("new", []Entry{{Path: "keep.txt", Bytes: buffer.FromBytes([]byte("keep"))}, {Path: "fresh.txt", Bytes: buffer.FromBytes([]byte("freshly added"))}})

	delta, err := MakeDelta(old, new)
	if err != nil {
		t.Fatalf("MakeDelta: %v", err)
	}
	if err := old.ApplyDelta(delta); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if old.Hash() != new.Hash() {
		t.Fatalf("after add+remove delta, Hash() = %d, want %d", old.Hash(), new.Hash())
	}
	if old.FileCount() != 2 {
		t.Fatalf("FileCount() = %d, want 2", old.FileCount())
	}
}

func TestApplyDeltaAddsEmptyFile(t *testing.T) {
	old := FromEntries("old", []Entry{{Path: "keep.txt", Bytes: buffer.FromBytes([]byte("keep"))}})
	new := FromEntries("new", []Entry{
		{Path: "keep.txt", Bytes: buffer.FromBytes([]byte("keep"))},
		{Path: "empty.txt", Bytes: buffer.FromBytes(nil)},
	})

	delta, err := MakeDelta(old, new)
	if err != nil {
		t.Fatalf("MakeDelta: %v", err)
	}
	if err := old.ApplyDelta(delta); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if old.FileCount() != 2 {
		t.Fatalf("FileCount() = %d, want 2 (empty.txt must be added, not dropped)", old.FileCount())
	}
	for _, e := range old.Entries() {
		if e.Path == "empty.txt" && e.Bytes.Len() != 0 {
			t.Fatalf("empty.txt has len %d, want 0", e.Bytes.Len())
		}
	}
}
