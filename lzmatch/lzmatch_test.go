package lzmatch

import (
	"bytes"
	"testing"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/instruction"
)

func replay(t *testing.T, stream []instruction.Instruction, targetLen int, source []byte) []byte {
	t.Helper()
	dst := buffer.New(targetLen)
	var src buffer.Buffer
	if source != nil {
		src = buffer.FromBytes(source)
	} else {
		src = dst
	}
	if err := instruction.Apply(stream, dst, src); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return dst.Bytes()
}

func TestSelfReferentialRoundTrip(t *testing.T) {
	for _, in := range [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("abcabcabcabcabc"),
		[]byte("aaaaaaaaaaaaaaaaaaaaaa"),
		[]byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
	} {
		stream := Encode(in, in, true)
		got := replay(t, stream, len(in), nil)
		if !bytes.Equal(got, in) {
			t.Fatalf("self-referential round-trip failed for %q: got %q", in, got)
		}
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog")
	updated := []byte("the quick brown fox leaps over the lazy dogs and cats")
	stream := Encode(updated, old, false)
	got := replay(t, stream, len(updated), old)
	if !bytes.Equal(got, updated) {
		t.Fatalf("delta round-trip failed: got %q, want %q", got, updated)
	}
}

func TestDeltaAgainstEmptySourceIsAllLiteral(t *testing.T) {
	updated := []byte("brand updated content")
	stream := Encode(updated, nil, false)
	got := replay(t, stream, len(updated), nil)
	if !bytes.Equal(got, updated) {
		t.Fatalf("addition round-trip failed: got %q, want %q", got, updated)
	}
	for _, in := range stream {
		if in.Kind == instruction.Copy {
			t.Fatalf("Copy instruction emitted against an empty source: %+v", in)
		}
	}
}

func TestRunsCollapseToRepeat(t *testing.T) {
	in := bytes.Repeat([]byte{'x'}, 64)
	stream := Encode(in, in, true)
	foundRepeat := false
	for _, instr := range stream {
		if instr.Kind == instruction.Repeat {
			foundRepeat = true
		}
	}
	if !foundRepeat {
		t.Fatalf("a 64-byte same-byte run produced no Repeat instruction: %+v", stream)
	}
}
