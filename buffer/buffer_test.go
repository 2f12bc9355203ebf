package buffer

import "testing"

func TestResizePreservesMin(t *testing.T) {
	b := FromBytes([]byte("hello"))
	b.Resize(3)
	if got := string(b.Bytes()); got != "hel" {
		t.Fatalf("Resize(3) = %q, want %q", got, "hel")
	}
	b.Resize(5)
	if got := b.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	if got := string(b.Bytes()[:3]); got != "hel" {
		t.Fatalf("grown buffer lost prefix: %q", got)
	}
}

func TestFingerprintEqualContent(t *testing.T) {
	a := FromBytes([]byte("the quick brown fox"))
	b := FromBytes([]byte("the quick brown fox"))
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal contents produced different fingerprints")
	}
	c := FromBytes([]byte("the quick brown fax"))
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("differing contents produced the same fingerprint")
	}
}

func TestSliceIsIndependent(t *testing.T) {
	b := FromBytes([]byte("0123456789"))
	s := b.Slice(2, 4)
	if got := string(s.Bytes()); got != "2345" {
		t.Fatalf("Slice(2,4) = %q, want %q", got, "2345")
	}
	s.SetAt(0, 'X')
	if b.At(2) == 'X' {
		t.Fatalf("Slice aliased the original Buffer's storage")
	}
}

func TestEqual(t *testing.T) {
	a := FromBytes([]byte("abc"))
	b := FromBytes([]byte("abc"))
	c := FromBytes([]byte("abd"))
	if !Equal(a, b) {
		t.Fatalf("Equal(a, b) = false, want true")
	}
	if Equal(a, c) {
		t.Fatalf("Equal(a, c) = true, want false")
	}
}

func TestNewIsZeroFilled(t *testing.T) {
	b := New(4)
	for i := 0; i < b.Len(); i++ {
		if b.At(i) != 0 {
			t.Fatalf("New(4) byte %d = %d, want 0", i, b.At(i))
		}
	}
}
