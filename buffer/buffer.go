// Package buffer implements the owned, resizable byte region that every
// other codec in this module builds on: directory entries, compressed
// frames, and delta payloads are all, ultimately, a Buffer.
package buffer

import "hash/fnv"

// Buffer is an owned, contiguous byte region. The zero value is a valid
// empty Buffer. Clone and Slice both copy, so the Buffers they return have
// storage of their own; assigning or passing a Buffer by value does not
// copy, and the copy shares its storage with the original (SetAt through
// either one is visible through both).
type Buffer struct {
	data []byte
}

// New returns a Buffer of the given size, zero-filled.
func New(size int) Buffer {
	return Buffer{data: make([]byte, size)}
}

// FromBytes returns a Buffer holding a copy of data.
func FromBytes(data []byte) Buffer {
	b := Buffer{data: make([]byte, len(data))}
	copy(b.data, data)
	return b
}

// Len reports the number of bytes currently held.
func (b Buffer) Len() int {
	return len(b.data)
}

// At returns the byte at index i. It panics if i is out of range: an
// out-of-range index is a caller bug, not a recoverable condition.
func (b Buffer) At(i int) byte {
	return b.data[i]
}

// SetAt writes v at index i. It panics if i is out of range.
func (b Buffer) SetAt(i int, v byte) {
	b.data[i] = v
}

// Bytes exposes the live backing slice for use by collaborating codecs
// within this module. Callers outside the module's codec packages should
// prefer Clone to avoid retaining an alias across a Resize.
func (b Buffer) Bytes() []byte {
	return b.data
}

// Resize grows or shrinks the Buffer to n bytes, preserving the existing
// content up to min(old length, n). Newly added bytes, if any, are zero.
func (b *Buffer) Resize(n int) {
	if n <= len(b.data) {
		b.data = b.data[:n]
		return
	}
	grown := make([]byte, n)
	copy(grown, b.data)
	b.data = grown
}

// Slice returns a new, independently-owned Buffer holding a copy of
// b.data[off : off+length].
func (b Buffer) Slice(off, length int) Buffer {
	out := Buffer{data: make([]byte, length)}
	copy(out.data, b.data[off:off+length])
	return out
}

// Clone returns an independently-owned copy of b.
func (b Buffer) Clone() Buffer {
	return b.Slice(0, len(b.data))
}

// Fingerprint returns a fast, non-cryptographic 64-bit digest of b's
// bytes. Equal contents always produce equal fingerprints; there is no
// resistance to adversarial collisions, which this module never needs
// (fingerprints here are used for equality checks and change detection,
// never authentication).
func (b Buffer) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write(b.data)
	return h.Sum64()
}

// Equal reports whether a and b hold byte-identical content.
func Equal(a, b Buffer) bool {
	if len(a.data) != len(b.data) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// FingerprintBytes hashes a raw byte slice the same way Fingerprint does,
// for callers (directory hashing, path hashing) that do not otherwise need
// a Buffer wrapper.
func FingerprintBytes(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}
