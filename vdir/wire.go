package vdir

import "encoding/binary"

func putU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func readU64(buf []byte, off int) (uint64, int, bool) {
	if off+8 > len(buf) {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint64(buf[off : off+8]), off + 8, true
}

// readLenPrefixed reads a u64 length followed by that many bytes,
// returning the slice and the offset just past it.
func readLenPrefixed(buf []byte, off int) ([]byte, int, bool) {
	n, off, ok := readU64(buf, off)
	if !ok {
		return nil, 0, false
	}
	end := off + int(n)
	if end < off || end > len(buf) {
		return nil, 0, false
	}
	return buf[off:end], end, true
}
