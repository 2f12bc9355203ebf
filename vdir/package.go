package vdir

import (
	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/compress"
	"github.com/nsuite/nsuite/errs"
	"github.com/nsuite/nsuite/nsformat"
)

// Pack serializes d's entries into a Package buffer: a PackageHeader
// carrying name, followed by a compressed frame whose payload is the
// concatenation, for every entry in sorted order, of
// (path_len, path, file_size, file bytes). It fails with ErrEmptyInput if
// d has no entries.
func Pack(d *Directory, name string) (buffer.Buffer, error) {
	if d.Empty() {
		return buffer.Buffer{}, xerrors.Errorf("pack: %w", errs.ErrEmptyInput)
	}

	size := 0
	for _, e := range d.entries {
		size += 16 + len(e.Path) + e.Bytes.Len()
	}
	payload := make([]byte, 0, size)
	for _, e := range d.entries {
		payload = putU64(payload, uint64(len(e.Path)))
		payload = append(payload, e.Path...)
		payload = putU64(payload, uint64(e.Bytes.Len()))
		payload = append(payload, e.Bytes.Bytes()...)
	}

	compressed := compress.Compress(buffer.FromBytes(payload))

	hdr := nsformat.PackageHeader{FolderName: name}
	out := hdr.Encode(nil)
	out = append(out, compressed.Bytes()...)
	return buffer.FromBytes(out), nil
}

// Unpack reverses Pack: it validates the package header, decompresses the
// payload, and returns a fresh Directory whose name comes from the header
// and whose entries restore in written (sorted) order.
func Unpack(buf buffer.Buffer) (*Directory, error) {
	raw := buf.Bytes()
	hdr, used, err := nsformat.DecodePackageHeader(raw)
	if err != nil {
		return nil, xerrors.Errorf("unpack: %w", err)
	}

	payloadBuf, err := compress.Decompress(buffer.FromBytes(raw[used:]))
	if err != nil {
		return nil, xerrors.Errorf("unpack: %w", err)
	}
	payload := payloadBuf.Bytes()

	var entries []Entry
	off := 0
	for off < len(payload) {
		pathBytes, next, ok := readLenPrefixed(payload, off)
		if !ok {
			return nil, xerrors.Errorf("unpack: %w", errs.ErrCorruptFrame)
		}
		off = next
		fileBytes, next, ok := readLenPrefixed(payload, off)
		if !ok {
			return nil, xerrors.Errorf("unpack: %w", errs.ErrCorruptFrame)
		}
		off = next
		entries = append(entries, Entry{Path: string(pathBytes), Bytes: buffer.FromBytes(fileBytes)})
	}

	return &Directory{name: hdr.FolderName, entries: entries}, nil
}

// ExportPackage is the Directory-method form of Pack.
func (d *Directory) ExportPackage(name string) (buffer.Buffer, error) {
	return Pack(d, name)
}

// ImportPackage replaces d's contents with the result of Unpack(buf).
func (d *Directory) ImportPackage(buf buffer.Buffer) error {
	imported, err := Unpack(buf)
	if err != nil {
		return err
	}
	d.name = imported.name
	d.entries = imported.entries
	return nil
}
