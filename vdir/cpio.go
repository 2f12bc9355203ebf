package vdir

import (
	"io"
	"io/ioutil"
	"sort"

	"github.com/cavaliercoder/go-cpio"
	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
)

// ExportCPIO streams d's entries, sorted by path, as a standard POSIX
// cpio ("newc") archive — a convenience interchange format for
// cpio-literate tooling, independent of the native Package framing of
// Pack. It is not required to preserve a directory's Hash across
// arbitrary third-party cpio producers, only to round-trip this
// package's own writer (see ImportCPIO).
func (d *Directory) ExportCPIO(w io.Writer) error {
	wr := cpio.NewWriter(w)
	for _, e := range d.entries {
		hdr := &cpio.Header{
			Name: e.Path,
			Mode: cpio.FileMode(0o644),
			Size: int64(e.Bytes.Len()),
		}
		if err := wr.WriteHeader(hdr); err != nil {
			return xerrors.Errorf("export cpio %s: %w", e.Path, err)
		}
		if _, err := wr.Write(e.Bytes.Bytes()); err != nil {
			return xerrors.Errorf("export cpio %s: %w", e.Path, err)
		}
	}
	if err := wr.Close(); err != nil {
		return xerrors.Errorf("export cpio: %w", err)
	}
	return nil
}

// ImportCPIO replaces d's contents by reading a cpio archive written by
// ExportCPIO (or any compatible "newc" writer). Directory records are
// skipped; every regular file becomes an entry.
func (d *Directory) ImportCPIO(r io.Reader) error {
	rd := cpio.NewReader(r)
	var entries []Entry
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xerrors.Errorf("import cpio: %w", err)
		}
		if hdr.Mode&cpio.ModeDir != 0 {
			continue
		}
		data, err := ioutil.ReadAll(rd)
		if err != nil {
			return xerrors.Errorf("import cpio %s: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{Path: hdr.Name, Bytes: buffer.FromBytes(data)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	d.entries = entries
	return nil
}
