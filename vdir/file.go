package vdir

import (
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/google/renameio"
	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/errs"
)

// SaveToFile persists buf (a Package, Delta, or compressed frame) to path
// atomically. The on-disk form is an 8-byte whole-payload FNV-1a checksum
// followed by buf's bytes; the checksum is written as a zero placeholder
// first, then patched in by seeking back to offset 0 once the payload (and
// therefore its checksum) is known, the same seek-back-and-patch shape a
// streaming image writer uses to fill in a header field it couldn't know
// until the body was written. The assembled bytes are then written via a
// temp file and rename, so a failed write never leaves a truncated or
// unverifiable file at path.
func SaveToFile(path string, buf buffer.Buffer) error {
	var w writerseeker.WriterSeeker
	var placeholder [8]byte
	if _, err := w.Write(placeholder[:]); err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}

	var sum [8]byte
	binary.LittleEndian.PutUint64(sum[:], buffer.FingerprintBytes(buf.Bytes()))
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}
	if _, err := w.Write(sum[:]); err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}

	data, err := ioutil.ReadAll(w.BytesReader())
	if err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Errorf("save %s: %w: %v", path, errs.ErrIoFailure, err)
	}
	return nil
}

// LoadFromFile reads back a Buffer written by SaveToFile, rejecting it with
// ErrCorruptFrame if the stored checksum does not match its payload.
func LoadFromFile(path string) (buffer.Buffer, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return buffer.Buffer{}, xerrors.Errorf("load %s: %w: %v", path, errs.ErrIoFailure, err)
	}
	if len(raw) < 8 {
		return buffer.Buffer{}, xerrors.Errorf("load %s: %w", path, errs.ErrCorruptFrame)
	}
	want := binary.LittleEndian.Uint64(raw[:8])
	payload := raw[8:]
	if buffer.FingerprintBytes(payload) != want {
		return buffer.Buffer{}, xerrors.Errorf("load %s: %w", path, errs.ErrCorruptFrame)
	}
	return buffer.FromBytes(payload), nil
}
