// Package errs collects the sentinel error values this module's codecs
// return. Callers wrap these with golang.org/x/xerrors.Errorf("...: %w",
// err) at each call boundary; errors.Is/xerrors.Is still matches the
// sentinel after wrapping.
package errs

import "errors"

var (
	// ErrEmptyInput is returned when a package export (Pack or
	// ExportPackage) is asked to emit a directory with no entries. An
	// empty byte buffer is not an error: compressing it yields a
	// header-only frame.
	ErrEmptyInput = errors.New("nsuite: empty input")

	// ErrCorruptFrame is returned on header title mismatch, a truncated
	// payload, or an instruction range escaping the declared
	// uncompressed size.
	ErrCorruptFrame = errors.New("nsuite: corrupt frame")

	// ErrPreconditionMismatch is returned when a delta is applied to a
	// directory whose file fingerprints do not match the delta's
	// old-hashes.
	ErrPreconditionMismatch = errors.New("nsuite: precondition mismatch")

	// ErrCorruptPatch is returned when a post-patch fingerprint does not
	// match the recorded new-hash.
	ErrCorruptPatch = errors.New("nsuite: corrupt patch")

	// ErrIoFailure wraps an underlying filesystem read/write failure
	// encountered during import or export.
	ErrIoFailure = errors.New("nsuite: io failure")

	// ErrExclusion marks a path skipped by an exclusion list. It is
	// never returned as a failure; it is only ever passed to a Sink.
	ErrExclusion = errors.New("nsuite: excluded")
)
