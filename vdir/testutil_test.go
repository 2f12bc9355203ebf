package vdir

import "errors"

// isWrapped reports whether err wraps target anywhere in its chain,
// tolerating the xerrors.Errorf("...: %w", ...) wrapping this package
// applies at every call boundary.
func isWrapped(err, target error) bool {
	return errors.Is(err, target)
}
