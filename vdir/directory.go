// Package vdir implements the virtual directory: an in-memory, ordered
// collection of (relative path, bytes) entries, and the codecs built on
// top of it — package (pack/unpack), delta (make/apply), and the standard
// cpio interchange archive.
package vdir

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/google/renameio"
	"golang.org/x/exp/mmap"

	"github.com/nsuite/nsuite/buffer"
	"github.com/nsuite/nsuite/errs"
)

// Entry is one (relative path, content) pair held by a Directory.
type Entry struct {
	Path  string
	Bytes buffer.Buffer
}

// Directory is an in-memory, owning collection of entries, always kept
// sorted by Path so that every codec built on top of it emits
// deterministic output.
type Directory struct {
	name       string
	entries    []Entry
	exclusions []string
}

// New returns an empty Directory. exclusions matches either the exact
// relative path of an entry, or (when an exclusion string begins with
// '.') any relative path ending in that suffix.
func New(name string, exclusions []string) *Directory {
	return &Directory{name: name, exclusions: append([]string(nil), exclusions...)}
}

// FromEntries returns a Directory holding a copy of entries, sorted by
// path. It is mainly useful to callers that already have file contents in
// memory and do not need ImportFolder's filesystem walk.
func FromEntries(name string, entries []Entry) *Directory {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return &Directory{name: name, entries: out}
}

// Name returns the directory's display label.
func (d *Directory) Name() string { return d.name }

// FileCount returns the number of entries.
func (d *Directory) FileCount() int { return len(d.entries) }

// ByteCount returns the sum of all entries' byte lengths.
func (d *Directory) ByteCount() int {
	total := 0
	for _, e := range d.entries {
		total += e.Bytes.Len()
	}
	return total
}

// Empty reports whether the directory has no entries.
func (d *Directory) Empty() bool { return len(d.entries) == 0 }

// Clear removes every entry.
func (d *Directory) Clear() { d.entries = nil }

// Entries returns the directory's entries in path-sorted order. The
// returned slice is owned by the caller but its Buffers alias the
// directory's own storage; callers that mutate must Clone first.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Clone returns an independently-owned deep copy of d.
func (d *Directory) Clone() *Directory {
	out := &Directory{name: d.name, exclusions: append([]string(nil), d.exclusions...)}
	out.entries = make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out.entries[i] = Entry{Path: e.Path, Bytes: e.Bytes.Clone()}
	}
	return out
}

// Hash folds (path-hash, content-fingerprint) across every entry in
// path-sorted order. An empty directory always hashes to 0.
func (d *Directory) Hash() uint64 {
	var h uint64
	for _, e := range d.entries {
		ph := buffer.FingerprintBytes([]byte(e.Path))
		cf := e.Bytes.Fingerprint()
		h = (h * 1099511628211) ^ ph
		h = (h * 1099511628211) ^ cf
	}
	return h
}

func isExcluded(relPath string, exclusions []string) bool {
	for _, ex := range exclusions {
		if ex == relPath {
			return true
		}
		if strings.HasPrefix(ex, ".") && strings.HasSuffix(relPath, ex) {
			return true
		}
	}
	return false
}

// ImportFolder replaces the directory's contents with a recursive walk of
// root. Excluded entries (per the constructor's exclusion list) are
// silently skipped, reported only to sink. concurrency bounds how many
// files are read in parallel; 0 or negative means "pick a reasonable
// default". A nil sink discards events.
//
// Per-file read+fingerprint work fans out across a worker pool
// (golang.org/x/sync/errgroup); results are written to fixed slice
// positions and sorted by path once every worker has returned, so the
// stored order — and Hash — never depends on the scheduling of that pool.
func (d *Directory) ImportFolder(root string, concurrency int, sink Sink) error {
	var paths []string
	walkErr := filepath.WalkDir(root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return xerrors.Errorf("walk %s: %w: %v", p, errs.ErrIoFailure, err)
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return xerrors.Errorf("rel %s: %w: %v", p, errs.ErrIoFailure, err)
		}
		rel = filepath.ToSlash(rel)
		if isExcluded(rel, d.exclusions) {
			notify(sink, Event{Level: LevelInfo, Message: "excluded entry", Path: rel, Err: errs.ErrExclusion})
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return xerrors.Errorf("import folder %s: %w", root, walkErr)
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency()
	}

	entries := make([]Entry, len(paths))
	g, _ := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, concurrency)
	for i, rel := range paths {
		i, rel := i, rel
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			full := filepath.Join(root, filepath.FromSlash(rel))
			data, err := readFileZeroCopy(full)
			if err != nil {
				return xerrors.Errorf("read %s: %w: %v", full, errs.ErrIoFailure, err)
			}
			entries[i] = Entry{Path: rel, Bytes: buffer.FromBytes(data)}
			notify(sink, Event{Level: LevelInfo, Message: "imported entry", Path: rel})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	d.entries = entries
	if d.name == "" {
		d.name = filepath.Base(root)
	}
	return nil
}

// readFileZeroCopy reads a whole file via a memory-mapped ReaderAt,
// copying the mapped contents into a newly allocated slice.
func readFileZeroCopy(path string) ([]byte, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data := make([]byte, r.Len())
	if r.Len() > 0 {
		if _, err := r.ReadAt(data, 0); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func defaultConcurrency() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// ExportFolder writes every entry to path/relative_path, creating
// intermediate directories as needed and atomically replacing any
// existing file (temp file + rename).
func (d *Directory) ExportFolder(root string) error {
	for _, e := range d.entries {
		full := filepath.Join(root, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return xerrors.Errorf("mkdir %s: %w: %v", filepath.Dir(full), errs.ErrIoFailure, err)
		}
		if err := renameio.WriteFile(full, e.Bytes.Bytes(), 0o644); err != nil {
			return xerrors.Errorf("write %s: %w: %v", full, errs.ErrIoFailure, err)
		}
	}
	return nil
}
