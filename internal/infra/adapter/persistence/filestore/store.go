// Package filestore persists the feed registry and per-feed item archives as
// versioned JSON documents on the local filesystem. Every logical operation
// acquires an advisory file lock with a bounded wait, re-reads the document
// from disk, applies its change, and writes the result atomically. The files
// are the sole source of truth; nothing is cached across calls, so external
// edits between runs are picked up.
//
// Layout under the root directory:
//
//	feeds.registry            registry document
//	feeds.registry.lock       registry lock file
//	{feedID}/items.archive    one archive document per feed
//	{feedID}/items.archive.lock
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"feed-collector/internal/observability/metrics"
)

const (
	registryFileName = "feeds.registry"
	archiveFileName  = "items.archive"
	lockSuffix       = ".lock"

	// DefaultLockTimeout bounds how long a caller waits for an advisory lock
	// before the operation fails with ErrLockTimeout.
	DefaultLockTimeout = 10 * time.Second

	// lockRetryDelay is the polling interval while waiting for a lock.
	lockRetryDelay = 25 * time.Millisecond

	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrLockTimeout indicates that an advisory lock could not be acquired within
// the bounded wait. The store never silently retries; callers may retry the
// whole higher-level operation.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Store provides flock-guarded access to the registry and archive documents.
// The registry has one lock; each feed's archive has its own, so concurrent
// fetches of distinct feeds never contend with each other.
type Store struct {
	root        string
	lockTimeout time.Duration
}

// New creates a Store rooted at the given directory. The directory structure
// is created lazily on first write. A non-positive lockTimeout falls back to
// DefaultLockTimeout.
func New(root string, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{root: root, lockTimeout: lockTimeout}
}

// Root returns the directory the store persists under.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) registryPath() string {
	return filepath.Join(s.root, registryFileName)
}

func (s *Store) archivePath(feedID string) string {
	return filepath.Join(s.root, feedID, archiveFileName)
}

// withLock runs fn while holding the advisory lock at lockPath.
// Acquisition waits at most s.lockTimeout; exceeding it fails with
// ErrLockTimeout rather than blocking indefinitely.
func (s *Store) withLock(ctx context.Context, scope, lockPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(lockPath), dirPerm); err != nil {
		return fmt.Errorf("create %s lock directory: %w", scope, err)
	}

	fl := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	ok, err := fl.TryLockContext(lockCtx, lockRetryDelay)
	metrics.RecordLockWait(scope, time.Since(start))

	if !ok {
		if ctx.Err() != nil {
			return fmt.Errorf("acquire %s lock: %w", scope, ctx.Err())
		}
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordLockTimeout(scope)
			return fmt.Errorf("acquire %s lock: %w", scope, ErrLockTimeout)
		}
		return fmt.Errorf("acquire %s lock: %w", scope, err)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}

// updateRegistry locks the registry, loads it, applies fn, and persists the
// document again when fn reports a mutation.
func (s *Store) updateRegistry(ctx context.Context, fn func(doc *registryDocument) (bool, error)) error {
	return s.withLock(ctx, "registry", s.registryPath()+lockSuffix, func() error {
		doc, err := s.readRegistry()
		if err != nil {
			return err
		}
		mutated, err := fn(doc)
		if err != nil {
			return err
		}
		if !mutated {
			return nil
		}
		return s.writeDocument(s.registryPath(), doc)
	})
}

// updateArchive is the archive counterpart of updateRegistry, scoped to one feed.
func (s *Store) updateArchive(ctx context.Context, feedID string, fn func(doc *archiveDocument) (bool, error)) error {
	path := s.archivePath(feedID)
	return s.withLock(ctx, "archive", path+lockSuffix, func() error {
		doc, err := s.readArchive(feedID)
		if err != nil {
			return err
		}
		mutated, err := fn(doc)
		if err != nil {
			return err
		}
		if !mutated {
			return nil
		}
		return s.writeDocument(path, doc)
	})
}

func (s *Store) readRegistry() (*registryDocument, error) {
	doc := newRegistryDocument()
	if err := s.readDocument(s.registryPath(), doc); err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	doc.normalize()
	return doc, nil
}

func (s *Store) readArchive(feedID string) (*archiveDocument, error) {
	doc := newArchiveDocument(feedID)
	if err := s.readDocument(s.archivePath(feedID), doc); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", feedID, err)
	}
	doc.normalize(feedID)
	return doc, nil
}

// readDocument unmarshals the JSON file at path into v.
// A missing file leaves v at its empty-document defaults.
func (s *Store) readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeDocument marshals v as indented JSON and replaces the file at path
// atomically via a temp file and rename, so readers never observe a torn write.
func (s *Store) writeDocument(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", filepath.Base(path), err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
