// Package worldcache is a content-addressed cache of link results,
// supplementing the spec with the observation that linking is pure and
// idempotent (spec.md §8 "idempotence of link"): a long-lived host process
// (e.g. a file-watching dev server) can skip a redundant re-link of
// byte-identical inputs. It stores only the bookkeeping needed to detect
// that — the World's type and function name sets, not the Go values
// themselves, which may hold unexported state. Grounded on the teacher's
// own SQLite usage via modernc.org/sqlite (internal/evaluator/
// builtins_sql.go opens a *sql.DB over the same driver the same way).
package worldcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"golang.org/x/sync/singleflight"
)

// Entry is one cached link result's bookkeeping: the fully-qualified names
// a successful Link produced, keyed by a digest of its inputs.
type Entry struct {
	Digest        string
	CreatedAt     time.Time
	TypeNames     []string
	FunctionNames []string
}

// Cache wraps a SQLite-backed store of Entry rows. A nil *Cache is valid
// and behaves as an always-miss cache, so callers can pass a disabled
// cache around without branching on nilness themselves.
type Cache struct {
	db    *sql.DB
	group singleflight.Group
}

// Open creates (or reuses) a SQLite database at path and ensures the
// world_cache table exists. path == "" disables the cache entirely: Open
// returns (nil, nil) so callers can unconditionally pass the result to
// every function below.
func Open(path string) (*Cache, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening world cache %s: %w", path, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS world_cache (
		digest TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		type_names TEXT NOT NULL,
		function_names TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating world_cache table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database handle. Safe to call on a nil
// Cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Digest computes the cache key for a set of compilation-unit source
// blobs plus the registered function-package names: a plain sha256 over
// their sorted concatenation, so byte-identical inputs (regardless of
// presentation order) hash identically.
func Digest(unitSources []string, functionPackageNames []string) string {
	sorted := append([]string{}, unitSources...)
	sort.Strings(sorted)
	fns := append([]string{}, functionPackageNames...)
	sort.Strings(fns)

	h := sha256.New()
	for _, s := range sorted {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, s := range fns {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached Entry for digest, if present. A nil Cache
// always misses.
func (c *Cache) Lookup(ctx context.Context, digest string) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}

	row := c.db.QueryRowContext(ctx, `SELECT created_at, type_names, function_names FROM world_cache WHERE digest = ?`, digest)

	var createdAtUnix int64
	var typeNamesJSON, functionNamesJSON string
	if err := row.Scan(&createdAtUnix, &typeNamesJSON, &functionNamesJSON); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("looking up world cache entry: %w", err)
	}

	var typeNames, functionNames []string
	if err := json.Unmarshal([]byte(typeNamesJSON), &typeNames); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cached type names: %w", err)
	}
	if err := json.Unmarshal([]byte(functionNamesJSON), &functionNames); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cached function names: %w", err)
	}

	return Entry{
		Digest:        digest,
		CreatedAt:     time.Unix(createdAtUnix, 0),
		TypeNames:     typeNames,
		FunctionNames: functionNames,
	}, true, nil
}

// Store saves entry, replacing any prior row for the same digest. A nil
// Cache silently no-ops.
func (c *Cache) Store(ctx context.Context, entry Entry) error {
	if c == nil {
		return nil
	}

	typeNamesJSON, err := json.Marshal(entry.TypeNames)
	if err != nil {
		return fmt.Errorf("encoding type names: %w", err)
	}
	functionNamesJSON, err := json.Marshal(entry.FunctionNames)
	if err != nil {
		return fmt.Errorf("encoding function names: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO world_cache (digest, created_at, type_names, function_names) VALUES (?, ?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET created_at = excluded.created_at, type_names = excluded.type_names, function_names = excluded.function_names`,
		entry.Digest, entry.CreatedAt.Unix(), string(typeNamesJSON), string(functionNamesJSON))
	if err != nil {
		return fmt.Errorf("storing world cache entry: %w", err)
	}
	return nil
}

// GetOrCompute looks up digest, and on a miss calls compute exactly once
// even if multiple goroutines race to populate the same digest
// concurrently (golang.org/x/sync/singleflight), storing the result before
// returning it.
func (c *Cache) GetOrCompute(ctx context.Context, digest string, compute func() (Entry, error)) (Entry, error) {
	if c == nil {
		return compute()
	}

	if entry, ok, err := c.Lookup(ctx, digest); err != nil {
		return Entry{}, err
	} else if ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(digest, func() (interface{}, error) {
		if entry, ok, err := c.Lookup(ctx, digest); err != nil {
			return Entry{}, err
		} else if ok {
			return entry, nil
		}

		entry, err := compute()
		if err != nil {
			return Entry{}, err
		}
		entry.Digest = digest
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}
		if err := c.Store(ctx, entry); err != nil {
			return Entry{}, err
		}
		return entry, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}
