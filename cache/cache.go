// Package cache is a persistent store for compiled grammar artifacts.
// Grammar compilation is deterministic, so a compiled Module can be
// keyed by a fingerprint of its grammar and reused across builds
// instead of recompiling. Artifacts are kept rezi-encoded in a sqlite
// database in a storage directory.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/dekarrin/neotoma/compile"
	"github.com/dekarrin/neotoma/grammar"
)

var (
	// ErrNotFound is returned when no artifact exists for a
	// fingerprint.
	ErrNotFound = errors.New("no cached artifact for that grammar")

	// ErrConstraintViolation is returned when an insert conflicts with
	// an existing row.
	ErrConstraintViolation = errors.New("a database constraint was violated")
)

// Artifact is one cached compilation result.
type Artifact struct {
	// ID is the unique id of the cache row.
	ID uuid.UUID

	// Fingerprint is the grammar fingerprint the artifact was stored
	// under.
	Fingerprint string

	// Module is the compiled module.
	Module *compile.Module

	// Created is when the artifact was stored.
	Created time.Time
}

// Fingerprint returns the cache key for a grammar: a hex sha256 of its
// canonical rendition together with the options the compiled Module
// carries (Debug and RuntimePath). Grammars with the same key compile
// to Modules with the same Dump, Debug, and RuntimePath; source spans
// are not part of the key.
func Fingerprint(g *grammar.Grammar) string {
	key := fmt.Sprintf("%sdebug = %t\nruntime = %q\n", g.String(), g.Options.Debug, g.Options.RuntimePath)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Store is a sqlite-backed artifact store. Create one with Open and
// Close it when done.
type Store struct {
	dbFilename string
	db         *sql.DB
}

// Open opens the artifact store in the given storage directory,
// creating the database file and schema if they do not yet exist.
func Open(storageDir string) (*Store, error) {
	st := &Store{
		dbFilename: "artifacts.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return st, st.init()
}

func (st *Store) init() error {
	_, err := st.db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT NOT NULL PRIMARY KEY,
		fingerprint TEXT NOT NULL UNIQUE,
		compiled BLOB NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

// Close releases the store's database handle.
func (st *Store) Close() error {
	err := st.db.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", st.dbFilename, err)
	}
	return nil
}

// Put stores the compiled module for a grammar, replacing any prior
// artifact with the same fingerprint, and returns the stored artifact.
func (st *Store) Put(ctx context.Context, g *grammar.Grammar, m *compile.Module) (Artifact, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return Artifact{}, fmt.Errorf("could not generate ID: %w", err)
	}

	fp := Fingerprint(g)
	data := rezi.EncBinary(m)
	created := time.Now()

	_, err = st.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE fingerprint=?;`, fp)
	if err != nil {
		return Artifact{}, wrapDBError(err)
	}

	stmt, err := st.db.Prepare(`INSERT INTO artifacts (id, fingerprint, compiled, created) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Artifact{}, wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, newUUID.String(), fp, data, created.Unix())
	if err != nil {
		return Artifact{}, wrapDBError(err)
	}

	return Artifact{
		ID:          newUUID,
		Fingerprint: fp,
		Module:      m,
		Created:     created,
	}, nil
}

// Get retrieves the cached artifact for a grammar. ErrNotFound is
// returned when the grammar has not been compiled into the store.
func (st *Store) Get(ctx context.Context, g *grammar.Grammar) (Artifact, error) {
	return st.GetByFingerprint(ctx, Fingerprint(g))
}

// GetByFingerprint retrieves the cached artifact stored under a
// fingerprint.
func (st *Store) GetByFingerprint(ctx context.Context, fp string) (Artifact, error) {
	art := Artifact{
		Fingerprint: fp,
	}

	var idText string
	var data []byte
	var created int64

	row := st.db.QueryRowContext(ctx,
		`SELECT id, compiled, created FROM artifacts WHERE fingerprint=?;`, fp)
	if err := row.Scan(&idText, &data, &created); err != nil {
		return art, wrapDBError(err)
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return art, fmt.Errorf("stored ID is invalid: %w", err)
	}
	art.ID = id
	art.Created = time.Unix(created, 0)

	art.Module = &compile.Module{}
	if _, err := rezi.DecBinary(data, art.Module); err != nil {
		return art, fmt.Errorf("decoding stored artifact: %w", err)
	}

	return art, nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
