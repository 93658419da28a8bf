// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the document catalog, cached text, entity
// observations, co-occurrence edges, and keyword hits in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultDBFile = "docgraph.db"

// Store manages the pipeline SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the SQLite database at the configured path,
// creating parent directories and the schema as needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = defaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			rel_path TEXT NOT NULL UNIQUE,
			source_tag TEXT NOT NULL,
			size INTEGER NOT NULL,
			extraction_status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(extraction_status)`,
		`CREATE TABLE IF NOT EXISTS text_cache (
			document_id INTEGER PRIMARY KEY REFERENCES documents(id),
			extracted_text TEXT NOT NULL,
			char_count INTEGER NOT NULL,
			method TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entity_observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id INTEGER NOT NULL REFERENCES documents(id),
			entity TEXT NOT NULL,
			label TEXT NOT NULL,
			count INTEGER NOT NULL,
			UNIQUE(document_id, entity)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_entity ON entity_observations(entity)`,
		`CREATE TABLE IF NOT EXISTS cooccurrence_edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_a TEXT NOT NULL,
			entity_b TEXT NOT NULL,
			doc_count INTEGER NOT NULL,
			UNIQUE(entity_a, entity_b)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_entity_b ON cooccurrence_edges(entity_b)`,
		`CREATE TABLE IF NOT EXISTS keyword_hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id INTEGER NOT NULL REFERENCES documents(id),
			keyword TEXT NOT NULL,
			match_count INTEGER NOT NULL,
			context TEXT,
			UNIQUE(document_id, keyword)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
