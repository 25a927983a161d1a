// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index is the context retriever: a persisted passage index over
// the ingested document set. Passages live in SQLite with an FTS5 table;
// when an Embedder is configured each passage also stores a vector and
// search ranks by cosine similarity. An index is keyed by a stable name and
// a fingerprint of its documents so unchanged document sets are reused
// without re-embedding.
package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/pkg/types"
)

// ErrEmpty is returned by Build when there are no documents to index.
var ErrEmpty = errors.New("no documents to index")

const (
	defaultCacheDir  = "data/index_cache"
	defaultBatchSize = 64
	fingerprintKey   = "fingerprint"
)

// Passage is one retrieved text span.
type Passage struct {
	Text   string  `json:"text" yaml:"text"`
	Source string  `json:"source" yaml:"source"`
	Score  float64 `json:"score" yaml:"score"`
}

// Retriever returns the k passages most relevant to query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// Index manages one persisted passage database.
type Index struct {
	db        *sql.DB
	path      string
	embedder  Embedder
	batchSize int
	logger    *zap.Logger
}

// BuildSummary reports the outcome of Build.
type BuildSummary struct {
	Passages int
	Reused   bool
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Open opens or creates the index named name under cfg.CacheDir. A
// non-empty cfg.Name overrides name. embedder may be nil.
func Open(cfg types.IndexConfig, name string, embedder Embedder, batchSize int, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name != "" {
		name = cfg.Name
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "default"
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "index_"+name+".db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	ix := &Index{
		db:        db,
		path:      dbPath,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger.With(zap.String("index", name)),
	}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return ix, nil
}

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS passages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			source TEXT,
			embedding BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := ix.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='passages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE passages_fts USING fts5(text, content=passages, content_rowid=rowid)`,
		`CREATE TRIGGER passages_ai AFTER INSERT ON passages BEGIN
			INSERT INTO passages_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER passages_ad AFTER DELETE ON passages BEGIN
			INSERT INTO passages_fts(passages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Fingerprint identifies a document set for a given embedder. Order matters.
func Fingerprint(docs []types.Document, embedderName string) string {
	h := sha256.New()
	fmt.Fprintf(h, "embedder=%s\n", embedderName)
	for _, d := range docs {
		fmt.Fprintf(h, "%d:%s\x00%d:%s\x00", len(d.Source), d.Source, len(d.Text), d.Text)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (ix *Index) embedderName() string {
	if ix.embedder == nil {
		return ""
	}
	return ix.embedder.Name()
}

// Build indexes docs. If the stored fingerprint matches, the existing
// passages are reused without embedding.
func (ix *Index) Build(ctx context.Context, docs []types.Document) (BuildSummary, error) {
	if len(docs) == 0 {
		return BuildSummary{}, ErrEmpty
	}

	fp := Fingerprint(docs, ix.embedderName())

	var stored string
	err := ix.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, fingerprintKey).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return BuildSummary{}, fmt.Errorf("reading index fingerprint: %w", err)
	}
	if stored == fp {
		var n int
		if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM passages`).Scan(&n); err != nil {
			return BuildSummary{}, fmt.Errorf("counting passages: %w", err)
		}
		ix.logger.Info("reusing persisted index", zap.Int("passages", n))
		return BuildSummary{Passages: n, Reused: true}, nil
	}

	var vectors [][]float32
	if ix.embedder != nil {
		vectors, err = ix.embedAll(ctx, docs)
		if err != nil {
			return BuildSummary{}, err
		}
	}

	if err := ix.replace(ctx, docs, vectors, fp); err != nil {
		return BuildSummary{}, err
	}
	ix.logger.Info("built index", zap.Int("passages", len(docs)), zap.Bool("embedded", vectors != nil))
	return BuildSummary{Passages: len(docs)}, nil
}

func (ix *Index) embedAll(ctx context.Context, docs []types.Document) ([][]float32, error) {
	vectors := make([][]float32, 0, len(docs))
	for start := 0; start < len(docs); start += ix.batchSize {
		end := min(start+ix.batchSize, len(docs))
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			texts = append(texts, d.Text)
		}
		batch, err := ix.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding passages %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding passages %d-%d: got %d vectors for %d texts", start, end, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (ix *Index) replace(ctx context.Context, docs []types.Document, vectors [][]float32, fp string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passages`); err != nil {
		return fmt.Errorf("clearing passages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO passages (text, source, embedding) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		var blob []byte
		if vectors != nil {
			blob = encodeVector(vectors[i])
		}
		if _, err := stmt.ExecContext(ctx, d.Text, d.Source, blob); err != nil {
			return fmt.Errorf("inserting passage %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fingerprintKey, fp,
	)
	if err != nil {
		return fmt.Errorf("writing index fingerprint: %w", err)
	}
	return tx.Commit()
}

// Search returns up to k passages ranked by relevance to query.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		return nil, nil
	}
	if ix.embedder != nil {
		return ix.searchVector(ctx, query, k)
	}
	return ix.searchFTS(ctx, query, k)
}

// stopWords are dropped from full-text queries.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "extract": true, "for": true,
	"in": true, "of": true, "or": true, "the": true, "this": true, "to": true,
}

// ftsQuery turns free text into an FTS5 OR query of quoted terms.
func ftsQuery(query string) string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
	seen := map[string]bool{}
	var terms []string
	for _, w := range words {
		if stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}

func (ix *Index) searchFTS(ctx context.Context, query string, k int) ([]Passage, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT p.text, p.source, passages_fts.rank
		FROM passages_fts
		JOIN passages p ON p.rowid = passages_fts.rowid
		WHERE passages_fts MATCH ?
		ORDER BY passages_fts.rank
		LIMIT ?`, match, k)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var out []Passage
	for rows.Next() {
		var (
			p      Passage
			source sql.NullString
			rank   float64
		)
		if err := rows.Scan(&p.Text, &source, &rank); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Source = source.String
		p.Score = -rank
		out = append(out, p)
	}
	return out, rows.Err()
}
