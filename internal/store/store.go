// Package store provides SQLite-backed persistence for the movie collection.
//
// Documents are kept the way the upstream dataset ships them: one JSON blob
// per movie, queried through SQLite's json_* functions. The package is the
// only place that talks to the database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// Failure kinds reported by the store.
const (
	KindConnect = "connect"
	KindQuery   = "query"
)

// Error is the typed failure every store operation returns on the error path.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string { return e.Kind + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func connectErr(err error) error { return &Error{Kind: KindConnect, Err: err} }
func queryErr(err error) error   { return &Error{Kind: KindQuery, Err: err} }

// Document is one raw movie document as stored in the collection.
type Document map[string]any

// Criteria is the structured predicate built from UI filter state. The zero
// value matches every document.
type Criteria struct {
	Text    string
	Genre   string
	MinYear *int
	MaxYear *int
}

type Store struct {
	sqldb *sql.DB
	db    *bun.DB
}

type movieRow struct {
	bun.BaseModel `bun:"table:movies,alias:m"`

	ID  int64  `bun:"id,pk,autoincrement"`
	Doc string `bun:"doc,notnull"`
}

// Fields the page fetch is projected down to; everything else in the stored
// document is dropped before it reaches the caller.
var pageProjection = []string{"_id", "title", "year", "genres", "plot", "runtime", "rated", "poster"}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, connectErr(errors.New("DB_PATH is required"))
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, connectErr(err)
	}

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, connectErr(err)
	}

	ctx := context.Background()
	if err := sqldb.PingContext(ctx); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, connectErr(fmt.Errorf("ping db: %w; close failed: %w", err, cerr))
		}
		return nil, connectErr(err)
	}

	if err := initSchema(ctx, sqldb); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, connectErr(fmt.Errorf("init schema: %w; close failed: %w", err, cerr))
		}
		return nil, connectErr(err)
	}

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	return &Store{sqldb: sqldb, db: bdb}, nil
}

func (s *Store) Close() error { return s.sqldb.Close() }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(json_extract(doc, '$.title'));
CREATE INDEX IF NOT EXISTS idx_movies_year ON movies(json_extract(doc, '$.year'));
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// DistinctGenres enumerates every distinct string value found in the genres
// arrays across the whole collection. Non-string entries are skipped.
func (s *Store) DistinctGenres(ctx context.Context) ([]string, error) {
	var genres []string
	err := s.db.NewRaw(`
SELECT DISTINCT je.value
FROM movies AS m, json_each(m.doc, '$.genres') AS je
WHERE je.type = 'text'
`).Scan(ctx, &genres)
	if err != nil {
		return nil, queryErr(err)
	}
	return genres, nil
}

// Count reports how many documents match the criteria.
func (s *Store) Count(ctx context.Context, c Criteria) (int, error) {
	q := s.db.NewSelect().Model((*movieRow)(nil))
	n, err := applyCriteria(q, c).Count(ctx)
	if err != nil {
		return 0, queryErr(err)
	}
	return n, nil
}

// FetchPage returns the matching documents sorted by title ascending, offset
// by skip and capped at limit, projected down to the fields the normalizer
// reads.
func (s *Store) FetchPage(ctx context.Context, c Criteria, skip, limit int) ([]Document, error) {
	var rows []movieRow
	q := s.db.NewSelect().Model(&rows)
	q = applyCriteria(q, c).
		OrderExpr(`json_extract(m.doc, '$.title') ASC`).
		Offset(skip).
		Limit(limit)
	if err := q.Scan(ctx); err != nil {
		return nil, queryErr(err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal([]byte(row.Doc), &doc); err != nil {
			return nil, queryErr(fmt.Errorf("decode document %d: %w", row.ID, err))
		}
		docs = append(docs, projectDoc(doc))
	}
	return docs, nil
}

// InsertMovies stores raw documents in the collection. Documents without an
// "_id" get one assigned; the caller's maps are not mutated.
func (s *Store) InsertMovies(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]movieRow, 0, len(docs))
	for _, doc := range docs {
		if _, ok := doc["_id"]; !ok {
			copied := make(Document, len(doc)+1)
			for k, v := range doc {
				copied[k] = v
			}
			copied["_id"] = uuid.NewString()
			doc = copied
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return queryErr(fmt.Errorf("encode document: %w", err))
		}
		rows = append(rows, movieRow{Doc: string(raw)})
	}

	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return queryErr(err)
	}
	return nil
}

func applyCriteria(q *bun.SelectQuery, c Criteria) *bun.SelectQuery {
	if text := strings.TrimSpace(c.Text); text != "" {
		pattern := "%" + escapeLike(text) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`json_extract(m.doc, '$.title') LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`json_extract(m.doc, '$.plot') LIKE ? ESCAPE '\'`, pattern)
		})
	}
	if c.Genre != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM json_each(m.doc, '$.genres') AS je WHERE je.value = ?)`, c.Genre)
	}
	if c.MinYear != nil {
		q = q.Where(`json_extract(m.doc, '$.year') >= ?`, *c.MinYear)
	}
	if c.MaxYear != nil {
		q = q.Where(`json_extract(m.doc, '$.year') <= ?`, *c.MaxYear)
	}
	return q
}

// escapeLike neutralizes LIKE metacharacters so user text matches as a
// literal substring.
func escapeLike(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(text)
}

func projectDoc(doc Document) Document {
	out := make(Document, len(pageProjection)+1)
	for _, field := range pageProjection {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	// Only imdb.rating survives from the imdb sub-object.
	if imdb, ok := doc["imdb"].(map[string]any); ok {
		if rating, ok := imdb["rating"]; ok {
			out["imdb"] = map[string]any{"rating": rating}
		}
	}
	return out
}
