// Command seed loads a JSON dump of movie documents into the local
// collection. It accepts both plain JSON and mongoexport extended JSON
// ($oid, $numberInt and friends are unwrapped before storing).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/handsomefox/mflix-browser/internal/logger"
	"github.com/handsomefox/mflix-browser/internal/store"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	slog.SetDefault(logger.New(slog.LevelInfo))

	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath    = flag.String("db", envOr("DB_PATH", "data/movies.db"), "sqlite database path")
		file      = flag.String("file", "data/movies.json", "JSON array of movie documents")
		batchSize = flag.Int("batch", 500, "insert batch size")
	)
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}

	var docs []store.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("failed to parse dump: %w", err)
	}
	for i := range docs {
		docs[i] = store.Document(flattenExtended(map[string]any(docs[i])).(map[string]any))
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()

	ctx := context.Background()
	for start := 0; start < len(docs); start += *batchSize {
		end := min(start+*batchSize, len(docs))
		if err := st.InsertMovies(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("failed to insert batch at %d: %w", start, err)
		}
	}

	slog.Info("seed complete", slog.Int("movies", len(docs)))
	return nil
}

// flattenExtended unwraps mongoexport extended-JSON wrappers into plain JSON
// values so the stored documents look like the live collection.
func flattenExtended(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			for key, inner := range val {
				switch key {
				case "$oid":
					return inner
				case "$numberInt", "$numberLong":
					if s, ok := inner.(string); ok {
						if n, err := strconv.ParseInt(s, 10, 64); err == nil {
							return float64(n)
						}
					}
					return inner
				case "$numberDouble":
					if s, ok := inner.(string); ok {
						if f, err := strconv.ParseFloat(s, 64); err == nil {
							return f
						}
					}
					return inner
				case "$date":
					return flattenExtended(inner)
				}
			}
		}
		out := make(map[string]any, len(val))
		for key, inner := range val {
			out[key] = flattenExtended(inner)
		}
		return out
	case []any:
		for i := range val {
			val[i] = flattenExtended(val[i])
		}
		return val
	default:
		return v
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
