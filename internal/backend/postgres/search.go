package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/datamancy/searchgate/internal/domain"
)

// defaultLimitCap clamps caller-supplied limits defensively, independent
// of request validation. Configurable via search.max_limit.
const defaultLimitCap = 1000

const snippetLen = 200

// SearchCollection runs a ranked keyword query against one collection's
// table. The collection name has already been restricted to a safe
// character class by request validation, and is additionally quoted as
// an identifier here; the query text is only ever a bound parameter.
// Rows still pending embedding are excluded so full-text results stay
// consistent with what vector search can retrieve.
func (s *Store) SearchCollection(
	ctx context.Context, collection, query string, limit int,
) ([]domain.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	limit = clampLimit(limit, s.limitCap)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, buildSearchSQL(collection), query, limit)
	if err != nil {
		return nil, wrapErr("fulltext search "+collection, err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var (
			url, title, snippet string
			rank                float64
			rawMeta             []byte
		)
		if err := rows.Scan(&url, &title, &snippet, &rank, &rawMeta); err != nil {
			return nil, wrapErr("scan row "+collection, err)
		}

		metadata := metadataToStrings(rawMeta)
		metadata["origin"] = domain.OriginFullText

		results = append(results, domain.Result{
			URL:      url,
			Title:    title,
			Snippet:  snippet,
			Score:    rank,
			Source:   collection,
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("fulltext search "+collection, err)
	}
	return results, nil
}

// buildSearchSQL renders the per-collection query. Only the quoted table
// identifier is interpolated; all values are bound parameters.
func buildSearchSQL(collection string) string {
	table := pgx.Identifier{collection}.Sanitize()
	return fmt.Sprintf(`
SELECT COALESCE(url, ''),
       COALESCE(title, ''),
       COALESCE(left(content, %d), ''),
       ts_rank_cd(search_vector, plainto_tsquery('english', $1))::float8 AS rank,
       COALESCE(metadata, '{}'::jsonb)
FROM %s
WHERE search_vector @@ plainto_tsquery('english', $1)
  AND index_status = 'completed'
ORDER BY rank DESC
LIMIT $2`, snippetLen, table)
}

func clampLimit(limit, limitCap int) int {
	if limit > limitCap {
		return limitCap
	}
	return limit
}

// metadataToStrings flattens a jsonb payload into string values;
// non-string values keep their JSON encoding.
func metadataToStrings(raw []byte) map[string]string {
	m := make(map[string]string)
	if len(raw) == 0 {
		return m
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return m
	}
	for k, v := range parsed {
		if s, ok := v.(string); ok {
			m[k] = s
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			continue
		}
		m[k] = string(encoded)
	}
	return m
}
