package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/datamancy/searchgate/internal/domain"
)

// Hash fields with reserved meaning; everything else is payload.
const (
	fieldURL     = "url"
	fieldTitle   = "title"
	fieldContent = "content"
	fieldVector  = "vector"
	fieldScore   = "__vector_score"
)

const snippetLen = 200

// SearchCollection runs a KNN cosine-similarity query against one
// collection's index via FT.SEARCH and converts the hits into results.
func (s *Store) SearchCollection(
	ctx context.Context, collection string, vector []float32, limit int,
) ([]domain.Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The KNN clause bounds the candidate set; the LIMIT clause bounds
	// the result page. Without it RediSearch returns its default page of
	// 10 rows no matter how many neighbors KNN produced.
	queryStr := fmt.Sprintf("*=>[KNN %d @vector $BLOB]", limit)
	cmd := s.client.B().Arbitrary("FT.SEARCH").
		Args(s.indexPrefix+collection, queryStr,
			"PARAMS", "2", "BLOB", vectorToBytes(vector),
			"LIMIT", "0", strconv.Itoa(limit),
			"DIALECT", "2").
		Build()

	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrapErr("knn search "+collection, err)
	}

	return parseKNNResult(raw, collection), nil
}

// ListCollections enumerates indexes via FT._LIST and returns the names
// of those carrying the gateway prefix, stripped and sorted.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := s.client.B().Arbitrary("FT._LIST").Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrapErr("list indexes", err)
	}

	names := make([]string, 0, len(raw))
	for _, msg := range raw {
		name, err := msg.ToString()
		if err != nil {
			continue
		}
		if strings.HasPrefix(name, s.indexPrefix) {
			names = append(names, strings.TrimPrefix(name, s.indexPrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// parseKNNResult decodes the RESP2 2-stride reply:
// [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage, collection string) []domain.Result {
	if len(raw) == 0 {
		return nil
	}

	total, err := raw[0].AsInt64()
	if err != nil || total == 0 {
		return nil
	}

	results := make([]domain.Result, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		score := 0.0
		if scoreStr, ok := fields[fieldScore]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				score = max(0, 1.0-d) // cosine distance → similarity, clamped to [0,1]
			}
		}

		results = append(results, hitToResult(collection, fields, score))
	}
	return results
}

// hitToResult maps a hash hit onto a search result. All payload fields
// are preserved as string metadata; the embedding blob and the reserved
// score field are dropped.
func hitToResult(collection string, fields map[string]string, score float64) domain.Result {
	metadata := make(map[string]string, len(fields))
	for name, value := range fields {
		if name == fieldVector || name == fieldScore || name == fieldContent {
			continue
		}
		metadata[name] = value
	}
	metadata["origin"] = domain.OriginVector

	return domain.Result{
		URL:      fields[fieldURL],
		Title:    fields[fieldTitle],
		Snippet:  truncate(fields[fieldContent], snippetLen),
		Score:    score,
		Source:   collection,
		Metadata: metadata,
	}
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
