package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/datamancy/searchgate/internal/domain"
)

func validRequest() *domain.Request {
	r := &domain.Request{Query: "kubernetes scaling"}
	r.ApplyDefaults()
	return r
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		req := validRequest()
		req.Query = q
		if err := Validate(req); !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
}

func TestValidate_QueryTooLong(t *testing.T) {
	req := validRequest()
	req.Query = strings.Repeat("a", 1001)
	assertFieldRejected(t, req, "query")

	req.Query = strings.Repeat("a", 1000)
	if err := Validate(req); err != nil {
		t.Errorf("1000-char query should pass, got %v", err)
	}
}

func TestValidate_ControlCharacters(t *testing.T) {
	req := validRequest()
	req.Query = "drop\x00tables"
	assertFieldRejected(t, req, "query")

	// Whitespace control characters are allowed.
	req.Query = "line one\nline two\ttab\r"
	if err := Validate(req); err != nil {
		t.Errorf("newline/tab/cr should pass, got %v", err)
	}
}

func TestValidate_TooManyCollections(t *testing.T) {
	req := validRequest()
	req.Collections = make([]string, 51)
	for i := range req.Collections {
		req.Collections[i] = "c"
	}
	assertFieldRejected(t, req, "collections")
}

func TestValidate_CollectionNames(t *testing.T) {
	bad := []string{"bad name!", "semi;colon", "dotted.name", "", "drop table--'"}
	for _, name := range bad {
		req := validRequest()
		req.Collections = []string{name}
		assertFieldRejected(t, req, "collections")
	}

	good := []string{"rss_aggregation", "wiki-docs", "*", "CVE2024", "a_b-c"}
	for _, name := range good {
		req := validRequest()
		req.Collections = []string{name}
		if err := Validate(req); err != nil {
			t.Errorf("collection %q should pass, got %v", name, err)
		}
	}
}

func TestValidate_CollectionNameTooLong(t *testing.T) {
	req := validRequest()
	req.Collections = []string{strings.Repeat("x", 129)}
	assertFieldRejected(t, req, "collections")

	req.Collections = []string{strings.Repeat("x", 128)}
	if err := Validate(req); err != nil {
		t.Errorf("128-char name should pass, got %v", err)
	}
}

// A long multi-byte name is rejected for its charset, not its length, so
// the length check never slices inside a rune when building its message.
func TestValidate_MultiByteCollectionName(t *testing.T) {
	req := validRequest()
	req.Collections = []string{strings.Repeat("é", 200)}

	err := Validate(req)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Reason, "invalid collection name") {
		t.Errorf("expected charset rejection, got %q", verr.Reason)
	}
}

func TestValidate_Mode(t *testing.T) {
	req := validRequest()
	req.Mode = "semantic"
	assertFieldRejected(t, req, "mode")
}

func TestValidate_LimitBounds(t *testing.T) {
	for _, limit := range []int{-1, 0, 1001, 5000} {
		req := validRequest()
		req.Limit = limit
		assertFieldRejected(t, req, "limit")
	}
	for _, limit := range []int{1, 20, 1000} {
		req := validRequest()
		req.Limit = limit
		if err := Validate(req); err != nil {
			t.Errorf("limit %d should pass, got %v", limit, err)
		}
	}
}

func TestValidate_Audience(t *testing.T) {
	req := validRequest()
	req.Audience = "robot"
	assertFieldRejected(t, req, "audience")
}

func assertFieldRejected(t *testing.T, req *domain.Request, field string) {
	t.Helper()
	err := Validate(req)
	if err == nil {
		t.Fatalf("expected rejection of field %q, got nil", field)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != field {
		t.Errorf("expected field %q, got %q (%s)", field, verr.Field, verr.Reason)
	}
}
