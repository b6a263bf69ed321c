package domain

import "testing"

func TestApplyDefaults(t *testing.T) {
	var r Request
	r.ApplyDefaults()

	if len(r.Collections) != 1 || r.Collections[0] != "*" {
		t.Errorf("expected wildcard collections, got %v", r.Collections)
	}
	if r.Mode != ModeHybrid {
		t.Errorf("expected hybrid mode, got %s", r.Mode)
	}
	if r.Limit != 20 {
		t.Errorf("expected limit 20, got %d", r.Limit)
	}
	if r.Audience != AudienceBoth {
		t.Errorf("expected audience both, got %s", r.Audience)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	r := Request{
		Collections: []string{"wiki"},
		Mode:        ModeBM25,
		Limit:       5,
		Audience:    AudienceAgent,
	}
	r.ApplyDefaults()

	if r.Collections[0] != "wiki" || r.Mode != ModeBM25 || r.Limit != 5 || r.Audience != AudienceAgent {
		t.Errorf("defaults overwrote explicit values: %+v", r)
	}
}

func TestResultKey(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"url wins", Result{URL: "https://example.com/a", Source: "wiki", Title: "A"}, "https://example.com/a"},
		{"fallback to source and title", Result{Source: "wiki", Title: "A"}, "wiki::A"},
		{"empty everything", Result{}, "::"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.res.Key(); got != tc.want {
				t.Errorf("Key() = %q, want %q", got, tc.want)
			}
		})
	}
}
