package domain

// Mode selects which retrieval backends answer a search request.
type Mode string

// Search modes.
const (
	ModeVector Mode = "vector"
	ModeBM25   Mode = "bm25"
	ModeHybrid Mode = "hybrid"
)

// Audience selects the consumer profile results are filtered for.
type Audience string

// Audience profiles.
const (
	AudienceHuman Audience = "human"
	AudienceAgent Audience = "agent"
	AudienceBoth  Audience = "both"
)

// Request is a search request after JSON decoding, before validation.
type Request struct {
	Query       string   `json:"query"`
	Collections []string `json:"collections,omitempty"`
	Mode        Mode     `json:"mode,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Audience    Audience `json:"audience,omitempty"`
}

// ApplyDefaults fills unset fields with their documented defaults.
func (r *Request) ApplyDefaults() {
	if len(r.Collections) == 0 {
		r.Collections = []string{"*"}
	}
	if r.Mode == "" {
		r.Mode = ModeHybrid
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.Audience == "" {
		r.Audience = AudienceBoth
	}
}

// Result is a single search hit. Score semantics depend on origin:
// cosine similarity for vector hits, lexical rank for full-text hits,
// fused RRF score after hybrid fusion.
type Result struct {
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Snippet      string            `json:"snippet"`
	Score        float64           `json:"score"`
	Source       string            `json:"source"`
	Metadata     map[string]string `json:"metadata"`
	ContentType  string            `json:"contentType"`
	Capabilities map[string]bool   `json:"capabilities"`
}

// Key returns the result's identity for fusion-time deduplication:
// the URL, or source::title when the URL is empty.
func (r Result) Key() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Source + "::" + r.Title
}

// Response is the search response body.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Mode    Mode     `json:"mode"`
}

// Metadata origin tags.
const (
	OriginVector   = "vector"
	OriginFullText = "fulltext"
)
