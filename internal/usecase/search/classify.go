package search

import (
	"strings"

	"github.com/datamancy/searchgate/internal/domain"
)

// Content types inferred from the source collection and URL.
const (
	ContentArticle       = "article"
	ContentDocumentation = "documentation"
	ContentVulnerability = "vulnerability"
	ContentLegal         = "legal"
	ContentCode          = "code"
	ContentDocument      = "document"
)

// Capability flag names.
const (
	CapHumanFriendly = "humanFriendly"
	CapAgentFriendly = "agentFriendly"
	CapStructured    = "isStructured"
	CapTimeSeries    = "hasTimeSeries"
	CapRichContent   = "hasRichContent"
	CapInteractive   = "isInteractive"
)

// Classify infers a coarse content type and audience-capability flags
// from a result's source collection, URL and metadata. Deterministic
// substring heuristics; callers filtering by audience should expect
// occasional false positives and negatives.
func Classify(collection, url string, metadata map[string]string) (string, map[string]bool) {
	contentType := classifyContentType(strings.ToLower(collection), strings.ToLower(url))

	caps := map[string]bool{
		CapHumanFriendly: contentType == ContentArticle ||
			contentType == ContentDocumentation ||
			contentType == ContentLegal,
		CapAgentFriendly: contentType == ContentCode ||
			contentType == ContentDocumentation ||
			contentType == ContentVulnerability,
		CapStructured: contentType == ContentCode ||
			contentType == ContentLegal ||
			contentType == ContentVulnerability,
		CapTimeSeries:  strings.Contains(strings.ToLower(collection), "market") || hasKey(metadata, "timeseries"),
		CapRichContent: url != "",
		CapInteractive: hasKey(metadata, "interactive"),
	}
	return contentType, caps
}

func classifyContentType(collection, url string) string {
	switch {
	case strings.Contains(collection, "rss"):
		return ContentArticle
	case strings.Contains(collection, "wiki") || strings.Contains(url, "wiki"):
		return ContentDocumentation
	case strings.Contains(collection, "cve"):
		return ContentVulnerability
	case strings.Contains(collection, "legal") || strings.Contains(collection, "law"):
		return ContentLegal
	case strings.Contains(collection, "code") || strings.Contains(url, "github"):
		return ContentCode
	default:
		return ContentDocument
	}
}

func hasKey(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}

// matchesAudience reports whether a classified result should be kept for
// the requested consumer profile.
func matchesAudience(r domain.Result, audience domain.Audience) bool {
	switch audience {
	case domain.AudienceHuman:
		return r.Capabilities[CapHumanFriendly]
	case domain.AudienceAgent:
		return r.Capabilities[CapAgentFriendly]
	default:
		return true
	}
}
