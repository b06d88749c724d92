package search

import (
	"fmt"

	"github.com/poiesic/cortex/core"
)

// Mode selects how a query is scored.
type Mode string

const (
	// ModeSemantic ranks purely by vector similarity.
	ModeSemantic Mode = "semantic"

	// ModeKeyword ranks purely by term matches in title and content.
	ModeKeyword Mode = "keyword"

	// ModeHybrid blends both signals by the request's semantic weight.
	ModeHybrid Mode = "hybrid"
)

// Valid reports whether m is a known search mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSemantic, ModeKeyword, ModeHybrid:
		return true
	}
	return false
}

// Filters restricts the candidate set before scoring. Dimensions combine
// with AND; values within a dimension combine with OR. Zero values mean
// "no restriction", except IncludeInactive which defaults to excluding
// soft-deleted items.
type Filters struct {
	ProjectID       string
	ContentTypes    []core.ContentType
	Tags            []string
	IncludeInactive bool
}

// matches reports whether the item passes every filter dimension.
func (f *Filters) matches(item *core.ContextItem) bool {
	if !f.IncludeInactive && !item.IsActive {
		return false
	}
	if f.ProjectID != "" && item.ProjectId != f.ProjectID {
		return false
	}
	if len(f.ContentTypes) > 0 {
		found := false
		for _, ct := range f.ContentTypes {
			if item.ContentType == ct {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Tags) > 0 {
		found := false
		for _, tag := range f.Tags {
			if item.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Request describes one search call.
type Request struct {
	// Query is the free-text query. It may be empty; see the mode docs for
	// empty-query behavior.
	Query string

	// Mode selects the scoring strategy. Default: ModeHybrid.
	Mode Mode

	// Filters restricts candidates before scoring.
	Filters Filters

	// SemanticWeight is the hybrid blend factor in [0, 1]. 1 means purely
	// semantic, 0 purely keyword. Only consulted in hybrid mode.
	SemanticWeight float64

	// Limit is the maximum page size. Zero returns an empty page while
	// still reporting the total match count.
	Limit int

	// Offset skips that many ranked results before the page starts.
	Offset int
}

// NewRequest creates a hybrid request for query with the default weight
// and page size.
func NewRequest(query string) *Request {
	return &Request{
		Query:          query,
		Mode:           ModeHybrid,
		SemanticWeight: DefaultSemanticWeight,
		Limit:          DefaultLimit,
	}
}

// validate rejects requests a caller could only have built by mistake.
func (r *Request) validate(maxLimit int) error {
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidQuery, r.Mode)
	}
	if r.SemanticWeight < 0 || r.SemanticWeight > 1 {
		return fmt.Errorf("%w: semantic weight %v outside [0, 1]", ErrInvalidQuery, r.SemanticWeight)
	}
	if r.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, r.Limit)
	}
	if r.Limit > maxLimit {
		return fmt.Errorf("%w: limit %d exceeds maximum %d", ErrInvalidQuery, r.Limit, maxLimit)
	}
	if r.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidQuery, r.Offset)
	}
	return nil
}

// Response is the result of one search call.
type Response struct {
	// Items is the requested page, ordered by score descending with
	// recency and id as tiebreaks.
	Items []*core.ScoredItem

	// Total is the number of matches before pagination.
	Total int

	// Mode is the mode that actually scored the results. It differs from
	// the request mode when the searcher degraded to keyword scoring.
	Mode Mode

	// Degraded is true when the embedder was unavailable and the searcher
	// fell back to keyword scoring.
	Degraded bool

	// ExecutionTimeMS is the wall-clock duration of the call.
	ExecutionTimeMS float64
}
