package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Item IDs are generated from database sequences; content fingerprints
// reuse the same type.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentType classifies the content of a context item.
// It is a filter dimension only and does not affect scoring.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeJSON     ContentType = "json"
)

// ContentTypes lists the valid content type values.
var ContentTypes = []ContentType{
	ContentTypeText,
	ContentTypeCode,
	ContentTypeMarkdown,
	ContentTypeJSON,
}

// Valid reports whether ct is one of the known content types.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeText, ContentTypeCode, ContentTypeMarkdown, ContentTypeJSON:
		return true
	}
	return false
}

// ContextItem is a stored context snippet (note, code, doc) that can be
// retrieved via hybrid search.
//
// Vector holds the embedding of Content and is either empty or exactly the
// configured dimension. VectorHash records IDFromContent(Content) as of the
// last successful embed, so staleness is detectable without re-embedding.
// Content and Vector are always written together in a single store write.
type ContextItem struct {
	Id          ID
	Title       string
	Content     string
	ContentType ContentType
	Tags        []string          // filter dimension, order irrelevant
	Metadata    map[string]string // opaque, never inspected by the engine
	Source      string
	ProjectId   string // weak reference to ContextProject.Id
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Vector      []float32
	VectorHash  ID
}

// HasCurrentVector reports whether the item's vector was computed from its
// current content.
func (it *ContextItem) HasCurrentVector() bool {
	return len(it.Vector) > 0 && it.VectorHash == IDFromContent(it.Content)
}

// HasTag reports whether the item carries the given tag.
func (it *ContextItem) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ContextProject groups context items under a user-chosen string key.
// The relationship is weak: deleting a project never deletes its items.
type ContextProject struct {
	Id          string // user-chosen, immutable once created
	Name        string
	Description string
	Settings    map[string]string // opaque, never inspected by the engine
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoredItem is a search result pairing an item with its relevance scores.
type ScoredItem struct {
	Item          *ContextItem
	Score         float64 // combined score used for ranking
	SemanticScore float64
	KeywordScore  float64
}

// Stats summarizes the contents of a context store.
type Stats struct {
	TotalItems   int
	ActiveItems  int
	ContentTypes map[ContentType]int
	ProjectCount int
	Dimension    int
}
