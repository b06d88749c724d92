package ingestion

import "github.com/poiesic/cortex/core"

// ItemDraft is the caller-supplied shape of a new context item. The
// pipeline owns ids, timestamps, activity and vectors.
type ItemDraft struct {
	Title       string
	Content     string
	ContentType core.ContentType
	Tags        []string
	Metadata    map[string]string
	Source      string
	ProjectId   string
}

// item builds a fresh active item from the draft.
func (d *ItemDraft) item() *core.ContextItem {
	return &core.ContextItem{
		Title:       d.Title,
		Content:     d.Content,
		ContentType: d.ContentType,
		Tags:        d.Tags,
		Metadata:    d.Metadata,
		Source:      d.Source,
		ProjectId:   d.ProjectId,
		IsActive:    true,
	}
}

// ItemPatch describes a partial update. Nil fields are left unchanged.
// IsActive allows reactivating a soft-deleted item.
type ItemPatch struct {
	Title       *string
	Content     *string
	ContentType *core.ContentType
	Tags        *[]string
	Metadata    *map[string]string
	Source      *string
	ProjectId   *string
	IsActive    *bool
}

// apply mutates item in place with the patch's non-nil fields.
func (p *ItemPatch) apply(item *core.ContextItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Content != nil {
		item.Content = *p.Content
	}
	if p.ContentType != nil {
		item.ContentType = *p.ContentType
	}
	if p.Tags != nil {
		item.Tags = *p.Tags
	}
	if p.Metadata != nil {
		item.Metadata = *p.Metadata
	}
	if p.Source != nil {
		item.Source = *p.Source
	}
	if p.ProjectId != nil {
		item.ProjectId = *p.ProjectId
	}
	if p.IsActive != nil {
		item.IsActive = *p.IsActive
	}
}
