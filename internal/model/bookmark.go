package model

import (
	"strings"
	"time"
)

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category,omitempty"`
	VisitCount  int        `json:"visitCount"`
	IsBroken    bool       `json:"isBroken"`
	LastChecked *time.Time `json:"lastChecked,omitempty"` // nil = never checked
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Shared      bool       `json:"shared"`
	ShareID     string     `json:"shareId,omitempty"` // set only when Shared
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Draft Draft
	Now   time.Time
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) Bookmark {
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	return Bookmark{
		ID:          GenerateUUID(),
		Title:       strings.TrimSpace(params.Draft.Title),
		URL:         strings.TrimSpace(params.Draft.URL),
		Description: params.Draft.Description,
		Tags:        NormalizeTags(params.Draft.Tags),
		Category:    params.Draft.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasTag reports whether the bookmark carries tag (exact match).
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply returns a copy of b with the non-nil patch fields applied.
func (b Bookmark) Apply(p Patch, now time.Time) Bookmark {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.URL != nil {
		b.URL = strings.TrimSpace(*p.URL)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Tags != nil {
		b.Tags = NormalizeTags(*p.Tags)
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	b.UpdatedAt = now
	return b
}
