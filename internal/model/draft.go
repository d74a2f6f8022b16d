package model

import "strings"

// Draft holds the user supplied fields for a new bookmark.
type Draft struct {
	Title       string   `json:"title" validate:"notblank"`
	URL         string   `json:"url" validate:"notblank,absurl"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// Patch is a partial bookmark update. Nil fields are omitted, never
// overwritten with empty values.
type Patch struct {
	Title       *string   `json:"title,omitempty" validate:"omitnil,notblank"`
	URL         *string   `json:"url,omitempty" validate:"omitnil,notblank,absurl"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Category    *string   `json:"category,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil &&
		p.Tags == nil && p.Category == nil
}

// Prune drops fields whose value already matches current. Title and URL
// compare trimmed, as Apply stores them.
func (p Patch) Prune(current Bookmark) Patch {
	if p.Title != nil && strings.TrimSpace(*p.Title) == current.Title {
		p.Title = nil
	}
	if p.URL != nil && strings.TrimSpace(*p.URL) == current.URL {
		p.URL = nil
	}
	if p.Description != nil && *p.Description == current.Description {
		p.Description = nil
	}
	if p.Tags != nil && TagsEqual(*p.Tags, current.Tags) {
		p.Tags = nil
	}
	if p.Category != nil && *p.Category == current.Category {
		p.Category = nil
	}
	return p
}

// Fields lists the names of the fields the patch sets, for logging.
func (p Patch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.URL != nil {
		fields = append(fields, "url")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	return fields
}
