package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Snippet is a stored text resource. SharedURL is non-nil exactly when
// IsPrivate is false.
type Snippet struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	SharedURL *string   `json:"shared_url"`
}

// LinkGenerator mints a share link that has never been issued before.
type LinkGenerator func(title string) string

// NewShareLink returns "<slug(title)>-<uuid4>", or the bare uuid when the
// title has nothing to slug.
func NewShareLink(title string) string {
	id := uuid.NewString()
	if s := slug.Make(title); s != "" {
		return s + "-" + id
	}
	return id
}

// NewSnippet builds an unsaved snippet in the requested visibility state.
func NewSnippet(title, content string, private bool, newLink LinkGenerator) *Snippet {
	s := &Snippet{Title: title, Content: content, IsPrivate: true}
	s.ApplyVisibility(private, newLink)
	return s
}

// ApplyVisibility moves the snippet between the Private and Public states.
// Private->Public always mints a fresh link, Public->Private clears it, and a
// same-state call leaves the link alone.
func (s *Snippet) ApplyVisibility(private bool, newLink LinkGenerator) {
	switch {
	case private && !s.IsPrivate:
		s.SharedURL = nil
	case !private && s.IsPrivate:
		link := newLink(s.Title)
		s.SharedURL = &link
	}
	s.IsPrivate = private
}

// Shared reports whether the snippet is publicly reachable by its link.
func (s *Snippet) Shared() bool {
	return !s.IsPrivate && s.SharedURL != nil
}
