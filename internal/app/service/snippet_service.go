package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"snippetbox/internal/common"
	"snippetbox/internal/domain/model"
	"snippetbox/internal/domain/repository"
	"snippetbox/internal/platform/database"

	"github.com/rs/zerolog"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	// A freshly minted link colliding is not expected; retry a few times anyway.
	linkAttempts = 3
)

type SnippetService struct {
	tx       database.Transactor
	snippets repository.SnippetRepository
	newLink  model.LinkGenerator
	log      zerolog.Logger
}

type SnippetOption func(*SnippetService)

// WithLinkGenerator replaces model.NewShareLink.
func WithLinkGenerator(gen model.LinkGenerator) SnippetOption {
	return func(s *SnippetService) { s.newLink = gen }
}

func NewSnippetService(tx database.Transactor, snippets repository.SnippetRepository, log zerolog.Logger, opts ...SnippetOption) *SnippetService {
	s := &SnippetService{
		tx:       tx,
		snippets: snippets,
		newLink:  model.NewShareLink,
		log:      log.With().Str("component", "snippets").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateSnippetRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsPrivate *bool  `json:"is_private"`
}

// UpdateSnippetRequest is a partial update: nil fields are left unchanged.
type UpdateSnippetRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"is_private"`
}

func (s *SnippetService) Create(ctx context.Context, req CreateSnippetRequest) (*model.Snippet, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, common.Validationf("title is required")
	}
	private := true
	if req.IsPrivate != nil {
		private = *req.IsPrivate
	}

	var snippet *model.Snippet
	err := s.withLinkRetry("create", func() error {
		snippet = model.NewSnippet(req.Title, req.Content, private, s.newLink)
		return s.snippets.Create(ctx, nil, snippet)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snippet: %w", err)
	}
	return snippet, nil
}

func (s *SnippetService) Get(ctx context.Context, id int64) (*model.Snippet, error) {
	return s.snippets.FindByID(ctx, nil, id)
}

func (s *SnippetService) List(ctx context.Context, skip, limit int) ([]model.Snippet, error) {
	if skip < 0 {
		return nil, common.Validationf("skip must not be negative")
	}
	if limit <= 0 || limit > MaxListLimit {
		return nil, common.Validationf("limit must be between 1 and %d", MaxListLimit)
	}
	return s.snippets.List(ctx, nil, skip, limit)
}

// Update applies the title before the visibility so a newly minted link is
// derived from the new title.
func (s *SnippetService) Update(ctx context.Context, id int64, req UpdateSnippetRequest) (*model.Snippet, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, common.Validationf("title must not be empty")
	}

	// A failed statement aborts a Postgres transaction, so a link collision
	// retries the whole unit of work.
	var updated *model.Snippet
	err := s.withLinkRetry("update", func() error {
		return s.tx.WithinTx(ctx, func(q database.Querier) error {
			snippet, err := s.snippets.FindByIDForUpdate(ctx, q, id)
			if err != nil {
				return err
			}
			if req.Title != nil {
				snippet.Title = *req.Title
			}
			if req.Content != nil {
				snippet.Content = *req.Content
			}
			if req.IsPrivate != nil {
				snippet.ApplyVisibility(*req.IsPrivate, s.newLink)
			}
			if err := s.snippets.Update(ctx, q, snippet); err != nil {
				return err
			}
			updated = snippet
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update snippet %d: %w", id, err)
	}
	return updated, nil
}

// withLinkRetry reruns fn while the store reports a share link collision.
// Snippets have no other unique column, so ErrDuplicate always means the
// link. Running out of attempts is a server fault, not a client one.
func (s *SnippetService) withLinkRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= linkAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, common.ErrDuplicate) {
			return err
		}
		s.log.Warn().Str("op", op).Int("attempt", attempt).Msg("share link collision")
	}
	return fmt.Errorf("share link still taken after %d attempts: %w", linkAttempts, common.ErrInternalServer)
}

func (s *SnippetService) Delete(ctx context.Context, id int64) error {
	if err := s.snippets.Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete snippet %d: %w", id, err)
	}
	return nil
}

// GetByShareLink resolves a public snippet. Private and unknown links are
// both ErrNotFound.
func (s *SnippetService) GetByShareLink(ctx context.Context, link string) (*model.Snippet, error) {
	if link == "" {
		return nil, common.ErrNotFound
	}
	return s.snippets.FindBySharedURL(ctx, nil, link)
}
