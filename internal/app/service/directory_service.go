package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"snippetbox/internal/common"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const maxDirectoryBody = 1 << 20

// DirectoryService proxies user lookups to an external directory and caches
// the answers in Redis.
type DirectoryService struct {
	client  *http.Client
	baseURL string
	rdb     *redis.Client
	ttl     time.Duration
	log     zerolog.Logger
}

// NewDirectoryService accepts a nil rdb, which disables caching.
func NewDirectoryService(client *http.Client, baseURL string, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		rdb:     rdb,
		ttl:     ttl,
		log:     log.With().Str("component", "directory").Logger(),
	}
}

func directoryCacheKey(id int64) string {
	return fmt.Sprintf("directory:user:%d", id)
}

// GetUser returns the upstream JSON document for id unchanged.
func (s *DirectoryService) GetUser(ctx context.Context, id int64) (json.RawMessage, error) {
	if id <= 0 {
		return nil, common.Validationf("user id must be a positive integer")
	}
	key := directoryCacheKey(id)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return json.RawMessage(cached), nil
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Str("key", key).Msg("directory cache read failed")
		}
	}

	body, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, []byte(body), s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("directory cache write failed")
		}
	}
	return body, nil
}

func (s *DirectoryService) fetch(ctx context.Context, id int64) (json.RawMessage, error) {
	url := s.baseURL + "/users/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("directory request: %w", ctxErr)
		}
		return nil, fmt.Errorf("directory request: %w: %w", common.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("directory user %d: %w", id, common.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("directory returned %d: %w", resp.StatusCode, common.ErrServiceUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryBody))
	if err != nil {
		return nil, fmt.Errorf("read directory response: %w: %w", common.ErrServiceUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("directory returned invalid JSON: %w", common.ErrServiceUnavailable)
	}
	return json.RawMessage(body), nil
}
