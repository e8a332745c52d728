package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"snippetbox/internal/common"
	"snippetbox/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotificationService pushes notifications onto a Redis list drained by
// worker.NotificationWorker.
type NotificationService struct {
	rdb   *redis.Client
	queue string
	now   func() time.Time
	log   zerolog.Logger
}

func NewNotificationService(rdb *redis.Client, queue string, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		rdb:   rdb,
		queue: queue,
		now:   time.Now,
		log:   log.With().Str("component", "notifications").Logger(),
	}
}

// Enqueue schedules message for email. An empty message uses the default text.
func (s *NotificationService) Enqueue(ctx context.Context, email, message string) (*model.Notification, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		message = model.DefaultNotificationMessage
	}

	n := &model.Notification{
		ID:         uuid.NewString(),
		Email:      email,
		Message:    message,
		EnqueuedAt: s.now().UTC(),
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, common.Errorf("failed to marshal notification: %w", err)
	}

	if err := s.rdb.LPush(ctx, s.queue, payload).Err(); err != nil {
		return nil, fmt.Errorf("failed to push notification to queue %q: %w: %w", s.queue, common.ErrServiceUnavailable, err)
	}
	s.log.Info().Str("notification_id", n.ID).Msg("notification enqueued")
	return n, nil
}
