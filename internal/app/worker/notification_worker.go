package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"snippetbox/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultPopTimeout = 2 * time.Second
	retryDelay        = 5 * time.Second
)

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	Log zerolog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n model.Notification) error {
	l.Log.Info().Str("notification_id", n.ID).Msgf("notification for %s: %s", n.Email, n.Message)
	return nil
}

// NotificationWorker drains the notification queue one job at a time.
type NotificationWorker struct {
	rdb        *redis.Client
	queue      string
	notifier   Notifier
	popTimeout time.Duration
	log        zerolog.Logger
}

func NewNotificationWorker(rdb *redis.Client, queue string, notifier Notifier, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		rdb:        rdb,
		queue:      queue,
		notifier:   notifier,
		popTimeout: defaultPopTimeout,
		log:        log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Str("queue", w.queue).Msg("notification worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("notification worker stopping")
			return
		}

		// BRPop returns [queue, value]. A short timeout keeps shutdown prompt.
		res, err := w.rdb.BRPop(ctx, w.popTimeout, w.queue).Result()
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
			case ctx.Err() != nil:
			default:
				w.log.Error().Err(err).Str("queue", w.queue).Msg("failed to pop from notification queue")
				w.sleep(ctx, retryDelay)
			}
			continue
		}
		if len(res) < 2 || res[1] == "" {
			w.log.Warn().Msg("empty notification payload")
			continue
		}
		w.process(ctx, res[1])
	}
}

func (w *NotificationWorker) process(ctx context.Context, payload string) {
	var n model.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		w.log.Error().Err(err).Msg("dropping malformed notification")
		return
	}
	if err := w.notifier.Notify(ctx, n); err != nil {
		w.log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to deliver notification")
		return
	}
	w.log.Debug().Str("notification_id", n.ID).Msg("notification delivered")
}

func (w *NotificationWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
