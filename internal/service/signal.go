package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
)

const (
	notificationChannel = "nextgen:notifications"
	subscriberBuffer    = 16
)

// SignalService delivers toasts to the browser sessions they belong to. With
// a redis client, notifications travel through pub/sub so that every portal
// instance can reach its own websocket subscribers.
type SignalService struct {
	rdb *redis.Client
	now func() time.Time

	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Notification]struct{}
}

// NewSignalService accepts a nil redis client for single instance setups.
func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb:         redisClient,
		now:         time.Now,
		subscribers: make(map[string]map[chan domain.Notification]struct{}),
	}
}

// Notify addresses the session found in ctx. Without a session there is
// nobody to show the message to and it is only logged.
func (s *SignalService) Notify(ctx context.Context, severity nextgen.Severity, message string) {
	sessionID, _ := ctx.Value(domain.SessionIDCtxKey).(string)
	if sessionID == "" {
		slog.DebugContext(
			ctx, "notification without session",
			slog.String("level", string(severity)),
			slog.String("message", message),
			slog.String("module", "signal"),
		)
		return
	}

	notification := domain.Notification{
		SessionID: sessionID,
		Level:     string(severity),
		Message:   message,
		Time:      s.now(),
	}
	if err := s.Publish(context.WithoutCancel(ctx), notification); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish notification",
			slog.String("error", err.Error()),
			slog.String("module", "signal"),
		)
	}
}

func (s *SignalService) Publish(ctx context.Context, notification domain.Notification) error {
	if s.rdb == nil {
		s.deliver(notification)
		return nil
	}

	jsonstr, err := json.Marshal(notification)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	err = s.rdb.Publish(ctx, notificationChannel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "publish notification")
	}

	return nil
}

// Subscribe registers a receiver for the session's notifications. The
// returned function unregisters it and closes the channel.
func (s *SignalService) Subscribe(sessionID string) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, subscriberBuffer)

	s.mu.Lock()
	if s.subscribers[sessionID] == nil {
		s.subscribers[sessionID] = make(map[chan domain.Notification]struct{})
	}
	s.subscribers[sessionID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[sessionID], ch)
			if len(s.subscribers[sessionID]) == 0 {
				delete(s.subscribers, sessionID)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Run relays notifications from redis to local subscribers until ctx ends.
// It returns immediately when no redis client is configured.
func (s *SignalService) Run(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, notificationChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe notifications")
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var notification domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				slog.ErrorContext(
					ctx, "invalid notification payload",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			s.deliver(notification)
		}
	}
}

// deliver never blocks; a subscriber that does not keep up loses messages.
func (s *SignalService) deliver(notification domain.Notification) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers[notification.SessionID] {
		select {
		case ch <- notification:
		default:
			slog.Warn(
				"notification dropped",
				slog.String("session", notification.SessionID),
				slog.String("module", "signal"),
			)
		}
	}
}
