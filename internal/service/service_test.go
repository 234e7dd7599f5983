package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
)

func TestSignalDeliversToSession(t *testing.T) {
	s := NewSignalService(nil)
	mine, cancelMine := s.Subscribe("s1")
	defer cancelMine()
	other, cancelOther := s.Subscribe("s2")
	defer cancelOther()

	ctx := context.WithValue(context.Background(), domain.SessionIDCtxKey, "s1")
	s.Notify(ctx, nextgen.SeverityError, "Request timeout")

	select {
	case n := <-mine:
		if n.Message != "Request timeout" || n.Level != "error" || n.SessionID != "s1" {
			t.Fatalf("unexpected notification %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	select {
	case n := <-other:
		t.Fatalf("other session received %+v", n)
	default:
	}
}

func TestSignalWithoutSession(t *testing.T) {
	s := NewSignalService(nil)
	ch, cancel := s.Subscribe("s1")
	defer cancel()

	s.Notify(context.Background(), nextgen.SeverityInfo, "hello")

	select {
	case n := <-ch:
		t.Fatalf("unexpected notification %+v", n)
	default:
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	s := NewSignalService(nil)
	ch, cancel := s.Subscribe("s1")
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	if len(s.subscribers) != 0 {
		t.Fatalf("subscribers left behind: %d", len(s.subscribers))
	}

	// publishing to a session nobody listens to is a no-op
	ctx := context.WithValue(context.Background(), domain.SessionIDCtxKey, "s1")
	s.Notify(ctx, nextgen.SeverityInfo, "gone")
}

func TestSignalSlowSubscriber(t *testing.T) {
	s := NewSignalService(nil)
	ch, cancel := s.Subscribe("s1")
	defer cancel()

	ctx := context.WithValue(context.Background(), domain.SessionIDCtxKey, "s1")
	for i := 0; i < subscriberBuffer+5; i++ {
		s.Notify(ctx, nextgen.SeverityInfo, "spam")
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected a full buffer, got %d", len(ch))
	}
}

func token(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"typ":"JWT","alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestAuthBearer(t *testing.T) {
	s := NewAuthService()
	s.now = func() time.Time { return time.Unix(2000, 0) }
	ctx := context.Background()

	result, err := s.AuthBearer(ctx, "Bearer "+token(`{"sub":"alice","exp":3000}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", result.Subject)
	}

	_, err = s.AuthBearer(ctx, "Bearer "+token(`{"sub":"alice","exp":1000}`))
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	result, err = s.AuthBearer(ctx, "Bearer opaque-token")
	if err != nil || result.Token != "opaque-token" {
		t.Fatalf("opaque token rejected: %v", err)
	}

	for _, header := range []string{"Basic abc", "Bearer", "Bearer a b"} {
		if _, err := s.AuthBearer(ctx, header); err == nil {
			t.Fatalf("expected error for %q", header)
		}
	}
}
