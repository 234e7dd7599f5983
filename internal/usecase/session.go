package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/totegamma/nextgen-portal/client"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/jwt"
)

// SessionUsecase owns every write to a session. Writes to the same id are
// serialised within the process so a read-modify-write never restores a field
// another request just changed.
type SessionUsecase struct {
	repo  SessionRepository
	now   func() time.Time
	locks sessionLocks
}

func NewSessionUsecase(repo SessionRepository) *SessionUsecase {
	return &SessionUsecase{
		repo:  repo,
		now:   time.Now,
		locks: sessionLocks{held: map[string]*sessionLock{}},
	}
}

// Open returns the session with the given id, creating a fresh one when the
// id is empty or unknown.
func (uc *SessionUsecase) Open(ctx context.Context, id string) (domain.Session, error) {
	if id != "" {
		session, err := uc.repo.Get(ctx, id)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, err
		}
	}

	session := domain.NewSession(uuid.NewString(), uc.now())
	if err := uc.repo.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (uc *SessionUsecase) Get(ctx context.Context, id string) (domain.Session, error) {
	session, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	session.HasToken = session.AccessToken != ""
	return session, nil
}

// SetToken stores the access token forwarded to the services. Tokens that
// parse as JWT are rejected once expired; opaque tokens are stored as is.
func (uc *SessionUsecase) SetToken(ctx context.Context, id, token string) (domain.Session, error) {
	if _, claims, err := jwt.Decode(token); err == nil && claims.Expired(uc.now()) {
		return domain.Session{}, domain.ErrTokenExpired
	}
	return uc.update(ctx, id, func(s *domain.Session) {
		s.AccessToken = token
	})
}

func (uc *SessionUsecase) ClearToken(ctx context.Context, id string) (domain.Session, error) {
	return uc.update(ctx, id, func(s *domain.Session) {
		s.AccessToken = ""
	})
}

func (uc *SessionUsecase) SetPage(ctx context.Context, id string, page domain.Page) (domain.Session, error) {
	return uc.update(ctx, id, func(s *domain.Session) {
		s.Page = page
	})
}

func (uc *SessionUsecase) SetAppForm(ctx context.Context, id string, form domain.AppForm) (domain.Session, error) {
	if form.Files == nil {
		form.Files = []string{}
	}
	return uc.update(ctx, id, func(s *domain.Session) {
		s.AppForm = form
	})
}

// UpdateFiles rewrites the file list of the upload form.
func (uc *SessionUsecase) UpdateFiles(ctx context.Context, id string, update func([]string) []string) (domain.Session, error) {
	return uc.update(ctx, id, func(s *domain.Session) {
		s.AppForm.Files = update(s.AppForm.Files)
		if s.AppForm.Files == nil {
			s.AppForm.Files = []string{}
		}
	})
}

// Reset clears the page and form state of the session.
func (uc *SessionUsecase) Reset(ctx context.Context, id string) (domain.Session, error) {
	return uc.update(ctx, id, func(s *domain.Session) {
		s.Reset()
	})
}

func (uc *SessionUsecase) update(ctx context.Context, id string, mutate func(*domain.Session)) (domain.Session, error) {
	unlock := uc.locks.lock(id)
	defer unlock()

	session, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	mutate(&session)
	session.MDate = uc.now()
	if err := uc.repo.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	session.HasToken = session.AccessToken != ""
	return session, nil
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session id and forgets it once the
// last holder is done.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.held[id]
	if !ok {
		entry = &sessionLock{}
		l.held[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}

// TokenStore exposes the session's token slot to the gateway.
func (uc *SessionUsecase) TokenStore(id string) client.TokenStore {
	return &sessionTokenStore{uc: uc, id: id}
}

type sessionTokenStore struct {
	uc *SessionUsecase
	id string
}

func (s *sessionTokenStore) AccessToken(ctx context.Context) string {
	session, err := s.uc.repo.Get(ctx, s.id)
	if err != nil {
		return ""
	}
	return session.AccessToken
}

func (s *sessionTokenStore) ClearAccessToken(ctx context.Context) {
	if _, err := s.uc.ClearToken(ctx, s.id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.ErrorContext(
			ctx, "failed to clear access token",
			slog.String("error", err.Error()),
			slog.String("module", "session"),
		)
	}
}
