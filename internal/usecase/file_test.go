package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/totegamma/nextgen-portal/internal/domain"
)

func TestFileUsecaseUploadTracksForm(t *testing.T) {
	repo := newMockSessionRepo()
	sessions := NewSessionUsecase(repo)
	session, _ := sessions.Open(context.Background(), "")

	gw := &mockGateway{location: "/mmio/data.mmio/", ok: true}
	uc := NewFileUsecase(gw, sessions)
	ctx := context.WithValue(context.Background(), domain.SessionIDCtxKey, session.ID)

	location, err := uc.Upload(ctx, "data.mmio", strings.NewReader("x"))
	if err != nil || location != "/mmio/data.mmio/" {
		t.Fatalf("upload failed: %q %v", location, err)
	}
	stored, _ := repo.Get(ctx, session.ID)
	if len(stored.AppForm.Files) != 1 {
		t.Fatalf("expected the upload in the form, got %v", stored.AppForm.Files)
	}

	if ok, err := uc.Delete(ctx, "data.mmio"); err != nil || !ok {
		t.Fatalf("delete failed: %v %v", ok, err)
	}
	stored, _ = repo.Get(ctx, session.ID)
	if len(stored.AppForm.Files) != 0 {
		t.Fatalf("expected the form to be emptied, got %v", stored.AppForm.Files)
	}
}

func TestFileUsecaseFailures(t *testing.T) {
	uc := NewFileUsecase(&mockGateway{}, nil)
	if _, err := uc.Upload(context.Background(), "x", strings.NewReader("")); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if _, err := uc.Download(context.Background(), "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
