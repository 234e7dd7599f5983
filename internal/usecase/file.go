package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"

	"github.com/totegamma/nextgen-portal/internal/domain"
)

// FileUsecase manages MMIO files and keeps the session's upload form in sync.
type FileUsecase struct {
	gateway  CatalogGateway
	sessions *SessionUsecase
}

func NewFileUsecase(gateway CatalogGateway, sessions *SessionUsecase) *FileUsecase {
	return &FileUsecase{gateway: gateway, sessions: sessions}
}

func (uc *FileUsecase) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	location, err := uc.gateway.UploadMmioFile(ctx, filename, content)
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", ErrUpstream
	}
	uc.updateForm(ctx, func(files []string) []string {
		if slices.Contains(files, location) {
			return files
		}
		return append(files, location)
	})
	return location, nil
}

func (uc *FileUsecase) Download(ctx context.Context, filename string) ([]byte, error) {
	content, err := uc.gateway.GetMmioFile(ctx, filename)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, domain.NotFoundError{Resource: "file"}
	}
	return content, nil
}

func (uc *FileUsecase) Delete(ctx context.Context, filename string) (bool, error) {
	ok, err := uc.gateway.DeleteMmioFile(ctx, filename)
	if err != nil || !ok {
		return ok, err
	}
	uc.updateForm(ctx, func(files []string) []string {
		return slices.DeleteFunc(files, func(f string) bool {
			return f == filename || f == "/mmio/"+filename || f == "/mmio/"+filename+"/"
		})
	})
	return true, nil
}

func (uc *FileUsecase) updateForm(ctx context.Context, update func([]string) []string) {
	id, _ := ctx.Value(domain.SessionIDCtxKey).(string)
	if id == "" || uc.sessions == nil {
		return
	}
	if _, err := uc.sessions.UpdateFiles(ctx, id, update); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "failed to update session files", slog.String("error", err.Error()), slog.String("module", "file"))
	}
}
