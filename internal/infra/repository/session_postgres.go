package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/infra/database/models"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

var tracer = otel.Tracer("repository")

type PostgresSessionRepository struct {
	db *gorm.DB
}

var _ usecase.SessionRepository = (*PostgresSessionRepository)(nil)

func NewPostgresSessionRepository(db *gorm.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Repository.Postgres.Get")
	defer span.End()

	var session models.Session
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Session{}, errSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return domain.Session{}, errors.Wrap(err, "select session")
	}

	files := []string{}
	if session.Files != "" {
		if err := json.Unmarshal([]byte(session.Files), &files); err != nil {
			return domain.Session{}, errors.Wrap(err, "decode session files")
		}
	}

	return domain.Session{
		ID:          session.ID,
		AccessToken: session.AccessToken,
		Page: domain.Page{
			Section:  session.Section,
			Title:    session.Title,
			Subtitle: session.Subtitle,
		},
		AppForm: domain.AppForm{Files: files},
		CDate:   session.CDate,
		MDate:   session.MDate,
	}, nil
}

func (r *PostgresSessionRepository) Save(ctx context.Context, session domain.Session) error {
	ctx, span := tracer.Start(ctx, "Session.Repository.Postgres.Save")
	defer span.End()

	files := session.AppForm.Files
	if files == nil {
		files = []string{}
	}
	serialized, err := json.Marshal(files)
	if err != nil {
		return errors.Wrap(err, "encode session files")
	}

	row := models.Session{
		ID:          session.ID,
		AccessToken: session.AccessToken,
		Section:     session.Page.Section,
		Title:       session.Page.Title,
		Subtitle:    session.Page.Subtitle,
		Files:       string(serialized),
		MDate:       session.MDate,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "section", "title", "subtitle", "files", "m_date"}),
	}).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "upsert session")
	}
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, id string) error {
	return errors.Wrap(
		r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error,
		"delete session",
	)
}
