package usecase

import (
	"context"
	"io"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/jsonld"
)

// CatalogGateway encapsulates the search and catalog services. A nil result
// with a nil error means the service did not deliver a value; the user has
// already been notified in that case.
type CatalogGateway interface {
	HealthCheck(ctx context.Context) (*nextgen.HealthStatus, error)
	CatalogHealth(ctx context.Context) (*nextgen.HealthStatus, error)
	Metrics(ctx context.Context) (map[string]any, error)
	SearchLocalCatalog(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error)
	SearchDecentralized(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error)
	GetLocalCatalog(ctx context.Context, filter *nextgen.SearchFilter) (jsonld.Node, error)
	GetDataset(ctx context.Context, id string) (jsonld.Node, error)
	SaveDataset(ctx context.Context, filename string, dataset any) (jsonld.Node, error)
	DeleteDataset(ctx context.Context, id string) (bool, error)
	ShareDataset(ctx context.Context, id string) (bool, error)
	UnshareDataset(ctx context.Context, id string) (bool, error)
	UploadMmioFile(ctx context.Context, filename string, content io.Reader) (string, error)
	GetMmioFile(ctx context.Context, filename string) ([]byte, error)
	DeleteMmioFile(ctx context.Context, filename string) (bool, error)
}

// SessionRepository persists sessions. Get returns domain.ErrNotFound for
// unknown ids.
type SessionRepository interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, id string) error
}

// Notifier delivers toasts to the session found in ctx.
type Notifier interface {
	Notify(ctx context.Context, severity nextgen.Severity, message string)
}
