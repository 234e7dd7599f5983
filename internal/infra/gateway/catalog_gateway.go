package gateway

import (
	"context"
	"io"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/client"
	"github.com/totegamma/nextgen-portal/internal/usecase"
	"github.com/totegamma/nextgen-portal/jsonld"
)

// CatalogGateway adapts the HTTP client to the usecase port.
type CatalogGateway struct {
	client *client.Client
}

var _ usecase.CatalogGateway = (*CatalogGateway)(nil)

func NewCatalogGateway(cl *client.Client) *CatalogGateway {
	return &CatalogGateway{client: cl}
}

// Health checks run in the background and never toast.
func (g *CatalogGateway) HealthCheck(ctx context.Context) (*nextgen.HealthStatus, error) {
	return g.client.HealthCheck(ctx, client.WithoutToast())
}

func (g *CatalogGateway) CatalogHealth(ctx context.Context) (*nextgen.HealthStatus, error) {
	return g.client.CatalogHealth(ctx, client.WithoutToast())
}

func (g *CatalogGateway) Metrics(ctx context.Context) (map[string]any, error) {
	metrics, err := g.client.Metrics(ctx)
	if err != nil || metrics == nil {
		return nil, err
	}
	return *metrics, nil
}

func (g *CatalogGateway) SearchLocalCatalog(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error) {
	return g.client.SearchLocalCatalog(ctx, filter)
}

func (g *CatalogGateway) SearchDecentralized(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error) {
	return g.client.SearchDecentralized(ctx, filter)
}

func (g *CatalogGateway) GetLocalCatalog(ctx context.Context, filter *nextgen.SearchFilter) (jsonld.Node, error) {
	return g.client.GetLocalCatalog(ctx, filter)
}

func (g *CatalogGateway) GetDataset(ctx context.Context, id string) (jsonld.Node, error) {
	return g.client.GetDataset(ctx, id)
}

func (g *CatalogGateway) SaveDataset(ctx context.Context, filename string, dataset any) (jsonld.Node, error) {
	return g.client.SaveDataset(ctx, filename, dataset)
}

func (g *CatalogGateway) DeleteDataset(ctx context.Context, id string) (bool, error) {
	return g.client.DeleteDataset(ctx, id)
}

func (g *CatalogGateway) ShareDataset(ctx context.Context, id string) (bool, error) {
	return g.client.ShareDataset(ctx, id)
}

func (g *CatalogGateway) UnshareDataset(ctx context.Context, id string) (bool, error) {
	return g.client.UnshareDataset(ctx, id)
}

func (g *CatalogGateway) UploadMmioFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	return g.client.UploadMmioFile(ctx, filename, content)
}

func (g *CatalogGateway) GetMmioFile(ctx context.Context, filename string) ([]byte, error) {
	return g.client.GetMmioFile(ctx, filename)
}

func (g *CatalogGateway) DeleteMmioFile(ctx context.Context, filename string) (bool, error) {
	return g.client.DeleteMmioFile(ctx, filename)
}
