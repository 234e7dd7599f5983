package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
)

type StatusUsecase struct {
	gateway CatalogGateway
}

func NewStatusUsecase(gateway CatalogGateway) *StatusUsecase {
	return &StatusUsecase{gateway: gateway}
}

// Check queries both services concurrently.
func (uc *StatusUsecase) Check(ctx context.Context) (domain.StatusReport, error) {
	checks := []struct {
		name  string
		check func(context.Context) (*nextgen.HealthStatus, error)
	}{
		{"search", uc.gateway.HealthCheck},
		{"catalog", uc.gateway.CatalogHealth},
	}

	statuses := make([]domain.ServiceStatus, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			status := domain.ServiceStatus{Service: check.name, Status: "unavailable"}
			health, err := check.check(gctx)
			if err != nil {
				status.Status = err.Error()
			} else if health != nil {
				status.Status = health.Status
				if status.Status == "" {
					status.Status = "ok"
				}
				status.OK = true
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.StatusReport{}, err
	}

	report := domain.StatusReport{Services: statuses, Healthy: true}
	for _, s := range statuses {
		report.Healthy = report.Healthy && s.OK
	}
	return report, nil
}

func (uc *StatusUsecase) SearchMetrics(ctx context.Context) (map[string]any, error) {
	metrics, err := uc.gateway.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		return nil, ErrUpstream
	}
	return metrics, nil
}
