package usecase

import (
	"context"
	"errors"
	"testing"

	nextgen "github.com/totegamma/nextgen-portal"
)

func TestStatusUsecaseCheck(t *testing.T) {
	gw := &mockGateway{
		searchHealth:  &nextgen.HealthStatus{Status: "healthy"},
		catalogHealth: &nextgen.HealthStatus{},
	}
	report, err := NewStatusUsecase(gw).Check(context.Background())
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Healthy || len(report.Services) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Services[0].Status != "healthy" || report.Services[1].Status != "ok" {
		t.Fatalf("unexpected statuses %+v", report.Services)
	}

	gw.catalogHealth = nil
	report, _ = NewStatusUsecase(gw).Check(context.Background())
	if report.Healthy || report.Services[1].Status != "unavailable" {
		t.Fatalf("expected catalog to be unavailable, got %+v", report)
	}

	gw.healthErr = errors.New("dial tcp: refused")
	report, _ = NewStatusUsecase(gw).Check(context.Background())
	if report.Services[0].OK || report.Services[0].Status != "dial tcp: refused" {
		t.Fatalf("expected search error to be reported, got %+v", report.Services[0])
	}
}

func TestStatusUsecaseSearchMetrics(t *testing.T) {
	if _, err := NewStatusUsecase(&mockGateway{}).SearchMetrics(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	metrics, err := NewStatusUsecase(&mockGateway{metrics: map[string]any{"requests": 3.0}}).SearchMetrics(context.Background())
	if err != nil || metrics["requests"] != 3.0 {
		t.Fatalf("unexpected metrics %v (%v)", metrics, err)
	}
}
