package usecase

import (
	"context"
	"io"
	"sync"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/jsonld"
)

type mockGateway struct {
	searchHealth  *nextgen.HealthStatus
	catalogHealth *nextgen.HealthStatus
	healthErr     error
	metrics       map[string]any
	response      jsonld.Node
	catalog       jsonld.Node
	dataset       jsonld.Node
	saved         jsonld.Node
	ok            bool
	location      string
	file          []byte

	lastFilter   nextgen.SearchFilter
	lastID       string
	lastUploaded string
}

var _ CatalogGateway = (*mockGateway)(nil)

func (m *mockGateway) HealthCheck(ctx context.Context) (*nextgen.HealthStatus, error) {
	return m.searchHealth, m.healthErr
}
func (m *mockGateway) CatalogHealth(ctx context.Context) (*nextgen.HealthStatus, error) {
	return m.catalogHealth, nil
}
func (m *mockGateway) Metrics(ctx context.Context) (map[string]any, error) { return m.metrics, nil }
func (m *mockGateway) SearchLocalCatalog(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error) {
	m.lastFilter = filter
	return m.response, nil
}
func (m *mockGateway) SearchDecentralized(ctx context.Context, filter nextgen.SearchFilter) (jsonld.Node, error) {
	m.lastFilter = filter
	return m.response, nil
}
func (m *mockGateway) GetLocalCatalog(ctx context.Context, filter *nextgen.SearchFilter) (jsonld.Node, error) {
	if filter != nil {
		m.lastFilter = *filter
	}
	return m.catalog, nil
}
func (m *mockGateway) GetDataset(ctx context.Context, id string) (jsonld.Node, error) {
	m.lastID = id
	return m.dataset, nil
}
func (m *mockGateway) SaveDataset(ctx context.Context, filename string, dataset any) (jsonld.Node, error) {
	m.lastID = filename
	return m.saved, nil
}
func (m *mockGateway) DeleteDataset(ctx context.Context, id string) (bool, error) {
	m.lastID = id
	return m.ok, nil
}
func (m *mockGateway) ShareDataset(ctx context.Context, id string) (bool, error) {
	m.lastID = id
	return m.ok, nil
}
func (m *mockGateway) UnshareDataset(ctx context.Context, id string) (bool, error) {
	m.lastID = id
	return m.ok, nil
}
func (m *mockGateway) UploadMmioFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	m.lastUploaded = filename
	return m.location, nil
}
func (m *mockGateway) GetMmioFile(ctx context.Context, filename string) ([]byte, error) {
	return m.file, nil
}
func (m *mockGateway) DeleteMmioFile(ctx context.Context, filename string) (bool, error) {
	return m.ok, nil
}

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: map[string]domain.Session{}}
}

func (m *mockSessionRepo) Get(ctx context.Context, id string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, domain.NotFoundError{Resource: "session"}
	}
	return s, nil
}

func (m *mockSessionRepo) Save(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, severity nextgen.Severity, message string) {
	m.messages = append(m.messages, string(severity)+":"+message)
}
