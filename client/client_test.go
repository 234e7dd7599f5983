package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/jsonld"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ nextgen.Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fixture struct {
	client   *Client
	notifier *recordingNotifier
	tokens   *MemoryTokenStore
	metrics  *Metrics
	url      string
}

func newFixture(t *testing.T, handler http.Handler, conf Config) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)

	if conf.SearchURL == "" {
		conf.SearchURL = srv.URL
	}
	if conf.CatalogURL == "" {
		conf.CatalogURL = srv.URL + "/"
	}

	f := &fixture{
		notifier: &recordingNotifier{},
		tokens:   NewMemoryTokenStore("secret"),
		metrics:  NewMetrics(),
		url:      srv.URL,
	}
	f.client = New(conf,
		WithNotifier(f.notifier),
		WithTokenStore(f.tokens),
		WithTransport(transport),
		WithMetrics(f.metrics),
	)
	return f
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/health-check", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}), Config{UserAgent: "portal-test"})

	status, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "ok", status.Status)

	assert.Equal(t, "application/ld+json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "portal-test", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Empty(t, got.Get("Authorization"), "bearer is off by default")
	assert.Empty(t, f.notifier.Messages())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("search", "GET", "ok")))
}

func TestRequestBearer(t *testing.T) {
	auth := make(chan string, 2)
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
	}), Config{AttachBearer: true})

	_, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", <-auth)

	ctx := ContextWithTokenStore(context.Background(), NewMemoryTokenStore("session-token"))
	_, err = f.client.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", <-auth)
}

func TestRequestJSONBody(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/datasets/ds-1/", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dcat:Dataset", body["@type"])
		_, _ = io.WriteString(w, `{"@type":"dcat:Dataset","@id":"https://e.org/ds-1"}`)
	}), Config{})

	doc, err := f.client.SaveDataset(context.Background(), "ds-1", map[string]any{"@type": "dcat:Dataset"})
	require.NoError(t, err)
	obj := jsonld.AsObject(doc)
	require.NotNil(t, obj)
	assert.Equal(t, "https://e.org/ds-1", obj.ID)
}

func TestUploadMmioFile(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mmio/", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "data.mmio", header.Filename)
		assert.Equal(t, "payload", string(content))
		_, _ = io.WriteString(w, `{"Location":"/mmio/data.mmio"}`)
	}), Config{})

	location, err := f.client.UploadMmioFile(context.Background(), "data.mmio", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "/mmio/data.mmio", location)
}

func TestUnauthorizedClearsToken(t *testing.T) {
	f := newFixture(t, respond(http.StatusUnauthorized, `{"detail":"expired"}`), Config{})

	result, err := Request[map[string]any](context.Background(), f.client, ServiceCatalog, "/datasets/x/", http.MethodGet, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, f.tokens.AccessToken(context.Background()))
	assert.Equal(t, []string{MessageUnauthorized}, f.notifier.Messages())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusConflict, `{"detail":"ignored"}`, MessageConflict},
		{http.StatusUnprocessableEntity, `{"detail":"title is required"}`, "title is required"},
		{http.StatusServiceUnavailable, `{"detail":"catalog offline"}`, "catalog offline"},
		{http.StatusInternalServerError, ``, MessageGeneric},
		{http.StatusNotFound, `{"dcterms:description":{"@value":"no such dataset"}}`, "no such dataset"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFixture(t, respond(tt.status, tt.body), Config{})
			reply, err := f.client.Do(context.Background(), Call{Service: ServiceCatalog, Path: "/catalog/", Method: http.MethodPost, Body: map[string]any{}})
			require.NoError(t, err)
			assert.Equal(t, OutcomeRejected, reply.Outcome)
			assert.True(t, reply.Null())
			assert.Equal(t, tt.status, reply.Status)
			assert.Equal(t, []string{tt.want}, f.notifier.Messages())
			assert.Equal(t, "secret", f.tokens.AccessToken(context.Background()))
		})
	}
}

func TestEmptyBodyIsEmptyObject(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, ""), Config{})
	result, err := Request[map[string]any](context.Background(), f.client, ServiceSearch, "/metrics", http.MethodGet, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, *result)
}

func TestNoContentDeleteSucceeds(t *testing.T) {
	f := newFixture(t, respond(http.StatusNoContent, ""), Config{})
	ok, err := f.client.DeleteDataset(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTimeoutNotifiesOnce(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}), Config{})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	result, err := f.client.HealthCheck(context.Background(), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{MessageTimeout}, f.notifier.Messages())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("search", "GET", "timeout")))
}

func TestDeleteFailureIsDropped(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	f := newFixture(t, http.NotFoundHandler(), Config{CatalogURL: url})
	reply, err := f.client.Do(context.Background(), Call{Service: ServiceCatalog, Path: "/mmio/x/", Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDropped, reply.Outcome)
	assert.False(t, reply.Null())

	ok, err := f.client.DeleteMmioFile(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.notifier.Messages())
}

func TestFailurePolicy(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, "<html>"), Config{})
	result, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{MessageFetchFailed}, f.notifier.Messages())

	p := newFixture(t, respond(http.StatusOK, "<html>"), Config{FailurePolicy: PolicyPropagate})
	reply, err := p.client.Do(context.Background(), Call{Service: ServiceSearch, Path: "/health-check"})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, reply.Outcome)
}

func TestWithoutToast(t *testing.T) {
	f := newFixture(t, respond(http.StatusConflict, ""), Config{})
	ok, err := f.client.ShareDataset(context.Background(), "ds-1", WithoutToast())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.notifier.Messages())
}

func TestCancelledCallerIsNotNotified(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, "{}"), Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := f.client.Do(ctx, Call{Service: ServiceSearch, Path: "/health-check"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, reply.Outcome)
	assert.Empty(t, f.notifier.Messages())
}

func TestUnknownService(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler(), Config{})
	_, err := f.client.Do(context.Background(), Call{Service: "billing", Path: "/"})
	assert.True(t, errors.Is(err, ErrUnknownService))
}

func TestShareAndUnshare(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		_, _ = io.WriteString(w, `{}`)
	}), Config{})

	ok, err := f.client.ShareDataset(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.client.UnshareDataset(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"POST /datasets/ds-1/share/", "POST /datasets/ds-1/unshare/"}, paths)
}

func TestGetMmioFileRaw(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, "raw,csv\n1,2"), Config{})
	content, err := f.client.GetMmioFile(context.Background(), "data.csv")
	require.NoError(t, err)
	assert.Equal(t, "raw,csv\n1,2", string(content))
}

func TestSearchCompactsFilter(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		var filter nextgen.SearchFilter
		require.NoError(t, json.NewDecoder(r.Body).Decode(&filter))
		assert.Equal(t, "Filters", filter.Type)
		assert.Len(t, filter.Filters, 1)
		assert.Equal(t, nextgen.DefaultVocab, filter.Context["@vocab"])
		_, _ = io.WriteString(w, `{"@type":"SearchResponse","results":[],"metadata":{"total":0,"page":1,"pageSize":10,"catalogs":[{"id":"a","status":"success"}]}}`)
	}), Config{})

	filter := jsonld.BuildSearchFilter(jsonld.FilterParams{Filters: map[string]any{"diabetes": true}})
	resp, err := f.client.SearchDecentralized(context.Background(), filter)
	require.NoError(t, err)
	require.NotNil(t, resp)
	metadata := jsonld.Metadata(resp)
	require.NotNil(t, metadata)
	assert.Equal(t, "success", metadata.Catalogs[0].Status)
}

func TestSearchReplyShapes(t *testing.T) {
	const catalog = `{"@type":"dcat:Catalog","dcterms:title":"Graz","dcat:dataset":[{"@type":"dcat:Dataset","dcterms:identifier":"ds-1"}]}`
	tests := map[string]string{
		"bare catalog":   catalog,
		"graph":          `{"@context":"https://w3id.org/dspace/v0.8/context.json","@graph":[` + catalog + `]}`,
		"results":        `{"@context":{"@vocab":"https://w3id.org/dspace/v0.8/"},"results":[` + catalog + `]}`,
		"string context": `{"@context":"https://w3id.org/dspace/v0.8/context.json","results":[` + catalog + `],"metadata":{"catalogs":[]}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, respond(http.StatusOK, body), Config{})
			doc, err := f.client.SearchDecentralized(context.Background(), jsonld.BuildSearchFilter(jsonld.FilterParams{}))
			require.NoError(t, err)

			table := jsonld.ProjectSearchResults(doc, 1, 10, "en")
			require.Len(t, table.Data, 1)
			assert.Equal(t, "ds-1", table.Data[0].ID)
			assert.Equal(t, "Graz", table.Data[0].Biobank)
			assert.Empty(t, f.notifier.Messages())
		})
	}
}

func TestUndecodableReplyFollowsPolicy(t *testing.T) {
	const body = `{"status":{"@value":"ok"}}`

	f := newFixture(t, respond(http.StatusOK, body), Config{})
	status, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.Equal(t, []string{MessageFetchFailed}, f.notifier.Messages())

	quiet := newFixture(t, respond(http.StatusOK, body), Config{})
	status, err = quiet.client.HealthCheck(context.Background(), WithoutToast())
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.Empty(t, quiet.notifier.Messages())

	p := newFixture(t, respond(http.StatusOK, body), Config{FailurePolicy: PolicyPropagate})
	status, err = p.client.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Nil(t, status)
	assert.Equal(t, []string{MessageFetchFailed}, p.notifier.Messages())
}
