package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/jsonld"
)

// HealthCheck asks the search service for its status.
func (c *Client) HealthCheck(ctx context.Context, opts ...RequestOption) (*nextgen.HealthStatus, error) {
	return Request[nextgen.HealthStatus](ctx, c, ServiceSearch, "/health-check", http.MethodGet, nil, opts...)
}

// CatalogHealth asks the catalog service for its status.
func (c *Client) CatalogHealth(ctx context.Context, opts ...RequestOption) (*nextgen.HealthStatus, error) {
	return Request[nextgen.HealthStatus](ctx, c, ServiceCatalog, "/health", http.MethodGet, nil, opts...)
}

func (c *Client) Metrics(ctx context.Context, opts ...RequestOption) (*map[string]any, error) {
	return Request[map[string]any](ctx, c, ServiceSearch, "/metrics", http.MethodGet, nil, opts...)
}

// SearchLocalCatalog searches the catalog attached to this node. The reply
// is returned as a generic document: catalogs may arrive wrapped in an
// envelope or bare.
func (c *Client) SearchLocalCatalog(ctx context.Context, filter nextgen.SearchFilter, opts ...RequestOption) (jsonld.Node, error) {
	prepared, err := c.prepareFilter(filter)
	if err != nil {
		return nil, err
	}
	return c.document(ctx, ServiceSearch, "/search-catalog/", http.MethodPost, prepared, opts)
}

// SearchDecentralized fans the search out to every catalog of the federation.
func (c *Client) SearchDecentralized(ctx context.Context, filter nextgen.SearchFilter, opts ...RequestOption) (jsonld.Node, error) {
	prepared, err := c.prepareFilter(filter)
	if err != nil {
		return nil, err
	}
	return c.document(ctx, ServiceSearch, "/search/", http.MethodPost, prepared, opts)
}

// prepareFilter compacts filter against its own context. Results are cached
// by the filter's JSON form since compaction is deterministic.
func (c *Client) prepareFilter(filter nextgen.SearchFilter) (nextgen.SearchFilter, error) {
	if filter.Filters == nil {
		filter.Filters = []nextgen.FilterClause{}
	}
	key, err := json.Marshal(filter)
	if err != nil {
		return nextgen.SearchFilter{}, errors.Wrap(err, "marshal filter")
	}
	cacheKey := "filter:" + string(key)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(nextgen.SearchFilter), nil
	}

	compacted, err := c.compactor.Compact(filter)
	if err != nil {
		return nextgen.SearchFilter{}, err
	}
	c.cache.Set(cacheKey, compacted, cache.DefaultExpiration)
	return compacted, nil
}

// GetLocalCatalog fetches the local catalog, optionally filtered.
func (c *Client) GetLocalCatalog(ctx context.Context, filter *nextgen.SearchFilter, opts ...RequestOption) (jsonld.Node, error) {
	var body any = map[string]any{}
	if filter != nil {
		body = filter
	}
	return c.document(ctx, ServiceCatalog, "/catalog/", http.MethodPost, body, opts)
}

func (c *Client) GetDataset(ctx context.Context, id string, opts ...RequestOption) (jsonld.Node, error) {
	return c.document(ctx, ServiceCatalog, datasetPath(id, ""), http.MethodGet, nil, opts)
}

// SaveDataset creates or replaces the dataset stored under filename.
func (c *Client) SaveDataset(ctx context.Context, filename string, dataset any, opts ...RequestOption) (jsonld.Node, error) {
	return c.document(ctx, ServiceCatalog, datasetPath(filename, ""), http.MethodPost, dataset, opts)
}

func (c *Client) DeleteDataset(ctx context.Context, id string, opts ...RequestOption) (bool, error) {
	return c.succeeded(ctx, ServiceCatalog, datasetPath(id, ""), http.MethodDelete, opts)
}

func (c *Client) ShareDataset(ctx context.Context, id string, opts ...RequestOption) (bool, error) {
	return c.succeeded(ctx, ServiceCatalog, datasetPath(id, "share/"), http.MethodPost, opts)
}

func (c *Client) UnshareDataset(ctx context.Context, id string, opts ...RequestOption) (bool, error) {
	return c.succeeded(ctx, ServiceCatalog, datasetPath(id, "unshare/"), http.MethodPost, opts)
}

// UploadMmioFile uploads a file and returns the location the catalog stored
// it under, or "" when the upload did not succeed.
func (c *Client) UploadMmioFile(ctx context.Context, filename string, content io.Reader, opts ...RequestOption) (string, error) {
	form := NewMultipart().AddFile("file", filename, content)
	result, err := Request[nextgen.UploadResult](ctx, c, ServiceCatalog, "/mmio/", http.MethodPost, form, opts...)
	if err != nil || result == nil {
		return "", err
	}
	return result.Location, nil
}

// GetMmioFile returns the file contents, or nil when the file could not be
// fetched.
func (c *Client) GetMmioFile(ctx context.Context, filename string, opts ...RequestOption) ([]byte, error) {
	call := Call{Service: ServiceCatalog, Path: mmioPath(filename), Method: http.MethodGet, Raw: true}
	for _, opt := range opts {
		opt(&call)
	}
	reply, err := c.Do(ctx, call)
	if err != nil || reply.Outcome != OutcomeOK {
		return nil, err
	}
	return reply.Body, nil
}

func (c *Client) DeleteMmioFile(ctx context.Context, filename string, opts ...RequestOption) (bool, error) {
	return c.succeeded(ctx, ServiceCatalog, mmioPath(filename), http.MethodDelete, opts)
}

func (c *Client) document(ctx context.Context, service Service, path, method string, body any, opts []RequestOption) (jsonld.Node, error) {
	call := Call{Service: service, Path: path, Method: method, Body: body}
	for _, opt := range opts {
		opt(&call)
	}
	reply, err := c.Do(ctx, call)
	if err != nil || reply.Outcome != OutcomeOK {
		return nil, err
	}
	doc, err := jsonld.Parse(reply.Body)
	if err != nil {
		return nil, c.undecodable(ctx, call, err)
	}
	return doc, nil
}

// succeeded reports true unless the call ended in the null sentinel. A failed
// DELETE is not null and therefore counts as done.
func (c *Client) succeeded(ctx context.Context, service Service, path, method string, opts []RequestOption) (bool, error) {
	call := Call{Service: service, Path: path, Method: method}
	for _, opt := range opts {
		opt(&call)
	}
	reply, err := c.Do(ctx, call)
	if err != nil {
		return false, err
	}
	return !reply.Null(), nil
}

func datasetPath(id, suffix string) string {
	return "/datasets/" + url.PathEscape(id) + "/" + suffix
}

func mmioPath(filename string) string {
	return "/mmio/" + url.PathEscape(filename) + "/"
}
