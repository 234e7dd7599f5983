package usecase

import (
	"context"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/jsonld"
)

// SearchQuery is what the search pages submit.
type SearchQuery struct {
	Filters     map[string]any `json:"filters"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Biobank     string         `json:"biobank"`
	LastUpdate  string         `json:"last_update"`
	All         string         `json:"all"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	Language    string         `json:"language"`
}

type SearchResult struct {
	nextgen.TableData
	Catalogs []nextgen.CatalogStatus `json:"catalogs"`
}

type SearchOptions struct {
	Paginate     bool
	DefaultLimit int
	Language     string
}

type SearchUsecase struct {
	gateway CatalogGateway
	opts    SearchOptions
}

func NewSearchUsecase(gateway CatalogGateway, opts SearchOptions) *SearchUsecase {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = 10
	}
	if opts.Language == "" {
		opts.Language = nextgen.DefaultLanguage
	}
	return &SearchUsecase{gateway: gateway, opts: opts}
}

// Filter encodes a query the way every search endpoint expects it.
func (uc *SearchUsecase) Filter(q SearchQuery) nextgen.SearchFilter {
	return jsonld.BuildSearchFilter(jsonld.FilterParams{
		Filters:     q.Filters,
		Name:        q.Name,
		Description: q.Description,
		Biobank:     q.Biobank,
		LastUpdate:  q.LastUpdate,
		All:         q.All,
		Page:        q.Page,
		Limit:       uc.limit(q),
		Paginate:    uc.opts.Paginate,
	})
}

// Marketplace searches every catalog of the federation.
func (uc *SearchUsecase) Marketplace(ctx context.Context, q SearchQuery) (SearchResult, error) {
	doc, err := uc.gateway.SearchDecentralized(ctx, uc.Filter(q))
	if err != nil {
		return SearchResult{}, err
	}
	return uc.fromResponse(doc, q), nil
}

// LocalSearch searches the catalog attached to this node.
func (uc *SearchUsecase) LocalSearch(ctx context.Context, q SearchQuery) (SearchResult, error) {
	doc, err := uc.gateway.SearchLocalCatalog(ctx, uc.Filter(q))
	if err != nil {
		return SearchResult{}, err
	}
	return uc.fromResponse(doc, q), nil
}

// LocalCatalog lists the local catalog directly from the catalog service.
func (uc *SearchUsecase) LocalCatalog(ctx context.Context, q SearchQuery) (SearchResult, error) {
	filter := uc.Filter(q)
	doc, err := uc.gateway.GetLocalCatalog(ctx, &filter)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		TableData: jsonld.ProjectSearchResults(doc, q.Page, uc.limit(q), uc.language(q)),
		Catalogs:  []nextgen.CatalogStatus{},
	}, nil
}

func (uc *SearchUsecase) fromResponse(doc jsonld.Node, q SearchQuery) SearchResult {
	result := SearchResult{Catalogs: []nextgen.CatalogStatus{}}
	if metadata := jsonld.Metadata(doc); metadata != nil && metadata.Catalogs != nil {
		result.Catalogs = metadata.Catalogs
	}
	result.TableData = jsonld.ProjectSearchResults(doc, q.Page, uc.limit(q), uc.language(q))
	return result
}

func (uc *SearchUsecase) limit(q SearchQuery) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return uc.opts.DefaultLimit
}

func (uc *SearchUsecase) language(q SearchQuery) string {
	if q.Language != "" {
		return q.Language
	}
	return uc.opts.Language
}
