package jsonld

import (
	"sort"
	"strings"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/schemas"
)

const distributionPrefix = "distribution_"

// FilterParams are the UI facing search parameters.
type FilterParams struct {
	// Filters holds the active facet values keyed by attribute name.
	Filters map[string]any

	Name        string
	Description string
	Biobank     string
	LastUpdate  string
	All         string

	Page     int
	Limit    int
	Paginate bool
}

// DefaultContext is the @context attached to every outgoing filter.
func DefaultContext() nextgen.Context {
	return nextgen.Context{
		"@vocab":  nextgen.DefaultVocab,
		"dcat":    schemas.DCAT,
		"dcterms": schemas.DCTerms,
		"dspace":  schemas.DSpace,
		"med":     schemas.Med,
		"Filters": nextgen.DefaultVocab + schemas.TypeFilters,
	}
}

// NewFilter builds an empty filter document whose context is the default
// vocabulary extended by ctx.
func NewFilter(ctx nextgen.Context, clauses []nextgen.FilterClause) nextgen.SearchFilter {
	merged := nextgen.Context{"@vocab": nextgen.DefaultVocab}
	for k, v := range ctx {
		merged[k] = v
	}
	if clauses == nil {
		clauses = []nextgen.FilterClause{}
	}
	return nextgen.SearchFilter{
		Context: merged,
		Type:    schemas.TypeFilters,
		Filters: clauses,
	}
}

// BuildSearchFilter encodes the UI parameters as a JSON-LD filter document.
//
// Format toggles are merged into a single distribution clause, the sharing
// flag becomes an assertion on the dataset itself and every other attribute
// becomes a med:Record in the dataset's extra metadata.
//
// Clauses use prefixed names here. The wire form is the one Compactor
// produces: dspace terms fall under @vocab and go out bare (isShared,
// extraMetadata) and a single extra metadata record collapses to an object.
func BuildSearchFilter(params FilterParams) nextgen.SearchFilter {
	keys := make([]string, 0, len(params.Filters))
	for key := range params.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		formats []string
		shared  any
		records []any
	)
	for _, key := range keys {
		value := params.Filters[key]
		if value == nil {
			continue
		}
		if b, ok := value.(bool); ok && !b {
			continue
		}
		switch {
		case strings.HasPrefix(key, distributionPrefix):
			if format := strings.ToUpper(strings.TrimPrefix(key, distributionPrefix)); format != "" {
				formats = append(formats, format)
			}
		case key == "isShared" || key == "dspace:isShared":
			shared = value
		default:
			name := key
			if !strings.Contains(name, ":") {
				name = "med:" + name
			}
			records = append(records, map[string]any{
				"@type": schemas.TypeRecord,
				name:    value,
			})
		}
	}

	clauses := []nextgen.FilterClause{}
	if len(formats) > 0 {
		var format any = formats[0]
		if len(formats) > 1 {
			list := make([]any, len(formats))
			for i, f := range formats {
				list[i] = f
			}
			format = list
		}
		clauses = append(clauses, nextgen.FilterClause{
			"@type": schemas.TypeDataset,
			"dcat:distribution": map[string]any{
				"@type":       schemas.TypeDistribution,
				"dcat:format": format,
			},
		})
	}
	if shared != nil {
		clauses = append(clauses, nextgen.FilterClause{
			"@type":           schemas.TypeDataset,
			"dspace:isShared": shared,
		})
	}
	if len(records) > 0 {
		clauses = append(clauses, nextgen.FilterClause{
			"@type":                schemas.TypeDataset,
			"dspace:extraMetadata": records,
		})
	}
	if text := textClause(params); text != nil {
		clauses = append(clauses, text)
	}
	if params.Paginate {
		page, limit := params.Page, params.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultLimit
		}
		clauses = append(clauses, nextgen.FilterClause{
			"@type":           schemas.TypePaginationFilter,
			"dspace:page":     page,
			"dspace:pageSize": limit,
		})
	}

	return nextgen.SearchFilter{
		Context: DefaultContext(),
		Type:    schemas.TypeFilters,
		Filters: clauses,
	}
}

func textClause(params FilterParams) nextgen.FilterClause {
	clause := nextgen.FilterClause{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			clause[key] = value
		}
	}
	set("dcterms:title", params.Name)
	set("dcterms:description", params.Description)
	set("dspace:biobank", params.Biobank)
	set("dcterms:modified", params.LastUpdate)
	set("dspace:search", params.All)
	if len(clause) == 0 {
		return nil
	}
	clause["@type"] = schemas.TypeSearchFilter
	return clause
}
