package jsonld

import (
	"encoding/json"

	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/schemas"
)

// Compactor normalises outgoing filters by compacting them against their own
// @context.
type Compactor struct {
	proc *ld.JsonLdProcessor
}

func NewCompactor() *Compactor {
	return &Compactor{proc: ld.NewJsonLdProcessor()}
}

// Compact returns the compacted form of filter. The result always carries a
// filters sequence, even when compaction collapsed it to a single object or
// dropped it.
func (c *Compactor) Compact(filter nextgen.SearchFilter) (nextgen.SearchFilter, error) {
	if filter.Filters == nil {
		filter.Filters = []nextgen.FilterClause{}
	}
	if filter.Type == "" {
		filter.Type = schemas.TypeFilters
	}

	doc, err := toGeneric(filter)
	if err != nil {
		return nextgen.SearchFilter{}, err
	}
	context := make(map[string]interface{}, len(filter.Context))
	for k, v := range filter.Context {
		context[k] = v
	}

	opts := ld.NewJsonLdOptions("")
	compacted, err := c.proc.Compact(doc, context, opts)
	if err != nil {
		return nextgen.SearchFilter{}, errors.Wrap(err, "jsonld: compact filter")
	}

	result := nextgen.SearchFilter{
		Context: filter.Context,
		Type:    schemas.TypeFilters,
		Filters: []nextgen.FilterClause{},
	}
	if t, ok := compacted["@type"].(string); ok {
		result.Type = t
	}
	switch fs := compacted["filters"].(type) {
	case []interface{}:
		for _, f := range fs {
			if m, ok := f.(map[string]interface{}); ok {
				result.Filters = append(result.Filters, nextgen.FilterClause(m))
			}
		}
	case map[string]interface{}:
		result.Filters = append(result.Filters, nextgen.FilterClause(fs))
	}
	return result, nil
}

func toGeneric(v any) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "jsonld: marshal filter")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "jsonld: unmarshal filter")
	}
	return m, nil
}
