package jsonld

import (
	"encoding/json"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/schemas"
)

const defaultLimit = 10

// ProjectDataset flattens a dcat:Dataset into a table row.
func ProjectDataset(ds *Object, lang string) nextgen.DatasetRow {
	themes := []string{}
	for _, t := range Seq(ds.Get("dcat:theme")) {
		theme, _ := t.(*Object)
		themes = append(themes, ExtractLanguageValue(theme.Get("skos:prefLabel"), lang))
	}

	id := ExtractValue(ds.Get("dcterms:identifier"))
	if id == "" && ds != nil {
		id = ds.ID
	}

	return nextgen.DatasetRow{
		ID:               id,
		Name:             ExtractLanguageValue(ds.Get("dcterms:title"), lang),
		Description:      ExtractLanguageValue(ds.Get("dcterms:description"), lang),
		Biobank:          ExtractByPath(ds, "dspace:biobank"),
		LastUpdate:       ExtractByPath(ds, "dcterms:modified"),
		Issued:           ExtractByPath(ds, "dcterms:issued"),
		Publisher:        ExtractByPath(AsObject(ds.Get("dcterms:publisher")), "foaf:name"),
		License:          valueOrID(ds.Get("dcterms:license")),
		IsDeleted:        flag(ds, "isDeleted") == "true",
		IsShared:         flag(ds, "isShared") == "true",
		MetadataFilename: flag(ds, "metadataFilename"),
		Keyword:          ExtractValue(ds.Get("dcat:keyword")),
		Themes:           themes,
		Distribution:     projectDistribution(ds.Get("dcat:distribution"), lang),
	}
}

// flag reads a dspace property that services emit either bare or prefixed.
func flag(ds *Object, name string) string {
	if n := ds.Get(name); n != nil {
		return ExtractValue(n)
	}
	return ExtractValue(ds.Get("dspace:" + name))
}

func projectDistribution(n Node, lang string) *nextgen.DistributionSummary {
	items := Seq(n)
	if len(items) == 0 {
		return nil
	}
	dist, _ := items[0].(*Object)
	availability := AsObject(dist.Get("dcatap:availability"))
	return &nextgen.DistributionSummary{
		Availability: ExtractLanguageValue(availability.Get("skos:prefLabel"), lang),
		Description:  ExtractLanguageValue(dist.Get("dcterms:description"), lang),
		AccessURL:    valueOrID(dist.Get("dcat:accessURL")),
		ByteSize:     ExtractValue(dist.Get("dcat:byteSize")),
		Format:       valueOrID(dist.Get("dcat:format")),
	}
}

// ProjectSearchResults collects every dataset of every catalog in a search or
// catalog document. Catalogs may arrive in an @graph sequence, in a results
// sequence or as the bare document. All rows are returned; pagination only
// describes them.
func ProjectSearchResults(n Node, page, limit int, lang string) nextgen.TableData {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}

	rows := []nextgen.DatasetRow{}
	for _, item := range topLevel(n) {
		obj, ok := item.(*Object)
		if !ok || obj == nil {
			continue
		}
		switch {
		case obj.HasType(schemas.TypeCatalog):
			title := ExtractLanguageValue(obj.Get("dcterms:title"), lang)
			for _, d := range Seq(obj.Get("dcat:dataset")) {
				ds, ok := d.(*Object)
				if !ok || !ds.HasType(schemas.TypeDataset) {
					continue
				}
				row := ProjectDataset(ds, lang)
				if row.Biobank == "" {
					row.Biobank = title
				}
				rows = append(rows, row)
			}
		case obj.HasType(schemas.TypeDataset):
			rows = append(rows, ProjectDataset(obj, lang))
		}
	}

	total := len(rows)
	pagination := nextgen.Pagination{
		TotalItems: total,
		Page:       page,
		Limit:      limit,
	}
	if total > 0 {
		pagination.TotalPages = (total + limit - 1) / limit
		pagination.HasNext = page < pagination.TotalPages
		pagination.HasPrev = page > 1
	}
	return nextgen.TableData{Data: rows, Pagination: pagination}
}

func topLevel(n Node) []Node {
	switch n := n.(type) {
	case Sequence:
		return n
	case *Object:
		if n == nil {
			return nil
		}
		if graph := n.Get("@graph"); graph != nil {
			return Seq(graph)
		}
		if results := n.Get("results"); results != nil {
			return Seq(results)
		}
		return []Node{n}
	}
	return nil
}

// FindDataset returns the first dcat:dataset property found in the document.
func FindDataset(n Node) Node {
	for _, item := range topLevel(n) {
		obj, ok := item.(*Object)
		if !ok {
			continue
		}
		if ds := obj.Get("dcat:dataset"); ds != nil {
			return ds
		}
	}
	return nil
}

// Metadata decodes the "metadata" member of a search reply. It returns nil
// when the document carries none or it does not have the expected shape.
func Metadata(n Node) *nextgen.SearchMetadata {
	obj := AsObject(n)
	raw := Raw(obj.Get("metadata"))
	if raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var metadata nextgen.SearchMetadata
	if err := json.Unmarshal(b, &metadata); err != nil {
		return nil
	}
	return &metadata
}
