package schemas

// Namespaces used by the catalog and search services.
const (
	DCAT    string = "http://www.w3.org/ns/dcat#"
	DCTerms string = "http://purl.org/dc/terms/"
	DSpace  string = "http://data-space.org/"
	Med     string = "http://med.example.org/"
	FOAF    string = "http://xmlns.com/foaf/0.1/"
	SKOS    string = "http://www.w3.org/2004/02/skos/core#"
	DCATAP  string = "http://data.europa.eu/r5r/"
	XSD     string = "http://www.w3.org/2001/XMLSchema#"
)

// Compact type names as they appear in the services' documents.
const (
	TypeCatalog          string = "dcat:Catalog"
	TypeDataset          string = "dcat:Dataset"
	TypeDistribution     string = "dcat:Distribution"
	TypeRecord           string = "med:Record"
	TypeFilters          string = "Filters"
	TypeSearchFilter     string = "SearchFilter"
	TypePaginationFilter string = "PaginationFilter"
)

// Prefixes maps the compact prefixes above to their namespaces.
var Prefixes = map[string]string{
	"dcat":    DCAT,
	"dcterms": DCTerms,
	"dspace":  DSpace,
	"med":     Med,
	"foaf":    FOAF,
	"skos":    SKOS,
	"dcatap":  DCATAP,
	"xsd":     XSD,
}

// Expand turns a compact IRI into its full form. Unknown prefixes are
// returned unchanged.
func Expand(curie string) string {
	for i := 0; i < len(curie); i++ {
		if curie[i] != ':' {
			continue
		}
		if ns, ok := Prefixes[curie[:i]]; ok {
			return ns + curie[i+1:]
		}
		break
	}
	return curie
}
