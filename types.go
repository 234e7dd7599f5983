package nextgen

const (
	MediaTypeJSONLD = "application/ld+json"
	MediaTypeJSON   = "application/json"

	DefaultVocab    = "http://data-space.org/"
	DefaultLanguage = "en"
)

// Context is a JSON-LD @context mapping prefixes to IRIs.
type Context map[string]string

// FilterClause is one entry of a search filter's "filters" sequence.
type FilterClause map[string]any

// SearchFilter is the JSON-LD document posted to the search and catalog services.
type SearchFilter struct {
	Context Context        `json:"@context"`
	Type    string         `json:"@type"`
	Filters []FilterClause `json:"filters"`
}

type CatalogStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"` // success, error
	Error  string `json:"error,omitempty"`
}

// SearchMetadata is the "metadata" member of a search reply envelope.
type SearchMetadata struct {
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Catalogs []CatalogStatus `json:"catalogs"`
}

// ApiError is the body the services send along with a non-2xx status.
type ApiError struct {
	Detail      string         `json:"detail"`
	Type        string         `json:"@type,omitempty"`
	Title       map[string]any `json:"dcterms:title,omitempty"`
	Description map[string]any `json:"dcterms:description,omitempty"`
	StatusCode  int            `json:"http:statusCode,omitempty"`
}

// Message picks the most specific human readable text of the error body.
func (e ApiError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if v, ok := e.Description["@value"].(string); ok && v != "" {
		return v
	}
	if v, ok := e.Title["@value"].(string); ok && v != "" {
		return v
	}
	return ""
}

type DistributionSummary struct {
	Availability string `json:"availability"`
	Description  string `json:"description"`
	AccessURL    string `json:"accessURL"`
	ByteSize     string `json:"byteSize"`
	Format       string `json:"format"`
}

// DatasetRow is the flattened projection of a dcat:Dataset used by tables.
type DatasetRow struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Biobank          string               `json:"biobank"`
	LastUpdate       string               `json:"last_update"`
	Issued           string               `json:"issued"`
	Publisher        string               `json:"publisher"`
	License          string               `json:"license"`
	IsDeleted        bool                 `json:"isDeleted"`
	IsShared         bool                 `json:"isShared"`
	MetadataFilename string               `json:"metadataFilename"`
	Keyword          string               `json:"keyword"`
	Themes           []string             `json:"themes"`
	Distribution     *DistributionSummary `json:"distribution"`
}

type Pagination struct {
	TotalItems int  `json:"total_items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type TableData struct {
	Data       []DatasetRow `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// UploadResult is returned by the catalog service after an MMIO upload.
type UploadResult struct {
	Location string `json:"Location"`
}

type HealthStatus struct {
	Status string `json:"status"`
}

// Severity classifies a user facing notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)
