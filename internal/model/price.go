package model

// PriceFlag classifies an extracted price observation.
type PriceFlag string

const (
	// FlagComparable marks a verified single-unit regular shelf price.
	FlagComparable PriceFlag = "Comparable"
	// FlagPromoOnly marks a page that only showed a promotional price.
	FlagPromoOnly PriceFlag = "Promo-only"
	// FlagNonComparable marks a price that cannot be compared unit-for-unit.
	FlagNonComparable PriceFlag = "Non-comparable"
	// FlagNoData marks an extraction that produced no usable price data.
	FlagNoData PriceFlag = "No-data"
)

// FlagFromLegacy maps the older "Regular" + comparable boolean vocabulary
// onto the four-way flag enum. Regular+comparable is the only combination
// that counts toward the average.
func FlagFromLegacy(flag string, comparable bool) PriceFlag {
	if flag == "Regular" && comparable {
		return FlagComparable
	}
	return FlagNonComparable
}

// ParseFlag normalizes a flag string from an external extractor response.
// Unknown values degrade to No-data rather than guessing comparability.
func ParseFlag(s string) PriceFlag {
	switch PriceFlag(s) {
	case FlagComparable, FlagPromoOnly, FlagNonComparable, FlagNoData:
		return PriceFlag(s)
	}
	return FlagNoData
}

// PriceRow is one extracted price observation from a single vendor page.
type PriceRow struct {
	Vendor     string    `json:"vendor"`
	Market     string    `json:"market"`
	Currency   string    `json:"currency"`
	RSV        *float64  `json:"rsv"`
	VATInfo    string    `json:"vat_info"`
	PromoPrice *float64  `json:"promo_price"`
	Flag       PriceFlag `json:"flag"`
	PackFormat *string   `json:"pack_format"`
	SourceURL  string    `json:"source_url"`
	Evidence   string    `json:"evidence"`
	Comparable bool      `json:"comparable"`
}

// Discard records a candidate URL that did not yield a price row.
// Transient marks infrastructure failures (fetch transport errors) whose
// results must not be cached; it is process-local and never serialized.
type Discard struct {
	URL       string `json:"url"`
	Reason    string `json:"reason"`
	Transient bool   `json:"-"`
}

// MasterRecord is best-effort product metadata for an identifier.
type MasterRecord struct {
	ProductName *string `json:"product_name"`
	UnitType    string  `json:"unit_type"`
	Grammage    *string `json:"grammage"`
}

// FetchedPage is the rendered content of one candidate URL. It is owned by
// a single pipeline run and never persisted.
type FetchedPage struct {
	RequestedURL string
	FinalURL     string
	HTML         string
	VisibleText  string
}

// Result is the per-identifier answer. For input-validation failures only
// EAN and Error are populated; rows and discards stay empty, never nil.
type Result struct {
	EAN         string       `json:"ean"`
	Market      string       `json:"market,omitempty"`
	Error       string       `json:"error,omitempty"`
	Master      MasterRecord `json:"master"`
	Rows        []PriceRow   `json:"rows"`
	AverageRSV  *float64     `json:"average_rsv"`
	SampleCount int          `json:"sample_count"`
	Currency    *string      `json:"currency"`
	Discards    []Discard    `json:"discards"`
	Cached      bool         `json:"cached"`
}

// BatchRequest is the request body accepted by the scrape surface.
type BatchRequest struct {
	Market string   `json:"market"`
	EANs   []string `json:"eans"`
}

// BatchResponse always carries exactly one result per requested identifier.
type BatchResponse struct {
	Market  string   `json:"market"`
	Results []Result `json:"results"`
}
