package models

// FilterAll is the product filter value that disables the retrieval predicate.
const FilterAll = "ALL"

// SearchColumns is the column set requested from the label search service.
var SearchColumns = []string{
	"chunk",
	"relative_path",
	"PRODUCTNAME",
	"COMPANYNAME",
	"CATEGORY_EPA_TYPE",
	"SIGNAL_WORD",
}

// EvidenceChunk is one retrieved label-document excerpt with its metadata.
// Produced fresh per retrieval call; never persisted.
type EvidenceChunk struct {
	Chunk        string `json:"chunk"`
	RelativePath string `json:"relative_path"`
	ProductName  string `json:"PRODUCTNAME"`
	CompanyName  string `json:"COMPANYNAME"`
	Category     string `json:"CATEGORY_EPA_TYPE"`
	SignalWord   string `json:"SIGNAL_WORD"`
}

// SearchResponse is the envelope returned by the label search service.
type SearchResponse struct {
	Results []EvidenceChunk `json:"results"`
}

// Citation is a resolved pointer to an original label document: the
// deduplicated source path and a short-lived signed access URL.
type Citation struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}
