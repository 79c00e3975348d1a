package models

type SearchResult struct {
	Notes  []Note  `json:"notes"`
	Images []Image `json:"images"`
}
