package models

// YearSummary is a per-year aggregate over budget records
type YearSummary struct {
	Year           int     `json:"year"`
	TotalAllocated float64 `json:"total_allocated"`
	TotalUtilized  float64 `json:"total_utilized"`
	Count          int     `json:"count"`
}

// SectorSummary is a per-(sector, year) aggregate over budget records
type SectorSummary struct {
	Sector         string  `json:"sector"`
	Year           int     `json:"year"`
	TotalAllocated float64 `json:"total_allocated"`
	TotalUtilized  float64 `json:"total_utilized"`
	Count          int     `json:"count"`
}
