package dto

// ImportRowError reports a rejected spreadsheet row (1-based, header excluded)
type ImportRowError struct {
	Row     int    `json:"row" example:"3"`
	Message string `json:"message" example:"unknown faculty \"XYZ\""`
}

// ImportResult summarises a reference data import
type ImportResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []ImportRowError `json:"errors"`
}
