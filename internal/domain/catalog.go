package domain

// ============================================================
// Car reference data: GET /api/cars/*
// ============================================================

// MakeList is the body of GET /api/cars/makes.
type MakeList struct {
	Makes []string `json:"makes"`
}

// ModelList is the body of GET /api/cars/models.
type ModelList struct {
	Make   string   `json:"make"`
	Models []string `json:"models"`
}

// YearList is the body of GET /api/cars/years.
type YearList struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Years []int  `json:"years"`
}

// TrimList is the body of GET /api/cars/trims.
type TrimList struct {
	Make  string   `json:"make"`
	Model string   `json:"model"`
	Trims []string `json:"trims"`
}

// BodyTypeList is the body of GET /api/cars/all-body-types.
type BodyTypeList struct {
	BodyTypes []string `json:"body_types"`
}
