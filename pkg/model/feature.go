package model

import "sort"

// Feature field names, shared by the artifact, the API and error messages
const (
	FieldMonth        = "month"
	FieldSinMonth     = "sin_month"
	FieldCosMonth     = "cos_month"
	FieldCustomsGroup = "customs_group"
	FieldOriginArea   = "origin_area"
	FieldImportType   = "import_type"
)

// FeatureVector is the model-facing representation of one import record
type FeatureVector struct {
	Month        int     `json:"month"`
	SinMonth     float64 `json:"sin_month"`
	CosMonth     float64 `json:"cos_month"`
	CustomsGroup string  `json:"customs_group"`
	OriginArea   string  `json:"origin_area"`
	ImportType   string  `json:"import_type"`
}

// Sample is a feature vector paired with its training target
type Sample struct {
	Line     int
	Features FeatureVector
	Target   float64
}

// Vocabulary holds the categorical values a model was trained on, each sorted
type Vocabulary struct {
	CustomsGroups []string `json:"customs_groups"`
	OriginAreas   []string `json:"origin_areas"`
	ImportTypes   []string `json:"import_types"`
}

// HasCustomsGroup reports whether the group was seen in training
func (v Vocabulary) HasCustomsGroup(s string) bool { return containsSorted(v.CustomsGroups, s) }

// HasOriginArea reports whether the area was seen in training
func (v Vocabulary) HasOriginArea(s string) bool { return containsSorted(v.OriginAreas, s) }

// HasImportType reports whether the import type was seen in training
func (v Vocabulary) HasImportType(s string) bool { return containsSorted(v.ImportTypes, s) }

// Empty reports whether any field has no values
func (v Vocabulary) Empty() bool {
	return len(v.CustomsGroups) == 0 || len(v.OriginAreas) == 0 || len(v.ImportTypes) == 0
}

func containsSorted(values []string, s string) bool {
	i := sort.SearchStrings(values, s)
	return i < len(values) && values[i] == s
}

// Metrics are regression evaluation scores on the held-out split
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}
