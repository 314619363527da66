package features

import (
	"math"
	"sort"

	"github.com/David-Botos/import-cif/pkg/model"
)

// Valid month range for single-record requests
const (
	MinMonth = 1
	MaxMonth = 12
)

// CyclicalMonth places a month on the unit circle so that December and
// January are neighbours. Both the batch and the single-record path call it.
func CyclicalMonth(month int) (sin, cos float64) {
	angle := 2 * math.Pi * float64(month) / 12
	return math.Sin(angle), math.Cos(angle)
}

func newFeatureVector(month int, customsGroup, originArea, importType string) model.FeatureVector {
	s, c := CyclicalMonth(month)
	return model.FeatureVector{
		Month:        month,
		SinMonth:     s,
		CosMonth:     c,
		CustomsGroup: customsGroup,
		OriginArea:   originArea,
		ImportType:   importType,
	}
}

// EngineerOne validates one resolved request and builds its feature vector.
// Month is checked first, then each categorical against the vocabulary.
func EngineerOne(vocab model.Vocabulary, month int, customsGroup, originArea, importType string) (model.FeatureVector, error) {
	if month < MinMonth || month > MaxMonth {
		return model.FeatureVector{}, &OutOfRangeError{Field: model.FieldMonth, Value: month, Min: MinMonth, Max: MaxMonth}
	}
	if !vocab.HasCustomsGroup(customsGroup) {
		return model.FeatureVector{}, &VocabularyError{Field: model.FieldCustomsGroup, Value: customsGroup}
	}
	if !vocab.HasOriginArea(originArea) {
		return model.FeatureVector{}, &VocabularyError{Field: model.FieldOriginArea, Value: originArea}
	}
	if !vocab.HasImportType(importType) {
		return model.FeatureVector{}, &VocabularyError{Field: model.FieldImportType, Value: importType}
	}
	return newFeatureVector(month, customsGroup, originArea, importType), nil
}

// BuildVocabulary collects the sorted distinct categorical values of a sample set
func BuildVocabulary(samples []model.Sample) model.Vocabulary {
	groups := make(map[string]struct{})
	areas := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, s := range samples {
		groups[s.Features.CustomsGroup] = struct{}{}
		areas[s.Features.OriginArea] = struct{}{}
		types[s.Features.ImportType] = struct{}{}
	}
	return model.Vocabulary{
		CustomsGroups: sortedKeys(groups),
		OriginAreas:   sortedKeys(areas),
		ImportTypes:   sortedKeys(types),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
