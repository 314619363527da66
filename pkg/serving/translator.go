package serving

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/lookup"
)

// DisplayRequest uses the dashboard vocabulary: a country name and a short
// import kind instead of an area and an import type label
type DisplayRequest struct {
	Month        int    `json:"month"`
	Country      string `json:"country"`
	CustomsGroup string `json:"customs_group"`
	ImportKind   string `json:"import_kind"`
}

// DisplayPrediction is a Prediction plus a formatted amount
type DisplayPrediction struct {
	Prediction
	Country   string `json:"country"`
	Formatted string `json:"formatted"`
}

// DisplayValueError reports a dashboard value with no translation
type DisplayValueError struct {
	Field string
	Value string
}

func (e *DisplayValueError) Error() string {
	return fmt.Sprintf("%s %q is not a known display value", e.Field, e.Value)
}

// Is makes errors.Is(err, features.ErrValidation) true
func (e *DisplayValueError) Is(target error) bool { return target == features.ErrValidation }

var displayCountries = map[string]string{
	"China":          lookup.AreaAsia,
	"India":          lookup.AreaAsia,
	"Corea del Sur":  lookup.AreaAsia,
	"Alemania":       lookup.AreaEurope,
	"Estados Unidos": lookup.AreaAmerica,
	"México":         lookup.AreaAmerica,
	"Brasil":         lookup.AreaAmerica,
}

var displayImportKinds = map[string]string{
	"Ordinaria":     lookup.ImportOrdinary,
	"Franquicia":    lookup.ImportFranchise,
	"Temporal":      lookup.ImportTemporaryReexp,
	"Reimportación": lookup.ImportReimport,
}

// Translator maps dashboard values onto the training vocabulary
type Translator struct {
	countries   map[string]string
	importKinds map[string]string
	printer     *message.Printer
}

// NewTranslator creates a translator over the fixed dashboard tables
func NewTranslator() *Translator {
	return &Translator{
		countries:   displayCountries,
		importKinds: displayImportKinds,
		printer:     message.NewPrinter(language.English),
	}
}

// Translate converts a display request into a prediction request. Customs
// groups are shared by both vocabularies and pass through unchanged.
func (t *Translator) Translate(req DisplayRequest) (Request, error) {
	area, ok := t.countries[req.Country]
	if !ok {
		return Request{}, &DisplayValueError{Field: "country", Value: req.Country}
	}
	importType, ok := t.importKinds[req.ImportKind]
	if !ok {
		return Request{}, &DisplayValueError{Field: "import_kind", Value: req.ImportKind}
	}
	return Request{
		Month:        req.Month,
		OriginArea:   area,
		CustomsGroup: req.CustomsGroup,
		ImportType:   importType,
	}, nil
}

// Format renders a prediction the way the dashboard shows it, e.g. "1,235 USD/kg"
func (t *Translator) Format(value float64) string {
	return t.printer.Sprintf("%.0f USD/kg", value)
}

// Countries lists the accepted display countries, sorted
func (t *Translator) Countries() []string {
	return sortedKeys(t.countries)
}

// ImportKinds lists the accepted display import kinds, sorted
func (t *Translator) ImportKinds() []string {
	return sortedKeys(t.importKinds)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
