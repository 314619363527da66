package cleaner

import (
	"sort"

	"github.com/David-Botos/import-cif/pkg/model"
)

// DropReason names why a row was excluded from the training batch
type DropReason string

const (
	DropMissingInsurance      DropReason = "missing_insurance"
	DropMissingGrossWeight    DropReason = "missing_gross_weight"
	DropMissingTarget         DropReason = "missing_target"
	DropUnmappedPeriod        DropReason = "unmapped_period"
	DropSentinelCustomsOffice DropReason = "sentinel_customs_office"
	DropUnmappedCustomsOffice DropReason = "unmapped_customs_office"
	DropUnmappedCustomsGroup  DropReason = "unmapped_customs_group"
	DropSentinelCountry       DropReason = "sentinel_country"
	DropUnmappedCountry       DropReason = "unmapped_country"
	DropSentinelDeclarant     DropReason = "sentinel_declarant_country"
)

// Report aggregates what happened to a batch. Row-level problems end up here
// as counts instead of errors.
type Report struct {
	RowsRead           int                       `json:"rows_read"`
	RowsKept           int                       `json:"rows_kept"`
	Dropped            map[DropReason]int        `json:"dropped"`
	DeadColumns        []string                  `json:"dead_columns"`
	MalformedValues    int                       `json:"malformed_values"`
	FilledOtherCharges int                       `json:"filled_other_charges"`
	ImputedFreight     int                       `json:"imputed_freight"`
	FallbackImportType int                       `json:"fallback_import_type"`
	FreightMean        model.NullFloat           `json:"-"`
	Operations         []model.CleaningOperation `json:"-"`
}

// NewReport creates an empty report for a batch of n rows
func NewReport(n int) *Report {
	return &Report{
		RowsRead:    n,
		Dropped:     make(map[DropReason]int),
		DeadColumns: make([]string, 0),
	}
}

// TotalDropped returns the number of dropped rows across all reasons
func (r *Report) TotalDropped() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Reasons returns the drop reasons present in the report, sorted
func (r *Report) Reasons() []DropReason {
	reasons := make([]DropReason, 0, len(r.Dropped))
	for reason := range r.Dropped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
