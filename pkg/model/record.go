package model

import "fmt"

// MeasureColumn identifies one of the monetary/weight columns that go through
// locale numeric normalisation.
type MeasureColumn int

const (
	GrossWeight MeasureColumn = iota
	NetWeight
	Naban
	Units
	FOBValue
	Freight
	CIFValuePerKg
	CIFValuePesos
	CustomsValue
	AdjustmentValue
	VATBase
	TotalVAT
	Insurance
	OtherCharges
	TariffRate

	MeasureCount
)

var measureCodes = [MeasureCount]string{
	GrossWeight:     "pbk",
	NetWeight:       "pnk",
	Naban:           "naban",
	Units:           "canu",
	FOBValue:        "vafodo",
	Freight:         "flete",
	CIFValuePerKg:   "vacid",
	CIFValuePesos:   "vacip",
	CustomsValue:    "vadua",
	AdjustmentValue: "vrajus",
	VATBase:         "baseiva",
	TotalVAT:        "totalivayo",
	Insurance:       "seguros",
	OtherCharges:    "otrosg",
	TariffRate:      "porara",
}

// Code returns the source column code
func (m MeasureColumn) Code() string {
	if m < 0 || m >= MeasureCount {
		return fmt.Sprintf("measure(%d)", int(m))
	}
	return measureCodes[m]
}

// MeasureColumns returns every measure column in declaration order
func MeasureColumns() []MeasureColumn {
	cols := make([]MeasureColumn, MeasureCount)
	for i := range cols {
		cols[i] = MeasureColumn(i)
	}
	return cols
}

// RawRecord is one source row as text, before any coercion.
// Empty strings mean the cell was blank or the column is absent.
type RawRecord struct {
	Line             int
	Period           string
	CustomsOffice    string
	OriginCountry    string
	DeclarantCountry string
	ImportRegime     string
	Measures         [MeasureCount]string
}

// RawBatch is a set of raw records together with the source layout they came from
type RawBatch struct {
	Metadata *TableMetadata
	Records  []RawRecord
}

// NullFloat is a float that may be missing
type NullFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value
func Some(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// CleanRecord is a raw record whose measures have been coerced to floats
type CleanRecord struct {
	Line             int
	Period           string
	CustomsOffice    string
	OriginCountry    string
	DeclarantCountry string
	ImportRegime     string
	Measures         [MeasureCount]NullFloat
}
