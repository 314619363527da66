package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableMetadata(t *testing.T) {
	tm := NewTableMetadata("public", "imports", []string{"FECH", " adua ", "paispro", "vacid"})

	assert.Equal(t, "public.imports", tm.FullName())
	assert.True(t, tm.HasColumn("fech"))
	assert.True(t, tm.HasColumn("ADUA"))
	assert.False(t, tm.HasColumn("regimen"))
	assert.Equal(t, "FECH", tm.GetColumnByName("fech").Name)
	assert.Nil(t, tm.GetColumnByName("pbk"))

	assert.Equal(t, []string{"regimen", "seguros", "pbk"}, tm.MissingColumns())
	assert.Equal(t, "imports", NewTableMetadata("", "imports", nil).FullName())
}

func TestMeasureCodes(t *testing.T) {
	seen := make(map[string]bool)
	for _, col := range MeasureColumns() {
		code := col.Code()
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], code)
		seen[code] = true
	}
	assert.Len(t, seen, int(MeasureCount))
	assert.Equal(t, "vacid", CIFValuePerKg.Code())
	assert.Equal(t, "measure(99)", MeasureColumn(99).Code())
}

func TestVocabularyLookup(t *testing.T) {
	v := Vocabulary{
		CustomsGroups: []string{"Aereas y Terrestres", "Maritima y Fluvial"},
		OriginAreas:   []string{"América", "Asia"},
		ImportTypes:   []string{"Otros"},
	}
	assert.True(t, v.HasCustomsGroup("Maritima y Fluvial"))
	assert.False(t, v.HasCustomsGroup("Maritima"))
	assert.True(t, v.HasOriginArea("América"))
	assert.False(t, v.HasOriginArea("Europa"))
	assert.True(t, v.HasImportType("Otros"))
	assert.False(t, v.Empty())
	assert.True(t, Vocabulary{}.Empty())
}
