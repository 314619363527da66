package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/model"
)

const header = "fech,adua,paispro,copaex,regimen,pbk,flete,vacid,seguros,otrosg"

func TestReadCSV(t *testing.T) {
	data := header + "\n" +
		`2405,48,215,169,C100,"1.234,5",10,"2,5",1,` + "\n" +
		"2406,90,249,169,C300,10,5,3,1,0\n"

	batch, err := ReadCSV(context.Background(), strings.NewReader(data), "imports.csv", ',')
	require.NoError(t, err)

	assert.Equal(t, "imports.csv", batch.Metadata.FullName())
	require.Len(t, batch.Records, 2)

	first := batch.Records[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "2405", first.Period)
	assert.Equal(t, "48", first.CustomsOffice)
	assert.Equal(t, "215", first.OriginCountry)
	assert.Equal(t, "169", first.DeclarantCountry)
	assert.Equal(t, "C100", first.ImportRegime)
	assert.Equal(t, "1.234,5", first.Measures[model.GrossWeight])
	assert.Equal(t, "2,5", first.Measures[model.CIFValuePerKg])
	assert.Equal(t, "", first.Measures[model.OtherCharges])
	// absent column
	assert.Equal(t, "", first.Measures[model.FOBValue])

	assert.Equal(t, 3, batch.Records[1].Line)
	assert.Equal(t, "C300", batch.Records[1].ImportRegime)
}

func TestReadCSVMissingColumns(t *testing.T) {
	data := "fech,adua,regimen,pbk\n2405,48,C1,1\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(data), "bad.csv", ',')
	require.Error(t, err)

	var dq *DataQualityError
	require.True(t, errors.As(err, &dq))
	assert.Equal(t, []string{"paispro", "vacid", "seguros"}, dq.Missing)
	assert.Contains(t, err.Error(), "paispro, vacid, seguros")
}

func TestReadCSVHeaderIsCaseInsensitive(t *testing.T) {
	data := " FECH ,ADUA,PaisPro,REGIMEN,VACID,SEGUROS,PBK\n2405,48,215,C1,1,1,1\n"

	batch, err := ReadCSV(context.Background(), strings.NewReader(data), "upper.csv", ',')
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "2405", batch.Records[0].Period)
	assert.Equal(t, "215", batch.Records[0].OriginCountry)
}

func TestReadCSVLatin1AndSemicolon(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("fech;adua;paispro;regimen;vacid;seguros;pbk;descripcion\n")
	buf.WriteString("2405;48;215;C1;1;1;1;Cami")
	buf.WriteByte(0xF3) // ó in latin-1
	buf.WriteString("n\n")
	// short row
	buf.WriteString("2405;48\n")

	batch, err := ReadCSV(context.Background(), &buf, "latin.csv", ';')
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)
	assert.True(t, batch.Metadata.HasColumn("descripcion"))
	assert.Equal(t, "", batch.Records[1].OriginCountry)
	assert.Equal(t, "", batch.Records[1].Measures[model.CIFValuePerKg])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), "empty.csv", ',')
	assert.ErrorContains(t, err, "empty")
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imports.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n2405,48,215,169,C100,1,1,1,1,1\n"), 0o600))

	src, err := NewCSVSource(path, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, path, src.Name())

	batch, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Records, 1)

	_, err = NewCSVSource(path, ";;", zap.NewNop())
	assert.Error(t, err)

	missing, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), ",", zap.NewNop())
	require.NoError(t, err)
	_, err = missing.Read(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
