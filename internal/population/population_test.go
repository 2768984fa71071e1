package population

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/auditops/popaudit/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "pop.xlsx")
	err := f.Save(path)
	require.NoError(t, err)
	return path
}

func TestLoad_SectionsBySheetName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Koszty": {
			{"Pozycja", "Numer dokumentu", "Data dokumentu", "Wartość netto dokumentu", "Kontrahent"},
			{"K1", "FV/1/2024", "2024-01-10", "1 234,56", "ACME Sp. z o.o."},
			{"K2", "FV/2/2024", "15.01.2024", "200,00", "Globex"},
		},
		"Przychody": {
			{"Pozycja", "Numer", "Data", "Netto"},
			{"P1", "S/9/2024", "2024-02-01", "500,00"},
		},
	})

	ledger, err := Load(path, DefaultAliases())
	require.NoError(t, err)
	require.Len(t, ledger.Records, 3)
	assert.Empty(t, ledger.Issues)

	byID := map[string]model.PopulationRecord{}
	for _, r := range ledger.Records {
		byID[r.PositionID] = r
	}

	k1 := byID["K1"]
	assert.Equal(t, model.SectionCosts, k1.Section)
	assert.Equal(t, "FV/1/2024", k1.Number)
	assert.Equal(t, "2024-01-10", k1.Date)
	assert.Equal(t, "1234.56", k1.NetAmount.String())
	assert.Equal(t, "ACME Sp. z o.o.", k1.Counterparty)

	assert.Equal(t, "2024-01-15", byID["K2"].Date, "day-first date normalized")
	assert.Equal(t, model.SectionRevenue, byID["P1"].Section)
}

func TestLoad_FallbackFirstSheetAsCosts(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Arkusz1": {
			{"numer", "data", "netto"},
			{"FV/1/2024", "2024-01-10", "100,00"},
		},
	})

	ledger, err := Load(path, DefaultAliases())
	require.NoError(t, err)
	require.Len(t, ledger.Records, 1)
	assert.Equal(t, model.SectionCosts, ledger.Records[0].Section)
}

func TestLoad_PositionIDFallsBackToOrdinal(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Koszty": {
			{"numer", "data", "netto"},
			{"FV/1/2024", "2024-01-10", "100,00"},
			{"FV/2/2024", "2024-01-11", "200,00"},
		},
	})

	ledger, err := Load(path, DefaultAliases())
	require.NoError(t, err)
	require.Len(t, ledger.Records, 2)
	assert.Equal(t, "1", ledger.Records[0].PositionID)
	assert.Equal(t, "2", ledger.Records[1].PositionID)
}

func TestLoad_BadRowsBecomeIssues(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Koszty": {
			{"pozycja", "numer", "data", "netto"},
			{"P1", "FV/1/2024", "2024-01-10", "100,00"},
			{"P2", "FV/2/2024", "not-a-date", "200,00"},
			{"P3", "FV/3/2024", "2024-01-12", "dwieście"},
			{"", "", "", ""},
			{"P5", "FV/5/2024", "2024-01-13", "300,00"},
		},
	})

	ledger, err := Load(path, DefaultAliases())
	require.NoError(t, err)

	require.Len(t, ledger.Records, 2, "bad rows excluded from matching")
	require.Len(t, ledger.Issues, 2, "each bad row counted once")

	assert.Equal(t, 3, ledger.Issues[0].Row, "1-based spreadsheet row")
	assert.Equal(t, FieldDate, ledger.Issues[0].Field)
	assert.Equal(t, 4, ledger.Issues[1].Row)
	assert.Equal(t, FieldNet, ledger.Issues[1].Field)
}

func TestLoad_MissingRequiredColumnIsFatal(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Koszty": {
			{"pozycja", "opis", "uwagi"},
			{"P1", "cokolwiek", "x"},
		},
	})

	_, err := Load(path, DefaultAliases())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required column")
}

func TestAliasResolve_SubstringHeaders(t *testing.T) {
	cols := DefaultAliases().resolve([]string{
		"Lp.", "Numer faktury VAT", "Data wystawienia dokumentu", "Wartość netto (PLN)", "Nazwa kontrahenta",
	})
	assert.Equal(t, 1, cols[FieldNumber])
	assert.Equal(t, 2, cols[FieldDate])
	assert.Equal(t, 3, cols[FieldNet])
	assert.Equal(t, 4, cols[FieldCounterparty])
}

func TestLoadAliases_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("number:\n  - custom header\n"), 0o644))

	table, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom header"}, table[FieldNumber])
	assert.Equal(t, DefaultAliases()[FieldDate], table[FieldDate], "untouched fields keep defaults")
}

func TestLoadAliases_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mystery:\n  - kolumna\n"), 0o644))

	_, err := LoadAliases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown canonical field")
}
