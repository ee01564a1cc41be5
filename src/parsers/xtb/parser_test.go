package xtb

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// buildStatement assembles an in-memory XTB-shaped workbook: a summary block
// above the table, the currency in F6, a header row found by its ID cell, and
// a trailing Total row.
func buildStatement(t *testing.T, currency string, header []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheetName)
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue(sheetName, "A3", "CASH OPERATION HISTORY REPORT"))
	require.NoError(t, f.SetCellValue(sheetName, currencyCell, currency))

	headerRow := 10
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheetName, cell, name))
	}
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+i)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, value))
		}
	}
	totalCell, err := excelize.CoordinatesToCellName(1, headerRow+1+len(rows))
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(sheetName, totalCell, "Total"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var englishHeader = []string{"ID", "Type", "Time", "Comment", "Symbol", "Amount"}

func TestParseEnglishStatement(t *testing.T) {
	buf := buildStatement(t, "USD", englishHeader, [][]interface{}{
		{"1001", "Dividend", "12.07.2023 09:00:00", "SBUX.US USD 0.5700/ SHR", "SBUX.US", "5.7"},
		{"1002", "Withholding Tax", "12.07.2023 09:00:00", "SBUX.US USD WHT 15%", "SBUX.US", "-0.86"},
		{"1003", "Deposit", "13.07.2023 10:00:00", "wire", "", "1000"},
	})

	parser := NewParser()
	txs, currency, err := parser.Parse(buf)
	require.NoError(t, err)
	require.Equal(t, "USD", currency)
	require.Len(t, txs, 3)

	require.Equal(t, models.KindDividend, txs[0].Kind)
	require.Equal(t, "SBUX.US", txs[0].Instrument)
	require.InDelta(t, 5.7, txs[0].Amount, 1e-9)
	require.Equal(t, "SBUX.US USD 0.5700/ SHR", txs[0].Comment)
	require.Equal(t, "2023-07-12", txs[0].Date.Format("2006-01-02"))

	require.Equal(t, models.KindWithholdingTax, txs[1].Kind)
	require.InDelta(t, -0.86, txs[1].Amount, 1e-9)

	require.Equal(t, models.KindOther, txs[2].Kind)
}

func TestParsePolishStatement(t *testing.T) {
	polishHeader := []string{"ID", "Typ", "Czas", "Komentarz", "Symbol", "Kwota"}
	buf := buildStatement(t, "PLN", polishHeader, [][]interface{}{
		{"2001", "Dywidenda", "12.07.2023 09:00:00", "0.57 USD/SHR", "SBUX.US", "22.8"},
		{"2002", "Podatek od dywidend", "12.07.2023 09:00:00", "Podatek 15%", "SBUX.US", "-3.42"},
	})

	parser := NewParser()
	txs, currency, err := parser.Parse(buf)
	require.NoError(t, err)
	require.Equal(t, "PLN", currency)
	require.Len(t, txs, 2)
	require.Equal(t, models.KindDividend, txs[0].Kind)
	require.Equal(t, models.KindWithholdingTax, txs[1].Kind)
}

func TestParseSkipsTotalAndBadDates(t *testing.T) {
	buf := buildStatement(t, "USD", englishHeader, [][]interface{}{
		{"3001", "Dividend", "12.07.2023 09:00:00", "KO.US USD 0.4600/ SHR", "KO.US", "4.6"},
		{"3002", "Deposit", "not a date", "wire", "", "100"},
	})

	parser := NewParser()
	txs, _, err := parser.Parse(buf)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "KO.US", txs[0].Instrument)
}

func TestParseMalformedDividendAmountIsFatal(t *testing.T) {
	buf := buildStatement(t, "USD", englishHeader, [][]interface{}{
		{"4001", "Dividend", "12.07.2023 09:00:00", "KO.US USD 0.4600/ SHR", "KO.US", "oops"},
	})

	parser := NewParser()
	_, _, err := parser.Parse(buf)
	require.Error(t, err)

	var malformed *models.MalformedAmountError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "KO.US", malformed.Instrument)
	require.Equal(t, "oops", malformed.Value)
}

func TestParseMissingRequiredColumnFails(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantField string
	}{
		{
			name:      "missing amount",
			header:    []string{"ID", "Type", "Time", "Comment", "Symbol"},
			wantField: "amount",
		},
		{
			name:      "missing symbol",
			header:    []string{"ID", "Type", "Time", "Comment", "Amount"},
			wantField: "symbol",
		},
		{
			name:      "missing comment",
			header:    []string{"ID", "Type", "Time", "Symbol", "Amount"},
			wantField: "comment",
		},
		{
			name:      "missing type",
			header:    []string{"ID", "Time", "Comment", "Symbol", "Amount"},
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buildStatement(t, "USD", tt.header, [][]interface{}{
				{"5001", "Dividend", "12.07.2023 09:00:00", "KO.US USD 0.4600/ SHR", "KO.US"},
			})

			parser := NewParser()
			txs, _, err := parser.Parse(buf)
			require.Error(t, err)
			require.Nil(t, txs)

			var missing *models.MissingFieldError
			require.ErrorAs(t, err, &missing)
			require.Equal(t, tt.wantField, missing.Field)
		})
	}
}

func TestParseMissingSheetFails(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	parser := NewParser()
	_, _, parseErr := parser.Parse(buf)
	require.Error(t, parseErr)
}
