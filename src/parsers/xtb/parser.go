package xtb

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/utils"
)

const (
	sheetName = "CASH OPERATION HISTORY"
	// currencyCell holds the statement currency in every XTB export variant
	// seen so far, English and Polish alike.
	currencyCell = "F6"
)

// headerAliases maps localized XTB column headers onto canonical field names.
// XTB exports the same layout under English and Polish headers depending on
// the account language.
var headerAliases = map[string]string{
	"ID":        "id",
	"Type":      "type",
	"Typ":       "type",
	"Time":      "date",
	"Czas":      "date",
	"Symbol":    "symbol",
	"Ticker":    "symbol",
	"Comment":   "comment",
	"Komentarz": "comment",
	"Amount":    "amount",
	"Kwota":     "amount",
}

// XTBParser implements parsers.StatementParser for XTB cash-operation XLSX
// exports.
type XTBParser struct{}

func NewParser() *XTBParser {
	return &XTBParser{}
}

// Parse reads an XTB XLSX export and converts its cash-operation rows into
// RawTransactions. The header row is located by its "ID" cell rather than a
// fixed offset because XTB prepends a variable-height account summary block.
func (p *XTBParser) Parse(file io.Reader) ([]models.RawTransaction, string, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, "", fmt.Errorf("xtb parser: failed to open workbook: %w", err)
	}
	defer workbook.Close()

	statementCurrency, err := workbook.GetCellValue(sheetName, currencyCell)
	if err == nil {
		statementCurrency = strings.TrimSpace(statementCurrency)
	}
	if statementCurrency == "" {
		logger.L.Warn("XTB Parser: statement currency cell is empty", "cell", currencyCell)
	}

	rows, err := workbook.GetRows(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("xtb parser: sheet '%s' not found: %w", sheetName, err)
	}

	headerRow, columns := findHeader(rows)
	if columns == nil {
		return nil, "", fmt.Errorf("xtb parser: no header row with an 'ID' column in sheet '%s'", sheetName)
	}
	for _, required := range []string{"type", "date", "symbol", "comment", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, "", &models.MissingFieldError{Field: required}
		}
	}

	var transactions []models.RawTransaction
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		id := cellAt(row, columns["id"])
		if id == "" || strings.EqualFold(id, "Total") {
			continue
		}

		tx, err := p.parseRow(row, columns)
		if err != nil {
			return nil, "", err
		}
		if tx == nil {
			continue
		}
		transactions = append(transactions, *tx)
	}

	logger.L.Info("Parsed XTB statement",
		"rows", len(transactions),
		"statementCurrency", statementCurrency)
	return transactions, statementCurrency, nil
}

// parseRow converts one data row. Rows with unparseable dates are skipped
// with a warning; a malformed amount on a dividend-related row is fatal
// because it would silently understate the tax base.
func (p *XTBParser) parseRow(row []string, columns map[string]int) (*models.RawTransaction, error) {
	dateStr := cellAt(row, columns["date"])
	date := utils.ParseStatementDate(dateStr)
	if date.IsZero() {
		logger.L.Warn("XTB Parser: skipping row with unparseable date",
			"date", dateStr, "id", cellAt(row, columns["id"]))
		return nil, nil
	}

	kind := models.KindFromLabel(cellAt(row, columns["type"]))
	instrument := cellAt(row, columns["symbol"])
	amountStr := cellAt(row, columns["amount"])

	amount, err := strconv.ParseFloat(strings.ReplaceAll(amountStr, ",", "."), 64)
	if err != nil {
		if kind == models.KindDividend || kind == models.KindWithholdingTax {
			return nil, &models.MalformedAmountError{
				Value:      amountStr,
				Instrument: instrument,
				Date:       date,
				Err:        err,
			}
		}
		logger.L.Warn("XTB Parser: skipping non-dividend row with malformed amount",
			"amount", amountStr, "instrument", instrument)
		return nil, nil
	}

	return &models.RawTransaction{
		Date:       date,
		Instrument: instrument,
		Kind:       kind,
		Amount:     amount,
		Comment:    cellAt(row, columns["comment"]),
	}, nil
}

// findHeader scans for the first row containing an "ID" cell and resolves the
// canonical column indices from its localized headers.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		columns := make(map[string]int)
		for j, cell := range row {
			if canonical, ok := headerAliases[strings.TrimSpace(cell)]; ok {
				if _, taken := columns[canonical]; !taken {
					columns[canonical] = j
				}
			}
		}
		if _, ok := columns["id"]; ok {
			return i, columns
		}
	}
	return -1, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
