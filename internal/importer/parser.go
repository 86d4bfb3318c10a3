package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/encoding"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

// Parsed is the outcome of reading one statement file.
type Parsed struct {
	Profile string
	Charset string
	Rows    []transaction.CreateParams
}

// Parse reads a statement in format. The file's encoding is detected and the
// header row located by matching the format's profiles, so preamble lines
// before the header are skipped.
func Parse(format Format, r io.Reader) (*Parsed, error) {
	def, ok := formats[format]
	if !ok {
		return nil, apperr.Validation("unknown import format %q", format)
	}

	decoded, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = def.dialect.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validation("read csv: %v", err)
	}

	profile, cols, headerIdx := detectProfile(def.profiles, rows)
	if profile == nil {
		return nil, apperr.Validation("no matching %s format found: expected columns %s",
			format, strings.Join(def.profiles[0].requiredCols(), ", "))
	}

	txs, err := parseRows(def.dialect, profile, cols, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	return &Parsed{Profile: profile.Name, Charset: decoded.Charset, Rows: txs}, nil
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[strings.ToLower(name)]; ok {
		return i
	}

	return -1
}

func detectProfile(profiles []Profile, rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.ToLower(strings.TrimSpace(cell)); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if cols.get(name) < 0 {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from the rows below the header. Rows
// without a parsable date or amount are footers and are skipped.
func parseRows(d Dialect, p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	var (
		dateIdx     = cols.get(p.DateCol)
		descIdx     = cols.get(p.DescCol)
		categoryIdx = cols.get(p.CategoryCol)
		typeIdx     = cols.get(p.TypeCol)
		methodIdx   = cols.get(p.MethodCol)
		notesIdx    = cols.get(p.NotesCol)
	)

	txs := []transaction.CreateParams{}

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(d, cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, apperr.Validation("row %d: missing description", rowNum)
		}

		amount, txType, ok := parseAmount(d, p, cols, row)
		if !ok {
			continue
		}

		if t := transaction.Type(strings.ToLower(cellValue(row, typeIdx))); t.Valid() {
			txType = t
		}

		method := p.PaymentMethod
		if m := transaction.PaymentMethod(strings.ToLower(cellValue(row, methodIdx))); m.Valid() {
			method = m
		}

		txs = append(txs, transaction.CreateParams{
			Amount:         amount,
			Type:           txType,
			Category:       cellValue(row, categoryIdx),
			Description:    desc,
			RawDescription: desc,
			Date:           date,
			PaymentMethod:  method,
			Notes:          cellValue(row, notesIdx),
		})
	}

	return txs, nil
}

func parseDate(d Dialect, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range d.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(d Dialect, p *Profile, cols colIndex, row []string) (int64, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(d, cellValue(row, cols.get(p.AmountCol)))
	case amountSplit:
		return parseSplitAmount(d, cellValue(row, cols.get(p.DebitCol)), cellValue(row, cols.get(p.CreditCol)))
	}

	return 0, "", false
}

// parseSingleAmount handles one signed column: negative is an expense.
func parseSingleAmount(d Dialect, s string) (int64, transaction.Type, bool) {
	if s == "" {
		return 0, "", false
	}

	cents, err := d.ParseAmount(s)
	if err != nil || cents == 0 {
		return 0, "", false
	}

	if cents < 0 {
		return -cents, transaction.TypeExpense, true
	}

	return cents, transaction.TypeIncome, true
}

func parseSplitAmount(d Dialect, debit, credit string) (int64, transaction.Type, bool) {
	if debit != "" {
		if cents, err := d.ParseAmount(debit); err == nil && cents != 0 {
			return abs(cents), transaction.TypeExpense, true
		}
	}

	if credit != "" {
		if cents, err := d.ParseAmount(credit); err == nil && cents != 0 {
			return abs(cents), transaction.TypeIncome, true
		}
	}

	return 0, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
