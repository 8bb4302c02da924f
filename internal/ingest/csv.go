// Package ingest turns bank statement files into normalised statement rows.
//
// Statements arrive as CSV with a header row. Column names are matched
// case-insensitively against a small set of aliases, amounts are parsed as
// decimals and dates may use any of the common layouts below.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// Standard column names.
const (
	ColumnDate        = "date"
	ColumnDescription = "description"
	ColumnAmount      = "amount"
)

// columnAliases lists accepted header names per standard column, in priority order.
var columnAliases = []struct {
	column  string
	aliases []string
}{
	{ColumnDate, []string{"date", "transaction date", "transaction_date"}},
	{ColumnDescription, []string{"description", "details", "transaction details", "transaction_details", "narration"}},
	{ColumnAmount, []string{"amount", "transaction amount", "transaction_amount", "debit/credit"}},
}

// dateLayouts are tried in order. Slash dates are month first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ErrEmptyStatement is returned when the file has no header row.
var ErrEmptyStatement = errors.New("statement is empty")

// ParseCSV reads a statement with a header row. Blank lines are skipped; any
// malformed row fails the whole parse so nothing partial is imported.
func ParseCSV(r io.Reader) ([]model.StatementRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyStatement
	}
	if err != nil {
		return nil, model.Invalid("file", err.Error())
	}

	index, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	rows := make([]model.StatementRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.Invalid("file", err.Error())
		}
		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRecord(record, index, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// mapColumns returns the record index of each standard column.
func mapColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	index := make(map[string]int, len(columnAliases))
	for _, c := range columnAliases {
		for _, alias := range c.aliases {
			if i, ok := positions[alias]; ok {
				index[c.column] = i
				break
			}
		}
		if _, ok := index[c.column]; !ok {
			return nil, model.Invalid("header", fmt.Sprintf("no %s column (accepted: %s)", c.column, strings.Join(c.aliases, ", ")))
		}
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int, line int) (model.StatementRow, error) {
	field := func(column string) string {
		i := index[column]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := ParseDate(field(ColumnDate))
	if err != nil {
		return model.StatementRow{}, model.Invalid(fmt.Sprintf("line %d date", line), err.Error())
	}

	amount, err := ParseAmount(field(ColumnAmount))
	if err != nil {
		return model.StatementRow{}, model.Invalid(fmt.Sprintf("line %d amount", line), err.Error())
	}

	return model.StatementRow{
		Date:        date,
		Description: field(ColumnDescription),
		Amount:      amount.InexactFloat64(),
	}, nil
}

// ParseDate accepts any of the supported layouts and returns the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// ParseAmount parses a statement amount. Thousands separators, a leading
// plus sign, currency symbols and spaces are ignored; "(12.50)" is negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.NewReplacer(
		",", "",
		"+", "",
		"$", "",
		"£", "",
		"€", "",
		" ", "",
		"\u00a0", "",
	).Replace(cleaned)

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("empty amount %q", s)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognised amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
