package validate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
)

// GLLine is one finance general-ledger line as read from the downstream
// finance dataset.
type GLLine struct {
	JournalID   string
	JournalDate time.Time
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	CustomerID  string
	Reference   string
}

// WebshopSession is one downstream webshop session row.
type WebshopSession struct {
	SessionID   string
	CustomerID  string
	SessionDate time.Time
	Converted   bool
}

// LoadGLLines reads finance GL lines from a CSV file. The finance dataset
// is required input for validation, so a missing file is an error.
func LoadGLLines(path string) ([]GLLine, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading finance GL lines: %w", err)
	}

	lines := make([]GLLine, 0, len(rows))
	for _, row := range rows {
		date, err := entity.ParseDate(pick(row, "journal_date", "date"))
		if err != nil {
			continue
		}
		lines = append(lines, GLLine{
			JournalID:   pick(row, "journal_id", "journal"),
			JournalDate: date,
			AccountID:   pick(row, "account_id", "account"),
			Debit:       parseDecimal(pick(row, "debit", "debit_amount")),
			Credit:      parseDecimal(pick(row, "credit", "credit_amount")),
			CustomerID:  row["customer_id"],
			Reference:   pick(row, "reference", "ref"),
		})
	}
	return lines, nil
}

// LoadWebshopSessions reads downstream webshop sessions from a CSV file.
// The webshop dataset is optional: a missing file yields nil sessions and
// no error, and the checks that need it skip.
func LoadWebshopSessions(path string) ([]WebshopSession, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading webshop sessions: %w", err)
	}

	sessions := make([]WebshopSession, 0, len(rows))
	for _, row := range rows {
		date, err := entity.ParseDate(pick(row, "session_date", "date"))
		if err != nil {
			continue
		}
		sessions = append(sessions, WebshopSession{
			SessionID:   row["session_id"],
			CustomerID:  row["customer_id"],
			SessionDate: date,
			Converted:   parseBool(row["converted"]),
		})
	}
	return sessions, nil
}

// readCSV reads a CSV file into header-keyed rows with lowercased headers.
func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// pick returns the first non-empty value among the candidate columns.
func pick(row map[string]string, columns ...string) string {
	for _, col := range columns {
		if v := row[col]; v != "" {
			return v
		}
	}
	return ""
}

func parseDecimal(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
