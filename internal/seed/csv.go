package seed

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

// CSVParser reads a spreadsheet export with one product per row. The header
// row is located by column names, so leading title or comment rows are
// skipped. Both ',' and ';' separated files are accepted.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// columns lists the accepted header names per field, compared case-insensitively.
var columns = struct {
	id, title, price, description, category, image, sold, date []string
}{
	id:          []string{"id", "external_id"},
	title:       []string{"title", "name"},
	price:       []string{"price"},
	description: []string{"description"},
	category:    []string{"category"},
	image:       []string{"image", "image_url"},
	sold:        []string{"sold"},
	date:        []string{"dateofsale", "date_of_sale", "date"},
}

// colIndex maps lowercase column names to their index in the row.
type colIndex map[string]int

func (c colIndex) find(names []string) int {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i
		}
	}

	return -1
}

func (p *CSVParser) Parse(r io.Reader) ([]*transaction.Transaction, error) {
	utf8r, charset, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("reading csv", "charset", charset)

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffComma(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header found: expected at least id, title, price and date columns")
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffComma picks ';' when the first line has more of them than commas.
func sniffComma(br *bufio.Reader) rune {
	line, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}

	return ','
}

func detectHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex, len(row))

		for i, cell := range row {
			if name := strings.ToLower(strings.TrimSpace(cell)); name != "" {
				cols[name] = i
			}
		}

		if cols.find(columns.id) >= 0 && cols.find(columns.title) >= 0 &&
			cols.find(columns.price) >= 0 && cols.find(columns.date) >= 0 {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

// parseRows converts data rows. headerRowNum is the 0-based index of the
// header in the file, used for error messages. Blank rows are skipped.
func parseRows(cols colIndex, rows [][]string, headerRowNum int) ([]*transaction.Transaction, error) {
	var (
		idIdx    = cols.find(columns.id)
		titleIdx = cols.find(columns.title)
		priceIdx = cols.find(columns.price)
		descIdx  = cols.find(columns.description)
		catIdx   = cols.find(columns.category)
		imageIdx = cols.find(columns.image)
		soldIdx  = cols.find(columns.sold)
		dateIdx  = cols.find(columns.date)
	)

	var txs []*transaction.Transaction

	for i, row := range rows {
		rowNum := headerRowNum + i + 2

		if blank(row) {
			continue
		}

		id, err := strconv.ParseInt(cellValue(row, idIdx), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", rowNum, cellValue(row, idIdx))
		}

		price, err := parsePrice(cellValue(row, priceIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", rowNum, cellValue(row, priceIdx))
		}

		date, err := parseDate(cellValue(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", rowNum, cellValue(row, dateIdx))
		}

		sold, err := parseSold(cellValue(row, soldIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sold flag %q", rowNum, cellValue(row, soldIdx))
		}

		txs = append(txs, &transaction.Transaction{
			ExternalID:  id,
			Title:       cellValue(row, titleIdx),
			Description: cellValue(row, descIdx),
			Price:       price,
			Category:    cellValue(row, catIdx),
			Sold:        sold,
			DateOfSale:  date,
			Image:       cellValue(row, imageIdx),
		})
	}

	return txs, nil
}

// parsePrice accepts "1234.56", "1,234.56" and the European "1.234,56".
func parsePrice(s string) (decimal.Decimal, error) {
	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")

	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	return decimal.NewFromString(s)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

func parseDate(s string) (time.Time, error) {
	var err error

	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return transaction.WallClock(t), nil
		}
	}

	return time.Time{}, err
}

// parseSold treats an empty cell as not sold.
func parseSold(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	}

	return false, fmt.Errorf("unrecognised boolean %q", s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
