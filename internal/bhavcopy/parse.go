package bhavcopy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"StockPulse/internal/model"
)

var requiredColumns = []string{"SYMBOL", "SERIES", "PREV_CLOSE", "OPEN_PRICE", "HIGH_PRICE", "LOW_PRICE", "CLOSE_PRICE", "TTL_TRD_QNTY"}

// ParseFile opens and parses a bhavcopy CSV file.
func ParseFile(path string) ([]model.BhavRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a full bhavcopy CSV. Header names and values are trimmed; rows with
// unparseable prices are skipped.
func Parse(r io.Reader) ([]model.BhavRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty bhavcopy")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %s", c)
		}
	}

	var rows []model.BhavRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		cell := func(name string) string {
			i := idx[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num := func(name string) (float64, bool) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell(name), ",", ""), 64)
			return v, err == nil
		}

		row := model.BhavRow{Symbol: cell("SYMBOL"), Series: cell("SERIES")}
		var ok [6]bool
		row.PrevClose, ok[0] = num("PREV_CLOSE")
		row.Open, ok[1] = num("OPEN_PRICE")
		row.High, ok[2] = num("HIGH_PRICE")
		row.Low, ok[3] = num("LOW_PRICE")
		row.Close, ok[4] = num("CLOSE_PRICE")
		row.Volume, ok[5] = num("TTL_TRD_QNTY")
		if row.Symbol == "" || ok != [6]bool{true, true, true, true, true, true} {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
