package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CSV loaders for the flat tabular exports produced by the legacy system:
// products as "id,path" rows, site nodes as "id,url_segment,kind,product_id"
// rows. A header line is detected by a non-numeric first column and skipped.
// Malformed rows are logged and dropped, never fatal.

// LoadCSV reads both tables from their respective files. An empty path skips
// that table.
func LoadCSV(productsPath, pagesPath string, log *zap.Logger) (*Tables, error) {
	tables := NewTables()

	if productsPath == "" {
		return loadPagesCSV(tables, pagesPath, log)
	}
	if err := readCSV(productsPath, 2, log, func(row []string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return err
		}
		tables.ProductPathByID[id] = strings.TrimSpace(row[1])
		return nil
	}); err != nil {
		return nil, fmt.Errorf("unable to load product table: %w", err)
	}
	return loadPagesCSV(tables, pagesPath, log)
}

func loadPagesCSV(tables *Tables, pagesPath string, log *zap.Logger) (*Tables, error) {
	if pagesPath == "" {
		return tables, nil
	}
	if err := readCSV(pagesPath, 3, log, func(row []string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return err
		}
		node := SiteNode{
			URLSegment: strings.TrimSpace(row[1]),
			Kind:       strings.TrimSpace(row[2]),
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			pid, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
			if err != nil {
				return err
			}
			node.ProductID = pid
		}
		tables.SiteNodeByID[id] = node
		return nil
	}); err != nil {
		return nil, fmt.Errorf("unable to load site tree table: %w", err)
	}

	return tables, nil
}

func readCSV(path string, minFields int, log *zap.Logger, row func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line++

		if len(record) < minFields {
			log.Debug("Skipping short row", zap.String("file", path), zap.Int("line", line))
			continue
		}
		if err := row(record); err != nil {
			if line == 1 {
				// header line
				continue
			}
			log.Debug("Skipping malformed row", zap.String("file", path), zap.Int("line", line), zap.Error(err))
		}
	}
}
