package data

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("data: unsupported file format")

// StreamCSV streams CSV rows as Records through a channel. The first row names
// the fields. Finite decimal cells become numbers, other cells stay strings,
// and empty cells are left out of the record.
// Close the returned done chan to stop early; out is closed when streaming ends.
func StreamCSV(r io.Reader, logger *zap.Logger, out chan<- dataset.Record) (done chan struct{}) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	done = make(chan struct{})

	go func() {
		defer close(out)

		header, err := reader.Read()
		if err != nil {
			if err != io.EOF {
				logger.Warn("reading csv header", zap.Error(err))
			}
			return
		}
		header = append([]string(nil), header...)

		for line := 2; ; line++ {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				logger.Warn("skipping malformed csv row", zap.Int("line", line), zap.Error(err))
				continue
			}
			if len(row) != len(header) {
				logger.Warn("skipping csv row with wrong field count",
					zap.Int("line", line), zap.Int("fields", len(row)), zap.Int("want", len(header)))
				continue
			}

			rec := make(dataset.Record, len(header))
			for i, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				rec[header[i]] = parseCell(cell)
			}

			select {
			case <-done:
				return
			case out <- rec:
			}
		}
	}()
	return done
}

// parseCell returns cell as a float64 when it is a finite decimal number and
// as the string itself otherwise, so codes like "NaN", "Inf" or "0x1F" stay
// categorical.
func parseCell(cell string) any {
	digits := strings.TrimLeft(cell, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return cell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return cell
	}
	return v
}

// Collect drains a record stream into a slice.
func Collect(in <-chan dataset.Record) []dataset.Record {
	records := make([]dataset.Record, 0)
	for rec := range in {
		records = append(records, rec)
	}
	return records
}

// LoadCSV reads every row of r.
func LoadCSV(r io.Reader, logger *zap.Logger) []dataset.Record {
	ch := make(chan dataset.Record, 64)
	StreamCSV(r, logger, ch)
	return Collect(ch)
}

// LoadJSON decodes a JSON array of objects. Numbers are kept exact and
// normalized to float64 when read through dataset.Record.Get.
func LoadJSON(r io.Reader) ([]dataset.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []dataset.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("data: decoding json: %w", err)
	}
	return normalizeAll(records), nil
}

// LoadYAML decodes a YAML sequence of mappings.
func LoadYAML(r io.Reader) ([]dataset.Record, error) {
	var records []dataset.Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("data: decoding yaml: %w", err)
	}
	return normalizeAll(records), nil
}

// LoadFile picks a decoder from the file extension: .csv, .json, .yaml or .yml.
func LoadFile(path string, logger *zap.Logger) ([]dataset.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(bytes.NewReader(raw), logger), nil
	case ".json":
		return LoadJSON(bytes.NewReader(raw))
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func normalizeAll(records []dataset.Record) []dataset.Record {
	if records == nil {
		return []dataset.Record{}
	}
	for _, rec := range records {
		for k, v := range rec {
			rec[k] = dataset.Normalize(v)
		}
	}
	return records
}
