// Package ingest reads traffic snapshot rows from CSV files.
//
// The format tolerates the header variants produced by the various
// upstream exporters: source/from/u, target/to/v, congestion (0..1) or
// congestion_percent (0..100), optional speed, flow and an RFC 3339
// timestamp column.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/pkg/logger"
)

// columns resolves header names to record indexes. A value of -1 means
// the column is absent.
type columns struct {
	source     int
	target     int
	congestion int
	percent    int
	speed      int
	flow       int
	timestamp  int
}

// ReadFile loads snapshot rows from a CSV file. A missing file is not
// an error: the service can start empty and be fed over HTTP later.
func ReadFile(ctx context.Context, path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Get().Warn(ctx, "snapshot file not found, starting empty",
				logger.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// Read parses snapshot rows from CSV data.
func Read(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line++

		row, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{
		source: -1, target: -1, congestion: -1,
		percent: -1, speed: -1, flow: -1, timestamp: -1,
	}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "source", "from", "u":
			cols.source = i
		case "target", "to", "v":
			cols.target = i
		case "congestion":
			cols.congestion = i
		case "congestion_percent":
			cols.percent = i
		case "speed":
			cols.speed = i
		case "flow":
			cols.flow = i
		case "timestamp":
			cols.timestamp = i
		}
	}

	if cols.source < 0 || cols.target < 0 {
		return cols, fmt.Errorf("%w: need source and target columns", ErrBadHeader)
	}
	if cols.congestion < 0 && cols.percent < 0 {
		return cols, fmt.Errorf("%w: need a congestion or congestion_percent column", ErrBadHeader)
	}
	return cols, nil
}

func parseRecord(record []string, cols columns) (model.Row, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := model.Row{
		Source: get(cols.source),
		Target: get(cols.target),
	}
	if row.Source == "" || row.Target == "" {
		return row, ErrMissingEndpoint
	}

	switch {
	case cols.congestion >= 0 && get(cols.congestion) != "":
		c, err := strconv.ParseFloat(get(cols.congestion), 64)
		if err != nil {
			return row, fmt.Errorf("congestion: %w", err)
		}
		row.Congestion = c
	case cols.percent >= 0 && get(cols.percent) != "":
		p, err := strconv.ParseFloat(get(cols.percent), 64)
		if err != nil {
			return row, fmt.Errorf("congestion_percent: %w", err)
		}
		row.Congestion = p / 100
	default:
		return row, ErrMissingCongestion
	}

	if s := get(cols.speed); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("speed: %w", err)
		}
		row.Speed = &v
	}
	if s := get(cols.flow); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("flow: %w", err)
		}
		row.Flow = &v
	}
	if s := get(cols.timestamp); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return row, fmt.Errorf("timestamp: %w", err)
		}
		row.Timestamp = ts
	}

	return row, nil
}
