// Package track loads raw evolutionary tracks, puts them on a common age grid
// and synthesizes tracks for arbitrary masses and metallicities by bilinear
// interpolation in a model grid.
package track

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Columns are the file columns read from a model track, in order. Column 0
// is the age in years and column 12 the apsidal motion constant k2.
var Columns = []int{0, 1, 2, 3, 4, 12}

const (
	// AgeField is the index of the age within a RawTrack row.
	AgeField = 0
	// K2Field is the index of k2 within a RawTrack row (file column 12).
	K2Field = 5
)

// RawTrack is a model track as read from disk, one row per model, with the
// fields listed in Columns.
type RawTrack struct {
	Locator string
	Rows    [][]float64
}

// Len returns the number of models in the track.
func (t *RawTrack) Len() int { return len(t.Rows) }

// Ages returns the age column.
func (t *RawTrack) Ages() []float64 { return t.field(AgeField) }

// K2 returns the structure-constant column.
func (t *RawTrack) K2() []float64 { return t.field(K2Field) }

func (t *RawTrack) field(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Loader reads RawTracks from a Source.
type Loader struct {
	source Source
	logger *zap.Logger
}

// NewLoader returns a Loader reading from source.
func NewLoader(source Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, logger: logger}
}

// Load opens and parses the track at locator.
func (l *Loader) Load(ctx context.Context, locator string) (*RawTrack, error) {
	rc, err := l.source.Open(ctx, locator)
	if err != nil {
		l.logger.Debug("open track failed", zap.String("locator", locator), zap.Error(err))
		return nil, err
	}
	defer rc.Close()

	raw, err := Parse(rc, locator)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("track loaded", zap.String("locator", locator), zap.Int("rows", raw.Len()))
	return raw, nil
}

// Parse reads a whitespace-delimited track. Lines starting with '#' are
// comments. A first data line that is not numeric is taken as a header.
func Parse(r io.Reader, locator string) (*RawTrack, error) {
	need := 0
	for _, c := range Columns {
		if c+1 > need {
			need = c + 1
		}
	}

	raw := &RawTrack{Locator: locator}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	seenData := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		row, err := parseRow(fields, need)
		if err != nil {
			if !seenData && isHeader(fields) {
				seenData = true
				continue
			}
			return nil, &TrackNotFoundError{Locator: locator, Line: lineNo, Reason: err.Error()}
		}
		seenData = true
		raw.Rows = append(raw.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, &TrackNotFoundError{Locator: locator, Reason: "read failed", Err: err}
	}
	if len(raw.Rows) == 0 {
		return nil, &TrackNotFoundError{Locator: locator, Reason: "no data rows"}
	}
	return raw, nil
}

func parseRow(fields []string, need int) ([]float64, error) {
	if len(fields) < need {
		return nil, fmt.Errorf("expected at least %d columns, found %d", need, len(fields))
	}
	row := make([]float64, len(Columns))
	for i, c := range Columns {
		v, err := strconv.ParseFloat(fields[c], 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: non-numeric value %q", c, fields[c])
		}
		row[i] = v
	}
	return row, nil
}

// isHeader reports whether every field is non-numeric.
func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			return false
		}
	}
	return true
}
